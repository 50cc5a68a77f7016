package main

import (
	"github.com/spf13/cobra"

	"github.com/DBall8/enotes/auth"
)

func init() {
	UserCommand.AddCommand(&UserCreateCommand)
	RootCmd.AddCommand(&UserCommand)
}

var UserCommand = cobra.Command{
	Use:   "user",
	Short: "Inspect and manage users",
	Long:  "Inspect and manage users",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			logger.Fatal("user wants 1 argument: the name of the user")
		}

		user, err := userStore.Get(args[0])
		if err != nil {
			logger.Fatal("error retrieving user:", err)
		}
		if user == nil {
			logger.Fatal("no user named ", args[0])
		}
		logger.Print(user.Name)
	},
}

var UserCreateCommand = cobra.Command{
	Use:   "create",
	Short: "Create a user",
	Long:  "Create a user",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			logger.Fatal("create wants 2 arguments: username and password")
		}

		err := userService.Register(args[0], args[1])
		if err == auth.ErrUserExists {
			logger.Fatal("user ", args[0], " already exists")
		} else if err != nil {
			logger.Fatal("error creating user:", err)
		}
		logger.Print("user ", args[0], " created")
	},
}

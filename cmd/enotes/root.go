package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/DBall8/enotes"
	"github.com/DBall8/enotes/auth"
	"github.com/DBall8/enotes/bolt"
	"github.com/DBall8/enotes/log"
	"github.com/DBall8/enotes/notes"
	"github.com/DBall8/enotes/presence"
)

var (
	// flags
	env string

	// logger
	logger log.Logger

	// auth
	encoder auth.EncodeDecoder

	// drivers
	boltDriver *bolt.Driver

	// stores
	noteStore enotes.NoteRepository
	pageStore enotes.NotePageRepository
	userStore enotes.UserRepository

	// services
	registry    *presence.Registry
	noteService *notes.Service
	userService *auth.UserService
)

type Configuration struct {
	Auth struct {
		Key string `toml:"key"`
	} `toml:"auth"`
	Bolt struct {
		Store string `toml:"store"`
	} `toml:"bolt"`
	Web struct {
		Addr string `toml:"addr"`
	} `toml:"web"`
}

var config Configuration

func init() {
	RootCmd.PersistentFlags().StringVar(&env, "env", "dev", "environment")
}

var RootCmd = cobra.Command{
	Use:   "enotes",
	Short: "Synchronized sticky notes",
	Long:  "Synchronized sticky notes",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Load configuration
		cfgData, err := os.ReadFile(fmt.Sprintf("configuration/config.%s.toml", env))
		if err != nil {
			fmt.Println("error reading configuration:", err)
			os.Exit(1)
		}

		err = toml.Unmarshal(cfgData, &config)
		if err != nil {
			fmt.Println("error unmarshalling configuration:", err)
			os.Exit(1)
		}

		// Create logger
		logger = log.New(env)

		// Create encoder
		keyData, err := os.ReadFile(config.Auth.Key)
		if err != nil {
			logger.Fatal("could not open key file:", err)
		}
		var key enotes.SigningKey
		err = json.Unmarshal(keyData, &key)
		if err != nil {
			logger.Fatal("could not read key file:", err)
		}
		encoder = auth.EncodeDecoder{Key: key.Key}

		// Create stores
		boltDriver = &bolt.Driver{}
		if err := boltDriver.Open(config.Bolt.Store); err != nil {
			logger.Fatal("could not open store:", err)
		}
		noteStore = &bolt.NoteStore{Driver: boltDriver}
		pageStore = &bolt.NotePageStore{Driver: boltDriver}
		userStore = &bolt.UserStore{Driver: boltDriver}

		// Create services
		registry = presence.NewRegistry(logger)
		noteService = notes.NewService(noteStore, pageStore, registry, logger)
		userService = auth.NewUserService(userStore)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		boltDriver.Close()
	},
}

package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/DBall8/enotes/gin"
)

func init() {
	RootCmd.AddCommand(&WebCommand)
}

var WebCommand = cobra.Command{
	Use:   "web",
	Short: "Start the notes server",
	Long:  "Start the notes server",
	Run: func(cmd *cobra.Command, args []string) {
		handler, err := gin.New(noteService, userService, encoder, registry, logger)
		if err != nil {
			logger.Fatal("could not create server:", err)
		}

		addr := config.Web.Addr
		if addr == "" {
			addr = ":8080"
		}
		logger.Print("server started, listening on ", addr)
		logger.Fatal(http.ListenAndServe(addr, handler))
	},
}

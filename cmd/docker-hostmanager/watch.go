package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/auto-dns/docker-hostmanager/internal/app"
	"github.com/auto-dns/docker-hostmanager/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the managed block to stdout as containers come and go",
	Long: "watch resolves hostnames for running containers and prints the block\n" +
		"that sync would write, without touching any file. Log output goes to\n" +
		"stderr so the block stays pipeable.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFromContext(cmd.Context())
		log := logger.SetupLogger(&cfg.Logging)

		once, _ := cmd.Flags().GetBool("once")
		application, err := app.New(cfg, app.Options{Once: once}, log)
		if err != nil {
			return fmt.Errorf("failed to create app: %w", err)
		}
		defer application.Close()

		return runApp(cmd, application, log)
	},
}

func init() {
	watchCmd.Flags().Bool("once", false, "print one snapshot and exit")
}

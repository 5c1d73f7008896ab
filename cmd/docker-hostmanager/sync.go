package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/auto-dns/docker-hostmanager/internal/app"
	"github.com/auto-dns/docker-hostmanager/internal/logger"
)

var syncCmd = &cobra.Command{
	Use:   "sync <hosts-file>",
	Short: "Maintain a managed block inside the given hosts file",
	Long: "sync keeps a marker-delimited block of container hostnames up to date\n" +
		"inside the given file. Content outside the block is never touched.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFromContext(cmd.Context())
		log := logger.SetupLogger(&cfg.Logging)

		hostsPath := args[0]
		// The file itself may not exist yet, but its directory has to: the
		// atomic replace writes a sibling temp file first.
		dir := filepath.Dir(hostsPath)
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("hosts file directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("hosts file parent %s is not a directory", dir)
		}

		once, _ := cmd.Flags().GetBool("once")
		guard, _ := cmd.Flags().GetBool("guard")
		application, err := app.New(cfg, app.Options{HostsPath: hostsPath, Once: once, Guard: guard}, log)
		if err != nil {
			return fmt.Errorf("failed to create app: %w", err)
		}
		defer application.Close()

		return runApp(cmd, application, log)
	},
}

func init() {
	syncCmd.Flags().Bool("once", false, "write once and exit")
	syncCmd.Flags().Bool("guard", false, "watch the hosts file and repair outside edits")
	syncCmd.Flags().StringP("tld", "t", "", "domain suffix for containers without custom networks")
	syncCmd.Flags().StringP("socket", "s", "", "docker daemon socket")
	syncCmd.Flags().Int("debounce-ms", 0, "quiet period before a write, in milliseconds")
	viper.BindPFlag("tld", syncCmd.Flags().Lookup("tld"))
	viper.BindPFlag("docker_socket", syncCmd.Flags().Lookup("socket"))
	viper.BindPFlag("debounce_ms", syncCmd.Flags().Lookup("debounce-ms"))
}

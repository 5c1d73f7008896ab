package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/auto-dns/docker-hostmanager/internal/config"
)

type contextKey string

const configKey = contextKey("config")

var rootCmd = &cobra.Command{
	Use:   "docker-hostmanager",
	Short: "Keep a hosts file in sync with running docker containers",
	Long: "docker-hostmanager listens for docker container events and maintains a\n" +
		"marker-delimited block of hostname mappings, either printed to stdout\n" +
		"or written into a hosts file.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.InitConfig(); err != nil {
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			cfg.Logging.Level = "DEBUG"
		}
		ctx := context.WithValue(cmd.Context(), configKey, cfg)
		cmd.SetContext(ctx)
		return nil
	},
}

func configFromContext(ctx context.Context) *config.Config {
	return ctx.Value(configKey).(*config.Config)
}

// runApp runs the application until it finishes on its own or an OS signal
// asks for a graceful shutdown.
func runApp(cmd *cobra.Command, a application, log zerolog.Logger) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		sig := <-sigCh
		log.Info().Msgf("received signal: %v", sig)
		cancel()
	}()

	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(syncCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Execution error: %v\n", err)
		os.Exit(1)
	}
}

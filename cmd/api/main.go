// Command timebank runs the TimeBank bot and its maintenance commands.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/timebank/backend/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "timebank",
	Short: "Teams bot that turns time saved with AI tools into redeemable credits",
	Long: `timebank serves the bot messaging endpoint. With no subcommand it behaves like
"timebank serve". Settings come from the environment, optionally seeded from .env.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// setup loads configuration and installs a JSON logger writing to logOut as the default.
func setup(logOut io.Writer, opts ...config.Option) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

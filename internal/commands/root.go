package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/omnis-dev/omnis/internal/buildinfo"
	"github.com/omnis-dev/omnis/internal/config"
	"github.com/omnis-dev/omnis/internal/logger"
)

type globalOptions struct {
	configPath string
	logFormat  string
	logLevel   string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "omnis",
		Short:   "Personalised banking recommendations demo",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.FileName, "path to omnis.yaml")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log_level from the config")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newFeedCommand(opts))
	rootCmd.AddCommand(newBannerCommand(opts))
	rootCmd.AddCommand(newTrackCommand(opts))

	return rootCmd
}

// load reads the config file (falling back to defaults), applies the
// environment and installs the logger on stderr.
func (o *globalOptions) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, nil, fmt.Errorf("applying environment: %w", err)
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	return cfg, logger.Init(os.Stderr, cfg.LogLevel, o.logFormat), nil
}

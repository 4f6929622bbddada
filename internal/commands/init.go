package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/omnis-dev/omnis/internal/config"
)

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default omnis.yaml and logs directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing omnis.yaml")

	return cmd
}

const envExample = `# Copy to .env to override omnis.yaml.
# OMNIS_LOG_LEVEL=debug
# OMNIS_LISTEN_ADDR=:8080
# OMNIS_FEED_ENDPOINT=http://localhost:8046/api/v1/recommend
# OMNIS_FEED_USER_ID=USR001
# OMNIS_FEED_TOP_K=5
# OMNIS_FEED_TIMEOUT=15s
# OMNIS_TRACKING_ENDPOINT=http://localhost:8046/api/v1/recommend/interaction
# OMNIS_TRACKING_LOG_DIR=logs
# OMNIS_REDIS_ADDR=localhost:6379
# OMNIS_RATE_LIMIT_RPS=10
`

func runInit(out io.Writer, dir string, force bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", cfgPath, err)
	}

	cfg := config.Default()
	if err := os.MkdirAll(filepath.Join(dir, cfg.Tracking.LogDir), 0o755); err != nil {
		return fmt.Errorf("creating logs directory: %w", err)
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ".env.example"), []byte(envExample), 0o644); err != nil {
		return fmt.Errorf("writing .env.example: %w", err)
	}

	gitignore := "logs/\n.env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	fmt.Fprintf(out, "Initialized omnis project at %s\n", dir)
	return nil
}

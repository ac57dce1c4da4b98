package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/agenthands/twohop/internal/config"
	"github.com/agenthands/twohop/internal/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "twohop",
	Short: "Two-hop introduction recommender",
	Long: `twohop finds people two acquaintance hops away who can help with a
request, and names the friend who can introduce them.

Run without a subcommand to serve the HTTP API.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config TOML (default $CONFIG_PATH or config/config.toml)")
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using environment")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the TOML file, applies environment overrides and
// initializes logging. A missing default file falls back to built-in
// defaults; a missing file the user asked for is an error.
func loadConfig() (*config.Config, error) {
	path := configPath
	explicit := path != ""
	if !explicit {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
	}
	if path == "" {
		path = "config/config.toml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	return cfg, nil
}

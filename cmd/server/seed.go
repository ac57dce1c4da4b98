package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/agenthands/twohop/internal/directory"
	"github.com/agenthands/twohop/internal/driver"
)

var seedCmd = &cobra.Command{
	Use:   "seed <fixture.json>",
	Short: "Replace the graph database contents with a fixture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read fixture: %w", err)
		}
		var fixture directory.Fixture
		if err := json.Unmarshal(data, &fixture); err != nil {
			return fmt.Errorf("failed to parse fixture: %w", err)
		}

		ctx := cmd.Context()
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
		if err != nil {
			return err
		}
		defer d.Close(context.Background())

		if err := d.BuildIndices(ctx); err != nil {
			return err
		}
		return directory.NewGraphDirectory(d).Seed(ctx, fixture)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

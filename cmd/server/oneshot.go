package main

import (
	"context"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/agenthands/twohop/internal/server"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <text>",
	Short: "Classify a request and print the category",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		return printJSON(app.Classifier.Classify(cmd.Context(), strings.Join(args, " ")))
	},
}

var (
	recommendUser int64
	recommendText string
	recommendMax  int
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Run one recommendation and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		res, err := app.Engine.CreateRecommendation(cmd.Context(), recommendUser, recommendText, recommendMax)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

func init() {
	recommendCmd.Flags().Int64Var(&recommendUser, "user", 0, "requester user id")
	recommendCmd.Flags().StringVar(&recommendText, "text", "", "request text")
	recommendCmd.Flags().IntVar(&recommendMax, "max", 5, "maximum number of recommendations")
	_ = recommendCmd.MarkFlagRequired("user")
	_ = recommendCmd.MarkFlagRequired("text")

	rootCmd.AddCommand(classifyCmd, recommendCmd)
}

func buildApp(ctx context.Context) (*server.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return server.Build(ctx, cfg)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gypgypgyp/PromoSearchMCP/internal/config"
	"github.com/gypgypgyp/PromoSearchMCP/internal/pipeline"
	"github.com/gypgypgyp/PromoSearchMCP/internal/promo"
)

var (
	jsonOutput   bool
	flagDataPath string

	// Profile flags shared by the commands that accept a user profile.
	flagUserType  string
	flagInterests []string
	flagBudget    string
)

var rootCmd = &cobra.Command{
	Use:   "promosearch",
	Short: "Search, rank and place sponsored promotions from the command line",
	Long: `promosearch drives the promotion pipeline without the HTTP server:
semantic search over the promotion corpus, CTR ranking, ad slot placement
and query expansion. Configuration comes from the environment (and .env),
same as the promosearchd daemon.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagDataPath, "data", "", "Path to a promotions JSONL file (overrides PROMOTIONS_DATA_PATH)")
}

// registerProfileFlags adds the user profile flags to a command. The flags
// share package vars, so only one command runs per invocation.
func registerProfileFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagUserType, "user-type", "", "User type: casual, professional, business or enterprise")
	cmd.Flags().StringSliceVar(&flagInterests, "interests", nil, "Comma-separated interest keywords")
	cmd.Flags().StringVar(&flagBudget, "budget", "", "Budget level: low, medium or high")
}

// profileFromFlags builds a user profile from the flags, or nil when no
// profile flag was set.
func profileFromFlags() *promo.UserProfile {
	if flagUserType == "" && len(flagInterests) == 0 && flagBudget == "" {
		return nil
	}
	return &promo.UserProfile{
		UserType:    promo.UserType(strings.ToLower(flagUserType)),
		Interests:   flagInterests,
		BudgetLevel: promo.BudgetLevel(strings.ToLower(flagBudget)),
	}
}

// newEngine loads configuration and constructs the pipeline engine. CLI runs
// log at warn level so stdout stays parseable.
func newEngine() (*pipeline.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flagDataPath != "" {
		if _, err := os.Stat(flagDataPath); err != nil {
			return nil, fmt.Errorf("data file: %w", err)
		}
		cfg.PromotionsDataPath = flagDataPath
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	return pipeline.New(cfg, pipeline.WithLogger(logger)), nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gypgypgyp/PromoSearchMCP/internal/promo"
)

// defaultDemoQuery asks for recent AWS cloud server deals. It is Chinese on
// purpose: embeddings are language-agnostic, keyword heuristics are not.
const defaultDemoQuery = "我想找最近 AWS 云主机有哪些优惠"

// demoOrganic is the canned organic feed the demo injects ads into.
func demoOrganic() []string {
	return []string{
		"AWS EC2 Documentation - Learn about Amazon Elastic Compute Cloud instances",
		"AWS Pricing Calculator - Calculate your cloud computing costs",
		"AWS Free Tier - Get started with AWS for free",
		"Cloud Computing Best Practices - Guide to efficient cloud usage",
		"AWS Instance Types - Choose the right instance for your workload",
		"Server Migration to AWS - Step-by-step migration guide",
		"AWS Security Best Practices - Keep your cloud infrastructure secure",
		"Cost Optimization on AWS - Reduce your cloud spending",
	}
}

var demoCmd = &cobra.Command{
	Use:   "demo [query]",
	Short: "Run the full pipeline end to end",
	Long: `demo runs query expansion, fan-out search, ranking and ad placement
against the promotion corpus and a canned organic result feed, printing
every stage. Without profile flags it uses a professional cloud user.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDemo,
}

func init() {
	registerProfileFlags(demoCmd)
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	query := defaultDemoQuery
	if len(args) == 1 {
		query = args[0]
	}
	profile := profileFromFlags()
	if profile == nil {
		profile = &promo.UserProfile{
			UserType:    promo.UserTypeProfessional,
			Interests:   []string{"cloud", "aws", "hosting", "development"},
			BudgetLevel: promo.BudgetMedium,
		}
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	result, err := engine.Run(cmd.Context(), query, profile, demoOrganic())
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(result)
		return nil
	}

	printDegraded(result.Degraded)

	printSection("Query Expansion")
	for i, q := range result.ExpandedQueries {
		fmt.Printf("%d. %s\n", i+1, q)
	}

	printSection("Candidate Promotions")
	for _, c := range result.Candidates {
		fmt.Printf("%.4f  %s  %s\n", c.Score, c.ID, c.Title)
	}

	printSection("CTR Ranking")
	for _, r := range result.RankedPromotions {
		fmt.Printf("%.4f  %s\n", r.Score, r.ID)
	}

	printSection("Final Feed")
	printFeed(result.InjectedResults)
	return nil
}

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gypgypgyp/PromoSearchMCP/internal/placement"
	"github.com/gypgypgyp/PromoSearchMCP/internal/promo"
)

var placeCmd = &cobra.Command{
	Use:   "place [file]",
	Short: "Insert sponsored content into an organic result feed",
	Long: `place reads a JSON document with "search_results" (organic result
strings) and "promotions" (promotion objects) from a file or stdin, and
prints the merged feed with ads formatted and inserted at fixed slots.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlace,
}

type placeInput struct {
	SearchResults []string          `json:"search_results"`
	Promotions    []promo.Promotion `json:"promotions"`
}

func init() {
	rootCmd.AddCommand(placeCmd)
}

func runPlace(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	data, err := readInput(path)
	if err != nil {
		return err
	}
	var input placeInput
	if err := json.Unmarshal(data, &input); err != nil {
		return fmt.Errorf("invalid place input: %w", err)
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	resp := engine.Place(cmd.Context(), input.SearchResults, input.Promotions)

	if jsonOutput {
		printJSON(resp)
		return nil
	}

	printDegraded(resp.Degraded)
	printFeed(resp.InjectedResults)
	return nil
}

// printFeed numbers the merged feed, calling out sponsored slots the way the
// interactive demo does.
func printFeed(feed []string) {
	for i, entry := range feed {
		if placement.IsSponsored(entry) {
			fmt.Printf("\n🎯 AD SLOT %d:\n%s\n\n", i+1, entry)
			continue
		}
		fmt.Printf("%d. %s\n", i+1, entry)
	}
}

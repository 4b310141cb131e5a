package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gypgypgyp/PromoSearchMCP/internal/corpus"
	"github.com/gypgypgyp/PromoSearchMCP/internal/promo"
)

var rankCmd = &cobra.Command{
	Use:   "rank [file]",
	Short: "Score candidate promotions by predicted CTR",
	Long: `rank reads candidate promotions from a file (or stdin when no file is
given) and prints them in descending score order. Input is either a JSON
array of promotions or JSONL with one promotion per line.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRank,
}

func init() {
	registerProfileFlags(rankCmd)
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	candidates, err := readPromotions(path)
	if err != nil {
		return err
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	resp := engine.Rank(cmd.Context(), candidates, profileFromFlags())

	if jsonOutput {
		printJSON(resp)
		return nil
	}

	printDegraded(resp.Degraded)
	if len(resp.RankedPromotions) == 0 {
		fmt.Println("No candidates to rank.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tID")
	for _, r := range resp.RankedPromotions {
		fmt.Fprintf(w, "%.4f\t%s\n", r.Score, r.ID)
	}
	return w.Flush()
}

// readInput reads all of path, or stdin when path is "" or "-".
func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// readPromotions decodes promotions from a JSON array, falling back to JSONL.
func readPromotions(path string) ([]promo.Promotion, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	var promos []promo.Promotion
	if err := json.Unmarshal(data, &promos); err == nil {
		return promos, nil
	}
	promos, err = corpus.ParseJSONL(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("input is neither a JSON array nor JSONL: %w", err)
	}
	return promos, nil
}

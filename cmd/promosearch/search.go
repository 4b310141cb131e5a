package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var flagTopK int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Semantic search over the promotion corpus",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&flagTopK, "top-k", "k", 0, "Maximum results to return (0 uses MAX_SEARCH_RESULTS)")
	registerProfileFlags(searchCmd)
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	resp, err := engine.Search(cmd.Context(), args[0], flagTopK, profileFromFlags())
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(resp)
		return nil
	}

	printDegraded(resp.Degraded)
	if len(resp.Results) == 0 {
		fmt.Println("No promotions matched.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tID\tTITLE")
	for _, r := range resp.Results {
		fmt.Fprintf(w, "%.4f\t%s\t%s\n", r.Score, r.ID, r.Title)
	}
	return w.Flush()
}

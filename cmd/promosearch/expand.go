package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var expandCmd = &cobra.Command{
	Use:   "expand <query>",
	Short: "Expand a query into long-tail variations",
	Long: `expand turns a search query into related long-tail variations using
the configured LLM, or promo-term rules when no LLM is configured.`,
	Args: cobra.ExactArgs(1),
	RunE: runExpand,
}

func init() {
	rootCmd.AddCommand(expandCmd)
}

func runExpand(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	resp, err := engine.Expand(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(resp)
		return nil
	}

	printDegraded(resp.Degraded)
	for i, q := range resp.ExpandedQueries {
		fmt.Printf("%d. %s\n", i+1, q)
	}
	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gypgypgyp/PromoSearchMCP/internal/pipeline"
)

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

// printSection writes a stage header for the human-readable demo output.
func printSection(title string) {
	fmt.Printf("\n=== %s ===\n", title)
}

// printDegraded reports fallback stages on stderr so piped stdout stays clean.
func printDegraded(reasons []pipeline.DegradeReason) {
	fprintDegraded(os.Stderr, reasons)
}

func fprintDegraded(w io.Writer, reasons []pipeline.DegradeReason) {
	if len(reasons) == 0 {
		return
	}
	fmt.Fprintf(w, "⚠️  degraded: %v\n", reasons)
}

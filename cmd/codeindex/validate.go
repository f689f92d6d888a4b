package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/codeindex/internal/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate <artifact.json>...",
	Short: "Schema- and invariant-check index artifacts",
	Long: `Validates SymbolIndex and ProjectIndex documents (detected by
schema_version) against their JSON Schemas, then re-checks the contract
invariants: sorted files, symbols, and occurrences; no duplicate
occurrences; stats consistent with the occurrence lists.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	failed := false
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return usagef("read %s: %v", path, err)
		}
		errs := schema.CheckDocument(data)
		if len(errs) == 0 {
			fmt.Printf("%s: OK\n", path)
			continue
		}
		failed = true
		fmt.Printf("%s: FAILED\n", path)
		for _, e := range errs {
			fmt.Printf("  - %s\n", e)
		}
	}
	if failed {
		return fmt.Errorf("validation failed")
	}
	return nil
}

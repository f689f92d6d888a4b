// Package main provides the codeindex CLI: deterministic symbol indexing
// of source files driven by declarative language profiles.
//
// Commands:
//   - index    : build a SymbolIndex (single profile) or ProjectIndex (registry)
//   - export   : flatten an index artifact into CSV, JSONL, or SQLite rows
//   - validate : schema- and invariant-check emitted artifacts
//   - version  : print the engine version
//
// Exit codes: 0 on success (including runs that only hit recoverable
// file-level errors, which are reported as diagnostics in the artifact),
// 2 on usage or configuration errors, 1 otherwise.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/codeindex"
)

// usageError marks errors that should exit with status 2: bad flags,
// missing inputs, malformed profiles or registries.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		var uerr *usageError
		if errors.As(err, &uerr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "codeindex",
	Short:         "Deterministic, profile-driven symbol indexing",
	Long:          "codeindex lexes source files against declarative language profiles and emits canonical JSON symbol indexes: every selected identifier with every occurrence span.",
	SilenceErrors: true,
	SilenceUsage:  true,
	// No Run — prints help by default.
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the engine version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(codeindex.Version)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

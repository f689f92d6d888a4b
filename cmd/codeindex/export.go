package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/codeindex/internal/model"
	"github.com/jward/codeindex/internal/rows"
	"github.com/jward/codeindex/internal/store"
)

var (
	flagExportFormat string
	flagExportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <symbol_index.json>",
	Short: "Flatten a SymbolIndex into ingestion-friendly rows",
	Long: `Reads a SymbolIndex artifact and emits one row per occurrence:
identifier, file_id, line, col_start, col_end (plus byte offsets when
present). Formats: csv, jsonl, or sqlite (a queryable database with
files, symbols, and occurrences tables).`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&flagExportFormat, "format", rows.FormatJSONL, "output format: csv|jsonl|sqlite")
	exportCmd.Flags().StringVar(&flagExportOut, "out", "-", "output path ('-' = stdout; required for sqlite)")
}

func runExport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return usagef("read index: %v", err)
	}
	var idx model.SymbolIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return usagef("decode index %s: %v", args[0], err)
	}

	switch flagExportFormat {
	case rows.FormatCSV, rows.FormatJSONL:
		out, closeFn, err := openOut(flagExportOut)
		if err != nil {
			return err
		}
		defer closeFn()
		if flagExportFormat == rows.FormatCSV {
			return rows.WriteCSV(out, rows.FromIndex(&idx))
		}
		return rows.WriteJSONL(out, rows.FromIndex(&idx))

	case rows.FormatSQLite:
		if flagExportOut == "" || flagExportOut == "-" {
			return usagef("--out is required for sqlite export")
		}
		s, err := store.NewStore(flagExportOut)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.Migrate(); err != nil {
			return err
		}
		if _, err := s.InsertIndex(&idx); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", flagExportOut)
		return nil

	default:
		return usagef("invalid --format %q: must be csv, jsonl, or sqlite", flagExportFormat)
	}
}

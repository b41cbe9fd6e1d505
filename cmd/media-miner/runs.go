// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/media-miner/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect and export harvest runs recorded in the local store",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, most recent first",
	RunE:  runRunsList,
}

var runsExportCmd = &cobra.Command{
	Use:   "export RUN_ID",
	Short: "Export the photos of a run as JSON lines or YAML",
	Long: `Export writes the photos of a recorded run, in harvest order, with their
image URLs. RUN_ID may be any unambiguous prefix. An --out path ending in
.zst is zstd-compressed; without --out the export goes to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runRunsExport,
}

func init() {
	runsListCmd.Flags().Bool("json", false, "output runs as JSON")
	runsExportCmd.Flags().String("out", "", "output file (default stdout)")
	runsExportCmd.Flags().String("format", string(store.FormatJSONL), "export format: jsonl or yaml")

	runsCmd.AddCommand(runsListCmd, runsExportCmd)
	rootCmd.AddCommand(runsCmd)
}

func openStore() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.Store)
}

func runRunsList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(context.Background())
	if err != nil {
		return err
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-30s  %9s  %7s\n", "ID", "Started", "Query", "Results", "Queries")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for _, r := range runs {
		query := r.Query
		if q := []rune(query); len(q) > 30 {
			query = string(q[:27]) + "..."
		}
		fmt.Fprintf(os.Stdout, "%-36s  %-20s  %-30s  %4d/%-4d  %7d\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), query, r.Results, r.Requested, r.Probes+r.Pages)
	}
	return nil
}

func runRunsExport(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	format, _ := cmd.Flags().GetString("format")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	if out == "" || out == "-" {
		_, err := st.Export(ctx, args[0], os.Stdout, store.ExportFormat(format))
		return err
	}
	n, err := st.ExportFile(ctx, args[0], out, store.ExportFormat(format))
	if err != nil {
		return err
	}
	fmt.Fprintf(progress(cmd), "exported %d photo(s) to %s\n", n, out)
	return nil
}

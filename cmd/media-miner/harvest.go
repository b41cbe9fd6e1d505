// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/media-miner/internal/auth"
	"github.com/pdiddy/media-miner/internal/download"
	"github.com/pdiddy/media-miner/internal/flickr"
	"github.com/pdiddy/media-miner/internal/harvest"
	"github.com/pdiddy/media-miner/internal/store"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest [query words...]",
	Short: "Search Flickr and collect up to --limit results",
	Long: `Harvest searches Flickr for photos matching a text query. When the query
matches more photos than Flickr will return for one search (4000), the
upload-date range is bisected until each window is under the cap, and the
windows are paged through one after another until --limit results are
collected or the matches run out.

Results print as a table (or JSON with --json). --out saves a harvest file,
--save records the run in the local store, and --download fetches the images.`,
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().String("query", "", "search text (alternative to positional words)")
	harvestCmd.Flags().Int("limit", 0, "number of results to collect (default 20)")
	harvestCmd.Flags().Int("per-page", 0, "preferred page size (default: the limit, at most 500)")
	harvestCmd.Flags().Bool("json", false, "output results as JSON")
	harvestCmd.Flags().String("out", "", "write a YAML harvest file to this path")
	harvestCmd.Flags().Bool("save", false, "record the run in the local store")
	harvestCmd.Flags().Bool("download", false, "download the images after harvesting")

	viper.BindPFlag("harvest.limit", harvestCmd.Flags().Lookup("limit"))
	viper.BindPFlag("harvest.per_page", harvestCmd.Flags().Lookup("per-page"))

	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	if query == "" {
		query = strings.Join(args, " ")
	}
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("provide a search query as arguments or with --query")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	limit := cfg.Harvest.Limit
	if limit == 0 {
		limit = harvest.DefaultLimit
	}
	logw := progress(cmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	provider, err := auth.FromConfig(cfg.Flickr, cfg.Auth, os.Stdin, os.Stderr)
	if err != nil {
		return err
	}
	session, err := provider.Session(ctx)
	if err != nil {
		return err
	}

	client := flickr.New(session, cfg.Flickr)
	client.Log = logw
	h := &harvest.Harvester{
		Exec:    client,
		Limits:  cfg.Flickr.ServiceLimits,
		PerPage: cfg.Harvest.PerPage,
		Log:     logw,
	}

	run := store.NewRun(query, limit)
	results, report, err := h.SearchWithReport(ctx, query, limit)
	if err != nil {
		return err
	}
	run.Probes, run.Pages = report.Probes, report.Pages

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		if err := harvest.FormatJSON(results, os.Stdout); err != nil {
			return err
		}
	} else {
		harvest.FormatTable(results, report, os.Stdout)
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		hf := harvest.NewHarvestFile(query, limit, cfg.Harvest.PerPage, report, results)
		hf.RunID = run.ID
		if err := harvest.WriteHarvestFile(out, hf); err != nil {
			return err
		}
		fmt.Fprintf(logw, "wrote %s\n", out)
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		st, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		sum, err := st.SaveRun(ctx, run, results)
		if err != nil {
			return err
		}
		fmt.Fprintf(logw, "saved run %s: %d new, %d already stored, %d duplicate(s) dropped\n",
			run.ID, sum.New, sum.Known, sum.Duplicates)
	}

	if dl, _ := cmd.Flags().GetBool("download"); dl {
		d := &download.Downloader{Config: cfg.Download, Log: logw}
		sum, err := d.DownloadAll(ctx, results)
		if err != nil {
			return err
		}
		if sum.HasFailures() {
			return fmt.Errorf("%d image(s) failed to download", sum.Failed)
		}
	}
	return nil
}

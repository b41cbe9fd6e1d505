// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/media-miner/internal/download"
	"github.com/pdiddy/media-miner/internal/harvest"
	"github.com/pdiddy/media-miner/pkg/types"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the images of a saved harvest",
	Long: `Download fetches the images listed in a harvest file (--from) or a run
recorded in the local store (--run) into the download directory. Images
already present are skipped.`,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().String("from", "", "harvest file written by \"harvest --out\"")
	downloadCmd.Flags().String("run", "", "ID (or prefix) of a stored run")
	downloadCmd.Flags().String("dir", "", "destination directory (default data/images)")
	downloadCmd.Flags().Int("concurrency", 0, "parallel downloads (default 4)")

	viper.BindPFlag("download.dir", downloadCmd.Flags().Lookup("dir"))
	viper.BindPFlag("download.concurrency", downloadCmd.Flags().Lookup("concurrency"))

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetString("from")
	runID, _ := cmd.Flags().GetString("run")
	if (from == "") == (runID == "") {
		return fmt.Errorf("provide exactly one of --from or --run")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var photos []types.Photo
	if from != "" {
		hf, err := harvest.ReadHarvestFile(from)
		if err != nil {
			return err
		}
		photos = hf.Photos()
	} else {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		run, err := st.GetRun(ctx, runID)
		if err != nil {
			return err
		}
		if photos, err = st.RunPhotos(ctx, run.ID); err != nil {
			return err
		}
	}

	d := &download.Downloader{Config: cfg.Download, Log: progress(cmd)}
	sum, err := d.DownloadAll(ctx, photos)
	if err != nil {
		return err
	}
	if sum.HasFailures() {
		return fmt.Errorf("%d image(s) failed to download", sum.Failed)
	}
	return nil
}

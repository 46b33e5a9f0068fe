package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/camden-git/photodesk/catalog"
	"github.com/camden-git/photodesk/config"
	"github.com/camden-git/photodesk/media"
	"github.com/camden-git/photodesk/scanner"
	"github.com/camden-git/photodesk/workers"
)

var cfg config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:           "photodesk",
		Short:         "Photo library backend: folder scanning, tagging and search",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				log.Printf("Info: No .env file found or error loading: %v", err)
			}
			var err error
			cfg, err = config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return nil
		},
	}
	rootCmd.AddCommand(serveCmd(), scanCmd())
	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		log.Printf("FATAL: %v", err)
		os.Exit(1)
	}
}

// services are the long-lived pieces shared by every command.
type services struct {
	assets     *media.LocalStorage
	thumbnails *workers.ThumbnailGenerator
}

func newServices() (*services, error) {
	if err := os.MkdirAll(cfg.ThumbnailsPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", cfg.ThumbnailsPath, err)
	}
	store, err := media.NewLocalStorage(cfg.MediaStoragePath, map[media.AssetType]string{
		media.AssetTypeThumbnail: filepath.Base(cfg.ThumbnailsPath),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media store: %w", err)
	}
	processor := media.NewProcessor(store, cfg.MagickBinary, cfg.FFmpegBinary)

	log.Printf("Initializing thumbnail worker pool (Workers: %d, Queue Size: %d, Max Size: %dpx)",
		cfg.NumThumbnailWorkers, cfg.ThumbnailQueueSize, cfg.ThumbnailMaxSize)
	gen := workers.NewProcessorGenerator(processor, cfg.ThumbnailMaxSize, cfg.ThumbnailQueueSize, cfg.NumThumbnailWorkers)
	return &services{assets: store, thumbnails: gen}, nil
}

func (s *services) libraryOptions() catalog.Options {
	return catalog.Options{
		Thumbnails: s.thumbnails,
		Assets:     s.assets,
		DBLogLevel: cfg.DBLogLevel,
	}
}

func (s *services) stop() {
	s.thumbnails.Stop()
}

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [folder]",
		Short: "Reconcile a folder with its photo store and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newServices()
			if err != nil {
				return err
			}
			defer svc.stop()

			opts := svc.libraryOptions()
			opts.OnProgress = func(p scanner.Progress) {
				fmt.Printf("\r%-12s %3d%% (%d/%d)", p.Phase, p.Percent, p.Current, p.Total)
			}
			lib := catalog.New(opts)
			defer lib.Close()

			resp, err := lib.OpenFolder(cmd.Context(), args[0])
			fmt.Println()
			if err != nil {
				return fmt.Errorf("failed to scan %s: %w", args[0], err)
			}

			fmt.Printf("Folder:   %s\n", lib.Folder())
			fmt.Printf("Photos:   %d\n", resp.PhotoCount)
			fmt.Printf("Tags:     %d\n", len(resp.Tags))
			fmt.Printf("Missing:  %d\n", len(resp.Deleted))
			for _, name := range resp.Deleted {
				fmt.Printf("  %s\n", name)
			}
			if len(resp.ScanErrors) > 0 {
				fmt.Printf("Errors:   %d\n", len(resp.ScanErrors))
				for _, e := range resp.ScanErrors {
					fmt.Printf("  %s\n", e.Error())
				}
			}
			if resp.NeedsUpgrade {
				fmt.Println("The store was written by an older version and needs an upgrade.")
			}
			return nil
		},
	}
}

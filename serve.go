package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/camden-git/photodesk/catalog"
	"github.com/camden-git/photodesk/handlers"
	"github.com/camden-git/photodesk/realtime"
	"github.com/camden-git/photodesk/scanner"
)

func serveCmd() *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the library API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svc, err := newServices()
			if err != nil {
				return err
			}
			defer svc.stop()

			hub := realtime.NewHub(cfg.AllowedOrigins)
			go hub.Run()
			defer hub.Stop()

			opts := svc.libraryOptions()
			opts.OnProgress = func(p scanner.Progress) {
				hub.Broadcast(realtime.EventScanProgress, p)
			}
			opts.OnThumbnail = func(p catalog.Photo) {
				hub.Broadcast(realtime.EventThumbnail, p)
			}
			lib := catalog.New(opts)
			defer lib.Close()

			if folder == "" {
				folder = cfg.RootDirectory
			}
			if folder != "" {
				log.Printf("Opening folder: %s", folder)
				resp, err := lib.OpenFolder(ctx, folder)
				if err != nil {
					return fmt.Errorf("failed to open folder %s: %w", folder, err)
				}
				log.Printf("Opened %s: %d photos, %d missing, %d scan errors",
					folder, resp.PhotoCount, len(resp.Deleted), len(resp.ScanErrors))
			}

			log.Printf("Storing thumbnails in: %s", cfg.ThumbnailsPath)
			router := handlers.NewRouter(handlers.NewHandler(lib), handlers.RouterOptions{
				Hub:            hub,
				Assets:         svc.assets,
				AllowedOrigins: cfg.AllowedOrigins,
			})

			serverAddr := ":" + cfg.Port
			server := &http.Server{
				Addr:         serverAddr,
				Handler:      router,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 5 * time.Minute, // opening a large folder rescans it
				IdleTimeout:  120 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Printf("Server listening on %s", serverAddr)
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			log.Printf("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "folder to open on startup (defaults to ROOT_DIRECTORY)")
	return cmd
}

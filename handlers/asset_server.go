package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/camden-git/photodesk/media"
)

const assetCacheDuration = 24 * time.Hour

// AssetServer serves generated assets out of store. Photos carry thumbnail
// paths relative to the storage root (e.g. "thumbnails/abc.jpg"), so the
// handler is mounted under routePrefix and the remainder of the request path
// is that relative path:
//
//	r.Get("/assets/*", AssetServer(store, "/api/assets/"))
func AssetServer(store media.Store, routePrefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		relativePath := strings.TrimPrefix(r.URL.Path, routePrefix)
		if relativePath == "" || relativePath == r.URL.Path || strings.Contains(relativePath, "..") {
			http.Error(w, "Invalid asset path", http.StatusBadRequest)
			return
		}

		file, info, err := store.Get(relativePath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				http.NotFound(w, r)
				return
			}
			log.Printf("SECURITY: Rejected asset request %s: %v", r.URL.Path, err)
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		defer file.Close()
		if info.IsDir() {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(assetCacheDuration.Seconds())))
		w.Header().Set("Expires", time.Now().Add(assetCacheDuration).Format(http.TimeFormat))

		if rs, ok := file.(io.ReadSeeker); ok {
			http.ServeContent(w, r, path.Base(relativePath), info.ModTime(), rs)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprint(info.Size()))
		if _, err := io.Copy(w, file); err != nil {
			log.Printf("Error streaming asset %s: %v", relativePath, err)
		}
	}
}

package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/camden-git/photodesk/database"
)

// walkFiles collects every regular file under root. Hidden entries and the
// store's own files are skipped; unreadable entries become scan errors.
func walkFiles(ctx context.Context, root string) ([]string, []ScanError, error) {
	var files []string
	var errs []ScanError

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			if path == root {
				return err
			}
			errs = append(errs, ScanError{Path: path, Op: "walk", Err: err})
			// Continue walking despite errors.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() || (filepath.Dir(path) == root && database.IsStoreFile(path)) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, errs, nil
}

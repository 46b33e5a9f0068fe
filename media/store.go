package media

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnknownAssetType is returned for an asset type the store was not configured with.
var ErrUnknownAssetType = errors.New("unknown asset type")

// Store keeps generated assets (thumbnails) outside the photo folders. Paths
// handed out and accepted are relative to the storage root and use forward
// slashes, e.g. "thumbnails/0f1e.jpg".
type Store interface {
	// Save stores data under the asset type's directory and returns the relative path.
	Save(assetType AssetType, filename string, data io.Reader) (string, error)
	// Get opens an asset for reading. Missing assets wrap os.ErrNotExist.
	Get(relativePath string) (io.ReadCloser, os.FileInfo, error)
	// Delete removes an asset. Deleting a missing asset is not an error.
	Delete(relativePath string) error
	// Exists reports whether an asset file is present.
	Exists(relativePath string) bool
	// GetFullPath returns the absolute filesystem path for a relative asset path.
	GetFullPath(relativePath string) (string, error)
}

// LocalStorage implements Store on the local filesystem, one directory per asset type.
type LocalStorage struct {
	basePath string
	dirs     map[AssetType]string // absolute directory per asset type
}

// NewLocalStorage creates the storage root and one directory per configured asset type.
func NewLocalStorage(basePath string, subDirs map[AssetType]string) (*LocalStorage, error) {
	absBasePath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid base storage path '%s': %w", basePath, err)
	}

	dirs := make(map[AssetType]string, len(subDirs))
	for assetType, subDir := range subDirs {
		dir := filepath.Join(absBasePath, subDir)
		if !within(absBasePath, dir) || dir == absBasePath {
			return nil, fmt.Errorf("invalid subdirectory configuration: '%s' resolves outside base path '%s'", subDir, absBasePath)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create asset directory '%s': %w", dir, err)
		}
		dirs[assetType] = dir
	}

	log.Printf("media.store: Initialized LocalStorage at %s", absBasePath)
	return &LocalStorage{basePath: absBasePath, dirs: dirs}, nil
}

// within reports whether path is base or lies below it.
func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Save writes data to <asset dir>/<filename>. A partially written file is removed on error.
func (ls *LocalStorage) Save(assetType AssetType, filename string, data io.Reader) (string, error) {
	dir, ok := ls.dirs[assetType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownAssetType, assetType)
	}
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid asset filename '%s'", filename)
	}
	fullSavePath := filepath.Join(dir, filename)

	outFile, err := os.Create(fullSavePath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file '%s': %w", fullSavePath, err)
	}
	if _, err = io.Copy(outFile, data); err != nil {
		outFile.Close()
		os.Remove(fullSavePath)
		return "", fmt.Errorf("failed to write data to '%s': %w", fullSavePath, err)
	}
	if err = outFile.Close(); err != nil {
		os.Remove(fullSavePath)
		return "", fmt.Errorf("failed to close '%s': %w", fullSavePath, err)
	}

	rel, err := filepath.Rel(ls.basePath, fullSavePath)
	if err != nil {
		return "", fmt.Errorf("internal error calculating relative path: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

func (ls *LocalStorage) Get(relativePath string) (io.ReadCloser, os.FileInfo, error) {
	fullPath, err := ls.GetFullPath(relativePath)
	if err != nil {
		return nil, nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open asset '%s': %w", relativePath, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("failed to stat asset '%s': %w", relativePath, err)
	}
	return file, info, nil
}

func (ls *LocalStorage) Delete(relativePath string) error {
	fullPath, err := ls.GetFullPath(relativePath)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete asset '%s': %w", relativePath, err)
	}
	log.Printf("media.store: Deleted asset %s", fullPath)
	return nil
}

func (ls *LocalStorage) Exists(relativePath string) bool {
	fullPath, err := ls.GetFullPath(relativePath)
	if err != nil {
		return false
	}
	info, err := os.Stat(fullPath)
	return err == nil && !info.IsDir()
}

// GetFullPath resolves a relative asset path and rejects anything outside the
// configured asset directories.
func (ls *LocalStorage) GetFullPath(relativePath string) (string, error) {
	if relativePath == "" || filepath.IsAbs(relativePath) {
		return "", fmt.Errorf("invalid path: access denied for '%s'", relativePath)
	}
	fullPath := filepath.Join(ls.basePath, filepath.FromSlash(relativePath))
	for _, dir := range ls.dirs {
		if within(dir, fullPath) && fullPath != dir {
			return fullPath, nil
		}
	}
	return "", fmt.Errorf("invalid path: access denied for '%s'", relativePath)
}

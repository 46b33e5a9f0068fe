package media

import (
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"
)

var supportedImageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true,
}

// raw camera formats need an external converter before they can be displayed
var rawExtensions = map[string]bool{
	".orf": true, ".nrw": true, ".heic": true, ".tiff": true, ".tif": true,
}

var videoExtensions = map[string]bool{
	".3gp": true, ".avi": true, ".mov": true, ".mp4": true, ".mts": true,
	".wav": true, ".wmv": true, ".m4v": true, ".webm": true, ".flv": true,
}

// Classify returns the media kind of a file by extension, case-insensitively.
// Anything that is neither raw nor video is treated as a plain image.
func Classify(filename string) Kind {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case rawExtensions[ext]:
		return KindRaw
	case videoExtensions[ext]:
		return KindVideo
	default:
		return KindImage
	}
}

// IsRasterImage checks if the filename has a common raster image extension
func IsRasterImage(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return supportedImageExtensions[ext]
}

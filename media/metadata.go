package media

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

// DateLayout is the format of photo dates stored in the library
const DateLayout = "2006-01-02"

// helper to safely get a string tag, trimming null terminators
func getString(exifData *exif.Exif, tagName exif.FieldName) *string {
	tag, err := exifData.Get(tagName)
	if err != nil || tag == nil {
		return nil
	}
	// val string might have null chars and quotes around it
	val := strings.Trim(strings.TrimRight(tag.String(), "\x00"), `"`)
	if val == "" {
		return nil
	}
	return &val
}

// GetImageMetadata extracts dimensions, camera and capture time using goexif.
// A file without EXIF is not an error; only the dimensions are returned then.
func GetImageMetadata(filePath string) (*Metadata, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("metadata: failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	var width, height *int
	if config, _, err := image.DecodeConfig(file); err == nil {
		w, h := config.Width, config.Height
		width = &w
		height = &h
	}

	if _, err = file.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("metadata: failed to seek file %s: %w", filePath, err)
	}

	exifData, err := exif.Decode(file)
	if err != nil {
		// not necessarily a fatal error, file might just lack EXIF data
		return &Metadata{Width: width, Height: height}, nil
	}

	meta := &Metadata{
		Width:       width,
		Height:      height,
		CameraMake:  getString(exifData, exif.Make),
		CameraModel: getString(exifData, exif.Model),
	}

	if dt, err := exifData.DateTime(); err == nil {
		ts := dt.Unix()
		meta.TakenAt = &ts
	}

	return meta, nil
}

// CaptureDate returns the EXIF capture date of an image formatted with
// DateLayout, or "" when the file carries none.
func CaptureDate(filePath string) string {
	meta, err := GetImageMetadata(filePath)
	if err != nil || meta.TakenAt == nil {
		return ""
	}
	return timeFromUnix(*meta.TakenAt).Format(DateLayout)
}

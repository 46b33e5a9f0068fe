package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"math"
	"os"
	"os/exec"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	ThumbnailJpegQuality   = 90
	ThumbnailFileExtension = ".jpg"

	// offset of the frame grabbed from videos
	videoFrameOffset = "00:00:01.00"
)

// Processor handles media transformations like thumbnailing and resizing. it
// relies on a Store implementation for saving the results and on external
// converters for formats the Go image decoders cannot read.
type Processor struct {
	store        Store
	magickBinary string
	ffmpegBinary string
}

func NewProcessor(store Store, magickBinary, ffmpegBinary string) *Processor {
	return &Processor{store: store, magickBinary: magickBinary, ffmpegBinary: ffmpegBinary}
}

// GenerateThumbnail creates a thumbnail where the longest side matches maxSize.
// saves the result using the Store. returns relative path to saved thumb or error.
func (p *Processor) GenerateThumbnail(originalImg image.Image, sourceName string, maxSize int) (string, error) {
	origBounds := originalImg.Bounds()
	origWidth := origBounds.Dx()
	origHeight := origBounds.Dy()
	if origWidth <= 0 || origHeight <= 0 {
		return "", fmt.Errorf("invalid original image dimensions: %dx%d", origWidth, origHeight)
	}

	var newWidth, newHeight int
	if origWidth > origHeight {
		if origWidth <= maxSize {
			newWidth, newHeight = origWidth, origHeight
		} else {
			newWidth = maxSize
			newHeight = int(math.Round(float64(origHeight) * (float64(maxSize) / float64(origWidth))))
		}
	} else {
		if origHeight <= maxSize {
			newWidth, newHeight = origWidth, origHeight
		} else {
			newHeight = maxSize
			newWidth = int(math.Round(float64(origWidth) * (float64(maxSize) / float64(origHeight))))
		}
	}
	newWidth = maxInt(1, newWidth)
	newHeight = maxInt(1, newHeight)

	thumb := imaging.Resize(originalImg, newWidth, newHeight, imaging.Lanczos)

	reader, writer := io.Pipe()

	go func() {
		defer writer.Close()
		err := imaging.Encode(writer, thumb, imaging.JPEG, imaging.JPEGQuality(ThumbnailJpegQuality))
		if err != nil {
			log.Printf("processor: Failed to encode thumbnail: %v", err)
			writer.CloseWithError(fmt.Errorf("thumbnail encoding failed: %w", err))
		}
	}()

	thumbUUID, err := uuid.NewRandom()
	if err != nil {
		reader.Close()
		return "", fmt.Errorf("failed to generate UUID for thumbnail: %w", err)
	}
	targetFilename := thumbUUID.String() + ThumbnailFileExtension

	savedRelPath, err := p.store.Save(AssetTypeThumbnail, targetFilename, reader)
	if err != nil {
		reader.Close()
		return "", fmt.Errorf("failed to save thumbnail via store: %w", err)
	}

	log.Printf("processor: Generated and saved thumbnail for %s at %s", sourceName, savedRelPath)
	return savedRelPath, nil
}

// ThumbnailFromFile derives a thumbnail for any supported media file. Raw
// images go through magick and videos through ffmpeg to get a decodable frame
// first.
func (p *Processor) ThumbnailFromFile(ctx context.Context, sourcePath string, kind Kind, maxSize int) (string, error) {
	decodable := sourcePath

	if kind != KindImage {
		tmp, err := os.CreateTemp("", "photodesk-frame-*"+ThumbnailFileExtension)
		if err != nil {
			return "", fmt.Errorf("failed to create temp file for %s: %w", sourcePath, err)
		}
		tmpPath := tmp.Name()
		tmp.Close()
		defer os.Remove(tmpPath)

		var cmd *exec.Cmd
		if kind == KindRaw {
			cmd = exec.CommandContext(ctx, p.magickBinary, sourcePath, tmpPath)
		} else {
			cmd = exec.CommandContext(ctx, p.ffmpegBinary, "-y", "-i", sourcePath, "-ss", videoFrameOffset, "-vframes", "1", tmpPath)
		}
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			return "", fmt.Errorf("%s failed for %s: %w: %s", cmd.Path, sourcePath, err, strings.TrimSpace(stderr.String()))
		}
		decodable = tmpPath
	}

	img, err := imaging.Open(decodable, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to open %s frame for %s: %w", kind, sourcePath, err)
	}
	return p.GenerateThumbnail(img, sourcePath, maxSize)
}

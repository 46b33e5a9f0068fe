package scanner

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"sort"

	"github.com/facette/natsort"
	"github.com/google/uuid"

	"github.com/camden-git/photodesk/database"
	"github.com/camden-git/photodesk/media"
	"github.com/camden-git/photodesk/workers"
)

// AssetURLPrefix is prepended to the escaped file name to build a photo's display path.
const AssetURLPrefix = "https://asset.localhost/"

// Thumbnailer renders thumbnails for a batch of files and waits for all of them.
type Thumbnailer interface {
	GenerateBatch(ctx context.Context, jobs []workers.ThumbnailJob) []workers.ThumbnailResult
}

type Options struct {
	// Thumbnailer is used for raw and video files. nil disables thumbnails.
	Thumbnailer Thumbnailer
	// ThumbnailExists reports whether a stored thumbnail is still present.
	// Missing ones are rendered again. nil trusts the stored paths.
	ThumbnailExists func(relativePath string) bool
	OnProgress      func(Progress)
	// NewID defaults to random UUIDs.
	NewID func() string
	// CaptureDate returns the initial date of a new plain image, "" when unknown.
	// Defaults to reading EXIF.
	CaptureDate func(path string) string
}

// Scanner reconciles the files of a folder with the photo rows of its store.
type Scanner struct {
	db   *sql.DB
	opts Options
}

func New(db *sql.DB, opts Options) *Scanner {
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.CaptureDate == nil {
		opts.CaptureDate = func(path string) string {
			if !media.IsRasterImage(path) {
				return ""
			}
			return media.CaptureDate(path)
		}
	}
	return &Scanner{db: db, opts: opts}
}

func (s *Scanner) hasThumbnail(p database.PhotoRecord) bool {
	if p.Thumbnail == "" {
		return false
	}
	return s.opts.ThumbnailExists == nil || s.opts.ThumbnailExists(p.Thumbnail)
}

// AssetURL returns the display path for a media file.
func AssetURL(name string) string {
	return AssetURLPrefix + url.PathEscape(name)
}

type thumbTarget struct {
	index int // position in reconciled
	isNew bool
}

// Scan walks root and matches every file against the stored rows. Files
// without a row get one; rows without a file are reported as deleted but
// kept. Only failures that prevent the scan as a whole are returned as error.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	tracker := NewProgressTracker(s.opts.OnProgress)
	res := &Result{Deleted: []string{}}

	stored, badRows, err := database.ListPhotos(s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored photos: %w", err)
	}
	for _, rowErr := range badRows {
		res.Errors = append(res.Errors, ScanError{Op: "load", Err: rowErr})
	}
	existing := make(map[string]database.PhotoRecord, len(stored))
	for _, p := range stored {
		existing[p.Name] = p
	}

	tracker.SetPhase(PhaseWalking, 0)
	files, walkErrs, err := walkFiles(ctx, root)
	if err != nil {
		return nil, err
	}
	res.Errors = append(res.Errors, walkErrs...)

	tracker.SetPhase(PhaseMatching, len(files))
	var reconciled []database.PhotoRecord
	var fresh []bool
	var jobs []workers.ThumbnailJob
	var targets []thumbTarget
	for _, name := range files {
		if p, ok := existing[name]; ok {
			delete(existing, name)
			reconciled = append(reconciled, p)
			fresh = append(fresh, false)
			res.Matched++
			if (p.Raw || p.Video) && !s.hasThumbnail(p) {
				jobs = append(jobs, workers.ThumbnailJob{SourcePath: name, Kind: kindOf(p)})
				targets = append(targets, thumbTarget{index: len(reconciled) - 1})
			}
		} else {
			p := s.newPhoto(name)
			reconciled = append(reconciled, p)
			fresh = append(fresh, true)
			if p.Raw || p.Video {
				jobs = append(jobs, workers.ThumbnailJob{SourcePath: name, Kind: kindOf(p)})
				targets = append(targets, thumbTarget{index: len(reconciled) - 1, isNew: true})
			}
		}
		tracker.Increment()
	}

	if s.opts.Thumbnailer != nil && len(jobs) > 0 {
		tracker.SetPhase(PhaseThumbnails, len(jobs))
		results := s.opts.Thumbnailer.GenerateBatch(ctx, jobs)
		for i, r := range results {
			t := targets[i]
			p := &reconciled[t.index]
			thumb := r.ThumbnailPath
			if r.Err != nil {
				res.Errors = append(res.Errors, ScanError{Path: r.SourcePath, Op: "thumbnail", Err: r.Err})
				thumb = ""
			}
			// a failed re-render drops the path of the asset that went missing
			if thumb != p.Thumbnail {
				p.Thumbnail = thumb
				if !t.isNew {
					if err := database.SetPhotoColumn(s.db, p.ID, database.ColumnThumbnail, thumb); err != nil {
						res.Errors = append(res.Errors, ScanError{Path: r.SourcePath, Op: "thumbnail", Err: err})
					}
				}
			}
			tracker.Increment()
		}
	}

	tracker.SetPhase(PhaseSaving, len(reconciled)-res.Matched)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for new photos: %w", err)
	}
	defer tx.Rollback()

	kept := reconciled[:0]
	for i, p := range reconciled {
		if fresh[i] {
			err := database.InsertPhoto(tx, p)
			tracker.Increment()
			if err != nil {
				res.Errors = append(res.Errors, ScanError{Path: p.Name, Op: "insert", Err: err})
				continue
			}
			res.Added++
		}
		kept = append(kept, p)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit new photos: %w", err)
	}
	reconciled = kept

	for name := range existing {
		res.Deleted = append(res.Deleted, name)
	}
	sort.Strings(res.Deleted)

	sort.SliceStable(reconciled, func(i, j int) bool {
		return natsort.Compare(reconciled[i].Name, reconciled[j].Name)
	})
	res.Photos = reconciled

	tracker.SetPhase(PhaseDone, 0)
	log.Printf("scanner: %s reconciled, %d matched, %d added, %d deleted, %d errors",
		root, res.Matched, res.Added, len(res.Deleted), len(res.Errors))
	return res, nil
}

func (s *Scanner) newPhoto(name string) database.PhotoRecord {
	kind := media.Classify(name)
	p := database.PhotoRecord{
		ID:     s.opts.NewID(),
		Name:   name,
		Path:   AssetURL(name),
		Title:  filepath.Base(name),
		Raw:    kind == media.KindRaw,
		Video:  kind == media.KindVideo,
		Tags:   []string{},
		People: []string{},
	}
	if kind == media.KindImage {
		p.Date = s.opts.CaptureDate(name)
	}
	return p
}

func kindOf(p database.PhotoRecord) media.Kind {
	switch {
	case p.Raw:
		return media.KindRaw
	case p.Video:
		return media.KindVideo
	default:
		return media.KindImage
	}
}

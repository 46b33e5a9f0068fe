package catalog

import (
	"database/sql"
	"log"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/camden-git/photodesk/media"
	"github.com/camden-git/photodesk/repository"
	"github.com/camden-git/photodesk/scanner"
	"github.com/camden-git/photodesk/workers"
)

// ThumbnailQueue renders thumbnails in batches during a scan and one at a
// time on request.
type ThumbnailQueue interface {
	scanner.Thumbnailer
	QueueJob(job workers.ThumbnailJob) bool
}

type Options struct {
	// Thumbnails renders raw and video previews. nil disables them.
	Thumbnails ThumbnailQueue
	// Assets holds generated thumbnails. Thumbnails missing from it are
	// rendered again on open and removed photos take theirs with them.
	Assets     media.Store
	OnProgress func(scanner.Progress)
	// OnThumbnail receives a photo whose queued thumbnail was stored. It runs
	// with the store locked and must not call back into the Library.
	OnThumbnail func(Photo)
	// DBLogLevel is passed to the GORM logger.
	DBLogLevel string
	NewID      func() string
	// CaptureDate overrides the EXIF date lookup for new photos.
	CaptureDate func(path string) string
}

// Library is the state of one open photo folder: the store handles and the
// aggregate cache built from it.
//
// Locks are always taken in this order: storeMu, photosMu, tagsMu, peopleMu,
// camerasMu, placesMu. Every command touching the store holds storeMu for its
// whole duration, so commands never interleave their writes.
type Library struct {
	opts Options

	storeMu sync.Mutex
	folder  string
	db      *sql.DB
	gormDB  *gorm.DB
	records *repository.Repositories

	photosMu sync.RWMutex
	photos   map[string]*Photo
	active   []string
	groups   map[string]map[string]struct{}

	tagsMu sync.RWMutex
	tags   map[string]*Tag

	peopleMu sync.RWMutex
	people   map[string]*Person

	camerasMu sync.RWMutex
	cameras   map[string]*Camera

	placesMu sync.RWMutex
	places   map[string]*Place
}

func New(opts Options) *Library {
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.DBLogLevel == "" {
		opts.DBLogLevel = "warn"
	}
	return &Library{
		opts:    opts,
		photos:  map[string]*Photo{},
		active:  []string{},
		groups:  map[string]map[string]struct{}{},
		tags:    map[string]*Tag{},
		people:  map[string]*Person{},
		cameras: map[string]*Camera{},
		places:  map[string]*Place{},
	}
}

// Folder returns the open folder, "" when none.
func (l *Library) Folder() string {
	l.storeMu.Lock()
	defer l.storeMu.Unlock()
	return l.folder
}

// Close releases the store of the open folder.
func (l *Library) Close() error {
	l.storeMu.Lock()
	defer l.storeMu.Unlock()
	return l.closeStoreLocked()
}

func (l *Library) closeStoreLocked() error {
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	if err != nil {
		log.Printf("catalog: failed to close store of %s: %v", l.folder, err)
	}
	l.db, l.gormDB, l.records, l.folder = nil, nil, nil, ""
	return err
}

// lockStore takes the store lock and fails when no folder is open.
func (l *Library) lockStore() error {
	l.storeMu.Lock()
	if l.db == nil {
		l.storeMu.Unlock()
		return ErrNoFolder
	}
	return nil
}

// lockCache takes every cache lock for writing, in order.
func (l *Library) lockCache() {
	l.photosMu.Lock()
	l.tagsMu.Lock()
	l.peopleMu.Lock()
	l.camerasMu.Lock()
	l.placesMu.Lock()
}

func (l *Library) unlockCache() {
	l.placesMu.Unlock()
	l.camerasMu.Unlock()
	l.peopleMu.Unlock()
	l.tagsMu.Unlock()
	l.photosMu.Unlock()
}

// Photo returns a copy of a cached photo.
func (l *Library) Photo(id string) (Photo, error) {
	l.photosMu.RLock()
	defer l.photosMu.RUnlock()
	p, ok := l.photos[id]
	if !ok {
		return Photo{}, notFound("photo", id)
	}
	return *p, nil
}

// GroupMembers returns the ids of the cached photos in a group.
func (l *Library) GroupMembers(group string) []string {
	l.photosMu.RLock()
	defer l.photosMu.RUnlock()
	return sortedMembers(l.photos, l.groups[group], "")
}

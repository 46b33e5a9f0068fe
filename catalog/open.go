package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gorm.io/gorm"

	"github.com/camden-git/photodesk/database"
	"github.com/camden-git/photodesk/models"
	"github.com/camden-git/photodesk/repository"
	"github.com/camden-git/photodesk/scanner"
)

// PhotoManagerVersion is the store layout version this build writes.
const PhotoManagerVersion = 1

const versionSetting = "version"

// OpenFolderResponse is everything the UI needs after a folder is opened.
type OpenFolderResponse struct {
	Deleted          []string                `json:"deleted"`
	Tags             map[string]Tag          `json:"tags"`
	PersonCategories []models.PersonCategory `json:"person_categories"`
	Groups           []models.Group          `json:"groups"`
	Layers           []models.Layer          `json:"layers"`
	Shapes           []models.Shape          `json:"shapes"`
	Activities       []models.Activity       `json:"activities"`
	Settings         []models.Setting        `json:"settings"`
	Journals         []models.Journal        `json:"journals"`
	WikiPages        []models.WikiPage       `json:"wiki_pages"`
	PhotoCount       int                     `json:"photo_count"`
	ScanErrors       []scanner.ScanError     `json:"scan_errors"`
	NeedsUpgrade     bool                    `json:"needs_upgrade"`
}

// cacheState is the aggregate cache of one folder, built before it replaces
// the live one.
type cacheState struct {
	photos  map[string]*Photo
	active  []string
	groups  map[string]map[string]struct{}
	tags    map[string]*Tag
	people  map[string]*Person
	cameras map[string]*Camera
	places  map[string]*Place
}

// OpenFolder opens (creating when needed) the store of folder, reconciles it
// with the files on disk and rebuilds the aggregate cache. On failure the
// previously open folder stays open.
func (l *Library) OpenFolder(ctx context.Context, folder string) (*OpenFolderResponse, error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve folder %s: %w", folder, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open folder %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, invalid("%s is not a directory", abs)
	}

	l.storeMu.Lock()
	defer l.storeMu.Unlock()

	db, err := database.InitDB(database.StorePath(abs))
	if err != nil {
		return nil, err
	}
	resp, gormDB, records, state, err := l.loadFolder(ctx, db, abs)
	if err != nil {
		db.Close()
		return nil, err
	}

	l.closeStoreLocked()
	l.lockCache()
	l.folder, l.db, l.gormDB, l.records = abs, db, gormDB, records
	l.photos, l.active, l.groups = state.photos, state.active, state.groups
	l.tags, l.people, l.cameras, l.places = state.tags, state.people, state.cameras, state.places
	l.unlockCache()

	log.Printf("catalog: opened %s with %d photos, %d deleted, %d scan errors",
		abs, resp.PhotoCount, len(resp.Deleted), len(resp.ScanErrors))
	return resp, nil
}

func (l *Library) loadFolder(ctx context.Context, db *sql.DB, folder string) (*OpenFolderResponse, *gorm.DB, *repository.Repositories, *cacheState, error) {
	gormDB, err := database.InitGormDB(db, l.opts.DBLogLevel)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if err := database.AutoMigrateModels(gormDB); err != nil {
		return nil, nil, nil, nil, err
	}
	records := repository.New(gormDB)

	var thumbs scanner.Thumbnailer
	if l.opts.Thumbnails != nil {
		thumbs = l.opts.Thumbnails
	}
	var thumbExists func(string) bool
	if l.opts.Assets != nil {
		thumbExists = l.opts.Assets.Exists
	}
	res, err := scanner.New(db, scanner.Options{
		Thumbnailer:     thumbs,
		ThumbnailExists: thumbExists,
		OnProgress:      l.opts.OnProgress,
		NewID:           l.opts.NewID,
		CaptureDate:     l.opts.CaptureDate,
	}).Scan(ctx, folder)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	state, seedErrs, err := l.buildCache(db, res.Photos)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	resp := &OpenFolderResponse{
		Deleted:    res.Deleted,
		Tags:       make(map[string]Tag, len(state.tags)),
		PhotoCount: len(state.photos),
		ScanErrors: append(nonNilErrors(res.Errors), seedErrs...),
	}
	for name, t := range state.tags {
		resp.Tags[name] = *t
	}
	if err := loadRecords(records, resp); err != nil {
		return nil, nil, nil, nil, err
	}
	return resp, gormDB, records, state, nil
}

func nonNilErrors(errs []scanner.ScanError) []scanner.ScanError {
	if errs == nil {
		return []scanner.ScanError{}
	}
	return errs
}

// buildCache seeds zero counts from the entity tables and counts every
// reconciled photo. Tags used by photos but missing from the tag table are
// created; unknown people, cameras and places are reported and not counted.
func (l *Library) buildCache(db *sql.DB, records []database.PhotoRecord) (*cacheState, []scanner.ScanError, error) {
	state := &cacheState{
		photos:  make(map[string]*Photo, len(records)),
		active:  make([]string, 0, len(records)),
		groups:  map[string]map[string]struct{}{},
		tags:    map[string]*Tag{},
		people:  map[string]*Person{},
		cameras: map[string]*Camera{},
		places:  map[string]*Place{},
	}

	tagRows, err := database.ListTags(db)
	if err != nil {
		return nil, nil, err
	}
	for _, r := range tagRows {
		state.tags[r.Name] = tagFromRecord(r)
	}
	peopleRows, err := database.ListPeople(db)
	if err != nil {
		return nil, nil, err
	}
	for _, r := range peopleRows {
		state.people[r.ID] = personFromRecord(r)
	}
	cameraRows, err := database.ListCameras(db)
	if err != nil {
		return nil, nil, err
	}
	for _, r := range cameraRows {
		state.cameras[r.ID] = &Camera{ID: r.ID, Name: r.Name}
	}
	placeRows, err := database.ListPlaces(db)
	if err != nil {
		return nil, nil, err
	}
	for _, r := range placeRows {
		state.places[r.ID] = placeFromRecord(r)
	}

	var created []*Tag
	var seedErrs []scanner.ScanError
	for _, rec := range records {
		p := photoFromRecord(rec)
		for _, name := range p.Tags {
			if _, ok := state.tags[name]; !ok {
				t := &Tag{ID: l.opts.NewID(), Name: name, Prereqs: []string{}, Coreqs: []string{}, Incompatible: []string{}}
				state.tags[name] = t
				created = append(created, t)
			}
		}
		seedErrs = append(seedErrs, unknownRefs(state, &p)...)
		state.photos[p.ID] = &p
		state.active = append(state.active, p.ID)
		if p.Group != "" {
			set, ok := state.groups[p.Group]
			if !ok {
				set = map[string]struct{}{}
				state.groups[p.Group] = set
			}
			set[p.ID] = struct{}{}
		}
	}

	if len(created) > 0 {
		tx, err := db.Begin()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to begin transaction for synthesized tags: %w", err)
		}
		for _, t := range created {
			if err := database.InsertTag(tx, t.record()); err != nil {
				tx.Rollback()
				return nil, nil, err
			}
		}
		if err := tx.Commit(); err != nil {
			return nil, nil, fmt.Errorf("failed to commit synthesized tags: %w", err)
		}
		log.Printf("catalog: created %d tag(s) referenced by photos", len(created))
	}

	// counting reuses the live routines on a detached library value
	seed := &Library{tags: state.tags, people: state.people, cameras: state.cameras, places: state.places}
	for _, id := range state.active {
		p := state.photos[id]
		seed.seedCounts(p)
		seed.validatePhoto(p)
	}
	return state, seedErrs, nil
}

func unknownRefs(state *cacheState, p *Photo) []scanner.ScanError {
	var errs []scanner.ScanError
	report := func(kind, id string) {
		errs = append(errs, scanner.ScanError{Path: p.Name, Op: "seed", Err: notFound(kind, id)})
	}
	if p.Photographer != "" {
		if _, ok := state.people[p.Photographer]; !ok {
			report("person", p.Photographer)
		}
	}
	for _, id := range p.People {
		if _, ok := state.people[id]; !ok {
			report("person", id)
		}
	}
	if p.Camera != "" {
		if _, ok := state.cameras[p.Camera]; !ok {
			report("camera", p.Camera)
		}
	}
	if p.Location != "" {
		if _, ok := state.places[p.Location]; !ok {
			report("place", p.Location)
		}
	}
	return errs
}

// loadRecords fills the pass-through records of the response and records the
// store version, flagging stores written by an older layout.
func loadRecords(r *repository.Repositories, resp *OpenFolderResponse) error {
	var err error
	if resp.PersonCategories, err = r.PersonCategories.ListAll(); err != nil {
		return err
	}
	if resp.Groups, err = r.Groups.ListAll(); err != nil {
		return err
	}
	if resp.Layers, err = r.Layers.ListAll(); err != nil {
		return err
	}
	if resp.Shapes, err = r.Layers.ListShapes(); err != nil {
		return err
	}
	if resp.Activities, err = r.Journals.ListActivities(); err != nil {
		return err
	}
	if resp.Journals, err = r.Journals.ListAll(); err != nil {
		return err
	}
	if resp.WikiPages, err = r.Wiki.ListAll(); err != nil {
		return err
	}

	version, err := r.Settings.Get(versionSetting)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if _, err = r.Settings.Set(versionSetting, PhotoManagerVersion); err != nil {
			return err
		}
	case err != nil:
		return err
	case version.Value < PhotoManagerVersion:
		log.Printf("catalog: store version %d is older than %d, upgrade needed", version.Value, PhotoManagerVersion)
		resp.NeedsUpgrade = true
	}

	resp.Settings, err = r.Settings.ListAll()
	return err
}

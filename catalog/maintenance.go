package catalog

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/facette/natsort"
	"golang.org/x/crypto/blake2b"

	"github.com/camden-git/photodesk/database"
	"github.com/camden-git/photodesk/media"
	"github.com/camden-git/photodesk/repository"
	"github.com/camden-git/photodesk/workers"
)

// RemoveDeleted purges the rows of files reported deleted by OpenFolder,
// together with their thumbnails. Names of photos still on disk are ignored.
func (l *Library) RemoveDeleted(names []string) (int, error) {
	if err := l.lockStore(); err != nil {
		return 0, err
	}
	defer l.storeMu.Unlock()

	l.photosMu.RLock()
	onDisk := make(map[string]bool, len(l.photos))
	for _, p := range l.photos {
		onDisk[p.Name] = true
	}
	l.photosMu.RUnlock()

	gone := make([]string, 0, len(names))
	for _, name := range uniqueStrings(names) {
		if onDisk[name] {
			log.Printf("catalog: not removing %s, the file still exists", name)
			continue
		}
		gone = append(gone, name)
	}

	thumbnails, n, err := database.DeletePhotosByName(l.db, gone)
	if err != nil {
		return 0, err
	}
	if l.opts.Assets != nil {
		for _, thumb := range thumbnails {
			if err := l.opts.Assets.Delete(thumb); err != nil {
				log.Printf("catalog: failed to delete thumbnail %s: %v", thumb, err)
			}
		}
	}
	log.Printf("catalog: removed %d deleted photo(s)", n)
	return int(n), nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// DetectDuplicates hashes every cached file and marks each copy after the
// first (in natural name order) as a duplicate. Hashed photos that are no
// longer a later copy lose the mark. It returns the sets of identical files;
// unreadable files are skipped and keep their flag.
func (l *Library) DetectDuplicates() ([][]string, error) {
	if err := l.lockStore(); err != nil {
		return nil, err
	}
	defer l.storeMu.Unlock()

	l.photosMu.RLock()
	type entry struct{ id, name string }
	entries := make([]entry, 0, len(l.photos))
	for id, p := range l.photos {
		entries = append(entries, entry{id, p.Name})
	}
	l.photosMu.RUnlock()
	sort.Slice(entries, func(i, j int) bool { return natsort.Compare(entries[i].name, entries[j].name) })

	byHash := map[string][]entry{}
	var order []string
	hashed := map[string]bool{}
	for _, e := range entries {
		sum, err := hashFile(e.name)
		if err != nil {
			log.Printf("catalog: skipping %s in duplicate detection: %v", e.name, err)
			continue
		}
		hashed[e.id] = true
		if _, seen := byHash[sum]; !seen {
			order = append(order, sum)
		}
		byHash[sum] = append(byHash[sum], e)
	}

	sets := [][]string{}
	copies := map[string]bool{}
	for _, sum := range order {
		group := byHash[sum]
		if len(group) < 2 {
			continue
		}
		set := make([]string, len(group))
		for i, e := range group {
			set[i] = e.name
			if i > 0 {
				copies[e.id] = true
			}
		}
		sets = append(sets, set)
	}

	l.photosMu.Lock()
	defer l.photosMu.Unlock()

	// flags of hashed photos follow the current sets; skipped files keep theirs
	changed := map[string]bool{}
	for id := range hashed {
		p, ok := l.photos[id]
		if ok && p.IsDuplicate != copies[id] {
			changed[id] = copies[id]
		}
	}
	if len(changed) == 0 {
		return sets, nil
	}

	tx, err := l.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for duplicates: %w", err)
	}
	defer tx.Rollback()
	for id, dup := range changed {
		flag := 0
		if dup {
			flag = 1
		}
		if err := database.SetPhotoColumn(tx, id, database.ColumnIsDuplicate, flag); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit duplicates: %w", err)
	}
	for id, dup := range changed {
		l.photos[id].IsDuplicate = dup
	}
	log.Printf("catalog: %d duplicate set(s), %d copies, %d flag(s) changed", len(sets), len(copies), len(changed))
	return sets, nil
}

// WithRecords runs fn against the record repositories of the open folder
// while holding the store lock.
func (l *Library) WithRecords(fn func(r *repository.Repositories) error) error {
	if err := l.lockStore(); err != nil {
		return err
	}
	defer l.storeMu.Unlock()
	return fn(l.records)
}

// QueueThumbnail asks the thumbnail pool to (re)render a photo's preview. The
// photo row and cache are updated when the job finishes. It returns false
// when the job was not queued.
func (l *Library) QueueThumbnail(photoID string) (bool, error) {
	if l.opts.Thumbnails == nil {
		return false, invalid("thumbnail generation is disabled")
	}
	folder := l.Folder()
	if folder == "" {
		return false, ErrNoFolder
	}
	p, err := l.Photo(photoID)
	if err != nil {
		return false, err
	}

	kind := media.KindImage
	switch {
	case p.Raw:
		kind = media.KindRaw
	case p.Video:
		kind = media.KindVideo
	}
	return l.opts.Thumbnails.QueueJob(workers.ThumbnailJob{
		SourcePath: p.Name,
		Kind:       kind,
		Done: func(res workers.ThumbnailResult) {
			if res.Err != nil {
				log.Printf("catalog: thumbnail for %s failed: %v", res.SourcePath, res.Err)
				return
			}
			// OpenFolder waits on the same pool while holding the store lock,
			// so the worker must not block on it.
			go func() {
				if err := l.setThumbnail(folder, photoID, res.ThumbnailPath); err != nil {
					log.Printf("catalog: failed to store thumbnail for %s: %v", res.SourcePath, err)
				}
			}()
		},
	}), nil
}

func (l *Library) setThumbnail(folder, photoID, thumbnail string) error {
	if err := l.lockStore(); err != nil {
		return err
	}
	defer l.storeMu.Unlock()
	if l.folder != folder {
		return fmt.Errorf("folder %s was closed", folder)
	}
	l.photosMu.Lock()
	defer l.photosMu.Unlock()

	if err := database.SetPhotoColumn(l.db, photoID, database.ColumnThumbnail, thumbnail); err != nil {
		return err
	}
	p, ok := l.photos[photoID]
	if !ok {
		return nil
	}
	old := p.Thumbnail
	p.Thumbnail = thumbnail
	if old != "" && old != thumbnail && l.opts.Assets != nil {
		if err := l.opts.Assets.Delete(old); err != nil {
			log.Printf("catalog: failed to delete old thumbnail %s: %v", old, err)
		}
	}
	if l.opts.OnThumbnail != nil {
		l.opts.OnThumbnail(*p)
	}
	return nil
}

package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/camden-git/photodesk/database"
)

// Tags returns a copy of every known tag with its usage count, by name.
func (l *Library) Tags() map[string]Tag {
	l.tagsMu.RLock()
	defer l.tagsMu.RUnlock()
	out := make(map[string]Tag, len(l.tags))
	for name, t := range l.tags {
		out[name] = *t
	}
	return out
}

// CreateTag adds an unused tag.
func (l *Library) CreateTag(name, color string) (Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Tag{}, invalid("tag name must not be empty")
	}
	if err := l.lockStore(); err != nil {
		return Tag{}, err
	}
	defer l.storeMu.Unlock()
	l.tagsMu.Lock()
	defer l.tagsMu.Unlock()

	if _, ok := l.tags[name]; ok {
		return Tag{}, &EntityError{Kind: "tag", ID: name, Err: ErrExists}
	}
	t := &Tag{ID: l.opts.NewID(), Name: name, Color: color, Prereqs: []string{}, Coreqs: []string{}, Incompatible: []string{}}
	if err := database.InsertTag(l.db, t.record()); err != nil {
		return Tag{}, err
	}
	l.tags[name] = t
	return *t, nil
}

func (l *Library) SetTagColor(name, color string) (Tag, error) {
	if err := l.lockStore(); err != nil {
		return Tag{}, err
	}
	defer l.storeMu.Unlock()
	l.tagsMu.Lock()
	defer l.tagsMu.Unlock()

	t, ok := l.tags[name]
	if !ok {
		return Tag{}, notFound("tag", name)
	}
	if err := database.SetTagColor(l.db, name, color); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Tag{}, notFound("tag", name)
		}
		return Tag{}, err
	}
	t.Color = color
	return *t, nil
}

func (l *Library) SetTagPrereqs(name string, prereqs []string) (Tag, error) {
	return l.SetTagRelations(name, database.RelationPrereq, prereqs)
}

func (l *Library) SetTagCoreqs(name string, coreqs []string) (Tag, error) {
	return l.SetTagRelations(name, database.RelationCoreq, coreqs)
}

func (l *Library) SetTagIncompatible(name string, incompatible []string) (Tag, error) {
	return l.SetTagRelations(name, database.RelationIncompatible, incompatible)
}

// SetTagRelations replaces one rule list of a tag and re-validates every
// cached photo carrying it. Targets need not exist as tags and may name
// the tag itself.
func (l *Library) SetTagRelations(name string, kind database.RelationKind, targets []string) (Tag, error) {
	switch kind {
	case database.RelationPrereq, database.RelationCoreq, database.RelationIncompatible:
	default:
		return Tag{}, invalid("unknown tag relation %q", kind)
	}
	list := uniqueStrings(targets)

	if err := l.lockStore(); err != nil {
		return Tag{}, err
	}
	defer l.storeMu.Unlock()
	l.photosMu.Lock()
	defer l.photosMu.Unlock()
	l.tagsMu.Lock()
	defer l.tagsMu.Unlock()

	t, ok := l.tags[name]
	if !ok {
		return Tag{}, notFound("tag", name)
	}

	tx, err := l.db.Begin()
	if err != nil {
		return Tag{}, fmt.Errorf("failed to begin transaction for tag relations: %w", err)
	}
	defer tx.Rollback()
	if err := database.SetTagRelations(tx, name, kind, list); err != nil {
		return Tag{}, err
	}
	if err := tx.Commit(); err != nil {
		return Tag{}, fmt.Errorf("failed to commit tag relations: %w", err)
	}

	switch kind {
	case database.RelationPrereq:
		t.Prereqs = list
	case database.RelationCoreq:
		t.Coreqs = list
	case database.RelationIncompatible:
		t.Incompatible = list
	}

	for _, p := range l.photos {
		if contains(p.Tags, name) {
			l.validatePhoto(p)
		}
	}
	return *t, nil
}

// TagStats summarizes tagging across the cached photos.
type TagStats struct {
	AvgCount  float64 `json:"avg_count"`
	AvgRating float64 `json:"avg_rating"`
}

// TagStats returns the average number of tags and the average rating per
// cached photo, zero for an empty library.
func (l *Library) TagStats() TagStats {
	l.photosMu.RLock()
	defer l.photosMu.RUnlock()
	if len(l.photos) == 0 {
		return TagStats{}
	}
	var tags, rating int
	for _, p := range l.photos {
		tags += len(p.Tags)
		rating += p.Rating
	}
	n := float64(len(l.photos))
	return TagStats{AvgCount: float64(tags) / n, AvgRating: float64(rating) / n}
}

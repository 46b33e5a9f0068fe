package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/camden-git/photodesk/database"
)

type photoChange struct {
	old  Photo
	next Photo
}

// loadPhotoLocked reads the persisted row of a photo. Caller holds storeMu.
func (l *Library) loadPhotoLocked(id string) (Photo, error) {
	rec, err := database.GetPhoto(l.db, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Photo{}, notFound("photo", id)
		}
		return Photo{}, err
	}
	return photoFromRecord(rec), nil
}

// loadTargetsLocked returns the photo followed by the other cached members of
// its group when propagate is set. Caller holds storeMu and photosMu.
func (l *Library) loadTargetsLocked(id string, propagate bool) ([]Photo, error) {
	p, err := l.loadPhotoLocked(id)
	if err != nil {
		return nil, err
	}
	targets := []Photo{p}
	if !propagate || p.Group == "" {
		return targets, nil
	}

	members, err := l.loadPhotosLocked(sortedMembers(l.photos, l.groups[p.Group], id))
	if err != nil {
		return nil, err
	}
	return append(targets, members...), nil
}

// loadPhotosLocked reads persisted rows in the order of ids. Rows that no
// longer exist are left out. Caller holds storeMu.
func (l *Library) loadPhotosLocked(ids []string) ([]Photo, error) {
	recs, err := database.GetPhotosByIDs(l.db, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]database.PhotoRecord, len(recs))
	for _, rec := range recs {
		byID[rec.ID] = rec
	}
	out := make([]Photo, 0, len(recs))
	for _, id := range ids {
		if rec, ok := byID[id]; ok {
			out = append(out, photoFromRecord(rec))
		}
	}
	return out, nil
}

// commitLocked checks the count changes of every change, writes all rows in
// one transaction and only then updates the cache. Unknown tags referenced by
// the new values are created in the same transaction. Caller holds storeMu
// and every cache lock.
func (l *Library) commitLocked(changes []photoChange) error {
	delta := newCountDelta()
	var newTags []string
	pending := map[string]bool{}
	for i := range changes {
		c := &changes[i]
		if _, cached := l.photos[c.old.ID]; cached {
			delta.photo(&c.old, &c.next)
		}
		for _, name := range c.next.Tags {
			if _, ok := l.tags[name]; !ok && !pending[name] {
				pending[name] = true
				newTags = append(newTags, name)
			}
		}
	}
	if err := l.checkDelta(delta); err != nil {
		return err
	}

	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for photo update: %w", err)
	}
	defer tx.Rollback()

	created := make([]*Tag, 0, len(newTags))
	for _, name := range newTags {
		t := &Tag{ID: l.opts.NewID(), Name: name, Prereqs: []string{}, Coreqs: []string{}, Incompatible: []string{}}
		if err := database.InsertTag(tx, t.record()); err != nil {
			return err
		}
		created = append(created, t)
	}
	for _, c := range changes {
		if err := database.UpdatePhoto(tx, c.next.record()); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("photo", c.next.ID)
			}
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit photo update: %w", err)
	}

	for _, t := range created {
		l.tags[t.Name] = t
	}
	l.applyDelta(delta)
	for _, c := range changes {
		if p, ok := l.photos[c.next.ID]; ok {
			*p = c.next
			l.validatePhoto(p)
		}
	}
	return nil
}

// updatePhotos applies change to the photo (and its group when propagate is
// set) and returns the updated photos, the requested one first.
func (l *Library) updatePhotos(id string, propagate bool, change func(p *Photo) error) ([]Photo, error) {
	if err := l.lockStore(); err != nil {
		return nil, err
	}
	defer l.storeMu.Unlock()
	l.lockCache()
	defer l.unlockCache()

	targets, err := l.loadTargetsLocked(id, propagate)
	if err != nil {
		return nil, err
	}

	changes := make([]photoChange, len(targets))
	for i, old := range targets {
		next := old
		if err := change(&next); err != nil {
			return nil, err
		}
		changes[i] = photoChange{old: old, next: next}
	}
	if err := l.commitLocked(changes); err != nil {
		return nil, err
	}

	out := make([]Photo, len(changes))
	for i, c := range changes {
		if p, ok := l.photos[c.next.ID]; ok {
			out[i] = *p
		} else {
			out[i] = c.next
			validated := ValidateTags(l.tags, c.next.Tags)
			out[i].ValidTags, out[i].ValidationMsg = validated.IsValid, validated.Message
		}
	}
	return out, nil
}

// requirePerson etc. run inside change funcs, with the cache locks held.
func (l *Library) requirePerson(id string) error {
	if id == "" {
		return nil
	}
	if _, ok := l.people[id]; !ok {
		return notFound("person", id)
	}
	return nil
}

func (l *Library) requireCamera(id string) error {
	if id == "" {
		return nil
	}
	if _, ok := l.cameras[id]; !ok {
		return notFound("camera", id)
	}
	return nil
}

func (l *Library) requirePlace(id string) error {
	if id == "" {
		return nil
	}
	if _, ok := l.places[id]; !ok {
		return notFound("place", id)
	}
	return nil
}

// SetPhotographer sets the photographer of a photo and its group. "" clears it.
func (l *Library) SetPhotographer(photoID, personID string) ([]Photo, error) {
	return l.updatePhotos(photoID, true, func(p *Photo) error {
		if err := l.requirePerson(personID); err != nil {
			return err
		}
		p.Photographer = personID
		return nil
	})
}

// SetCamera sets the camera of a photo and its group. "" clears it.
func (l *Library) SetCamera(photoID, cameraID string) ([]Photo, error) {
	return l.updatePhotos(photoID, true, func(p *Photo) error {
		if err := l.requireCamera(cameraID); err != nil {
			return err
		}
		p.Camera = cameraID
		return nil
	})
}

// SetLocation sets the place of a photo and its group. "" clears it.
func (l *Library) SetLocation(photoID, placeID string) ([]Photo, error) {
	return l.updatePhotos(photoID, true, func(p *Photo) error {
		if err := l.requirePlace(placeID); err != nil {
			return err
		}
		p.Location = placeID
		return nil
	})
}

// SetPeople replaces the people of a photo and its group.
func (l *Library) SetPeople(photoID string, personIDs []string) ([]Photo, error) {
	people := uniqueStrings(personIDs)
	return l.updatePhotos(photoID, true, func(p *Photo) error {
		for _, id := range people {
			if err := l.requirePerson(id); err != nil {
				return err
			}
		}
		p.People = people
		return nil
	})
}

// SetTags replaces the tags of a photo and its group. Tags that do not exist
// yet are created.
func (l *Library) SetTags(photoID string, tags []string) ([]Photo, error) {
	trimmed := make([]string, len(tags))
	for i, t := range tags {
		trimmed[i] = strings.TrimSpace(t)
	}
	names := uniqueStrings(trimmed)
	return l.updatePhotos(photoID, true, func(p *Photo) error {
		p.Tags = names
		return nil
	})
}

// SetDate sets the date of a photo and its group.
func (l *Library) SetDate(photoID, date string) ([]Photo, error) {
	return l.updatePhotos(photoID, true, func(p *Photo) error {
		p.Date = date
		return nil
	})
}

// SetRating sets the rating of one photo.
func (l *Library) SetRating(photoID string, rating int) (Photo, error) {
	if rating < 0 {
		return Photo{}, invalid("rating must not be negative, got %d", rating)
	}
	out, err := l.updatePhotos(photoID, false, func(p *Photo) error {
		p.Rating = rating
		return nil
	})
	if err != nil {
		return Photo{}, err
	}
	return out[0], nil
}

// SetText sets a free-text attribute of one photo.
func (l *Library) SetText(photoID string, field PhotoStringField, value string) (Photo, error) {
	var apply func(p *Photo)
	switch field {
	case FieldTitle:
		apply = func(p *Photo) { p.Title = value }
	case FieldDescription:
		apply = func(p *Photo) { p.Description = value }
	default:
		return Photo{}, invalid("unknown photo field %q", field)
	}
	out, err := l.updatePhotos(photoID, false, func(p *Photo) error {
		apply(p)
		return nil
	})
	if err != nil {
		return Photo{}, err
	}
	return out[0], nil
}

// SetFlag sets a boolean attribute of one photo.
func (l *Library) SetFlag(photoID string, flag PhotoFlag, value bool) (Photo, error) {
	var apply func(p *Photo)
	switch flag {
	case FlagIsDuplicate:
		apply = func(p *Photo) { p.IsDuplicate = value }
	case FlagHideThumbnail:
		apply = func(p *Photo) { p.HideThumbnail = value }
	default:
		return Photo{}, invalid("unknown photo flag %q", flag)
	}
	out, err := l.updatePhotos(photoID, false, func(p *Photo) error {
		apply(p)
		return nil
	})
	if err != nil {
		return Photo{}, err
	}
	return out[0], nil
}

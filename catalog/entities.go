package catalog

import (
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/facette/natsort"

	"github.com/camden-git/photodesk/database"
)

func personFromRecord(r database.PersonRecord) *Person {
	return &Person{ID: r.ID, Name: r.Name, Photo: r.Photo, Notes: r.Notes, Category: r.Category}
}

func placeFromRecord(r database.PlaceRecord) *Place {
	return &Place{
		ID:       r.ID,
		Name:     r.Name,
		Lat:      r.Lat,
		Lng:      r.Lng,
		Layer:    r.Layer,
		Category: r.Category,
		Shape:    r.Shape,
		Tags:     r.Tags,
		Notes:    r.Notes,
	}
}

func byName[T any](items []T, name func(*T) string) {
	sort.Slice(items, func(i, j int) bool {
		return natsort.Compare(name(&items[i]), name(&items[j]))
	})
}

// CreatePerson adds a person with zero counts. An empty ID is generated.
func (l *Library) CreatePerson(p Person) (Person, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Person{}, invalid("person name must not be empty")
	}
	if err := l.lockStore(); err != nil {
		return Person{}, err
	}
	defer l.storeMu.Unlock()
	l.peopleMu.Lock()
	defer l.peopleMu.Unlock()

	if p.ID == "" {
		p.ID = l.opts.NewID()
	}
	if _, ok := l.people[p.ID]; ok {
		return Person{}, &EntityError{Kind: "person", ID: p.ID, Err: ErrExists}
	}
	p.PhotographerCount, p.PhotoCount = 0, 0
	rec := database.PersonRecord{ID: p.ID, Name: p.Name, Photo: p.Photo, Notes: p.Notes, Category: p.Category}
	if err := database.CreatePerson(l.db, rec); err != nil {
		return Person{}, err
	}
	l.people[p.ID] = &p
	return p, nil
}

func (l *Library) SetPersonField(id string, field PersonField, value string) (Person, error) {
	switch field {
	case PersonName, PersonPhoto, PersonNotes, PersonCategory:
	default:
		return Person{}, invalid("unknown person field %q", field)
	}
	if err := l.lockStore(); err != nil {
		return Person{}, err
	}
	defer l.storeMu.Unlock()
	l.peopleMu.Lock()
	defer l.peopleMu.Unlock()

	p, ok := l.people[id]
	if !ok {
		return Person{}, notFound("person", id)
	}
	if err := database.UpdatePersonColumn(l.db, id, string(field), value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Person{}, notFound("person", id)
		}
		return Person{}, err
	}
	switch field {
	case PersonName:
		p.Name = value
	case PersonPhoto:
		p.Photo = value
	case PersonNotes:
		p.Notes = value
	case PersonCategory:
		p.Category = value
	}
	return *p, nil
}

// People returns every person with counts, in natural name order.
func (l *Library) People() []Person {
	l.peopleMu.RLock()
	defer l.peopleMu.RUnlock()
	out := make([]Person, 0, len(l.people))
	for _, p := range l.people {
		out = append(out, *p)
	}
	byName(out, func(p *Person) string { return p.Name })
	return out
}

func (l *Library) CreateCamera(name string) (Camera, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Camera{}, invalid("camera name must not be empty")
	}
	if err := l.lockStore(); err != nil {
		return Camera{}, err
	}
	defer l.storeMu.Unlock()
	l.camerasMu.Lock()
	defer l.camerasMu.Unlock()

	c := &Camera{ID: l.opts.NewID(), Name: name}
	if err := database.CreateCamera(l.db, database.CameraRecord{ID: c.ID, Name: c.Name}); err != nil {
		return Camera{}, err
	}
	l.cameras[c.ID] = c
	return *c, nil
}

// Cameras returns every camera with its count, in natural name order.
func (l *Library) Cameras() []Camera {
	l.camerasMu.RLock()
	defer l.camerasMu.RUnlock()
	out := make([]Camera, 0, len(l.cameras))
	for _, c := range l.cameras {
		out = append(out, *c)
	}
	byName(out, func(c *Camera) string { return c.Name })
	return out
}

// CreatePlace adds a place with a zero count. An empty ID is generated.
func (l *Library) CreatePlace(p Place) (Place, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Place{}, invalid("place name must not be empty")
	}
	if err := l.lockStore(); err != nil {
		return Place{}, err
	}
	defer l.storeMu.Unlock()
	l.placesMu.Lock()
	defer l.placesMu.Unlock()

	if p.ID == "" {
		p.ID = l.opts.NewID()
	}
	if _, ok := l.places[p.ID]; ok {
		return Place{}, &EntityError{Kind: "place", ID: p.ID, Err: ErrExists}
	}
	p.Count = 0
	rec := database.PlaceRecord{
		ID: p.ID, Name: p.Name, Lat: p.Lat, Lng: p.Lng, Layer: p.Layer,
		Category: p.Category, Shape: p.Shape, Tags: p.Tags, Notes: p.Notes,
	}
	if err := database.CreatePlace(l.db, rec); err != nil {
		return Place{}, err
	}
	l.places[p.ID] = &p
	return p, nil
}

// updatePlace writes columns of a cached place and applies them with set.
func (l *Library) updatePlace(id string, values map[string]any, set func(p *Place)) (Place, error) {
	if err := l.lockStore(); err != nil {
		return Place{}, err
	}
	defer l.storeMu.Unlock()
	l.placesMu.Lock()
	defer l.placesMu.Unlock()

	p, ok := l.places[id]
	if !ok {
		return Place{}, notFound("place", id)
	}
	if err := database.UpdatePlace(l.db, id, values); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Place{}, notFound("place", id)
		}
		return Place{}, err
	}
	set(p)
	return *p, nil
}

func (l *Library) SetPlaceField(id string, field PlaceField, value string) (Place, error) {
	var set func(p *Place)
	switch field {
	case PlaceName:
		set = func(p *Place) { p.Name = value }
	case PlaceLayer:
		set = func(p *Place) { p.Layer = value }
	case PlaceCategory:
		set = func(p *Place) { p.Category = value }
	case PlaceShape:
		set = func(p *Place) { p.Shape = value }
	case PlaceTags:
		set = func(p *Place) { p.Tags = value }
	case PlaceNotes:
		set = func(p *Place) { p.Notes = value }
	default:
		return Place{}, invalid("unknown place field %q", field)
	}
	return l.updatePlace(id, map[string]any{string(field): value}, set)
}

func (l *Library) SetPlacePosition(id string, lat, lng float64) (Place, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return Place{}, invalid("position %f,%f is out of range", lat, lng)
	}
	return l.updatePlace(id, map[string]any{"lat": lat, "lng": lng}, func(p *Place) {
		p.Lat, p.Lng = lat, lng
	})
}

// DeletePlace removes a place no cached photo references.
func (l *Library) DeletePlace(id string) error {
	if err := l.lockStore(); err != nil {
		return err
	}
	defer l.storeMu.Unlock()
	l.placesMu.Lock()
	defer l.placesMu.Unlock()

	p, ok := l.places[id]
	if !ok {
		return notFound("place", id)
	}
	if p.Count > 0 {
		return &EntityError{Kind: "place", ID: id, Err: ErrInUse}
	}
	if err := database.DeletePlace(l.db, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			delete(l.places, id)
			return notFound("place", id)
		}
		return err
	}
	delete(l.places, id)
	return nil
}

// Places returns every place with its count, in natural name order.
func (l *Library) Places() []Place {
	l.placesMu.RLock()
	defer l.placesMu.RUnlock()
	out := make([]Place, 0, len(l.places))
	for _, p := range l.places {
		out = append(out, *p)
	}
	byName(out, func(p *Place) string { return p.Name })
	return out
}

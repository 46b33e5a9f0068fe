package catalog

import (
	"fmt"
	"log"
)

// countDelta accumulates usage count changes of one command so they can be
// checked before anything is written and applied after the commit.
type countDelta struct {
	tags          map[string]int
	photographers map[string]int
	people        map[string]int
	cameras       map[string]int
	places        map[string]int
}

func newCountDelta() *countDelta {
	return &countDelta{
		tags:          map[string]int{},
		photographers: map[string]int{},
		people:        map[string]int{},
		cameras:       map[string]int{},
		places:        map[string]int{},
	}
}

// single records old -> next for a zero-or-one reference. Empty means none.
func single(m map[string]int, old, next string) {
	if old == next {
		return
	}
	if old != "" {
		m[old]--
	}
	if next != "" {
		m[next]++
	}
}

// multi records the set difference between two reference lists. Repeated
// values count once.
func multi(m map[string]int, old, next []string) {
	before := make(map[string]bool, len(old))
	for _, v := range old {
		before[v] = true
	}
	after := make(map[string]bool, len(next))
	for _, v := range next {
		after[v] = true
	}
	for v := range before {
		if !after[v] {
			m[v]--
		}
	}
	for v := range after {
		if !before[v] {
			m[v]++
		}
	}
}

func (d *countDelta) photo(old, next *Photo) {
	multi(d.tags, old.Tags, next.Tags)
	multi(d.people, old.People, next.People)
	single(d.photographers, old.Photographer, next.Photographer)
	single(d.cameras, old.Camera, next.Camera)
	single(d.places, old.Location, next.Location)
}

// forEachCount visits every pending change against entities the cache knows about.
// References to unknown entities are never counted, so they are skipped.
// Caller holds the tag, person, camera and place locks.
func (l *Library) forEachCount(d *countDelta, fn func(kind, id string, count *int, change int) error) error {
	for name, n := range d.tags {
		if t, ok := l.tags[name]; ok && n != 0 {
			if err := fn("tag", name, &t.Count, n); err != nil {
				return err
			}
		}
	}
	for id, n := range d.photographers {
		if p, ok := l.people[id]; ok && n != 0 {
			if err := fn("photographer", id, &p.PhotographerCount, n); err != nil {
				return err
			}
		}
	}
	for id, n := range d.people {
		if p, ok := l.people[id]; ok && n != 0 {
			if err := fn("person", id, &p.PhotoCount, n); err != nil {
				return err
			}
		}
	}
	for id, n := range d.cameras {
		if c, ok := l.cameras[id]; ok && n != 0 {
			if err := fn("camera", id, &c.Count, n); err != nil {
				return err
			}
		}
	}
	for id, n := range d.places {
		if p, ok := l.places[id]; ok && n != 0 {
			if err := fn("place", id, &p.Count, n); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkDelta rejects a change set that would drive any count below zero.
func (l *Library) checkDelta(d *countDelta) error {
	return l.forEachCount(d, func(kind, id string, count *int, change int) error {
		if *count+change < 0 {
			log.Printf("catalog: %s %s count would drop below zero (%d%+d)", kind, id, *count, change)
			return fmt.Errorf("%w: %s %s", ErrCountUnderflow, kind, id)
		}
		return nil
	})
}

func (l *Library) applyDelta(d *countDelta) {
	_ = l.forEachCount(d, func(_, _ string, count *int, change int) error {
		*count += change
		return nil
	})
}

// Counts is a snapshot of every usage count, keyed by entity key.
type Counts struct {
	Tags          map[string]int `json:"tags"`
	Photographers map[string]int `json:"photographers"`
	People        map[string]int `json:"people"`
	Cameras       map[string]int `json:"cameras"`
	Places        map[string]int `json:"places"`
}

func newCounts() Counts {
	return Counts{
		Tags:          map[string]int{},
		Photographers: map[string]int{},
		People:        map[string]int{},
		Cameras:       map[string]int{},
		Places:        map[string]int{},
	}
}

// Counts returns the cached usage counts.
func (l *Library) Counts() Counts {
	l.photosMu.RLock()
	defer l.photosMu.RUnlock()
	l.tagsMu.RLock()
	defer l.tagsMu.RUnlock()
	l.peopleMu.RLock()
	defer l.peopleMu.RUnlock()
	l.camerasMu.RLock()
	defer l.camerasMu.RUnlock()
	l.placesMu.RLock()
	defer l.placesMu.RUnlock()

	c := newCounts()
	for name, t := range l.tags {
		c.Tags[name] = t.Count
	}
	for id, p := range l.people {
		c.Photographers[id] = p.PhotographerCount
		c.People[id] = p.PhotoCount
	}
	for id, cam := range l.cameras {
		c.Cameras[id] = cam.Count
	}
	for id, p := range l.places {
		c.Places[id] = p.Count
	}
	return c
}

// Recount derives every usage count from the cached photos, the ground truth
// the incremental counts must agree with.
func (l *Library) Recount() Counts {
	l.photosMu.RLock()
	defer l.photosMu.RUnlock()
	l.tagsMu.RLock()
	defer l.tagsMu.RUnlock()
	l.peopleMu.RLock()
	defer l.peopleMu.RUnlock()
	l.camerasMu.RLock()
	defer l.camerasMu.RUnlock()
	l.placesMu.RLock()
	defer l.placesMu.RUnlock()

	c := newCounts()
	for name := range l.tags {
		c.Tags[name] = 0
	}
	for id := range l.people {
		c.Photographers[id] = 0
		c.People[id] = 0
	}
	for id := range l.cameras {
		c.Cameras[id] = 0
	}
	for id := range l.places {
		c.Places[id] = 0
	}

	empty := &Photo{}
	d := newCountDelta()
	for _, p := range l.photos {
		d.photo(empty, p)
	}
	bump := func(dst map[string]int, src map[string]int) {
		for k, n := range src {
			if _, known := dst[k]; known {
				dst[k] += n
			}
		}
	}
	bump(c.Tags, d.tags)
	bump(c.Photographers, d.photographers)
	bump(c.People, d.people)
	bump(c.Cameras, d.cameras)
	bump(c.Places, d.places)
	return c
}

// seedCounts counts one freshly loaded photo. Caller holds every cache lock.
func (l *Library) seedCounts(p *Photo) {
	d := newCountDelta()
	d.photo(&Photo{}, p)
	l.applyDelta(d)
}

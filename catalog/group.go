package catalog

import (
	"sort"

	"github.com/facette/natsort"
)

// sortedMembers returns the ids of a group's cached photos in natural name
// order, leaving out exclude.
func sortedMembers(photos map[string]*Photo, members map[string]struct{}, exclude string) []string {
	ids := make([]string, 0, len(members))
	for id := range members {
		if id == exclude {
			continue
		}
		if _, ok := photos[id]; ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return natsort.Compare(photos[ids[i]].Name, photos[ids[j]].Name)
	})
	return ids
}

// indexGroupLocked moves a cached photo between membership sets. Caller holds photosMu.
func (l *Library) indexGroupLocked(id, oldGroup, newGroup string) {
	if oldGroup == newGroup {
		return
	}
	if oldGroup != "" {
		if set, ok := l.groups[oldGroup]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(l.groups, oldGroup)
			}
		}
	}
	if newGroup != "" {
		set, ok := l.groups[newGroup]
		if !ok {
			set = map[string]struct{}{}
			l.groups[newGroup] = set
		}
		set[id] = struct{}{}
	}
}

func firstNonEmpty(own string, members []Photo, field func(*Photo) string) string {
	if own != "" {
		return own
	}
	for i := range members {
		if v := field(&members[i]); v != "" {
			return v
		}
	}
	return ""
}

// mergeInto fills p with the shared values of a group it joins: tag and people
// unions (own values first) and, for the singular fields, the own value or the
// first non-empty member value.
func mergeInto(p *Photo, members []Photo) {
	tags := append([]string{}, p.Tags...)
	people := append([]string{}, p.People...)
	for _, m := range members {
		tags = append(tags, m.Tags...)
		people = append(people, m.People...)
	}
	p.Tags = uniqueStrings(tags)
	p.People = uniqueStrings(people)

	p.Location = firstNonEmpty(p.Location, members, func(m *Photo) string { return m.Location })
	p.Photographer = firstNonEmpty(p.Photographer, members, func(m *Photo) string { return m.Photographer })
	p.Camera = firstNonEmpty(p.Camera, members, func(m *Photo) string { return m.Camera })
	p.Date = firstNonEmpty(p.Date, members, func(m *Photo) string { return m.Date })
}

// SetPhotoGroup moves a photo into a group. Joining merges the photo's metadata
// with the group's and writes the result to every member. An empty group only
// clears the photo's own group; the remaining members keep their values.
func (l *Library) SetPhotoGroup(photoID, group string) ([]Photo, error) {
	if err := l.lockStore(); err != nil {
		return nil, err
	}
	defer l.storeMu.Unlock()
	l.lockCache()
	defer l.unlockCache()

	p, err := l.loadPhotoLocked(photoID)
	if err != nil {
		return nil, err
	}
	oldGroup := p.Group
	if oldGroup == group {
		out := p
		if cached, ok := l.photos[photoID]; ok {
			out = *cached
		}
		return []Photo{out}, nil
	}

	next := p
	next.Group = group
	var members []Photo
	if group != "" {
		members, err = l.loadPhotosLocked(sortedMembers(l.photos, l.groups[group], photoID))
		if err != nil {
			return nil, err
		}
		mergeInto(&next, members)
	}

	changes := []photoChange{{old: p, next: next}}
	for _, m := range members {
		merged := m
		merged.Tags = append([]string{}, next.Tags...)
		merged.People = append([]string{}, next.People...)
		merged.Location = next.Location
		merged.Photographer = next.Photographer
		merged.Camera = next.Camera
		merged.Date = next.Date
		changes = append(changes, photoChange{old: m, next: merged})
	}
	if err := l.commitLocked(changes); err != nil {
		return nil, err
	}
	if _, ok := l.photos[photoID]; ok {
		l.indexGroupLocked(photoID, oldGroup, group)
	}

	out := make([]Photo, 0, len(changes))
	for _, c := range changes {
		if cached, ok := l.photos[c.next.ID]; ok {
			out = append(out, *cached)
		} else {
			out = append(out, c.next)
		}
	}
	return out, nil
}

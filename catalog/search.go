package catalog

import (
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/facette/natsort"

	"github.com/camden-git/photodesk/database"
)

// term is one parsed search term: an optional "-", an operator and a value.
// Bare tags have no operator.
type term struct {
	negated bool
	op      string
	value   string
}

func parseTerm(raw string) (term, bool) {
	raw = strings.TrimSpace(raw)
	var t term
	if strings.HasPrefix(raw, "-") {
		t.negated = true
		raw = strings.TrimSpace(raw[1:])
	}
	if raw == "" {
		return t, false
	}
	if op, value, ok := strings.Cut(raw, ":"); ok {
		switch op = strings.ToLower(op); op {
		case "at", "is", "only", "by", "has", "name", "date", "of":
			t.op, t.value = op, strings.TrimSpace(value)
			return t, true
		}
	}
	t.value = raw
	return t, true
}

func eqOrNot(negated bool, column string, value any) sq.Sqlizer {
	if negated {
		return sq.NotEq{column: value}
	}
	return sq.Eq{column: value}
}

// storeFilter turns operators answered by the photos table into a squirrel
// condition. ok is false for terms evaluated on the cached photos.
func storeFilter(t term) (filter sq.Sqlizer, ok bool, err error) {
	switch t.op {
	case "at":
		return eqOrNot(t.negated, "location", t.value), true, nil
	case "by":
		return eqOrNot(t.negated, "photographer", t.value), true, nil
	case "is":
		switch strings.ToLower(t.value) {
		case "video":
			return eqOrNot(t.negated, "video", 1), true, nil
		case "raw":
			return eqOrNot(t.negated, "raw", 1), true, nil
		}
		return nil, false, invalid("unknown search value is:%s", t.value)
	case "has":
		switch strings.ToLower(t.value) {
		case "rating":
			if t.negated {
				return sq.Eq{"rating": 0}, true, nil
			}
			return sq.Gt{"rating": 0}, true, nil
		case "photographer", "date", "location":
			column := strings.ToLower(t.value)
			if t.negated {
				return sq.Eq{column: ""}, true, nil
			}
			return sq.NotEq{column: ""}, true, nil
		}
		return nil, false, invalid("unknown search value has:%s", t.value)
	case "only":
		// exactly one person, and it is this one
		in := "IN"
		if t.negated {
			in = "NOT IN"
		}
		return sq.Expr("id "+in+" (SELECT photo_id FROM photo_people GROUP BY photo_id HAVING COUNT(*) = 1 AND MAX(person_id) = ?)", t.value), true, nil
	case "name":
		pattern := "%" + database.EscapeLike(t.value) + "%"
		if t.negated {
			return sq.Expr(`name NOT LIKE ? ESCAPE '\'`, pattern), true, nil
		}
		return sq.Expr(`name LIKE ? ESCAPE '\'`, pattern), true, nil
	}
	return nil, false, nil
}

func (t term) matches(p *Photo) bool {
	var hit bool
	switch t.op {
	case "date":
		hit = strings.HasPrefix(p.Date, t.value)
	case "of":
		hit = contains(p.People, t.value)
	default:
		hit = contains(p.Tags, t.value)
	}
	return hit != t.negated
}

func sortPhotos(photos []*Photo, order string) {
	byName := func(a, b *Photo) bool { return natsort.Compare(a.Name, b.Name) }
	var less func(a, b *Photo) bool
	switch order {
	case database.SortNameDesc:
		less = func(a, b *Photo) bool { return byName(b, a) }
	case database.SortRating:
		less = func(a, b *Photo) bool {
			if a.Rating != b.Rating {
				return a.Rating < b.Rating
			}
			return byName(a, b)
		}
	case database.SortRatingDesc:
		less = func(a, b *Photo) bool {
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
			return byName(a, b)
		}
	default:
		less = byName
	}
	sort.SliceStable(photos, func(i, j int) bool { return less(photos[i], photos[j]) })
}

// Search replaces the active photo list with the non-duplicate photos
// matching every term, in the requested order, and returns its length.
func (l *Library) Search(terms []string, order string) (int, error) {
	if order == "" {
		order = database.DefaultSortOrder
	}
	if !database.IsValidSortOrder(order) {
		return 0, invalid("unknown sort order %q", order)
	}

	var filters []sq.Sqlizer
	var memory []term
	for _, raw := range terms {
		t, ok := parseTerm(raw)
		if !ok {
			continue
		}
		f, isStore, err := storeFilter(t)
		if err != nil {
			return 0, err
		}
		if isStore {
			filters = append(filters, f)
		} else {
			memory = append(memory, t)
		}
	}

	if err := l.lockStore(); err != nil {
		return 0, err
	}
	defer l.storeMu.Unlock()
	l.photosMu.Lock()
	defer l.photosMu.Unlock()

	ids, err := database.SearchPhotoIDs(l.db, filters...)
	if err != nil {
		return 0, err
	}

	results := make([]*Photo, 0, len(ids))
next:
	for _, id := range ids {
		p, ok := l.photos[id]
		if !ok {
			continue
		}
		for _, t := range memory {
			if !t.matches(p) {
				continue next
			}
		}
		results = append(results, p)
	}
	sortPhotos(results, order)

	l.active = make([]string, len(results))
	for i, p := range results {
		l.active[i] = p.ID
	}
	return len(l.active), nil
}

type PhotoPage struct {
	Photos []Photo `json:"photos"`
	Total  int     `json:"total"`
}

// Page returns count photos of the active list starting at start. Requests
// past the end are clamped and never fail.
func (l *Library) Page(start, count int) PhotoPage {
	l.photosMu.RLock()
	defer l.photosMu.RUnlock()

	total := len(l.active)
	page := PhotoPage{Photos: []Photo{}, Total: total}
	if start < 0 {
		start = 0
	}
	if count <= 0 || start >= total {
		return page
	}
	end := total
	if count < total-start {
		end = start + count
	}
	for _, id := range l.active[start:end] {
		if p, ok := l.photos[id]; ok {
			page.Photos = append(page.Photos, *p)
		}
	}
	return page
}

package catalog

import "github.com/camden-git/photodesk/database"

type Photo struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Path          string   `json:"path"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	IsDuplicate   bool     `json:"is_duplicate"`
	Rating        int      `json:"rating"`
	Location      string   `json:"location"`
	Thumbnail     string   `json:"thumbnail"`
	Video         bool     `json:"video"`
	Group         string   `json:"group"`
	Date          string   `json:"date"`
	Raw           bool     `json:"raw"`
	HideThumbnail bool     `json:"hide_thumbnail"`
	Photographer  string   `json:"photographer"`
	Camera        string   `json:"camera"`
	Tags          []string `json:"tags"`
	People        []string `json:"people"`
	ValidTags     bool     `json:"valid_tags"`
	ValidationMsg string   `json:"validation_msg"`
}

type Tag struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Color        string   `json:"color"`
	Prereqs      []string `json:"prereqs"`
	Coreqs       []string `json:"coreqs"`
	Incompatible []string `json:"incompatible"`
	Count        int      `json:"count"`
}

type Person struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Photo             string `json:"photo"`
	Notes             string `json:"notes"`
	Category          string `json:"category"`
	PhotographerCount int    `json:"photographer_count"`
	PhotoCount        int    `json:"photo_count"`
}

type Camera struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Place struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Layer    string  `json:"layer"`
	Category string  `json:"category"`
	Shape    string  `json:"shape"`
	Tags     string  `json:"tags"`
	Notes    string  `json:"notes"`
	Count    int     `json:"count"`
}

// PhotoStringField is a free-text photo attribute settable without propagation.
type PhotoStringField string

const (
	FieldTitle       PhotoStringField = "title"
	FieldDescription PhotoStringField = "description"
)

// PhotoFlag is a boolean photo attribute settable without propagation.
type PhotoFlag string

const (
	FlagIsDuplicate   PhotoFlag = "is_duplicate"
	FlagHideThumbnail PhotoFlag = "hide_thumbnail"
)

// PersonField is a settable person attribute.
type PersonField string

const (
	PersonName     PersonField = PersonField(database.PersonColumnName)
	PersonPhoto    PersonField = PersonField(database.PersonColumnPhoto)
	PersonNotes    PersonField = PersonField(database.PersonColumnNotes)
	PersonCategory PersonField = PersonField(database.PersonColumnCategory)
)

// PlaceField is a settable place attribute.
type PlaceField string

const (
	PlaceName     PlaceField = PlaceField(database.PlaceColumnName)
	PlaceLayer    PlaceField = PlaceField(database.PlaceColumnLayer)
	PlaceCategory PlaceField = PlaceField(database.PlaceColumnCategory)
	PlaceShape    PlaceField = PlaceField(database.PlaceColumnShape)
	PlaceTags     PlaceField = PlaceField(database.PlaceColumnTags)
	PlaceNotes    PlaceField = PlaceField(database.PlaceColumnNotes)
)

func photoFromRecord(r database.PhotoRecord) Photo {
	return Photo{
		ID:            r.ID,
		Name:          r.Name,
		Path:          r.Path,
		Title:         r.Title,
		Description:   r.Description,
		IsDuplicate:   r.IsDuplicate,
		Rating:        r.Rating,
		Location:      r.Location,
		Thumbnail:     r.Thumbnail,
		Video:         r.Video,
		Group:         r.Group,
		Date:          r.Date,
		Raw:           r.Raw,
		HideThumbnail: r.HideThumbnail,
		Photographer:  r.Photographer,
		Camera:        r.Camera,
		Tags:          nonNil(r.Tags),
		People:        nonNil(r.People),
		ValidTags:     true,
	}
}

func (p Photo) record() database.PhotoRecord {
	return database.PhotoRecord{
		ID:            p.ID,
		Name:          p.Name,
		Path:          p.Path,
		Title:         p.Title,
		Description:   p.Description,
		IsDuplicate:   p.IsDuplicate,
		Rating:        p.Rating,
		Location:      p.Location,
		Thumbnail:     p.Thumbnail,
		Video:         p.Video,
		Group:         p.Group,
		Date:          p.Date,
		Raw:           p.Raw,
		HideThumbnail: p.HideThumbnail,
		Photographer:  p.Photographer,
		Camera:        p.Camera,
		Tags:          p.Tags,
		People:        p.People,
	}
}

func tagFromRecord(r database.TagRecord) *Tag {
	return &Tag{
		ID:           r.ID,
		Name:         r.Name,
		Color:        r.Color,
		Prereqs:      nonNil(r.Prereqs),
		Coreqs:       nonNil(r.Coreqs),
		Incompatible: nonNil(r.Incompatible),
	}
}

func (t *Tag) record() database.TagRecord {
	return database.TagRecord{
		ID:           t.ID,
		Name:         t.Name,
		Color:        t.Color,
		Prereqs:      t.Prereqs,
		Coreqs:       t.Coreqs,
		Incompatible: t.Incompatible,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// uniqueStrings drops empty and repeated values, keeping first occurrences in order.
func uniqueStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageNames(l *Library) []string {
	page := l.Page(0, 100)
	out := make([]string, len(page.Photos))
	for i, p := range page.Photos {
		out[i] = filepath.Base(p.Name)
	}
	return out
}

func TestSearchOperators(t *testing.T) {
	l, root := newLibrary(t, "a.jpg", "b.jpg", "c.mp4", "d.ORF", "img10.jpg", "img2.jpg")
	a := photoID(t, l, root, "a.jpg")
	b := photoID(t, l, root, "b.jpg")
	c := photoID(t, l, root, "c.mp4")

	alice, err := l.CreatePerson(Person{Name: "Alice"})
	require.NoError(t, err)
	bob, err := l.CreatePerson(Person{Name: "Bob"})
	require.NoError(t, err)
	park, err := l.CreatePlace(Place{Name: "Park"})
	require.NoError(t, err)

	_, err = l.SetTags(a, []string{"sun"})
	require.NoError(t, err)
	_, err = l.SetTags(b, []string{"sun", "sea"})
	require.NoError(t, err)
	_, err = l.SetRating(b, 3)
	require.NoError(t, err)
	_, err = l.SetPeople(a, []string{alice.ID})
	require.NoError(t, err)
	_, err = l.SetPeople(b, []string{alice.ID, bob.ID})
	require.NoError(t, err)
	_, err = l.SetPhotographer(c, bob.ID)
	require.NoError(t, err)
	_, err = l.SetLocation(c, park.ID)
	require.NoError(t, err)
	_, err = l.SetDate(a, "2023-07-14")
	require.NoError(t, err)

	cases := []struct {
		name  string
		terms []string
		want  []string
	}{
		{"everything in natural order", nil, []string{"a.jpg", "b.jpg", "c.mp4", "d.ORF", "img2.jpg", "img10.jpg"}},
		{"video", []string{"is:video"}, []string{"c.mp4"}},
		{"raw", []string{"IS:raw"}, []string{"d.ORF"}},
		{"neither video nor raw", []string{"-is:video", "-is:raw"}, []string{"a.jpg", "b.jpg", "img2.jpg", "img10.jpg"}},
		{"bare tag", []string{"sun"}, []string{"a.jpg", "b.jpg"}},
		{"negated tag", []string{"sun", "-sea"}, []string{"a.jpg"}},
		{"has rating", []string{"has:rating"}, []string{"b.jpg"}},
		{"has location", []string{"has:location"}, []string{"c.mp4"}},
		{"by photographer", []string{"by:" + bob.ID}, []string{"c.mp4"}},
		{"at place", []string{"at:" + park.ID}, []string{"c.mp4"}},
		{"of person", []string{"of:" + alice.ID}, []string{"a.jpg", "b.jpg"}},
		{"only person", []string{"only:" + alice.ID}, []string{"a.jpg"}},
		{"date prefix", []string{"date:2023-07"}, []string{"a.jpg"}},
		{"name", []string{"name:img"}, []string{"img2.jpg", "img10.jpg"}},
		{"name wildcard is literal", []string{"name:%"}, []string{}},
		{"negated name", []string{"-name:img", "-is:video", "-is:raw"}, []string{"a.jpg", "b.jpg"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			total, err := l.Search(tc.terms, "")
			require.NoError(t, err)
			assert.Equal(t, len(tc.want), total)
			assert.Equal(t, tc.want, pageNames(l))
		})
	}
}

func TestSearchSortOrders(t *testing.T) {
	l, root := newLibrary(t, "a.jpg", "b.jpg", "c.jpg")
	_, err := l.SetRating(photoID(t, l, root, "b.jpg"), 5)
	require.NoError(t, err)
	_, err = l.SetRating(photoID(t, l, root, "c.jpg"), 2)
	require.NoError(t, err)

	_, err = l.Search(nil, "name_desc")
	require.NoError(t, err)
	assert.Equal(t, []string{"c.jpg", "b.jpg", "a.jpg"}, pageNames(l))

	_, err = l.Search(nil, "rating")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "c.jpg", "b.jpg"}, pageNames(l))

	_, err = l.Search(nil, "rating_desc")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.jpg", "c.jpg", "a.jpg"}, pageNames(l))
}

func TestSearchRejectsUnknownValues(t *testing.T) {
	l, _ := newLibrary(t, "a.jpg")
	_, err := l.Search([]string{"is:panorama"}, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = l.Search([]string{"has:colour"}, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = l.Search(nil, "size")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, 1, l.Page(0, 10).Total, "a rejected search keeps the active list")
}

func TestPageClamps(t *testing.T) {
	l, _ := newLibrary(t, "a.jpg", "b.jpg", "c.jpg")

	cases := []struct {
		name         string
		start, count int
		want         int
	}{
		{"first page", 0, 2, 2},
		{"tail", 2, 10, 1},
		{"past the end", 5, 2, 0},
		{"at the end", 3, 1, 0},
		{"negative start", -1, 1, 1},
		{"zero count", 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page := l.Page(tc.start, tc.count)
			assert.Len(t, page.Photos, tc.want)
			assert.Equal(t, 3, page.Total)
		})
	}
}

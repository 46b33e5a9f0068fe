package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/photodesk/database"
	"github.com/camden-git/photodesk/repository"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	p := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

// newLibrary opens a fresh folder holding files, each file containing its own name.
func newLibrary(t *testing.T, files ...string) (*Library, string) {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		writeFile(t, root, f, f)
	}
	l := New(Options{DBLogLevel: "silent", CaptureDate: func(string) string { return "" }})
	t.Cleanup(func() { l.Close() })
	_, err := l.OpenFolder(context.Background(), root)
	require.NoError(t, err)
	return l, root
}

func photoID(t *testing.T, l *Library, root, name string) string {
	t.Helper()
	full := filepath.Join(root, name)
	l.photosMu.RLock()
	defer l.photosMu.RUnlock()
	for id, p := range l.photos {
		if p.Name == full {
			return id
		}
	}
	t.Fatalf("photo %s not cached", name)
	return ""
}

func assertCountsConsistent(t *testing.T, l *Library) {
	t.Helper()
	assert.Equal(t, l.Recount(), l.Counts(), "cached counts must match the photos")
}

func TestCommandsBeforeOpenFail(t *testing.T) {
	l := New(Options{})
	_, err := l.SetRating("x", 1)
	assert.ErrorIs(t, err, ErrNoFolder)
	_, err = l.Search(nil, "")
	assert.ErrorIs(t, err, ErrNoFolder)
	assert.Equal(t, 0, l.Page(0, 10).Total)
}

func TestOpenFolderMissing(t *testing.T) {
	l := New(Options{})
	_, err := l.OpenFolder(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
	assert.Equal(t, "", l.Folder())
}

func TestOpenFolderReportsPhotosAndVersion(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.jpg", "a")
	writeFile(t, root, "b.mp4", "b")

	l := New(Options{DBLogLevel: "silent", CaptureDate: func(string) string { return "" }})
	t.Cleanup(func() { l.Close() })
	resp, err := l.OpenFolder(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 2, resp.PhotoCount)
	assert.Empty(t, resp.Deleted)
	assert.Empty(t, resp.ScanErrors)
	assert.False(t, resp.NeedsUpgrade)
	require.Len(t, resp.Settings, 1)
	assert.Equal(t, "version", resp.Settings[0].Setting)
	assert.Equal(t, PhotoManagerVersion, resp.Settings[0].Value)
	assert.Equal(t, root, l.Folder())

	require.NoError(t, l.WithRecords(func(r *repository.Repositories) error {
		_, err := r.Settings.Set("version", 0)
		return err
	}))
	resp, err = l.OpenFolder(context.Background(), root)
	require.NoError(t, err)
	assert.True(t, resp.NeedsUpgrade)
}

func TestReopenIsIdempotent(t *testing.T) {
	l, root := newLibrary(t, "a.jpg", "b.jpg")
	a := photoID(t, l, root, "a.jpg")
	_, err := l.SetTags(a, []string{"sun"})
	require.NoError(t, err)
	before := l.Counts()

	resp, err := l.OpenFolder(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.PhotoCount)
	assert.Empty(t, resp.Deleted)
	assert.Equal(t, before, l.Counts())
	assert.Equal(t, 1, resp.Tags["sun"].Count)
	assert.Equal(t, a, photoID(t, l, root, "a.jpg"))
}

func TestDeletedFilesAreReportedThenRemoved(t *testing.T) {
	l, root := newLibrary(t, "keep.jpg", "gone.jpg")
	require.NoError(t, os.Remove(filepath.Join(root, "gone.jpg")))

	resp, err := l.OpenFolder(context.Background(), root)
	require.NoError(t, err)
	gone := filepath.Join(root, "gone.jpg")
	assert.Equal(t, []string{gone}, resp.Deleted)
	assert.Equal(t, 1, resp.PhotoCount)

	n, err := l.RemoveDeleted([]string{gone, filepath.Join(root, "keep.jpg")})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "photos still on disk are kept")

	resp, err = l.OpenFolder(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, resp.Deleted)
	assert.Equal(t, 1, resp.PhotoCount)
}

func TestOpenFolderSynthesizesMissingTags(t *testing.T) {
	l, root := newLibrary(t, "a.jpg")
	a := photoID(t, l, root, "a.jpg")
	_, err := l.SetTags(a, []string{"lost"})
	require.NoError(t, err)

	_, err = l.db.Exec("DELETE FROM tags")
	require.NoError(t, err)

	resp, err := l.OpenFolder(context.Background(), root)
	require.NoError(t, err)
	require.Contains(t, resp.Tags, "lost")
	assert.Equal(t, 1, resp.Tags["lost"].Count)
	assert.NotEmpty(t, resp.Tags["lost"].ID)

	tags, err := database.ListTags(l.db)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "lost", tags[0].Name)
	assertCountsConsistent(t, l)
}

func TestOpenFolderReportsUnknownReferences(t *testing.T) {
	l, root := newLibrary(t, "a.jpg")
	a := photoID(t, l, root, "a.jpg")
	cam, err := l.CreateCamera("X100")
	require.NoError(t, err)
	_, err = l.SetCamera(a, cam.ID)
	require.NoError(t, err)

	_, err = l.db.Exec("DELETE FROM cameras")
	require.NoError(t, err)

	resp, err := l.OpenFolder(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, resp.ScanErrors, 1)
	assert.Equal(t, "seed", resp.ScanErrors[0].Op)
	assert.ErrorIs(t, resp.ScanErrors[0], ErrNotFound)
	assert.Empty(t, l.Cameras())
	assertCountsConsistent(t, l)
}

func TestSetCameraFansOutToGroup(t *testing.T) {
	l, root := newLibrary(t, "a.jpg", "b.jpg", "c.jpg")
	a := photoID(t, l, root, "a.jpg")
	b := photoID(t, l, root, "b.jpg")
	c := photoID(t, l, root, "c.jpg")

	_, err := l.SetPhotoGroup(a, "trip")
	require.NoError(t, err)
	_, err = l.SetPhotoGroup(b, "trip")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, l.GroupMembers("trip"))

	cam, err := l.CreateCamera("X100")
	require.NoError(t, err)
	updated, err := l.SetCamera(a, cam.ID)
	require.NoError(t, err)
	require.Len(t, updated, 2)
	assert.Equal(t, a, updated[0].ID)

	assert.Equal(t, 2, l.Counts().Cameras[cam.ID])
	for _, id := range []string{a, b} {
		p, err := l.Photo(id)
		require.NoError(t, err)
		assert.Equal(t, cam.ID, p.Camera)
	}
	pc, err := l.Photo(c)
	require.NoError(t, err)
	assert.Empty(t, pc.Camera)

	stored, err := database.GetPhoto(l.db, b)
	require.NoError(t, err)
	assert.Equal(t, cam.ID, stored.Camera)
	assertCountsConsistent(t, l)
}

func TestJoiningGroupMergesMetadata(t *testing.T) {
	l, root := newLibrary(t, "a.jpg", "b.jpg")
	a := photoID(t, l, root, "a.jpg")
	b := photoID(t, l, root, "b.jpg")

	alice, err := l.CreatePerson(Person{Name: "Alice"})
	require.NoError(t, err)
	bob, err := l.CreatePerson(Person{Name: "Bob"})
	require.NoError(t, err)
	park, err := l.CreatePlace(Place{Name: "Park"})
	require.NoError(t, err)

	_, err = l.SetTags(a, []string{"x"})
	require.NoError(t, err)
	_, err = l.SetLocation(a, park.ID)
	require.NoError(t, err)
	_, err = l.SetTags(b, []string{"y", "x"})
	require.NoError(t, err)
	_, err = l.SetPeople(b, []string{alice.ID})
	require.NoError(t, err)
	_, err = l.SetPhotographer(b, bob.ID)
	require.NoError(t, err)
	_, err = l.SetPhotoGroup(b, "g")
	require.NoError(t, err)

	updated, err := l.SetPhotoGroup(a, "g")
	require.NoError(t, err)
	require.Len(t, updated, 2)
	for _, p := range updated {
		assert.Equal(t, "g", p.Group)
		assert.Equal(t, []string{"x", "y"}, p.Tags)
		assert.Equal(t, []string{alice.ID}, p.People)
		assert.Equal(t, park.ID, p.Location)
		assert.Equal(t, bob.ID, p.Photographer)
	}

	counts := l.Counts()
	assert.Equal(t, 2, counts.Tags["x"])
	assert.Equal(t, 2, counts.Tags["y"])
	assert.Equal(t, 2, counts.People[alice.ID])
	assert.Equal(t, 2, counts.Photographers[bob.ID])
	assert.Equal(t, 2, counts.Places[park.ID])
	assertCountsConsistent(t, l)
}

func TestLeavingGroupClearsOnlyThatPhoto(t *testing.T) {
	l, root := newLibrary(t, "a.jpg", "b.jpg")
	a := photoID(t, l, root, "a.jpg")
	b := photoID(t, l, root, "b.jpg")
	_, err := l.SetPhotoGroup(a, "g")
	require.NoError(t, err)
	_, err = l.SetPhotoGroup(b, "g")
	require.NoError(t, err)
	_, err = l.SetTags(a, []string{"shared"})
	require.NoError(t, err)

	updated, err := l.SetPhotoGroup(a, "")
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Empty(t, updated[0].Group)
	assert.Equal(t, []string{b}, l.GroupMembers("g"))

	_, err = l.SetTags(a, nil)
	require.NoError(t, err)
	pb, err := l.Photo(b)
	require.NoError(t, err)
	assert.Equal(t, []string{"shared"}, pb.Tags)
	assert.Equal(t, 1, l.Counts().Tags["shared"])
	assertCountsConsistent(t, l)
}

func TestSetTagsCreatesTagsAndRevalidates(t *testing.T) {
	l, root := newLibrary(t, "a.jpg")
	a := photoID(t, l, root, "a.jpg")

	_, err := l.SetTags(a, []string{" portrait ", "portrait"})
	require.NoError(t, err)
	require.Contains(t, l.Tags(), "portrait")
	assert.Equal(t, 1, l.Tags()["portrait"].Count)

	_, err = l.SetTagPrereqs("portrait", []string{"person"})
	require.NoError(t, err)
	p, err := l.Photo(a)
	require.NoError(t, err)
	assert.False(t, p.ValidTags)
	assert.Equal(t, "Missing prerequisite tag(s): person, ", p.ValidationMsg)

	updated, err := l.SetTags(a, []string{"portrait", "person"})
	require.NoError(t, err)
	assert.True(t, updated[0].ValidTags)
	assert.Empty(t, updated[0].ValidationMsg)

	tag, err := l.SetTagIncompatible("portrait", []string{"portrait"})
	require.NoError(t, err)
	assert.Equal(t, []string{"portrait"}, tag.Incompatible)
	p, err = l.Photo(a)
	require.NoError(t, err)
	assert.False(t, p.ValidTags)
	assert.Equal(t, "Incompatible tag(s) present: portrait, ", p.ValidationMsg)

	_, err = l.SetTagCoreqs("nope", nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assertCountsConsistent(t, l)
}

func TestCreateTagRejectsExisting(t *testing.T) {
	l, _ := newLibrary(t)
	_, err := l.CreateTag("sky", "#00f")
	require.NoError(t, err)
	_, err = l.CreateTag("sky", "")
	assert.ErrorIs(t, err, ErrExists)

	tag, err := l.SetTagColor("sky", "#0ff")
	require.NoError(t, err)
	assert.Equal(t, "#0ff", tag.Color)
	_, err = l.SetTagColor("sea", "#0ff")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnknownEntitiesAreNotFound(t *testing.T) {
	l, root := newLibrary(t, "a.jpg")
	a := photoID(t, l, root, "a.jpg")

	_, err := l.SetCamera("missing", "")
	var entityErr *EntityError
	require.True(t, errors.As(err, &entityErr))
	assert.Equal(t, "photo", entityErr.Kind)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = l.SetPhotographer(a, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = l.SetPeople(a, []string{"ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = l.SetLocation(a, "nowhere")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = l.SetRating(a, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = l.SetText(a, PhotoStringField("path"), "x")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assertCountsConsistent(t, l)
}

func TestUnderflowIsRejectedWithoutWriting(t *testing.T) {
	l, root := newLibrary(t, "a.jpg")
	a := photoID(t, l, root, "a.jpg")
	cam, err := l.CreateCamera("X100")
	require.NoError(t, err)
	_, err = l.SetCamera(a, cam.ID)
	require.NoError(t, err)

	l.camerasMu.Lock()
	l.cameras[cam.ID].Count = 0
	l.camerasMu.Unlock()

	_, err = l.SetCamera(a, "")
	assert.ErrorIs(t, err, ErrCountUnderflow)

	p, err := l.Photo(a)
	require.NoError(t, err)
	assert.Equal(t, cam.ID, p.Camera)
	stored, err := database.GetPhoto(l.db, a)
	require.NoError(t, err)
	assert.Equal(t, cam.ID, stored.Camera)
}

func TestSingleFieldSetters(t *testing.T) {
	l, root := newLibrary(t, "a.jpg", "b.jpg")
	a := photoID(t, l, root, "a.jpg")
	b := photoID(t, l, root, "b.jpg")
	_, err := l.SetPhotoGroup(a, "g")
	require.NoError(t, err)
	_, err = l.SetPhotoGroup(b, "g")
	require.NoError(t, err)

	p, err := l.SetRating(a, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Rating)
	p, err = l.SetText(a, FieldTitle, "Harbour")
	require.NoError(t, err)
	assert.Equal(t, "Harbour", p.Title)
	p, err = l.SetFlag(a, FlagHideThumbnail, true)
	require.NoError(t, err)
	assert.True(t, p.HideThumbnail)

	pb, err := l.Photo(b)
	require.NoError(t, err)
	assert.Equal(t, 0, pb.Rating, "single photo writes do not propagate")
	assert.Equal(t, "b.jpg", pb.Title)

	updated, err := l.SetDate(b, "2024-06-01")
	require.NoError(t, err)
	require.Len(t, updated, 2)
	for _, p := range updated {
		assert.Equal(t, "2024-06-01", p.Date)
	}
}

func TestPeopleAndPlaces(t *testing.T) {
	l, root := newLibrary(t, "a.jpg")
	a := photoID(t, l, root, "a.jpg")

	alice, err := l.CreatePerson(Person{Name: "Alice"})
	require.NoError(t, err)
	alice, err = l.SetPersonField(alice.ID, PersonNotes, "sister")
	require.NoError(t, err)
	assert.Equal(t, "sister", alice.Notes)
	_, err = l.SetPersonField(alice.ID, PersonField("id"), "x")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = l.CreatePerson(Person{Name: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	park, err := l.CreatePlace(Place{Name: "Park", Lat: 1, Lng: 2})
	require.NoError(t, err)
	park, err = l.SetPlacePosition(park.ID, 10.5, -20.25)
	require.NoError(t, err)
	assert.Equal(t, 10.5, park.Lat)
	park, err = l.SetPlaceField(park.ID, PlaceLayer, "trips")
	require.NoError(t, err)
	assert.Equal(t, "trips", park.Layer)

	_, err = l.SetLocation(a, park.ID)
	require.NoError(t, err)
	err = l.DeletePlace(park.ID)
	assert.ErrorIs(t, err, ErrInUse)

	_, err = l.SetLocation(a, "")
	require.NoError(t, err)
	require.NoError(t, l.DeletePlace(park.ID))
	assert.Empty(t, l.Places())
	assert.ErrorIs(t, l.DeletePlace(park.ID), ErrNotFound)

	people, err := database.ListPeople(l.db)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "sister", people[0].Notes)
	assertCountsConsistent(t, l)
}

func TestTagStats(t *testing.T) {
	l, root := newLibrary(t, "a.jpg", "b.jpg")
	assert.Equal(t, TagStats{}, New(Options{}).TagStats())

	a := photoID(t, l, root, "a.jpg")
	_, err := l.SetTags(a, []string{"x", "y", "z"})
	require.NoError(t, err)
	_, err = l.SetRating(a, 3)
	require.NoError(t, err)

	stats := l.TagStats()
	assert.Equal(t, 1.5, stats.AvgCount)
	assert.Equal(t, 1.5, stats.AvgRating)
}

func TestDetectDuplicates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.jpg", "same")
	writeFile(t, root, "b.jpg", "same")
	writeFile(t, root, "c.jpg", "other")
	l := New(Options{DBLogLevel: "silent", CaptureDate: func(string) string { return "" }})
	t.Cleanup(func() { l.Close() })
	_, err := l.OpenFolder(context.Background(), root)
	require.NoError(t, err)

	sets, err := l.DetectDuplicates()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{filepath.Join(root, "a.jpg"), filepath.Join(root, "b.jpg")}}, sets)

	pa, err := l.Photo(photoID(t, l, root, "a.jpg"))
	require.NoError(t, err)
	assert.False(t, pa.IsDuplicate)
	pb, err := l.Photo(photoID(t, l, root, "b.jpg"))
	require.NoError(t, err)
	assert.True(t, pb.IsDuplicate)

	total, err := l.Search(nil, "")
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestDetectDuplicatesClearsStaleFlags(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.jpg", "same")
	writeFile(t, root, "b.jpg", "same")
	l := New(Options{DBLogLevel: "silent", CaptureDate: func(string) string { return "" }})
	t.Cleanup(func() { l.Close() })
	_, err := l.OpenFolder(context.Background(), root)
	require.NoError(t, err)
	b := photoID(t, l, root, "b.jpg")

	_, err = l.DetectDuplicates()
	require.NoError(t, err)
	pb, err := l.Photo(b)
	require.NoError(t, err)
	require.True(t, pb.IsDuplicate)

	writeFile(t, root, "a.jpg", "edited")
	sets, err := l.DetectDuplicates()
	require.NoError(t, err)
	assert.Empty(t, sets)

	pb, err = l.Photo(b)
	require.NoError(t, err)
	assert.False(t, pb.IsDuplicate)
	l.storeMu.Lock()
	stored, err := database.GetPhoto(l.db, b)
	l.storeMu.Unlock()
	require.NoError(t, err)
	assert.False(t, stored.IsDuplicate)

	total, err := l.Search(nil, "")
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

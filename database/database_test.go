package database

import (
	"database/sql"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDB(StorePath(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStoreFiles(t *testing.T) {
	assert.True(t, IsStoreFile("/pics/photos.db"))
	assert.True(t, IsStoreFile("/pics/photos.db-wal"))
	assert.False(t, IsStoreFile("/pics/photos.jpg"))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%\_a\\b`, EscapeLike(`100%_a\b`))
}

func TestPhotoRoundTripKeepsListOrder(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, InsertPhoto(db, PhotoRecord{
		ID: "p1", Name: "/pics/a.jpg", Tags: []string{"sky", "beach"}, People: []string{"bob", "alice"}, Raw: true,
	}))

	got, err := GetPhoto(db, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"sky", "beach"}, got.Tags)
	assert.Equal(t, []string{"bob", "alice"}, got.People)
	assert.True(t, got.Raw)

	got.Tags = []string{"beach"}
	got.Rating = 3
	require.NoError(t, UpdatePhoto(db, got))
	got, err = GetPhoto(db, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"beach"}, got.Tags)
	assert.Equal(t, 3, got.Rating)

	_, err = GetPhoto(db, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.ErrorIs(t, UpdatePhoto(db, PhotoRecord{ID: "missing"}), sql.ErrNoRows)
	assert.ErrorIs(t, SetPhotoColumn(db, "missing", ColumnRating, 1), sql.ErrNoRows)
}

func TestSearchPhotoIDsMatchesLiterally(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, InsertPhoto(db, PhotoRecord{ID: "p1", Name: "/pics/100%.jpg"}))
	require.NoError(t, InsertPhoto(db, PhotoRecord{ID: "p2", Name: "/pics/1000.jpg"}))
	require.NoError(t, InsertPhoto(db, PhotoRecord{ID: "p3", Name: "/pics/100%-copy.jpg", IsDuplicate: true}))

	ids, err := SearchPhotoIDs(db, sq.Expr(`name LIKE ? ESCAPE '\'`, "%"+EscapeLike("100%")+"%"))
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids)

	ids, err = SearchPhotoIDs(db)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1", "p2"}, ids)
}

func TestDeletePhotosByName(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, InsertPhoto(db, PhotoRecord{ID: "p1", Name: "/pics/a.jpg", Thumbnail: "thumbnails/p1.jpg", Tags: []string{"sky"}}))
	require.NoError(t, InsertPhoto(db, PhotoRecord{ID: "p2", Name: "/pics/b.jpg"}))

	thumbs, n, err := DeletePhotosByName(db, []string{"/pics/a.jpg", "/pics/gone.jpg"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, []string{"thumbnails/p1.jpg"}, thumbs)

	var tagRows int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM photo_tags").Scan(&tagRows))
	assert.Zero(t, tagRows)

	photos, bad, err := ListPhotos(db)
	require.NoError(t, err)
	assert.Empty(t, bad)
	require.Len(t, photos, 1)
	assert.Equal(t, "p2", photos[0].ID)
}

func TestTagRelations(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, InsertTag(db, TagRecord{ID: "t1", Name: "sunset", Prereqs: []string{"sky", "sun"}}))
	require.NoError(t, SetTagRelations(db, "sunset", RelationIncompatible, []string{"indoor"}))
	require.NoError(t, SetTagColor(db, "sunset", "#f80"))
	assert.ErrorIs(t, SetTagColor(db, "missing", "#000"), sql.ErrNoRows)

	tags, err := ListTags(db)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "#f80", tags[0].Color)
	assert.Equal(t, []string{"sky", "sun"}, tags[0].Prereqs)
	assert.Empty(t, tags[0].Coreqs)
	assert.Equal(t, []string{"indoor"}, tags[0].Incompatible)
}

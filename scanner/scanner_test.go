package scanner

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/photodesk/database"
	"github.com/camden-git/photodesk/workers"
)

type fakeThumbnailer struct {
	mu   sync.Mutex
	seen []string
	fail map[string]bool
}

func (f *fakeThumbnailer) GenerateBatch(_ context.Context, jobs []workers.ThumbnailJob) []workers.ThumbnailResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]workers.ThumbnailResult, len(jobs))
	for i, j := range jobs {
		f.seen = append(f.seen, filepath.Base(j.SourcePath))
		out[i] = workers.ThumbnailResult{SourcePath: j.SourcePath}
		if f.fail[filepath.Base(j.SourcePath)] {
			out[i].Err = errors.New("converter failed")
			continue
		}
		out[i].ThumbnailPath = "thumbnails/" + filepath.Base(j.SourcePath) + ".jpg"
	}
	return out
}

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, n := range names {
		p := filepath.Join(root, n)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("data"), 0o644))
	}
}

func openStore(t *testing.T, root string) *sql.DB {
	t.Helper()
	db, err := database.InitDB(database.StorePath(root))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func names(photos []database.PhotoRecord) []string {
	out := make([]string, len(photos))
	for i, p := range photos {
		out[i] = filepath.Base(p.Name)
	}
	return out
}

func TestScanInsertsAndClassifies(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "img10.jpg", "img2.jpg", "raw.ORF", "clip.mp4", ".hidden.jpg", ".cache/x.jpg", "sub/deep.png")
	db := openStore(t, root)

	thumbs := &fakeThumbnailer{fail: map[string]bool{"clip.mp4": true}}
	s := New(db, Options{Thumbnailer: thumbs, CaptureDate: func(string) string { return "" }})

	res, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"clip.mp4", "img2.jpg", "img10.jpg", "raw.ORF", "deep.png"}, names(res.Photos))
	assert.Equal(t, 5, res.Added)
	assert.Equal(t, 0, res.Matched)
	assert.Empty(t, res.Deleted)

	byName := map[string]database.PhotoRecord{}
	for _, p := range res.Photos {
		byName[filepath.Base(p.Name)] = p
	}
	assert.True(t, byName["raw.ORF"].Raw)
	assert.Equal(t, "thumbnails/raw.ORF.jpg", byName["raw.ORF"].Thumbnail)
	assert.True(t, byName["clip.mp4"].Video)
	assert.Empty(t, byName["clip.mp4"].Thumbnail)
	assert.Equal(t, "img2.jpg", byName["img2.jpg"].Title)
	assert.Equal(t, AssetURL(byName["img2.jpg"].Name), byName["img2.jpg"].Path)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "thumbnail", res.Errors[0].Op)
	assert.Equal(t, "clip.mp4", filepath.Base(res.Errors[0].Path))

	stored, _, err := database.ListPhotos(db)
	require.NoError(t, err)
	assert.Len(t, stored, 5, "the store's own files are never scanned")
}

func TestScanIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.jpg", "b.jpg")
	db := openStore(t, root)
	s := New(db, Options{})

	first, err := s.Scan(context.Background(), root)
	require.NoError(t, err)
	second, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 2, first.Added)
	assert.Equal(t, 0, second.Added)
	assert.Equal(t, 2, second.Matched)
	assert.Equal(t, first.Photos, second.Photos)
}

func TestScanReportsDeletedWithoutRemoving(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "keep.jpg", "gone.jpg")
	db := openStore(t, root)
	s := New(db, Options{})

	_, err := s.Scan(context.Background(), root)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(root, "gone.jpg")))

	res, err := s.Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "gone.jpg")}, res.Deleted)
	assert.Equal(t, []string{"keep.jpg"}, names(res.Photos))

	stored, _, err := database.ListPhotos(db)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestScanRetriesMissingThumbnails(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "raw.nrw")
	db := openStore(t, root)

	failing := &fakeThumbnailer{fail: map[string]bool{"raw.nrw": true}}
	_, err := New(db, Options{Thumbnailer: failing}).Scan(context.Background(), root)
	require.NoError(t, err)

	working := &fakeThumbnailer{}
	res, err := New(db, Options{Thumbnailer: working}).Scan(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, res.Photos, 1)
	assert.Equal(t, "thumbnails/raw.nrw.jpg", res.Photos[0].Thumbnail)

	stored, err := database.GetPhoto(db, res.Photos[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "thumbnails/raw.nrw.jpg", stored.Thumbnail)
}

func TestScanProgressIsMonotonicAndEndsAt100(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.jpg", "b.orf", "c.mov", "d.jpg")
	db := openStore(t, root)

	var seen []int
	s := New(db, Options{
		Thumbnailer: &fakeThumbnailer{},
		OnProgress:  func(p Progress) { seen = append(seen, p.Percent) },
	})
	_, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		assert.GreaterOrEqual(t, seen[i], seen[i-1])
	}
	assert.Equal(t, 100, seen[len(seen)-1])
}

func TestScanEmptyFolderStillFinishes(t *testing.T) {
	root := t.TempDir()
	db := openStore(t, root)

	var last Progress
	res, err := New(db, Options{OnProgress: func(p Progress) { last = p }}).Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, res.Photos)
	assert.Equal(t, 100, last.Percent)
	assert.Equal(t, PhaseDone, last.Phase)
}

func TestScanMissingRoot(t *testing.T) {
	root := t.TempDir()
	db := openStore(t, root)

	_, err := New(db, Options{}).Scan(context.Background(), filepath.Join(root, "nope"))
	assert.Error(t, err)
}

func TestScanRerendersThumbnailsMissingFromStore(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "clip.mov")
	db := openStore(t, root)

	_, err := New(db, Options{Thumbnailer: &fakeThumbnailer{}}).Scan(context.Background(), root)
	require.NoError(t, err)

	present := &fakeThumbnailer{}
	_, err = New(db, Options{
		Thumbnailer:     present,
		ThumbnailExists: func(string) bool { return true },
	}).Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Empty(t, present.seen)

	missing := &fakeThumbnailer{}
	_, err = New(db, Options{
		Thumbnailer:     missing,
		ThumbnailExists: func(string) bool { return false },
	}).Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"clip.mov"}, missing.seen)
}

func TestScanClearsThumbnailWhenRerenderFails(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "clip.mov")
	db := openStore(t, root)

	first, err := New(db, Options{Thumbnailer: &fakeThumbnailer{}}).Scan(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, first.Photos, 1)
	require.Equal(t, "thumbnails/clip.mov.jpg", first.Photos[0].Thumbnail)

	res, err := New(db, Options{
		Thumbnailer:     &fakeThumbnailer{fail: map[string]bool{"clip.mov": true}},
		ThumbnailExists: func(string) bool { return false },
	}).Scan(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "thumbnail", res.Errors[0].Op)
	require.Len(t, res.Photos, 1)
	assert.Empty(t, res.Photos[0].Thumbnail)

	stored, err := database.GetPhoto(db, res.Photos[0].ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Thumbnail)
}

func TestScanSkipsUnreadableDirectories(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	root := t.TempDir()
	writeFiles(t, root, "a.jpg", "locked/hidden.jpg", "open/b.jpg")
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { os.Chmod(locked, 0o755) })
	db := openStore(t, root)

	res, err := New(db, Options{CaptureDate: func(string) string { return "" }}).Scan(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, names(res.Photos))
	assert.Equal(t, 2, res.Added)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "walk", res.Errors[0].Op)
	assert.Equal(t, locked, res.Errors[0].Path)
}

func TestScanRecordsInsertFailures(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.jpg", "b.jpg")
	db := openStore(t, root)
	require.NoError(t, database.InsertPhoto(db, database.PhotoRecord{ID: "taken", Name: filepath.Join(t.TempDir(), "other.jpg")}))

	ids := []string{"taken", "fresh"}
	s := New(db, Options{
		CaptureDate: func(string) string { return "" },
		NewID: func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		},
	})
	res, err := s.Scan(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "insert", res.Errors[0].Op)
	assert.Equal(t, filepath.Join(root, "a.jpg"), res.Errors[0].Path)
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, []string{"b.jpg"}, names(res.Photos))
	assert.Len(t, res.Deleted, 1)

	stored, err := database.GetPhoto(db, "fresh")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "b.jpg"), stored.Name)
}

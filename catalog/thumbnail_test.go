package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/photodesk/database"
	"github.com/camden-git/photodesk/media"
	"github.com/camden-git/photodesk/scanner"
	"github.com/camden-git/photodesk/workers"
)

// heldGenerator renders thumbnails immediately. Once held is set, rendering
// a.orf blocks until Release.
type heldGenerator struct {
	held    atomic.Bool
	gate    chan struct{}
	release sync.Once
	started chan struct{}
}

func newHeldGenerator() *heldGenerator {
	return &heldGenerator{gate: make(chan struct{}), started: make(chan struct{}, 1)}
}

func (g *heldGenerator) generate(_ context.Context, src string, _ media.Kind) (string, error) {
	base := filepath.Base(src)
	if g.held.Load() && base == "a.orf" {
		g.started <- struct{}{}
		<-g.gate
		return "thumbnails/a-again.jpg", nil
	}
	return "thumbnails/" + base + ".jpg", nil
}

func (g *heldGenerator) Release() { g.release.Do(func() { close(g.gate) }) }

func newThumbnailPool(t *testing.T, generate workers.ThumbnailFunc) *workers.ThumbnailGenerator {
	t.Helper()
	gen := workers.NewThumbnailGenerator(generate, 10, 1)
	t.Cleanup(gen.Stop)
	return gen
}

func openWith(t *testing.T, opts Options, root string) *Library {
	t.Helper()
	opts.DBLogLevel = "silent"
	opts.CaptureDate = func(string) string { return "" }
	l := New(opts)
	t.Cleanup(func() { l.Close() })
	_, err := l.OpenFolder(context.Background(), root)
	require.NoError(t, err)
	return l
}

func TestQueueThumbnailRequiresPoolAndFolder(t *testing.T) {
	_, err := New(Options{}).QueueThumbnail("x")
	assert.ErrorIs(t, err, ErrInvalidInput)

	gen := newThumbnailPool(t, newHeldGenerator().generate)
	_, err = New(Options{Thumbnails: gen}).QueueThumbnail("x")
	assert.ErrorIs(t, err, ErrNoFolder)

	root := t.TempDir()
	l := openWith(t, Options{Thumbnails: gen}, root)
	_, err = l.QueueThumbnail("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueueThumbnailStoresResultAndDropsOldAsset(t *testing.T) {
	assets, err := media.NewLocalStorage(t.TempDir(), map[media.AssetType]string{media.AssetTypeThumbnail: "thumbnails"})
	require.NoError(t, err)
	var n atomic.Int32
	gen := newThumbnailPool(t, func(_ context.Context, src string, _ media.Kind) (string, error) {
		name := fmt.Sprintf("%s-%d.jpg", strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)), n.Add(1))
		return assets.Save(media.AssetTypeThumbnail, name, strings.NewReader("jpeg"))
	})

	root := t.TempDir()
	writeFile(t, root, "a.orf", "raw")
	events := make(chan Photo, 1)
	l := openWith(t, Options{
		Thumbnails:  gen,
		Assets:      assets,
		OnThumbnail: func(p Photo) { events <- p },
	}, root)
	a := photoID(t, l, root, "a.orf")

	before, err := l.Photo(a)
	require.NoError(t, err)
	require.Equal(t, "thumbnails/a-1.jpg", before.Thumbnail)
	require.True(t, assets.Exists(before.Thumbnail))

	queued, err := l.QueueThumbnail(a)
	require.NoError(t, err)
	require.True(t, queued)

	select {
	case ev := <-events:
		assert.Equal(t, a, ev.ID)
		assert.Equal(t, "thumbnails/a-2.jpg", ev.Thumbnail)
	case <-time.After(5 * time.Second):
		t.Fatal("thumbnail was never stored")
	}

	after, err := l.Photo(a)
	require.NoError(t, err)
	assert.Equal(t, "thumbnails/a-2.jpg", after.Thumbnail)
	assert.True(t, assets.Exists("thumbnails/a-2.jpg"))
	assert.False(t, assets.Exists("thumbnails/a-1.jpg"))

	l.storeMu.Lock()
	stored, err := database.GetPhoto(l.db, a)
	l.storeMu.Unlock()
	require.NoError(t, err)
	assert.Equal(t, "thumbnails/a-2.jpg", stored.Thumbnail)
}

func TestQueueThumbnailDropsResultForReplacedFolder(t *testing.T) {
	g := newHeldGenerator()
	gen := newThumbnailPool(t, g.generate)
	t.Cleanup(g.Release)

	root := t.TempDir()
	writeFile(t, root, "a.orf", "raw")
	var events atomic.Int32
	l := openWith(t, Options{Thumbnails: gen, OnThumbnail: func(Photo) { events.Add(1) }}, root)
	a := photoID(t, l, root, "a.orf")

	g.held.Store(true)
	queued, err := l.QueueThumbnail(a)
	require.NoError(t, err)
	require.True(t, queued)
	<-g.started

	other := t.TempDir()
	writeFile(t, other, "z.jpg", "z")
	_, err = l.OpenFolder(context.Background(), other)
	require.NoError(t, err)
	g.Release()

	assert.Never(t, func() bool { return events.Load() > 0 }, 300*time.Millisecond, 10*time.Millisecond)
	_, err = l.Photo(a)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueueThumbnailDoesNotBlockReopen(t *testing.T) {
	g := newHeldGenerator()
	gen := newThumbnailPool(t, g.generate)
	t.Cleanup(g.Release)

	root := t.TempDir()
	writeFile(t, root, "a.orf", "raw")
	l := openWith(t, Options{
		Thumbnails: gen,
		OnProgress: func(scanner.Progress) {
			if g.held.Load() {
				g.Release()
			}
		},
	}, root)
	a := photoID(t, l, root, "a.orf")

	// the only worker is busy with a's job when the reopen needs it for b
	g.held.Store(true)
	queued, err := l.QueueThumbnail(a)
	require.NoError(t, err)
	require.True(t, queued)
	<-g.started
	writeFile(t, root, "b.orf", "raw")

	done := make(chan error, 1)
	go func() {
		_, err := l.OpenFolder(context.Background(), root)
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("reopening the folder blocked on the thumbnail pool")
	}

	b := photoID(t, l, root, "b.orf")
	pb, err := l.Photo(b)
	require.NoError(t, err)
	assert.Equal(t, "thumbnails/b.orf.jpg", pb.Thumbnail)
	require.Eventually(t, func() bool {
		p, err := l.Photo(a)
		return err == nil && p.Thumbnail == "thumbnails/a-again.jpg"
	}, 5*time.Second, 10*time.Millisecond)
}

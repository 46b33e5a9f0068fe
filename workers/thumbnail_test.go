package workers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/photodesk/media"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	return p
}

func TestGenerateBatchCollectsResultsInOrder(t *testing.T) {
	dir := t.TempDir()
	good := touch(t, dir, "a.orf")
	bad := touch(t, dir, "b.mp4")
	missing := filepath.Join(dir, "gone.mov")

	var calls atomic.Int32
	gen := NewThumbnailGenerator(func(ctx context.Context, src string, kind media.Kind) (string, error) {
		calls.Add(1)
		if kind == media.KindVideo {
			return "", errors.New("ffmpeg exploded")
		}
		return "thumbnails/" + filepath.Base(src) + ".jpg", nil
	}, 2, 3)
	defer gen.Stop()

	results := gen.GenerateBatch(context.Background(), []ThumbnailJob{
		{SourcePath: good, Kind: media.KindRaw},
		{SourcePath: bad, Kind: media.KindVideo},
		{SourcePath: missing, Kind: media.KindVideo},
	})

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "thumbnails/a.orf.jpg", results[0].ThumbnailPath)
	assert.EqualError(t, results[1].Err, "ffmpeg exploded")
	assert.True(t, os.IsNotExist(results[2].Err))
	assert.Equal(t, int32(2), calls.Load(), "missing files never reach the generator")
}

func TestQueueJobSkipsPendingDuplicates(t *testing.T) {
	dir := t.TempDir()
	src := touch(t, dir, "a.orf")

	release := make(chan struct{})
	gen := NewThumbnailGenerator(func(ctx context.Context, src string, kind media.Kind) (string, error) {
		<-release
		return "thumb.jpg", nil
	}, 4, 1)
	defer gen.Stop()

	done := make(chan ThumbnailResult, 1)
	assert.True(t, gen.QueueJob(ThumbnailJob{SourcePath: src, Kind: media.KindRaw, Done: func(r ThumbnailResult) { done <- r }}))
	assert.False(t, gen.QueueJob(ThumbnailJob{SourcePath: src, Kind: media.KindRaw}))

	close(release)
	select {
	case res := <-done:
		assert.NoError(t, res.Err)
		assert.Equal(t, "thumb.jpg", res.ThumbnailPath)
	case <-time.After(5 * time.Second):
		t.Fatal("job never completed")
	}
}

package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/camden-git/photodesk/database"
	"github.com/camden-git/photodesk/models"
)

func newTestRepos(t *testing.T) *Repositories {
	t.Helper()
	sqlDB, err := database.InitDB(filepath.Join(t.TempDir(), database.StoreFileName))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := database.InitGormDB(sqlDB, "silent")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrateModels(db))
	return New(db)
}

func TestSettingSetIsUpsert(t *testing.T) {
	repos := newTestRepos(t)

	first, err := repos.Settings.Set("version", 1)
	require.NoError(t, err)
	second, err := repos.Settings.Set("version", 2)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "existing row is updated in place")
	assert.Equal(t, 2, second.Value)

	all, err := repos.Settings.ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestJournalUpdate(t *testing.T) {
	repos := newTestRepos(t)

	j := &models.Journal{Date: "2024-05-01", Text: "hello"}
	require.NoError(t, repos.Journals.Create(j))
	require.NotEmpty(t, j.ID)

	updated, err := repos.Journals.Update(j.ID, JournalFieldActivities, []string{"a1", "a2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, updated.Activities)

	_, err = repos.Journals.Update(j.ID, JournalFieldMood, "happy")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = repos.Journals.Update(j.ID, JournalField("weather"), "sunny")
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = repos.Journals.Update("missing", JournalFieldText, "x")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	list, err := repos.Journals.ListAll()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"a1", "a2"}, list[0].Activities)
}

func TestShapeLifecycle(t *testing.T) {
	repos := newTestRepos(t)

	layer := &models.Layer{Name: "Trips"}
	require.NoError(t, repos.Layers.Create(layer))
	require.NoError(t, repos.Layers.SetColor(layer.ID, "#ff0000"))
	assert.ErrorIs(t, repos.Layers.SetColor("nope", "#000"), gorm.ErrRecordNotFound)

	shape := &models.Shape{Type: "polygon", Layer: layer.ID}
	require.NoError(t, repos.Layers.CreateShape(shape))

	points := [][]float64{{1, 2}, {3, 4}}
	updated, err := repos.Layers.UpdateShape(shape.ID, ShapeFieldPoints, points)
	require.NoError(t, err)
	assert.Equal(t, points, updated.Points)

	require.NoError(t, repos.Layers.DeleteShape(shape.ID))
	assert.ErrorIs(t, repos.Layers.DeleteShape(shape.ID), gorm.ErrRecordNotFound)
}

func TestWikiUpdate(t *testing.T) {
	repos := newTestRepos(t)

	page := &models.WikiPage{Name: "Home"}
	require.NoError(t, repos.Wiki.Create(page))

	updated, err := repos.Wiki.Update(page.ID, WikiFieldContent, "# hi")
	require.NoError(t, err)
	assert.Equal(t, "# hi", updated.Content)
	assert.Equal(t, "Home", updated.Name)
}

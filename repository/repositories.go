package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrUnknownField is returned when an update names a field outside the closed set.
var ErrUnknownField = errors.New("unknown field")

// ErrInvalidValue is returned when an update value has the wrong type for its field.
var ErrInvalidValue = errors.New("invalid value for field")

// Repositories bundles every record repository over one GORM handle.
type Repositories struct {
	PersonCategories PersonCategoryRepositoryInterface
	Layers           LayerRepositoryInterface
	Groups           GroupRepositoryInterface
	Journals         JournalRepositoryInterface
	Wiki             WikiRepositoryInterface
	Settings         SettingRepositoryInterface
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		PersonCategories: NewPersonCategoryRepository(db),
		Layers:           NewLayerRepository(db),
		Groups:           NewGroupRepository(db),
		Journals:         NewJournalRepository(db),
		Wiki:             NewWikiRepository(db),
		Settings:         NewSettingRepository(db),
	}
}

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func fieldValueError(field string, value any) error {
	return fmt.Errorf("%w %s: %T", ErrInvalidValue, field, value)
}

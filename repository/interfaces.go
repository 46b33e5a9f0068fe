package repository

import (
	"github.com/camden-git/photodesk/models"
)

// PersonCategoryRepositoryInterface defines the methods for person category data operations
type PersonCategoryRepositoryInterface interface {
	Create(category *models.PersonCategory) error
	ListAll() ([]models.PersonCategory, error)
}

// LayerRepositoryInterface defines the methods for map layer and shape data operations
type LayerRepositoryInterface interface {
	Create(layer *models.Layer) error
	ListAll() ([]models.Layer, error)
	SetColor(id, color string) error

	CreateShape(shape *models.Shape) error
	ListShapes() ([]models.Shape, error)
	UpdateShape(id string, field ShapeField, value any) (*models.Shape, error)
	DeleteShape(id string) error
}

// GroupRepositoryInterface defines the methods for photo group data operations
type GroupRepositoryInterface interface {
	Create(group *models.Group) error
	ListAll() ([]models.Group, error)
}

// JournalRepositoryInterface defines the methods for journal and activity data operations
type JournalRepositoryInterface interface {
	Create(journal *models.Journal) error
	ListAll() ([]models.Journal, error)
	Update(id string, field JournalField, value any) (*models.Journal, error)

	CreateActivity(activity *models.Activity) error
	ListActivities() ([]models.Activity, error)
}

// WikiRepositoryInterface defines the methods for wiki page data operations
type WikiRepositoryInterface interface {
	Create(page *models.WikiPage) error
	ListAll() ([]models.WikiPage, error)
	Update(id string, field WikiField, value string) (*models.WikiPage, error)
}

// SettingRepositoryInterface defines the methods for setting data operations
type SettingRepositoryInterface interface {
	Set(name string, value int) (*models.Setting, error)
	Get(name string) (*models.Setting, error)
	ListAll() ([]models.Setting, error)
}

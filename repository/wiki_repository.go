package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/camden-git/photodesk/models"
	"gorm.io/gorm"
)

// WikiField is a settable wiki page attribute
type WikiField string

const (
	WikiFieldName    WikiField = "name"
	WikiFieldContent WikiField = "content"
	WikiFieldIV      WikiField = "iv"
)

// WikiRepository handles database operations for wiki pages
type WikiRepository struct {
	DB *gorm.DB
}

func NewWikiRepository(db *gorm.DB) *WikiRepository {
	return &WikiRepository{DB: db}
}

func (r *WikiRepository) Create(page *models.WikiPage) error {
	page.ID = newID(page.ID)
	now := time.Now().Unix()
	if page.CreatedAt == 0 {
		page.CreatedAt = now
	}
	if page.UpdatedAt == 0 {
		page.UpdatedAt = now
	}
	if err := r.DB.Create(page).Error; err != nil {
		return fmt.Errorf("failed to create wiki page %s: %w", page.Name, err)
	}
	return nil
}

func (r *WikiRepository) ListAll() ([]models.WikiPage, error) {
	var pages []models.WikiPage
	if err := r.DB.Order("name ASC").Find(&pages).Error; err != nil {
		return nil, fmt.Errorf("failed to list wiki pages: %w", err)
	}
	return pages, nil
}

func (r *WikiRepository) Update(id string, field WikiField, value string) (*models.WikiPage, error) {
	var page models.WikiPage
	if err := r.DB.First(&page, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get wiki page %s: %w", id, err)
	}

	switch field {
	case WikiFieldName:
		page.Name = value
	case WikiFieldContent:
		page.Content = value
	case WikiFieldIV:
		page.IV = value
	default:
		return nil, fmt.Errorf("%w: wiki.%s", ErrUnknownField, field)
	}

	page.UpdatedAt = time.Now().Unix()
	if err := r.DB.Save(&page).Error; err != nil {
		return nil, fmt.Errorf("failed to update wiki page %s: %w", id, err)
	}
	return &page, nil
}

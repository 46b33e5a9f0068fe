package repository

import (
	"fmt"
	"time"

	"github.com/camden-git/photodesk/models"
	"gorm.io/gorm"
)

// PersonCategoryRepository handles database operations for person categories
type PersonCategoryRepository struct {
	DB *gorm.DB
}

func NewPersonCategoryRepository(db *gorm.DB) *PersonCategoryRepository {
	return &PersonCategoryRepository{DB: db}
}

func (r *PersonCategoryRepository) Create(category *models.PersonCategory) error {
	category.ID = newID(category.ID)
	if category.CreatedAt == 0 {
		category.CreatedAt = time.Now().Unix()
	}
	if err := r.DB.Create(category).Error; err != nil {
		return fmt.Errorf("failed to create person category %s: %w", category.Name, err)
	}
	return nil
}

func (r *PersonCategoryRepository) ListAll() ([]models.PersonCategory, error) {
	var categories []models.PersonCategory
	if err := r.DB.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list person categories: %w", err)
	}
	return categories, nil
}

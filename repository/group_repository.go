package repository

import (
	"fmt"
	"time"

	"github.com/camden-git/photodesk/models"
	"gorm.io/gorm"
)

// GroupRepository handles database operations for photo group names
type GroupRepository struct {
	DB *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{DB: db}
}

func (r *GroupRepository) Create(group *models.Group) error {
	group.ID = newID(group.ID)
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	if err := r.DB.Create(group).Error; err != nil {
		return fmt.Errorf("failed to create group %s: %w", group.Name, err)
	}
	return nil
}

func (r *GroupRepository) ListAll() ([]models.Group, error) {
	var groups []models.Group
	if err := r.DB.Order("name ASC").Find(&groups).Error; err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

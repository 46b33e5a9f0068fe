package repository

import (
	"errors"
	"fmt"

	"github.com/camden-git/photodesk/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository handles database operations for named settings
type SettingRepository struct {
	DB *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{DB: db}
}

// Set inserts the setting or overwrites the value of an existing one.
func (r *SettingRepository) Set(name string, value int) (*models.Setting, error) {
	setting := models.Setting{ID: newID(""), Setting: name, Value: value}
	err := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&setting).Error
	if err != nil {
		return nil, fmt.Errorf("failed to set setting %s: %w", name, err)
	}
	return r.Get(name)
}

func (r *SettingRepository) Get(name string) (*models.Setting, error) {
	var setting models.Setting
	if err := r.DB.First(&setting, "setting = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get setting %s: %w", name, err)
	}
	return &setting, nil
}

func (r *SettingRepository) ListAll() ([]models.Setting, error) {
	var settings []models.Setting
	if err := r.DB.Order("setting ASC").Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return settings, nil
}

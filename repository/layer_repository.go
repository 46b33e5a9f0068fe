package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/camden-git/photodesk/models"
	"gorm.io/gorm"
)

// ShapeField is a settable shape attribute
type ShapeField string

const (
	ShapeFieldType   ShapeField = "type"
	ShapeFieldPoints ShapeField = "points"
	ShapeFieldLayer  ShapeField = "layer"
	ShapeFieldName   ShapeField = "name"
)

// LayerRepository handles database operations for map layers and the shapes drawn on them
type LayerRepository struct {
	DB *gorm.DB
}

func NewLayerRepository(db *gorm.DB) *LayerRepository {
	return &LayerRepository{DB: db}
}

func (r *LayerRepository) Create(layer *models.Layer) error {
	layer.ID = newID(layer.ID)
	if layer.CreatedAt == 0 {
		layer.CreatedAt = time.Now().Unix()
	}
	if err := r.DB.Create(layer).Error; err != nil {
		return fmt.Errorf("failed to create layer %s: %w", layer.Name, err)
	}
	return nil
}

func (r *LayerRepository) ListAll() ([]models.Layer, error) {
	var layers []models.Layer
	if err := r.DB.Order("name ASC").Find(&layers).Error; err != nil {
		return nil, fmt.Errorf("failed to list layers: %w", err)
	}
	return layers, nil
}

func (r *LayerRepository) SetColor(id, color string) error {
	result := r.DB.Model(&models.Layer{}).Where("id = ?", id).Update("color", color)
	if result.Error != nil {
		return fmt.Errorf("failed to set color for layer %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *LayerRepository) CreateShape(shape *models.Shape) error {
	shape.ID = newID(shape.ID)
	if shape.CreatedAt == 0 {
		shape.CreatedAt = time.Now().Unix()
	}
	if shape.Points == nil {
		shape.Points = [][]float64{}
	}
	if err := r.DB.Create(shape).Error; err != nil {
		return fmt.Errorf("failed to create shape %s: %w", shape.ID, err)
	}
	return nil
}

func (r *LayerRepository) ListShapes() ([]models.Shape, error) {
	var shapes []models.Shape
	if err := r.DB.Order("created_at ASC").Find(&shapes).Error; err != nil {
		return nil, fmt.Errorf("failed to list shapes: %w", err)
	}
	return shapes, nil
}

// UpdateShape loads the shape, applies one field and saves it back.
func (r *LayerRepository) UpdateShape(id string, field ShapeField, value any) (*models.Shape, error) {
	var shape models.Shape
	if err := r.DB.First(&shape, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get shape %s: %w", id, err)
	}

	switch field {
	case ShapeFieldType, ShapeFieldLayer, ShapeFieldName:
		s, ok := value.(string)
		if !ok {
			return nil, fieldValueError(string(field), value)
		}
		switch field {
		case ShapeFieldType:
			shape.Type = s
		case ShapeFieldLayer:
			shape.Layer = s
		default:
			shape.Name = s
		}
	case ShapeFieldPoints:
		points, ok := value.([][]float64)
		if !ok {
			return nil, fieldValueError(string(field), value)
		}
		shape.Points = points
	default:
		return nil, fmt.Errorf("%w: shape.%s", ErrUnknownField, field)
	}

	if err := r.DB.Save(&shape).Error; err != nil {
		return nil, fmt.Errorf("failed to update shape %s: %w", id, err)
	}
	return &shape, nil
}

func (r *LayerRepository) DeleteShape(id string) error {
	result := r.DB.Delete(&models.Shape{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete shape %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

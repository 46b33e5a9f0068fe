package models

// Layer is a named, colored map overlay that places and shapes belong to.
type Layer struct {
	ID        string `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"not null" json:"name"`
	Color     string `gorm:"not null;default:''" json:"color"`
	CreatedAt int64  `gorm:"not null" json:"created_at"`
}

func (Layer) TableName() string {
	return "layers"
}

// Shape is a polygon or line drawn on a layer.
type Shape struct {
	ID        string      `gorm:"primaryKey" json:"id"`
	Type      string      `gorm:"not null" json:"type"`
	Points    [][]float64 `gorm:"serializer:json" json:"points"`
	Layer     string      `gorm:"index;not null;default:''" json:"layer"`
	Name      string      `gorm:"not null;default:''" json:"name"`
	CreatedAt int64       `gorm:"not null" json:"created_at"`
}

func (Shape) TableName() string {
	return "shapes"
}

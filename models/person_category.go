package models

// PersonCategory groups people in the UI (family, friends, ...).
// It corresponds to the 'person_categories' table.
type PersonCategory struct {
	ID        string `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"not null" json:"name"`
	Color     string `gorm:"not null;default:''" json:"color"`
	CreatedAt int64  `gorm:"not null" json:"created_at"` // Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (PersonCategory) TableName() string {
	return "person_categories"
}

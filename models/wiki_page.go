package models

// WikiPage is a free-form note page, optionally encrypted (IV non-empty).
type WikiPage struct {
	ID        string `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"not null" json:"name"`
	Content   string `gorm:"not null;default:''" json:"content"`
	IV        string `gorm:"column:iv;not null;default:''" json:"iv"`
	CreatedAt int64  `gorm:"not null" json:"created_at"`
	UpdatedAt int64  `gorm:"not null" json:"updated_at"`
}

func (WikiPage) TableName() string {
	return "wiki_pages"
}

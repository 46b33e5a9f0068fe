package models

// Group names a photo group. Membership lives on the photo rows.
type Group struct {
	ID        string `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"not null" json:"name"`
	CreatedAt int64  `gorm:"not null" json:"created_at"`
}

func (Group) TableName() string {
	return "photo_groups"
}

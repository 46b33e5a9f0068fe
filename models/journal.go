package models

// Activity is something a journal entry can record (hiking, reading, ...).
type Activity struct {
	ID        string `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"not null" json:"name"`
	Icon      string `gorm:"not null;default:''" json:"icon"`
	CreatedAt int64  `gorm:"not null" json:"created_at"`
}

func (Activity) TableName() string {
	return "activities"
}

// Journal is a dated diary entry. Text may be encrypted client side, IV holds its nonce.
type Journal struct {
	ID         string   `gorm:"primaryKey" json:"id"`
	Date       string   `gorm:"index;not null" json:"date"`
	Mood       int      `gorm:"not null;default:0" json:"mood"`
	Text       string   `gorm:"not null;default:''" json:"text"`
	Activities []string `gorm:"serializer:json" json:"activities"`
	Steps      int      `gorm:"not null;default:0" json:"steps"`
	IV         string   `gorm:"column:iv;not null;default:''" json:"iv"`
	CreatedAt  int64    `gorm:"not null" json:"created_at"`
	UpdatedAt  int64    `gorm:"not null" json:"updated_at"`
}

func (Journal) TableName() string {
	return "journals"
}

package models

// Setting is a named integer preference. Setting names are unique.
type Setting struct {
	ID      string `gorm:"primaryKey" json:"id"`
	Setting string `gorm:"uniqueIndex;not null" json:"setting"`
	Value   int    `gorm:"not null;default:0" json:"value"`
}

func (Setting) TableName() string {
	return "settings"
}

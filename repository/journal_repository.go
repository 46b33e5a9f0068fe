package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/camden-git/photodesk/models"
	"gorm.io/gorm"
)

// JournalField is a settable journal attribute
type JournalField string

const (
	JournalFieldDate       JournalField = "date"
	JournalFieldMood       JournalField = "mood"
	JournalFieldText       JournalField = "text"
	JournalFieldActivities JournalField = "activities"
	JournalFieldSteps      JournalField = "steps"
	JournalFieldIV         JournalField = "iv"
)

// JournalRepository handles database operations for journal entries and activities
type JournalRepository struct {
	DB *gorm.DB
}

func NewJournalRepository(db *gorm.DB) *JournalRepository {
	return &JournalRepository{DB: db}
}

func (r *JournalRepository) Create(journal *models.Journal) error {
	journal.ID = newID(journal.ID)
	now := time.Now().Unix()
	if journal.CreatedAt == 0 {
		journal.CreatedAt = now
	}
	if journal.UpdatedAt == 0 {
		journal.UpdatedAt = now
	}
	if journal.Activities == nil {
		journal.Activities = []string{}
	}
	if err := r.DB.Create(journal).Error; err != nil {
		return fmt.Errorf("failed to create journal for %s: %w", journal.Date, err)
	}
	return nil
}

// ListAll returns journals newest first
func (r *JournalRepository) ListAll() ([]models.Journal, error) {
	var journals []models.Journal
	if err := r.DB.Order("date DESC").Find(&journals).Error; err != nil {
		return nil, fmt.Errorf("failed to list journals: %w", err)
	}
	return journals, nil
}

func (r *JournalRepository) Update(id string, field JournalField, value any) (*models.Journal, error) {
	var journal models.Journal
	if err := r.DB.First(&journal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get journal %s: %w", id, err)
	}

	switch field {
	case JournalFieldDate, JournalFieldText, JournalFieldIV:
		s, ok := value.(string)
		if !ok {
			return nil, fieldValueError(string(field), value)
		}
		switch field {
		case JournalFieldDate:
			journal.Date = s
		case JournalFieldText:
			journal.Text = s
		default:
			journal.IV = s
		}
	case JournalFieldMood, JournalFieldSteps:
		n, ok := value.(int)
		if !ok {
			return nil, fieldValueError(string(field), value)
		}
		if field == JournalFieldMood {
			journal.Mood = n
		} else {
			journal.Steps = n
		}
	case JournalFieldActivities:
		activities, ok := value.([]string)
		if !ok {
			return nil, fieldValueError(string(field), value)
		}
		journal.Activities = activities
	default:
		return nil, fmt.Errorf("%w: journal.%s", ErrUnknownField, field)
	}

	journal.UpdatedAt = time.Now().Unix()
	if err := r.DB.Save(&journal).Error; err != nil {
		return nil, fmt.Errorf("failed to update journal %s: %w", id, err)
	}
	return &journal, nil
}

func (r *JournalRepository) CreateActivity(activity *models.Activity) error {
	activity.ID = newID(activity.ID)
	if activity.CreatedAt == 0 {
		activity.CreatedAt = time.Now().Unix()
	}
	if err := r.DB.Create(activity).Error; err != nil {
		return fmt.Errorf("failed to create activity %s: %w", activity.Name, err)
	}
	return nil
}

func (r *JournalRepository) ListActivities() ([]models.Activity, error) {
	var activities []models.Activity
	if err := r.DB.Order("name ASC").Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

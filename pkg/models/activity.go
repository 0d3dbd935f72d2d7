package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActivityLogin         = "login"
	ActivityPageVisit     = "page_visit"
	ActivityPostPublished = "post_published"
)

// ActivityRecord is an append-only audit entry. Nothing updates or deletes it.
type ActivityRecord struct {
	ID           string            `gorm:"type:uuid;primary_key" json:"id"`
	UserID       string            `gorm:"type:uuid;not null;index" json:"user_id"`
	ActivityType string            `gorm:"type:varchar(50);not null;index" json:"activity_type"`
	Timestamp    time.Time         `gorm:"autoCreateTime;index" json:"timestamp"`
	Details      datatypes.JSONMap `gorm:"type:json" json:"details"`
}

func (ActivityRecord) TableName() string {
	return "user_activities"
}

func (a *ActivityRecord) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

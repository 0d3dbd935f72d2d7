// Package activity appends audit entries to the user_activities table.
package activity

import (
	"context"
	"fmt"

	"advanced-blog/pkg/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Recorder interface {
	Record(ctx context.Context, userID, activityType string, details map[string]interface{}) error
	List(ctx context.Context, userID string, limit, offset int) ([]*models.ActivityRecord, error)
}

type recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) Recorder {
	return &recorder{db: db}
}

// Record appends one entry. Store errors are returned to the caller.
func (r *recorder) Record(ctx context.Context, userID, activityType string, details map[string]interface{}) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	record := &models.ActivityRecord{
		UserID:       userID,
		ActivityType: activityType,
		Details:      datatypes.JSONMap(details),
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to record %s activity: %w", activityType, err)
	}
	return nil
}

// List returns a user's entries, newest first.
func (r *recorder) List(ctx context.Context, userID string, limit, offset int) ([]*models.ActivityRecord, error) {
	var records []*models.ActivityRecord
	query := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

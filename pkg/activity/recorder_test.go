package activity

import (
	"context"
	"testing"
	"time"

	"advanced-blog/pkg/database"
	"advanced-blog/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.NewSQLiteDB(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ActivityRecord{}))
	return db
}

func TestRecord(t *testing.T) {
	db := setupTestDB(t)
	rec := NewRecorder(db)
	ctx := context.Background()

	err := rec.Record(ctx, "user-1", models.ActivityPostPublished, map[string]interface{}{"post_id": "post-1", "title": "Hello"})
	require.NoError(t, err)

	var stored []models.ActivityRecord
	require.NoError(t, db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, "user-1", stored[0].UserID)
	assert.Equal(t, models.ActivityPostPublished, stored[0].ActivityType)
	assert.Equal(t, "post-1", stored[0].Details["post_id"])
	assert.Equal(t, "Hello", stored[0].Details["title"])
	assert.False(t, stored[0].Timestamp.IsZero())
}

func TestRecord_NilDetails(t *testing.T) {
	db := setupTestDB(t)
	rec := NewRecorder(db)

	require.NoError(t, rec.Record(context.Background(), "user-1", models.ActivityLogin, nil))

	records, err := rec.List(context.Background(), "user-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Details)
}

func TestRecord_StoreUnavailable(t *testing.T) {
	db := setupTestDB(t)
	rec := NewRecorder(db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = rec.Record(context.Background(), "user-1", models.ActivityLogin, nil)
	assert.Error(t, err)
}

func TestList_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	rec := NewRecorder(db)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, kind := range []string{models.ActivityLogin, models.ActivityPageVisit, models.ActivityPostPublished} {
		require.NoError(t, db.Create(&models.ActivityRecord{
			UserID:       "user-1",
			ActivityType: kind,
			Timestamp:    base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}
	require.NoError(t, rec.Record(ctx, "user-2", models.ActivityLogin, nil))

	records, err := rec.List(ctx, "user-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, models.ActivityPostPublished, records[0].ActivityType)
	assert.Equal(t, models.ActivityLogin, records[2].ActivityType)

	page, err := rec.List(ctx, "user-1", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, models.ActivityPageVisit, page[0].ActivityType)
}

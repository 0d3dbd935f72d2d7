package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"advanced-blog/pkg/activity"
	"advanced-blog/pkg/database"
	"advanced-blog/pkg/logger"
	"advanced-blog/pkg/models"
	"advanced-blog/pkg/roles"
	"advanced-blog/services/blog/internal/entity"
	"advanced-blog/services/blog/internal/repo/persistent"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeImageStore struct {
	mu       sync.Mutex
	uploaded map[string]string
	deleted  []string
	err      error
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{uploaded: map[string]string{}}
}

func (s *fakeImageStore) UploadFile(key string, file io.Reader, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	body, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploaded[key] = string(body)
	return "https://media.example.com/" + key, nil
}

func (s *fakeImageStore) DeleteByURL(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, url)
	return nil
}

type fakeNotifier struct {
	tasks chan map[string]interface{}
	err   error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{tasks: make(chan map[string]interface{}, 16)}
}

func (n *fakeNotifier) PublishNotificationTask(task map[string]interface{}) error {
	n.tasks <- task
	return n.err
}

func (n *fakeNotifier) next(t *testing.T) map[string]interface{} {
	t.Helper()
	select {
	case task := <-n.tasks:
		return task
	case <-time.After(2 * time.Second):
		t.Fatal("no notification task published")
		return nil
	}
}

func (n *fakeNotifier) none(t *testing.T) {
	t.Helper()
	select {
	case task := <-n.tasks:
		t.Fatalf("unexpected notification task: %v", task)
	case <-time.After(50 * time.Millisecond):
	}
}

type fixture struct {
	db         *gorm.DB
	recorder   activity.Recorder
	images     *fakeImageStore
	notifier   *fakeNotifier
	posts      PostUseCase
	comments   CommentUseCase
	categories CategoryUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewSQLiteDB(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	log := logger.NewNop()
	postRepo := persistent.NewPostRepository(db)
	commentRepo := persistent.NewCommentRepository(db)
	taxonomyRepo := persistent.NewTaxonomyRepository(db)
	userRepo := persistent.NewUserRepository(db)
	recorder := activity.NewRecorder(db)

	f := &fixture{
		db:       db,
		recorder: recorder,
		images:   newFakeImageStore(),
		notifier: newFakeNotifier(),
	}
	f.posts = NewPostUseCase(postRepo, commentRepo, taxonomyRepo, userRepo, recorder, f.images, f.notifier, log)
	f.comments = NewCommentUseCase(commentRepo, postRepo, log)
	f.categories = NewCategoryUseCase(taxonomyRepo, log)
	return f
}

func (f *fixture) actor(t *testing.T, username string, role roles.Role) entity.Actor {
	t.Helper()
	flags := roles.DeriveFlags(role)
	user := &models.User{
		Email:       username + "@example.com",
		Username:    username,
		Password:    "x",
		Role:        role,
		IsStaff:     flags.IsStaff,
		IsSuperuser: flags.IsSuperuser,
		IsActive:    true,
	}
	require.NoError(t, f.db.Create(user).Error)
	return entity.Actor{ID: user.ID, Role: role}
}

// published returns the post_published records naming postID.
func (f *fixture) published(t *testing.T, userID, postID string) []*models.ActivityRecord {
	t.Helper()
	records, err := f.recorder.List(context.Background(), userID, 0, 0)
	require.NoError(t, err)

	var out []*models.ActivityRecord
	for _, r := range records {
		if r.ActivityType == models.ActivityPostPublished && r.Details["post_id"] == postID {
			out = append(out, r)
		}
	}
	return out
}

func (f *fixture) countPosts(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.Post{}).Count(&count).Error)
	return count
}

func requirePermissionError(t *testing.T, err error) *PermissionError {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrPermissionDenied), "expected permission error, got %v", err)
	var perr *PermissionError
	require.True(t, errors.As(err, &perr))
	return perr
}

func requireValidationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	return verr
}

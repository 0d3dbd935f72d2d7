package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"advanced-blog/pkg/activity"
	"advanced-blog/pkg/database"
	"advanced-blog/pkg/jwt"
	"advanced-blog/pkg/logger"
	"advanced-blog/pkg/models"
	"advanced-blog/pkg/roles"
	"advanced-blog/services/accounts/internal/entity"
	"advanced-blog/services/accounts/internal/repo/persistent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeImageStore struct {
	uploaded map[string]string
	deleted  []string
	err      error
}

func (s *fakeImageStore) UploadFile(key string, file io.Reader, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	body, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	s.uploaded[key] = string(body)
	return "https://media.example.com/" + key, nil
}

func (s *fakeImageStore) DeleteByURL(url string) error {
	s.deleted = append(s.deleted, url)
	return nil
}

type failingRecorder struct {
	activity.Recorder
}

func (failingRecorder) Record(ctx context.Context, userID, activityType string, details map[string]interface{}) error {
	return errors.New("activity store unavailable")
}

type fixture struct {
	db       *gorm.DB
	repo     persistent.UserRepository
	recorder activity.Recorder
	jwt      *jwt.Service
	images   *fakeImageStore
	accounts AccountUseCase
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

	f := &fixture{
		db:       db,
		repo:     persistent.NewUserRepository(db),
		recorder: activity.NewRecorder(db),
		jwt:      jwt.NewService("test-secret"),
		images:   &fakeImageStore{uploaded: map[string]string{}},
	}
	f.accounts = NewAccountUseCase(f.repo, f.recorder, f.jwt, f.images, logger.NewNop())
	return f
}

func (f *fixture) register(t *testing.T, username string, role roles.Role) *entity.User {
	t.Helper()
	user, _, err := f.accounts.Register(context.Background(), RegisterInput{
		Email:    username + "@example.com",
		Username: username,
		Password: "password123",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

// admin bypasses registration, which never grants admin.
func (f *fixture) admin(t *testing.T, username string) *entity.User {
	t.Helper()
	user := &entity.User{Email: username + "@example.com", Username: username, Password: "x", Role: roles.Admin, IsActive: true}
	require.NoError(t, f.repo.SaveWithRole(context.Background(), user))
	return user
}

func (f *fixture) activities(t *testing.T, userID, activityType string) int {
	t.Helper()
	records, err := f.recorder.List(context.Background(), userID, 0, 0)
	require.NoError(t, err)
	n := 0
	for _, r := range records {
		if r.ActivityType == activityType {
			n++
		}
	}
	return n
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, token, err := f.accounts.Register(ctx, RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "password123",
		Role:     roles.Author,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Empty(t, user.Password)
	assert.Equal(t, roles.Author, user.Role)
	assert.True(t, user.IsStaff)
	assert.False(t, user.IsSuperuser)
	assert.True(t, user.IsActive)
	assert.Equal(t, []string{"Author"}, user.Groups)

	claims, err := f.jwt.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "author", claims.Role)

	stored, err := f.repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.Password)
}

func TestRegister_DefaultsToReader(t *testing.T) {
	f := newFixture(t)

	user := f.register(t, "bob", "")

	assert.Equal(t, roles.Reader, user.Role)
	assert.False(t, user.IsStaff)
	assert.Equal(t, []string{"Reader"}, user.Groups)
}

func TestRegister_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "carol", roles.Reader)

	_, _, err := f.accounts.Register(ctx, RegisterInput{Email: "eve@example.com", Username: "eve", Password: "password123", Role: roles.Admin})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "role")

	_, _, err = f.accounts.Register(ctx, RegisterInput{Email: "carol@example.com", Username: "carol2", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, _, err = f.accounts.Register(ctx, RegisterInput{Email: "carol2@example.com", Username: "carol", Password: "password123"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	var count int64
	require.NoError(t, f.db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLogin_RecordsActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "dave", roles.Reader)

	for _, login := range []string{"dave", "dave@example.com"} {
		got, token, err := f.accounts.Login(ctx, login, "password123")
		require.NoError(t, err, login)
		assert.Equal(t, user.ID, got.ID)
		assert.Empty(t, got.Password)
		assert.NotEmpty(t, token)
	}

	assert.Equal(t, 2, f.activities(t, user.ID, models.ActivityLogin))
}

func TestLogin_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "erin", roles.Reader)

	_, _, err := f.accounts.Login(ctx, "erin", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = f.accounts.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)
	_, _, err = f.accounts.Login(ctx, "erin", "password123")
	assert.ErrorIs(t, err, ErrAccountDisabled)

	assert.Zero(t, f.activities(t, user.ID, models.ActivityLogin))
}

func TestLogin_RecorderFailurePropagates(t *testing.T) {
	f := newFixture(t)
	f.register(t, "frank", roles.Reader)
	accounts := NewAccountUseCase(f.repo, failingRecorder{f.recorder}, f.jwt, nil, logger.NewNop())

	_, token, err := accounts.Login(context.Background(), "frank", "password123")

	require.Error(t, err)
	assert.Empty(t, token)
}

func TestChangeRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t, "root")
	user := f.register(t, "grace", roles.Reader)

	changed, err := f.accounts.ChangeRole(ctx, admin.ID, user.ID, roles.Admin)
	require.NoError(t, err)
	assert.Equal(t, roles.Admin, changed.Role)
	assert.True(t, changed.IsStaff)
	assert.True(t, changed.IsSuperuser)
	assert.Equal(t, []string{"Admin"}, changed.Groups)

	changed, err = f.accounts.ChangeRole(ctx, admin.ID, user.ID, roles.Reader)
	require.NoError(t, err)
	assert.False(t, changed.IsStaff)
	assert.False(t, changed.IsSuperuser)

	stored, err := f.repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Reader"}, stored.Groups)

	// the password hash survives the rewrite
	_, _, err = f.accounts.Login(ctx, "grace", "password123")
	assert.NoError(t, err)
}

func TestChangeRole_Denied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.register(t, "heidi", roles.Author)
	reader := f.register(t, "ivan", roles.Reader)

	_, err := f.accounts.ChangeRole(ctx, author.ID, reader.ID, roles.Author)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = f.accounts.ChangeRole(ctx, reader.ID, reader.ID, roles.Admin)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	stored, err := f.repo.GetByID(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, roles.Reader, stored.Role)
}

func TestChangeRole_DemotedAdminLosesAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.admin(t, "root")
	other := f.admin(t, "other")

	_, err := f.accounts.ChangeRole(ctx, root.ID, other.ID, roles.Reader)
	require.NoError(t, err)

	_, err = f.accounts.ListUsers(ctx, other.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.ErrorIs(t, f.accounts.AuthorizeAdmin(ctx, other.ID), ErrPermissionDenied)
	assert.NoError(t, f.accounts.AuthorizeAdmin(ctx, root.ID))
}

func TestAuthorizeAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t, "root")
	author := f.register(t, "heidi", roles.Author)

	assert.NoError(t, f.accounts.AuthorizeAdmin(ctx, admin.ID))
	assert.ErrorIs(t, f.accounts.AuthorizeAdmin(ctx, author.ID), ErrPermissionDenied)
	assert.ErrorIs(t, f.accounts.AuthorizeAdmin(ctx, "00000000-0000-0000-0000-000000000000"), ErrPermissionDenied)
}

func TestChangeRole_InvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t, "root")

	_, err := f.accounts.ChangeRole(ctx, admin.ID, admin.ID, "editor")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = f.accounts.ChangeRole(ctx, admin.ID, "00000000-0000-0000-0000-000000000000", roles.Author)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t, "root")
	f.register(t, "judy", roles.Author)

	users, err := f.accounts.ListUsers(ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Empty(t, u.Password)
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "kim", roles.Reader)
	f.register(t, "leo", roles.Reader)

	updated, err := f.accounts.UpdateProfile(ctx, user.ID, ProfileInput{
		FirstName: "Kim",
		LastName:  "Lee",
		Email:     "kim.lee@example.com",
		Bio:       "Reader of things",
	})
	require.NoError(t, err)
	assert.Equal(t, "kim.lee@example.com", updated.Email)
	assert.Equal(t, roles.Reader, updated.Role)

	_, err = f.accounts.UpdateProfile(ctx, user.ID, ProfileInput{Email: "leo@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = f.accounts.UpdateProfile(ctx, user.ID, ProfileInput{Bio: strings.Repeat("x", 501)})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "bio")

	stored, err := f.repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Reader of things", stored.Bio)
}

func TestUploadAvatar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "mia", roles.Reader)

	first, err := f.accounts.UploadAvatar(ctx, user.ID, Upload{Filename: "me.PNG", Body: strings.NewReader("one")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.AvatarURL, "https://media.example.com/avatars/"+user.ID+"/"))
	assert.True(t, strings.HasSuffix(first.AvatarURL, ".png"))

	second, err := f.accounts.UploadAvatar(ctx, user.ID, Upload{Filename: "me2.jpg", Body: strings.NewReader("two")})
	require.NoError(t, err)
	assert.NotEqual(t, first.AvatarURL, second.AvatarURL)
	assert.Equal(t, []string{first.AvatarURL}, f.images.deleted)

	stored, err := f.repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.AvatarURL, stored.AvatarURL)
}

func TestUploadAvatar_WithoutStore(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ned", roles.Reader)
	accounts := NewAccountUseCase(f.repo, f.recorder, f.jwt, nil, logger.NewNop())

	_, err := accounts.UploadAvatar(context.Background(), user.ID, Upload{Filename: "me.png", Body: strings.NewReader("x")})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "avatar")
}

func TestListActivity_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "olga", roles.Reader)

	require.NoError(t, f.recorder.Record(ctx, user.ID, models.ActivityPageVisit, map[string]interface{}{"path": "/first/"}))
	_, _, err := f.accounts.Login(ctx, "olga", "password123")
	require.NoError(t, err)

	activities, err := f.accounts.ListActivity(ctx, user.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.False(t, activities[0].Timestamp.Before(activities[1].Timestamp))

	limited, err := f.accounts.ListActivity(ctx, user.ID, 1, 0)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

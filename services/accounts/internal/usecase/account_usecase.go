package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"advanced-blog/pkg/activity"
	"advanced-blog/pkg/jwt"
	"advanced-blog/pkg/logger"
	"advanced-blog/pkg/models"
	"advanced-blog/pkg/roles"
	"advanced-blog/pkg/s3"
	"advanced-blog/services/accounts/internal/entity"
	"advanced-blog/services/accounts/internal/repo/persistent"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	DefaultActivityLimit = 50
	MaxActivityLimit     = 200
	maxBioLength         = 500
)

// ImageStore is the part of the S3 client used for avatars.
type ImageStore interface {
	UploadFile(key string, file io.Reader, contentType string) (string, error)
	DeleteByURL(url string) error
}

type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type RegisterInput struct {
	Email    string
	Username string
	Password string
	Role     roles.Role
}

type ProfileInput struct {
	FirstName string
	LastName  string
	Email     string
	Bio       string
}

type AccountUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*entity.User, string, error)
	Login(ctx context.Context, login, password string) (*entity.User, string, error)
	GetUser(ctx context.Context, userID string) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*entity.User, error)
	UploadAvatar(ctx context.Context, userID string, upload Upload) (*entity.User, error)
	ListUsers(ctx context.Context, actorID string) ([]*entity.User, error)
	ChangeRole(ctx context.Context, actorID, userID string, role roles.Role) (*entity.User, error)
	// AuthorizeAdmin reports ErrPermissionDenied unless the stored actor is
	// an active admin. Handlers call it before reading the request body.
	AuthorizeAdmin(ctx context.Context, actorID string) error
	ListActivity(ctx context.Context, userID string, limit, offset int) ([]*entity.Activity, error)
}

type accountUseCase struct {
	userRepo   persistent.UserRepository
	recorder   activity.Recorder
	jwtService *jwt.Service
	images     ImageStore
	logger     *logger.Logger
}

// NewAccountUseCase wires the account operations. images may be nil, which
// disables avatar uploads.
func NewAccountUseCase(
	userRepo persistent.UserRepository,
	recorder activity.Recorder,
	jwtService *jwt.Service,
	images ImageStore,
	logger *logger.Logger,
) AccountUseCase {
	return &accountUseCase{
		userRepo:   userRepo,
		recorder:   recorder,
		jwtService: jwtService,
		images:     images,
		logger:     logger,
	}
}

// Register creates an active account. Self-service sign up may choose author
// or reader; admin is granted only through ChangeRole or the seed command.
func (uc *accountUseCase) Register(ctx context.Context, input RegisterInput) (*entity.User, string, error) {
	role := input.Role
	if role == "" {
		role = roles.Reader
	}
	if role != roles.Author && role != roles.Reader {
		return nil, "", invalid("role", "Select a valid role.")
	}

	if err := uc.ensureEmailFree(ctx, input.Email, ""); err != nil {
		return nil, "", err
	}

	_, err := uc.userRepo.GetByUsername(ctx, input.Username)
	if err == nil {
		return nil, "", ErrUsernameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		uc.logger.Error("Failed to hash password: %v", err)
		return nil, "", fmt.Errorf("failed to process registration: %w", err)
	}

	user := &entity.User{
		Email:    input.Email,
		Username: input.Username,
		Password: string(hashedPassword),
		Role:     role,
		IsActive: true,
	}
	if err := uc.userRepo.SaveWithRole(ctx, user); err != nil {
		uc.logger.Error("Failed to create user %s: %v", input.Username, err)
		return nil, "", err
	}

	token, err := uc.jwtService.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		uc.logger.Error("Failed to generate token: %v", err)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	uc.logger.Info("Registered user %s with role %s", user.Username, user.Role)
	user.Password = ""
	return user, token, nil
}

// Login accepts an email address or a username. A successful login is
// recorded; if that record cannot be written the login fails.
func (uc *accountUseCase) Login(ctx context.Context, login, password string) (*entity.User, string, error) {
	var (
		user *entity.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = uc.userRepo.GetByEmail(ctx, login)
	} else {
		user, err = uc.userRepo.GetByUsername(ctx, login)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, "", ErrAccountDisabled
	}

	token, err := uc.jwtService.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		uc.logger.Error("Failed to generate token: %v", err)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	details := map[string]interface{}{"username": user.Username}
	if err := uc.recorder.Record(ctx, user.ID, models.ActivityLogin, details); err != nil {
		return nil, "", err
	}

	user.Password = ""
	return user, token, nil
}

func (uc *accountUseCase) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	user.Password = ""
	return user, nil
}

func (uc *accountUseCase) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*entity.User, error) {
	if len([]rune(input.Bio)) > maxBioLength {
		return nil, invalid("bio", fmt.Sprintf("Ensure this value has at most %d characters.", maxBioLength))
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}

	if input.Email != "" && input.Email != user.Email {
		if err := uc.ensureEmailFree(ctx, input.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = input.Email
	}
	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Bio = input.Bio

	if err := uc.userRepo.UpdateProfile(ctx, user); err != nil {
		uc.logger.Error("Failed to update profile of user %s: %v", userID, err)
		return nil, notFound(err)
	}

	user.Password = ""
	return user, nil
}

// UploadAvatar stores the image and replaces the previous avatar, which is
// removed from the bucket on a best-effort basis.
func (uc *accountUseCase) UploadAvatar(ctx context.Context, userID string, upload Upload) (*entity.User, error) {
	if uc.images == nil {
		return nil, invalid("avatar", "Image uploads are not available.")
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	avatarURL, err := uc.images.UploadFile(s3.ObjectKey("avatars", userID, upload.Filename), upload.Body, contentType)
	if err != nil {
		uc.logger.Error("Failed to upload avatar: %v", err)
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	previous := user.AvatarURL
	user.AvatarURL = avatarURL
	if err := uc.userRepo.UpdateProfile(ctx, user); err != nil {
		uc.logger.Error("Failed to update user: %v", err)
		return nil, notFound(err)
	}

	if previous != "" {
		if err := uc.images.DeleteByURL(previous); err != nil {
			uc.logger.Warn("Failed to delete previous avatar %s: %v", previous, err)
		}
	}

	user.Password = ""
	return user, nil
}

func (uc *accountUseCase) ListUsers(ctx context.Context, actorID string) ([]*entity.User, error) {
	if err := uc.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	users, err := uc.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range users {
		u.Password = ""
	}
	return users, nil
}

// ChangeRole lets an admin move a user to another role. Flags and group
// membership follow through SaveWithRole.
func (uc *accountUseCase) ChangeRole(ctx context.Context, actorID, userID string, role roles.Role) (*entity.User, error) {
	if err := uc.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, invalid("role", "Select a valid role.")
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}

	previous := user.Role
	user.Role = role
	if err := uc.userRepo.SaveWithRole(ctx, user); err != nil {
		uc.logger.Error("Failed to change role of user %s: %v", userID, err)
		return nil, err
	}

	uc.logger.Info("User %s changed role of %s from %s to %s", actorID, user.Username, previous, role)
	user.Password = ""
	return user, nil
}

func (uc *accountUseCase) ListActivity(ctx context.Context, userID string, limit, offset int) ([]*entity.Activity, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	if limit > MaxActivityLimit {
		limit = MaxActivityLimit
	}
	if offset < 0 {
		offset = 0
	}

	records, err := uc.recorder.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}

	activities := make([]*entity.Activity, len(records))
	for i, record := range records {
		activities[i] = persistent.ToActivityEntity(record)
	}
	return activities, nil
}

func (uc *accountUseCase) AuthorizeAdmin(ctx context.Context, actorID string) error {
	return uc.requireAdmin(ctx, actorID)
}

// requireAdmin checks the stored role, not the token claim, so a demoted
// admin loses access at once.
func (uc *accountUseCase) requireAdmin(ctx context.Context, actorID string) error {
	actor, err := uc.userRepo.GetByID(ctx, actorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPermissionDenied
	}
	if err != nil {
		return fmt.Errorf("failed to load actor: %w", err)
	}
	if !actor.IsAdmin() {
		return ErrPermissionDenied
	}
	return nil
}

func (uc *accountUseCase) ensureEmailFree(ctx context.Context, email, ownerID string) error {
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if existing.ID != ownerID {
		return ErrEmailTaken
	}
	return nil
}

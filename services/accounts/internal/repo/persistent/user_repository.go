package persistent

import (
	"context"
	"fmt"

	"advanced-blog/pkg/models"
	"advanced-blog/pkg/roles"
	"advanced-blog/services/accounts/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// profileColumns are the columns a user may change about themselves.
var profileColumns = []string{"email", "first_name", "last_name", "bio", "avatar_url", "updated_at"}

type UserRepository interface {
	// SaveWithRole is the only write path for role: it stores the user with
	// flags derived from the role and resets group membership to the role's
	// group, all in one transaction.
	SaveWithRole(ctx context.Context, user *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	UpdateProfile(ctx context.Context, user *entity.User) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) SaveWithRole(ctx context.Context, user *entity.User) error {
	if !user.Role.Valid() {
		return fmt.Errorf("unknown role %q", user.Role)
	}

	flags := roles.DeriveFlags(user.Role)
	user.IsStaff = flags.IsStaff
	user.IsSuperuser = flags.IsSuperuser
	userModel := ToUserModel(user)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(userModel).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userModel.ID).Delete(&models.UserGroup{}).Error; err != nil {
			return err
		}

		var group models.Group
		if err := tx.Where(models.Group{Name: user.Role.GroupName()}).FirstOrCreate(&group).Error; err != nil {
			return err
		}

		return tx.Create(&models.UserGroup{UserID: userModel.ID, GroupID: group.ID}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save user with role %s: %w", user.Role, err)
	}

	user.ID = userModel.ID
	user.CreatedAt = userModel.CreatedAt
	user.UpdatedAt = userModel.UpdatedAt
	user.Groups = []string{user.Role.GroupName()}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userModel models.User
	if err := r.db.WithContext(ctx).Preload("Groups").Where("email = ?", email).First(&userModel).Error; err != nil {
		return nil, err
	}
	return ToUserEntity(&userModel), nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var userModel models.User
	if err := r.db.WithContext(ctx).Preload("Groups").Where("id = ?", id).First(&userModel).Error; err != nil {
		return nil, err
	}
	return ToUserEntity(&userModel), nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	var userModel models.User
	if err := r.db.WithContext(ctx).Preload("Groups").Where("username = ?", username).First(&userModel).Error; err != nil {
		return nil, err
	}
	return ToUserEntity(&userModel), nil
}

func (r *userRepository) List(ctx context.Context) ([]*entity.User, error) {
	var userModels []models.User
	if err := r.db.WithContext(ctx).Preload("Groups").Order("username ASC").Find(&userModels).Error; err != nil {
		return nil, err
	}

	users := make([]*entity.User, len(userModels))
	for i := range userModels {
		users[i] = ToUserEntity(&userModels[i])
	}
	return users, nil
}

// UpdateProfile writes the profile columns only. Role and flags stay untouched.
func (r *userRepository) UpdateProfile(ctx context.Context, user *entity.User) error {
	target := &models.User{ID: user.ID}
	result := r.db.WithContext(ctx).
		Model(target).
		Select(profileColumns).
		Updates(ToUserModel(user))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	if !target.UpdatedAt.IsZero() {
		user.UpdatedAt = target.UpdatedAt
	}
	return nil
}

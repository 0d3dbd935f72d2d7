package models

import (
	"time"

	"advanced-blog/pkg/roles"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID          string         `gorm:"type:uuid;primary_key" json:"id"`
	Email       string         `gorm:"uniqueIndex;not null" json:"email"`
	Username    string         `gorm:"uniqueIndex;not null" json:"username"`
	Password    string         `gorm:"not null" json:"-"`
	FirstName   string         `gorm:"type:varchar(150)" json:"first_name"`
	LastName    string         `gorm:"type:varchar(150)" json:"last_name"`
	Bio         string         `gorm:"type:varchar(500)" json:"bio"`
	AvatarURL   string         `gorm:"type:varchar(500)" json:"avatar_url"`
	Role        roles.Role     `gorm:"type:varchar(10);default:'reader'" json:"role"`
	IsStaff     bool           `gorm:"default:false" json:"is_staff"`
	IsSuperuser bool           `gorm:"default:false" json:"is_superuser"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	Groups      []Group        `gorm:"many2many:user_groups" json:"groups,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// Group is a permission group. Every user belongs to exactly the group named
// after its role.
type Group struct {
	ID   string `gorm:"type:uuid;primary_key" json:"id"`
	Name string `gorm:"type:varchar(150);uniqueIndex;not null" json:"name"`
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return nil
}

type UserGroup struct {
	UserID  string `gorm:"type:uuid;primaryKey"`
	GroupID string `gorm:"type:uuid;primaryKey"`
}

func (UserGroup) TableName() string {
	return "user_groups"
}

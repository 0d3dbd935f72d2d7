package persistent

import (
	"advanced-blog/pkg/models"
	"advanced-blog/services/accounts/internal/entity"
)

func ToUserEntity(m *models.User) *entity.User {
	if m == nil {
		return nil
	}

	user := &entity.User{
		ID:          m.ID,
		Email:       m.Email,
		Username:    m.Username,
		Password:    m.Password,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Bio:         m.Bio,
		AvatarURL:   m.AvatarURL,
		Role:        m.Role,
		IsStaff:     m.IsStaff,
		IsSuperuser: m.IsSuperuser,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	for _, g := range m.Groups {
		user.Groups = append(user.Groups, g.Name)
	}
	return user
}

// ToUserModel copies the scalar columns. Group membership is written only by
// SaveWithRole.
func ToUserModel(e *entity.User) *models.User {
	if e == nil {
		return nil
	}

	return &models.User{
		ID:          e.ID,
		Email:       e.Email,
		Username:    e.Username,
		Password:    e.Password,
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		Bio:         e.Bio,
		AvatarURL:   e.AvatarURL,
		Role:        e.Role,
		IsStaff:     e.IsStaff,
		IsSuperuser: e.IsSuperuser,
		IsActive:    e.IsActive,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func ToActivityEntity(m *models.ActivityRecord) *entity.Activity {
	if m == nil {
		return nil
	}

	details := map[string]interface{}(m.Details)
	if details == nil {
		details = map[string]interface{}{}
	}
	return &entity.Activity{
		ID:           m.ID,
		ActivityType: m.ActivityType,
		Timestamp:    m.Timestamp,
		Details:      details,
	}
}

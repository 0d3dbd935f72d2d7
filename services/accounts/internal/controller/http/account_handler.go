package http

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"advanced-blog/pkg/logger"
	"advanced-blog/pkg/middleware"
	"advanced-blog/pkg/roles"
	"advanced-blog/pkg/validation"
	"advanced-blog/services/accounts/internal/entity"
	"advanced-blog/services/accounts/internal/usecase"

	"github.com/gin-gonic/gin"
)

var avatarExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type AccountHandler struct {
	accountUseCase usecase.AccountUseCase
	log            *logger.Logger
	homeURL        string
}

func NewAccountHandler(accountUseCase usecase.AccountUseCase, log *logger.Logger, homeURL string) *AccountHandler {
	return &AccountHandler{
		accountUseCase: accountUseCase,
		log:            log,
		homeURL:        homeURL,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=150"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=author reader"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ProfileRequest struct {
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
	Email     string `json:"email" binding:"omitempty,email"`
	Bio       string `json:"bio" binding:"max=500"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,role"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

// Register godoc
// @Summary      Register a new user
// @Description  Register with email, username, password and an optional role (author or reader, default reader)
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration data"
// @Success      201  {object}  AuthResponse
// @Failure      400  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /register [post]
func (h *AccountHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.FieldErrors(err)})
		return
	}

	user, token, err := h.accountUseCase.Register(c.Request.Context(), usecase.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Role:     roles.Role(req.Role),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Token: token,
		User:  user,
	})
}

// Login godoc
// @Summary      Login user
// @Description  Authenticate with a username or email address and return a JWT token
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200  {object}  AuthResponse
// @Failure      400  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /login [post]
func (h *AccountHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.FieldErrors(err)})
		return
	}

	user, token, err := h.accountUseCase.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token: token,
		User:  user,
	})
}

// Me godoc
// @Summary      Get current user info
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.User
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /me [get]
func (h *AccountHandler) Me(c *gin.Context) {
	user, err := h.accountUseCase.GetUser(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateMe godoc
// @Summary      Update profile
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ProfileRequest true "Profile"
// @Success      200  {object}  entity.User
// @Failure      400  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]string
// @Router       /me [put]
func (h *AccountHandler) UpdateMe(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.FieldErrors(err)})
		return
	}

	user, err := h.accountUseCase.UpdateProfile(c.Request.Context(), c.GetString(middleware.ContextUserID), usecase.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Bio:       req.Bio,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "message": "Profile updated successfully."})
}

// UploadAvatar godoc
// @Summary      Upload user avatar
// @Tags         accounts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar formData file true "Avatar image file"
// @Success      200  {object}  entity.User
// @Failure      400  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /me/avatar [post]
func (h *AccountHandler) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"avatar": "This field is required."}})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !avatarExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"avatar": "Upload a valid image. Allowed formats: jpg, jpeg, png, gif, webp."}})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process file"})
		return
	}
	defer src.Close()

	user, err := h.accountUseCase.UploadAvatar(c.Request.Context(), c.GetString(middleware.ContextUserID), usecase.Upload{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Body:        src,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// MyActivity godoc
// @Summary      Own activity, newest first
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Page size (default 50, max 200)"
// @Param        offset query int false "Offset"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /me/activity [get]
func (h *AccountHandler) MyActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	activities, err := h.accountUseCase.ListActivity(c.Request.Context(), c.GetString(middleware.ContextUserID), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activities": activities, "count": len(activities)})
}

// ListUsers godoc
// @Summary      List all users (admin)
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      303  {object}  map[string]string
// @Router       /users [get]
func (h *AccountHandler) ListUsers(c *gin.Context) {
	users, err := h.accountUseCase.ListUsers(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// ChangeRole godoc
// @Summary      Change a user's role (admin)
// @Description  Flags and group membership are derived from the new role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Param        request body ChangeRoleRequest true "New role"
// @Success      200  {object}  entity.User
// @Failure      303  {object}  map[string]string
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /users/{id}/role [put]
func (h *AccountHandler) ChangeRole(c *gin.Context) {
	actorID := c.GetString(middleware.ContextUserID)
	if err := h.accountUseCase.AuthorizeAdmin(c.Request.Context(), actorID); err != nil {
		h.respondError(c, err)
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.FieldErrors(err)})
		return
	}

	user, err := h.accountUseCase.ChangeRole(c.Request.Context(), actorID, c.Param("id"), roles.Role(req.Role))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// respondError maps usecase errors to responses. A refused admin operation
// sends the caller home with a warning rather than a bare 403.
func (h *AccountHandler) respondError(c *gin.Context, err error) {
	var verr *usecase.ValidationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields})
	case errors.Is(err, usecase.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, usecase.ErrEmailTaken), errors.Is(err, usecase.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrInvalidCredentials), errors.Is(err, usecase.ErrAccountDisabled):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrPermissionDenied):
		warning := "You do not have permission to manage users."
		c.Header("Location", h.homeURL)
		c.JSON(http.StatusSeeOther, gin.H{"warning": warning, "redirect": h.homeURL})
	default:
		h.log.Error("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

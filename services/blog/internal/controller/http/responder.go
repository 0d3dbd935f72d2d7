package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"advanced-blog/pkg/flash"
	"advanced-blog/pkg/logger"
	"advanced-blog/pkg/middleware"
	"advanced-blog/services/blog/internal/entity"
	"advanced-blog/services/blog/internal/policy"
	"advanced-blog/services/blog/internal/usecase"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const contextActor = "actor"

type FlashStore interface {
	Add(ctx context.Context, userID string, level flash.Level, text string) error
	Pop(ctx context.Context, userID string) ([]flash.Message, error)
}

type ActorSource interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

// ActorMiddleware resolves the token's user against the accounts table so a
// role change or deactivation applies to the next request. Unknown and
// inactive users continue as anonymous.
func ActorMiddleware(users ActorSource, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := entity.Anonymous()
		if userID := c.GetString(middleware.ContextUserID); userID != "" {
			user, err := users.GetByID(c.Request.Context(), userID)
			switch {
			case err == nil && user.IsActive:
				actor = entity.Actor{ID: user.ID, Role: user.Role}
			case err == nil, errors.Is(err, gorm.ErrRecordNotFound):
			default:
				log.Error("Failed to load user %s: %v", userID, err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
		}

		c.Set(middleware.ContextUserID, actor.ID)
		c.Set(middleware.ContextUserRole, string(actor.Role))
		c.Set(contextActor, actor)
		c.Next()
	}
}

func ActorFrom(c *gin.Context) entity.Actor {
	if v, ok := c.Get(contextActor); ok {
		if actor, ok := v.(entity.Actor); ok {
			return actor
		}
	}
	return entity.Anonymous()
}

// Responder turns usecase results into responses. Refusals never surface as
// 403: authenticated actors are sent home with a warning, anonymous ones to
// the login page.
type Responder struct {
	flash    FlashStore
	log      *logger.Logger
	loginURL string
	homeURL  string
}

func NewResponder(flash FlashStore, log *logger.Logger, loginURL, homeURL string) *Responder {
	return &Responder{
		flash:    flash,
		log:      log,
		loginURL: loginURL,
		homeURL:  homeURL,
	}
}

func (r *Responder) Flash(c *gin.Context, actor entity.Actor, level flash.Level, text string) {
	if r.flash == nil || !actor.IsAuthenticated() {
		return
	}
	if err := r.flash.Add(c.Request.Context(), actor.ID, level, text); err != nil {
		r.log.Warn("Failed to store flash message for user %s: %v", actor.ID, err)
	}
}

func (r *Responder) RequireLogin(c *gin.Context) {
	location := r.loginURL + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
	c.Header("Location", location)
	c.JSON(http.StatusSeeOther, gin.H{"error": "Authentication required", "redirect": location})
}

func (r *Responder) Deny(c *gin.Context, actor entity.Actor, message string) {
	if !actor.IsAuthenticated() {
		r.RequireLogin(c)
		return
	}
	r.Flash(c, actor, flash.LevelWarning, message)
	c.Header("Location", r.homeURL)
	c.JSON(http.StatusSeeOther, gin.H{"warning": message, "redirect": r.homeURL})
}

func (r *Responder) Error(c *gin.Context, actor entity.Actor, err error) {
	var perr *usecase.PermissionError
	var verr *usecase.ValidationError

	switch {
	case errors.Is(err, usecase.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.As(err, &perr):
		r.Deny(c, actor, perr.Message)
	case errors.Is(err, usecase.ErrPermissionDenied):
		r.Deny(c, actor, policy.Warning(""))
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields})
	default:
		r.log.Error("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func postURL(slug string) string {
	return "/post/" + slug + "/"
}

package http

import (
	"net/http"

	"advanced-blog/pkg/flash"
	"advanced-blog/services/blog/internal/usecase"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	categoryUseCase usecase.CategoryUseCase
	resp            *Responder
}

func NewCategoryHandler(categoryUseCase usecase.CategoryUseCase, resp *Responder) *CategoryHandler {
	return &CategoryHandler{
		categoryUseCase: categoryUseCase,
		resp:            resp,
	}
}

type CategoryRequest struct {
	Name string `form:"name" json:"name"`
}

// ListCategories godoc
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /categories/ [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryUseCase.ListCategories(c.Request.Context())
	if err != nil {
		h.resp.Error(c, ActorFrom(c), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory godoc
// @Summary      Create a category (admin)
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CategoryRequest true "Category"
// @Success      201  {object}  entity.Category
// @Failure      303  {object}  map[string]string
// @Failure      400  {object}  map[string]interface{}
// @Router       /categories/ [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	actor := ActorFrom(c)
	if !actor.IsAuthenticated() {
		h.resp.RequireLogin(c)
		return
	}

	var req CategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		// CreateCategory rejects the empty name once the actor is known to
		// be an admin
		req.Name = ""
	}

	category, err := h.categoryUseCase.CreateCategory(c.Request.Context(), actor, req.Name)
	if err != nil {
		h.resp.Error(c, actor, err)
		return
	}

	h.resp.Flash(c, actor, flash.LevelSuccess, "Category created.")
	c.JSON(http.StatusCreated, category)
}

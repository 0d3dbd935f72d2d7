package http

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"advanced-blog/pkg/flash"
	"advanced-blog/pkg/validation"
	"advanced-blog/services/blog/internal/entity"
	"advanced-blog/services/blog/internal/usecase"

	"github.com/gin-gonic/gin"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type PostHandler struct {
	postUseCase usecase.PostUseCase
	resp        *Responder
}

func NewPostHandler(postUseCase usecase.PostUseCase, resp *Responder) *PostHandler {
	return &PostHandler{
		postUseCase: postUseCase,
		resp:        resp,
	}
}

type PostRequest struct {
	Title     string `form:"title" json:"title" binding:"required,max=200"`
	Content   string `form:"content" json:"content" binding:"required"`
	Category  string `form:"category" json:"category"`
	Status    string `form:"status" json:"status" binding:"omitempty,post_status"`
	TagsInput string `form:"tags_input" json:"tags_input"`
}

// ListPosts godoc
// @Summary      List published posts
// @Tags         posts
// @Produce      json
// @Param        page query int false "Page number"
// @Success      200  {object}  usecase.PostPage
// @Failure      404  {object}  map[string]string
// @Router       / [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	page, err := h.postUseCase.ListPublished(c.Request.Context(), pageParam(c))
	if err != nil {
		h.resp.Error(c, ActorFrom(c), err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CategoryPosts godoc
// @Summary      List published posts in a category
// @Tags         posts
// @Produce      json
// @Param        slug path string true "Category slug"
// @Param        page query int false "Page number"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /category/{slug}/ [get]
func (h *PostHandler) CategoryPosts(c *gin.Context) {
	category, page, err := h.postUseCase.ListByCategory(c.Request.Context(), c.Param("slug"), pageParam(c))
	if err != nil {
		h.resp.Error(c, ActorFrom(c), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "posts": page.Posts, "page": page.Page, "total_pages": page.TotalPages, "total": page.Total})
}

// TagPosts godoc
// @Summary      List published posts with a tag
// @Tags         posts
// @Produce      json
// @Param        slug path string true "Tag slug"
// @Param        page query int false "Page number"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /tag/{slug}/ [get]
func (h *PostHandler) TagPosts(c *gin.Context) {
	tag, page, err := h.postUseCase.ListByTag(c.Request.Context(), c.Param("slug"), pageParam(c))
	if err != nil {
		h.resp.Error(c, ActorFrom(c), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tag": tag, "posts": page.Posts, "page": page.Page, "total_pages": page.TotalPages, "total": page.Total})
}

// Search godoc
// @Summary      Search published posts
// @Description  Case-insensitive match on title or content. An empty query returns no posts.
// @Tags         posts
// @Produce      json
// @Param        q query string false "Search text"
// @Param        page query int false "Page number"
// @Success      200  {object}  map[string]interface{}
// @Router       /search/ [get]
func (h *PostHandler) Search(c *gin.Context) {
	query := c.Query("q")
	page, err := h.postUseCase.Search(c.Request.Context(), query, pageParam(c))
	if err != nil {
		h.resp.Error(c, ActorFrom(c), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "posts": page.Posts, "page": page.Page, "total_pages": page.TotalPages, "total": page.Total})
}

// PostDetail godoc
// @Summary      Get a post with its approved comments
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        slug path string true "Post slug"
// @Success      200  {object}  usecase.PostDetail
// @Failure      303  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /post/{slug}/ [get]
func (h *PostHandler) PostDetail(c *gin.Context) {
	actor := ActorFrom(c)
	detail, err := h.postUseCase.GetPost(c.Request.Context(), actor, c.Param("slug"))
	if err != nil {
		h.resp.Error(c, actor, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// NewPostForm godoc
// @Summary      Form data for a new post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  usecase.PostForm
// @Failure      303  {object}  map[string]string
// @Router       /post/new/ [get]
func (h *PostHandler) NewPostForm(c *gin.Context) {
	actor := ActorFrom(c)
	form, err := h.postUseCase.NewPostForm(c.Request.Context(), actor)
	if err != nil {
		h.resp.Error(c, actor, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// CreatePost godoc
// @Summary      Create a post
// @Description  Accepts form, multipart or JSON. tags_input is a comma separated list of tag names.
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        title formData string true "Title"
// @Param        content formData string true "Content"
// @Param        category formData string false "Category ID"
// @Param        status formData string false "draft or published"
// @Param        tags_input formData string false "Comma separated tags"
// @Param        featured_image formData file false "Featured image"
// @Success      201  {object}  map[string]interface{}
// @Failure      303  {object}  map[string]string
// @Failure      400  {object}  map[string]interface{}
// @Router       /post/new/ [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	actor := ActorFrom(c)
	if !actor.IsAuthenticated() {
		h.resp.RequireLogin(c)
		return
	}

	input, err := h.bindPostInput(c)
	if err != nil {
		h.resp.Error(c, actor, err)
		return
	}
	defer closeUpload(input.FeaturedImage)

	post, err := h.postUseCase.CreatePost(c.Request.Context(), actor, input)
	if err != nil {
		h.resp.Error(c, actor, err)
		return
	}

	h.resp.Flash(c, actor, flash.LevelSuccess, "Post created successfully.")
	c.Header("Location", postURL(post.Slug))
	c.JSON(http.StatusCreated, gin.H{"post": post, "redirect": postURL(post.Slug)})
}

// EditPostForm godoc
// @Summary      Current values of a post for editing
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        slug path string true "Post slug"
// @Success      200  {object}  usecase.PostForm
// @Failure      303  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /post/{slug}/edit/ [get]
func (h *PostHandler) EditPostForm(c *gin.Context) {
	actor := ActorFrom(c)
	form, err := h.postUseCase.EditPostForm(c.Request.Context(), actor, c.Param("slug"))
	if err != nil {
		h.resp.Error(c, actor, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// UpdatePost godoc
// @Summary      Update a post
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        slug path string true "Post slug"
// @Success      200  {object}  map[string]interface{}
// @Failure      303  {object}  map[string]string
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /post/{slug}/edit/ [post]
func (h *PostHandler) UpdatePost(c *gin.Context) {
	actor := ActorFrom(c)
	if !actor.IsAuthenticated() {
		h.resp.RequireLogin(c)
		return
	}

	input, err := h.bindPostInput(c)
	if err != nil {
		h.resp.Error(c, actor, err)
		return
	}
	defer closeUpload(input.FeaturedImage)

	post, err := h.postUseCase.UpdatePost(c.Request.Context(), actor, c.Param("slug"), input)
	if err != nil {
		h.resp.Error(c, actor, err)
		return
	}

	h.resp.Flash(c, actor, flash.LevelSuccess, "Post updated successfully.")
	c.JSON(http.StatusOK, gin.H{"post": post, "redirect": postURL(post.Slug)})
}

// DeletePost godoc
// @Summary      Delete a post and its comments
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        slug path string true "Post slug"
// @Success      200  {object}  map[string]string
// @Failure      303  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /post/{slug}/delete/ [post]
func (h *PostHandler) DeletePost(c *gin.Context) {
	actor := ActorFrom(c)
	if !actor.IsAuthenticated() {
		h.resp.RequireLogin(c)
		return
	}

	if err := h.postUseCase.DeletePost(c.Request.Context(), actor, c.Param("slug")); err != nil {
		h.resp.Error(c, actor, err)
		return
	}

	h.resp.Flash(c, actor, flash.LevelSuccess, "Post deleted successfully.")
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully.", "redirect": h.resp.homeURL})
}

// Dashboard godoc
// @Summary      The actor's posts split by status; admins also see every post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  usecase.Dashboard
// @Failure      303  {object}  map[string]string
// @Router       /dashboard/ [get]
func (h *PostHandler) Dashboard(c *gin.Context) {
	actor := ActorFrom(c)
	if !actor.IsAuthenticated() {
		h.resp.RequireLogin(c)
		return
	}

	dashboard, err := h.postUseCase.Dashboard(c.Request.Context(), actor)
	if err != nil {
		h.resp.Error(c, actor, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// bindPostInput decodes the request without rejecting it. Field errors ride
// along in the input and are reported by the use case once the actor is
// known to be allowed.
func (h *PostHandler) bindPostInput(c *gin.Context) (usecase.PostInput, error) {
	var req PostRequest
	var fieldErrors map[string]string
	if err := c.ShouldBind(&req); err != nil {
		fieldErrors = validation.FieldErrors(err)
	}

	input := usecase.PostInput{
		Title:       req.Title,
		Content:     req.Content,
		CategoryID:  req.Category,
		Status:      entity.PostStatus(req.Status),
		TagsInput:   req.TagsInput,
		FieldErrors: fieldErrors,
	}

	file, err := c.FormFile("featured_image")
	if err != nil {
		// no file, or not a multipart request
		return input, nil
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		if input.FieldErrors == nil {
			input.FieldErrors = map[string]string{}
		}
		input.FieldErrors["featured_image"] = "Upload a valid image. Allowed formats: jpg, jpeg, png, gif, webp."
		return input, nil
	}

	src, err := file.Open()
	if err != nil {
		return usecase.PostInput{}, fmt.Errorf("failed to open featured image: %w", err)
	}
	input.FeaturedImage = &usecase.Upload{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Body:        src,
	}
	return input, nil
}

func closeUpload(upload *usecase.Upload) {
	if upload == nil {
		return
	}
	if closer, ok := upload.Body.(io.Closer); ok {
		closer.Close()
	}
}

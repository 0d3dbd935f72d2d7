package http

import (
	"net/http"

	"advanced-blog/pkg/flash"
	"advanced-blog/services/blog/internal/usecase"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentUseCase usecase.CommentUseCase
	resp           *Responder
}

func NewCommentHandler(commentUseCase usecase.CommentUseCase, resp *Responder) *CommentHandler {
	return &CommentHandler{
		commentUseCase: commentUseCase,
		resp:           resp,
	}
}

type CommentRequest struct {
	Content string `form:"content" json:"content"`
}

// AddComment godoc
// @Summary      Comment on a post
// @Description  Comments by admins and authors are visible at once; others wait for approval.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        slug path string true "Post slug"
// @Param        request body CommentRequest true "Comment"
// @Success      201  {object}  map[string]interface{}
// @Failure      303  {object}  map[string]string
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /post/{slug}/ [post]
func (h *CommentHandler) AddComment(c *gin.Context) {
	actor := ActorFrom(c)
	if !actor.IsAuthenticated() {
		h.resp.RequireLogin(c)
		return
	}

	var req CommentRequest
	if err := c.ShouldBind(&req); err != nil {
		// Submit rejects the empty content once the actor may see the post
		req.Content = ""
	}

	comment, err := h.commentUseCase.Submit(c.Request.Context(), actor, c.Param("slug"), req.Content)
	if err != nil {
		h.resp.Error(c, actor, err)
		return
	}

	message := "Your comment was submitted."
	if !comment.IsApproved {
		message += " It will be visible after approval."
	}
	h.resp.Flash(c, actor, flash.LevelSuccess, message)
	c.JSON(http.StatusCreated, gin.H{"comment": comment, "message": message, "redirect": postURL(comment.PostSlug)})
}

// ApproveComment godoc
// @Summary      Approve a pending comment
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Comment ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      303  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /comment/{id}/approve/ [post]
func (h *CommentHandler) ApproveComment(c *gin.Context) {
	actor := ActorFrom(c)
	if !actor.IsAuthenticated() {
		h.resp.RequireLogin(c)
		return
	}

	comment, err := h.commentUseCase.Approve(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.resp.Error(c, actor, err)
		return
	}

	h.resp.Flash(c, actor, flash.LevelSuccess, "Comment approved.")
	c.JSON(http.StatusOK, gin.H{"comment": comment, "redirect": postURL(comment.PostSlug)})
}

// DeleteComment godoc
// @Summary      Delete a comment
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Comment ID"
// @Success      200  {object}  map[string]string
// @Failure      303  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /comment/{id}/delete/ [post]
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	actor := ActorFrom(c)
	if !actor.IsAuthenticated() {
		h.resp.RequireLogin(c)
		return
	}

	comment, err := h.commentUseCase.Delete(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.resp.Error(c, actor, err)
		return
	}

	h.resp.Flash(c, actor, flash.LevelSuccess, "Comment deleted.")
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted.", "redirect": postURL(comment.PostSlug)})
}

// PendingComments godoc
// @Summary      Moderation queue
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      303  {object}  map[string]string
// @Router       /comments/pending/ [get]
func (h *CommentHandler) PendingComments(c *gin.Context) {
	actor := ActorFrom(c)
	if !actor.IsAuthenticated() {
		h.resp.RequireLogin(c)
		return
	}

	comments, err := h.commentUseCase.ListPending(c.Request.Context(), actor)
	if err != nil {
		h.resp.Error(c, actor, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments, "count": len(comments)})
}

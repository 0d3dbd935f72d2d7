package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	resp *Responder
}

func NewMessageHandler(resp *Responder) *MessageHandler {
	return &MessageHandler{resp: resp}
}

// Messages godoc
// @Summary      Pop pending flash messages
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      303  {object}  map[string]string
// @Router       /messages/ [get]
func (h *MessageHandler) Messages(c *gin.Context) {
	actor := ActorFrom(c)
	if !actor.IsAuthenticated() {
		h.resp.RequireLogin(c)
		return
	}

	if h.resp.flash == nil {
		c.JSON(http.StatusOK, gin.H{"messages": []interface{}{}})
		return
	}

	messages, err := h.resp.flash.Pop(c.Request.Context(), actor.ID)
	if err != nil {
		h.resp.Error(c, actor, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

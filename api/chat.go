package api

import (
	"context"
	"net/http"

	"github.com/easyrent/vehiclerental/internal/chat"
	"github.com/gin-gonic/gin"
)

type ChatAssistant interface {
	Answer(ctx context.Context, message string) (*chat.Reply, error)
}

type ChatHandler struct {
	assistant ChatAssistant
}

type chatRequest struct {
	Message string `json:"message" binding:"required,max=500"`
}

func NewChatHandler(assistant ChatAssistant) *ChatHandler {
	return &ChatHandler{assistant: assistant}
}

func (h *ChatHandler) Register(router *gin.RouterGroup) {
	router.POST("/chat", h.answer)
}

func (h *ChatHandler) answer(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	reply, err := h.assistant.Answer(c.Request.Context(), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

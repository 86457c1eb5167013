package handler

import (
	"errors"
	"net/http"

	"sentinal-social/internal/services"
	"sentinal-social/internal/transport/httpdto"
	sentinal_errors "sentinal-social/pkg/errors"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	service *services.MessageService
}

func NewMessageHandler(service *services.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) Post(c *gin.Context) {
	var req httpdto.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	chatID, err := parseOptionalUUID(req.Chat)
	if err != nil {
		badRequest(c, "invalid chat")
		return
	}
	groupID, err := parseOptionalUUID(req.Group)
	if err != nil {
		badRequest(c, "invalid group")
		return
	}

	msg, err := h.service.PostMessage(c.Request.Context(), userID, services.PostMessageInput{
		Content: req.Content,
		Chat:    chatID,
		Group:   groupID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// Get answers a missing message with 404 and a null body.
func (h *MessageHandler) Get(c *gin.Context) {
	messageID, ok := pathID(c, "id")
	if !ok {
		return
	}
	msg, err := h.service.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		if errors.Is(err, sentinal_errors.ErrNotFound) {
			c.JSON(http.StatusNotFound, nil)
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (h *MessageHandler) SetReadStatus(c *gin.Context) {
	var req httpdto.SetReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "isRead is required")
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	messageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	msg, err := h.service.SetReadStatus(c.Request.Context(), userID, messageID, *req.IsRead)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

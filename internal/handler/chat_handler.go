package handler

import (
	"net/http"

	"sentinal-social/internal/services"
	"sentinal-social/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chats    *services.ConversationService
	messages *services.MessageService
}

func NewChatHandler(chats *services.ConversationService, messages *services.MessageService) *ChatHandler {
	return &ChatHandler{chats: chats, messages: messages}
}

// Create answers 201 for a new chat and 200 when the pair already had one.
func (h *ChatHandler) Create(c *gin.Context) {
	var req httpdto.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	participants, err := parseUUIDs(req.Participants)
	if err != nil {
		badRequest(c, "invalid participants")
		return
	}

	chat, created, err := h.chats.CreateChat(c.Request.Context(), userID, participants)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, chat)
}

func (h *ChatHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	chatID, ok := pathID(c, "id")
	if !ok {
		return
	}
	chat, err := h.chats.GetChat(c.Request.Context(), userID, chatID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	chatID, ok := pathID(c, "id")
	if !ok {
		return
	}
	msgs, err := h.messages.ListMessages(c.Request.Context(), userID, chatID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

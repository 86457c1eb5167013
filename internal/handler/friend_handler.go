package handler

import (
	"context"
	"net/http"

	"sentinal-social/internal/domain/user"
	"sentinal-social/internal/services"
	"sentinal-social/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FriendHandler struct {
	service *services.RelationshipService
}

func NewFriendHandler(service *services.RelationshipService) *FriendHandler {
	return &FriendHandler{service: service}
}

func (h *FriendHandler) SendRequest(c *gin.Context) {
	h.byBody(c, h.service.SendFriendRequest)
}

func (h *FriendHandler) Accept(c *gin.Context) {
	h.byBody(c, h.service.AcceptFriendRequest)
}

func (h *FriendHandler) Reject(c *gin.Context) {
	h.byBody(c, h.service.RejectFriendRequest)
}

func (h *FriendHandler) Remove(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	target, err := h.service.RemoveFriend(c.Request.Context(), userID, c.Param("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, target)
}

func (h *FriendHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	rels, err := h.service.ListRelationships(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rels)
}

type friendOp func(ctx context.Context, actorID uuid.UUID, username string) (user.Identity, error)

// byBody runs op for the username in the JSON body and answers with the
// target's public identity.
func (h *FriendHandler) byBody(c *gin.Context, op friendOp) {
	var req httpdto.FriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username is required")
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	target, err := op(c.Request.Context(), userID, req.Username)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, target)
}

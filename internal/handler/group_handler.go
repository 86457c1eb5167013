package handler

import (
	"net/http"

	"sentinal-social/internal/services"
	"sentinal-social/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type GroupHandler struct {
	groups   *services.GroupService
	messages *services.MessageService
}

func NewGroupHandler(groups *services.GroupService, messages *services.MessageService) *GroupHandler {
	return &GroupHandler{groups: groups, messages: messages}
}

func (h *GroupHandler) Create(c *gin.Context) {
	var req httpdto.CreateGroupRequest
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

	group, err := h.groups.CreateGroup(c.Request.Context(), userID, services.CreateGroupInput{
		Name:         req.Name,
		Participants: participants,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (h *GroupHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	group, err := h.groups.GetGroup(c.Request.Context(), userID, groupID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) AddMember(c *gin.Context) {
	var req httpdto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "userId is required")
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	memberID, err := parseUUID(req.UserID)
	if err != nil {
		badRequest(c, "invalid userId")
		return
	}

	group, err := h.groups.AddGroupMember(c.Request.Context(), userID, groupID, memberID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) RemoveMember(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	memberID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	group, err := h.groups.RemoveGroupMember(c.Request.Context(), userID, groupID, memberID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) ListMessages(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}
	msgs, err := h.messages.ListGroupMessages(c.Request.Context(), userID, groupID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

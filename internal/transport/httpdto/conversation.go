package httpdto

// CreateChatRequest is used for POST /chats
type CreateChatRequest struct {
	Participants []string `json:"participants" binding:"required,min=1,dive,uuid"`
}

// CreateGroupRequest is used for POST /groups
type CreateGroupRequest struct {
	Name         string   `json:"name" binding:"required"`
	Participants []string `json:"participants" binding:"omitempty,dive,uuid"`
}

// AddMemberRequest is used for POST /groups/:id/users
type AddMemberRequest struct {
	UserID string `json:"userId" binding:"required,uuid"`
}

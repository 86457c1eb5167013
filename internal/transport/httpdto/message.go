package httpdto

// PostMessageRequest is used for POST /messages. Exactly one of Chat and
// Group must be set; the service enforces it.
type PostMessageRequest struct {
	Content string  `json:"content"`
	Chat    *string `json:"chat,omitempty" binding:"omitempty,uuid"`
	Group   *string `json:"group,omitempty" binding:"omitempty,uuid"`
}

// SetReadRequest is used for PUT /messages/:id
type SetReadRequest struct {
	IsRead *bool `json:"isRead" binding:"required"`
}

package httpdto

// FriendRequest is used for POST /friends, PUT /friends/accept and
// PUT /friends/reject.
type FriendRequest struct {
	Username string `json:"username" binding:"required"`
}

package handler

import (
	"net/http"

	"sentinal-social/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	directory *services.Directory
}

func NewUserHandler(directory *services.Directory) *UserHandler {
	return &UserHandler{directory: directory}
}

// GetByUsername returns the public identity of a user.
func (h *UserHandler) GetByUsername(c *gin.Context) {
	u, err := h.directory.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u.Identity())
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"maintenance-backend/internal/store"
)

type userRequest struct {
	Name     string  `json:"name" binding:"required,max=128"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password"`
	RoleIDs  []int64 `json:"role_ids"`
}

func (r userRequest) input() store.UserInput {
	return store.UserInput{Name: r.Name, Email: r.Email, Password: r.Password, RoleIDs: r.RoleIDs}
}

// ListUsers returns every user with their roles.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.store.Users.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser returns one user.
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := h.store.Users.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser adds a user account.
func (h *Handler) CreateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.store.Users.Create(c.Request.Context(), req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// UpdateUser edits a user account.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.store.Users.Update(c.Request.Context(), id, req.input())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user that has no machine reports or actions and is not the caller.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actorID, ok := actor(c)
	if !ok {
		return
	}

	if err := h.store.Users.Delete(c.Request.Context(), id, actorID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "User deleted successfully."})
}

// ListRoles returns the roles that can be assigned to users.
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.store.Users.Roles(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

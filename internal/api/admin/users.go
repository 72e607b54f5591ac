// users.go implements the user and user group endpoints.
package admin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/domain/paging"
	"github.com/codecentric/c4-genai-suite/backend/internal/domain/users"
)

// UserService runs the user and user group commands
type UserService interface {
	CreateUser(ctx context.Context, values users.CreateUserValues, by audit.PerformedBy) (*users.UserView, error)
	UpdateUser(ctx context.Context, id string, values users.UpdateUserValues, by audit.PerformedBy) (*users.UserView, error)
	DeleteUser(ctx context.Context, id string, by audit.PerformedBy) error
	ListUsers(ctx context.Context, query string, page paging.Request) (*paging.Result[*users.UserView], error)
	GetUser(ctx context.Context, id string) (*users.UserView, error)

	CreateUserGroup(ctx context.Context, values users.UserGroupValues, by audit.PerformedBy) (*users.UserGroupView, error)
	UpdateUserGroup(ctx context.Context, id string, values users.UserGroupValues, by audit.PerformedBy) (*users.UserGroupView, error)
	DeleteUserGroup(ctx context.Context, id string, by audit.PerformedBy) error
	ListUserGroups(ctx context.Context) ([]*users.UserGroupView, error)
}

// UserHandlers handles /users and /user-groups
type UserHandlers struct {
	svc UserService
}

// NewUserHandlers creates the user handlers
func NewUserHandlers(svc UserService) *UserHandlers {
	return &UserHandlers{svc: svc}
}

// @Summary      List users
// @Description  Get a page of users whose name or email contains query.
// @Tags         Users
// @Security     Bearer
// @Produce      json
// @Param        query     query  string  false  "Search text"
// @Param        page      query  int     false  "Zero-based page (default 0)"
// @Param        pageSize  query  int     false  "Items per page, max 100 (default 20)"
// @Success      200  {object}  map[string]interface{}  "items: []UserView, total: int"
// @Router       /api/v1/users [get]
func (h *UserHandlers) ListUsers(c *gin.Context) {
	page, ok := pageRequest(c)
	if !ok {
		return
	}
	result, err := h.svc.ListUsers(c.Request.Context(), c.Query("query"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetUser returns one user
// GET /api/v1/users/:id
func (h *UserHandlers) GetUser(c *gin.Context) {
	view, err := h.svc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CreateUser creates a user
// POST /api/v1/users
func (h *UserHandlers) CreateUser(c *gin.Context) {
	by, ok := actor(c)
	if !ok {
		return
	}
	var values users.CreateUserValues
	if err := c.ShouldBindJSON(&values); err != nil {
		invalidBody(c, err)
		return
	}

	view, err := h.svc.CreateUser(c.Request.Context(), values, by)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// UpdateUser applies a partial update
// PUT /api/v1/users/:id
func (h *UserHandlers) UpdateUser(c *gin.Context) {
	by, ok := actor(c)
	if !ok {
		return
	}
	var values users.UpdateUserValues
	if err := c.ShouldBindJSON(&values); err != nil {
		invalidBody(c, err)
		return
	}

	view, err := h.svc.UpdateUser(c.Request.Context(), c.Param("id"), values, by)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeleteUser removes a user
// DELETE /api/v1/users/:id
func (h *UserHandlers) DeleteUser(c *gin.Context) {
	by, ok := actor(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteUser(c.Request.Context(), c.Param("id"), by); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUserGroups returns all user groups
// GET /api/v1/user-groups
func (h *UserHandlers) ListUserGroups(c *gin.Context) {
	items, err := h.svc.ListUserGroups(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[*users.UserGroupView]{Items: items})
}

// CreateUserGroup creates a user group
// POST /api/v1/user-groups
func (h *UserHandlers) CreateUserGroup(c *gin.Context) {
	by, ok := actor(c)
	if !ok {
		return
	}
	var values users.UserGroupValues
	if err := c.ShouldBindJSON(&values); err != nil {
		invalidBody(c, err)
		return
	}

	view, err := h.svc.CreateUserGroup(c.Request.Context(), values, by)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// UpdateUserGroup applies a partial update
// PUT /api/v1/user-groups/:id
func (h *UserHandlers) UpdateUserGroup(c *gin.Context) {
	by, ok := actor(c)
	if !ok {
		return
	}
	var values users.UserGroupValues
	if err := c.ShouldBindJSON(&values); err != nil {
		invalidBody(c, err)
		return
	}

	view, err := h.svc.UpdateUserGroup(c.Request.Context(), c.Param("id"), values, by)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeleteUserGroup removes a user group without members
// DELETE /api/v1/user-groups/:id
func (h *UserHandlers) DeleteUserGroup(c *gin.Context) {
	by, ok := actor(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteUserGroup(c.Request.Context(), c.Param("id"), by); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

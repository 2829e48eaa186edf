package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davicafu/devcamper/internal/user/application"
	userDomain "github.com/davicafu/devcamper/internal/user/domain"
	"github.com/davicafu/devcamper/pkg/utils"
)

// UserHandler encapsula el CRUD de administración de usuarios.
type UserHandler struct {
	service *application.UserService
}

func NewUserHandler(service *application.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.SendNotFound(c, fmt.Sprintf("No user with the id of %s", raw))
		return uuid.Nil, false
	}
	return id, true
}

// ListUsers endpoint GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	res, err := h.service.ListUsers(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetUser endpoint GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	user, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, user)
}

// CreateUser endpoint POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req userDomain.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	user, err := h.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusCreated, user)
}

// UpdateUser endpoint PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req userDomain.UserPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}
	user, err := h.service.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, user)
}

// DeleteUser endpoint DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteUser(c.Request.Context(), id); err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{})
}

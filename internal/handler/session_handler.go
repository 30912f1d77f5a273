package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"
)

type SessionHandler struct {
	sessionService service.SessionService
}

func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup) {
	session := router.Group("/api/session")
	{
		session.POST("", h.StartSession)
		session.PUT("/role", middleware.RequireSession(), h.SwitchRole)
	}
}

type startSessionDTO struct {
	User string `json:"user" binding:"required"`
	Role string `json:"role" binding:"required"`
}

// StartSession issues a simulation token for the given identity
func (h *SessionHandler) StartSession(c *gin.Context) {
	var dto startSessionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid session payload: "+err.Error()))
		return
	}

	result, err := h.sessionService.Start(c.Request.Context(), dto.User, model.Role(dto.Role))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

type switchRoleDTO struct {
	Role string `json:"role" binding:"required"`
}

// SwitchRole changes the simulated acting role; the switch itself is audited
func (h *SessionHandler) SwitchRole(c *gin.Context) {
	var dto switchRoleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid role payload: "+err.Error()))
		return
	}

	user, _ := middleware.ActorFrom(c)
	result, err := h.sessionService.SwitchRole(c.Request.Context(), user, model.Role(dto.Role))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

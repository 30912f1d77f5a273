package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"
)

type WorkflowHandler struct {
	workflowService service.WorkflowService
}

func NewWorkflowHandler(workflowService service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflowService: workflowService}
}

func (h *WorkflowHandler) RegisterRoutes(router *gin.RouterGroup) {
	workflows := router.Group("/api/workflows")
	{
		workflows.GET("", middleware.RequireSession(), h.GetWorkflow)
		workflows.PUT("", middleware.RequireRole(model.RoleAdmin), h.ReplaceWorkflow)
	}
}

// GetWorkflow returns the ordered stage list
func (h *WorkflowHandler) GetWorkflow(c *gin.Context) {
	steps, err := h.workflowService.Steps(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, steps))
}

type replaceWorkflowDTO struct {
	Steps []service.WorkflowStepDTO `json:"steps" binding:"required"`
}

// ReplaceWorkflow swaps the entire stage list. Admin only.
func (h *WorkflowHandler) ReplaceWorkflow(c *gin.Context) {
	var dto replaceWorkflowDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid workflow payload: "+err.Error()))
		return
	}

	user, role := middleware.ActorFrom(c)
	steps, err := h.workflowService.Replace(c.Request.Context(), service.Actor{User: user, Role: role}, dto.Steps)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, steps))
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"
)

type RequestHandler struct {
	requestService service.RequestService
}

func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests")
	requests.Use(middleware.RequireSession())
	{
		requests.GET("", h.ListRequests)
		requests.POST("", h.SubmitRequest)
		requests.GET("/:id", h.GetRequest)
		requests.POST("/:id/comments", h.AddComment)
		requests.PUT("/:id/approve", h.actionHandler(model.ActionApprove))
		requests.PUT("/:id/reject", h.actionHandler(model.ActionReject))
		requests.PUT("/:id/escalate", h.actionHandler(model.ActionEscalate))
	}
	// Deletion is a repository-level operation outside the state machine,
	// reserved for the Admin role.
	router.DELETE("/api/requests/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteRequest)
}

// ListRequests returns requests, optionally filtered by status
func (h *RequestHandler) ListRequests(c *gin.Context) {
	params := pagination.Parse(c)

	filter := service.RequestFilterDTO{
		Status: c.Query("status"),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	requests, total, err := h.requestService.List(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": http.StatusOK,
		"data":   requests,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	})
}

// SubmitRequest creates a new request routed to the first approval stage
func (h *RequestHandler) SubmitRequest(c *gin.Context) {
	var dto service.CreateRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	user, role := middleware.ActorFrom(c)
	result, err := h.requestService.Submit(c.Request.Context(), service.Actor{User: user, Role: role}, dto)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// GetRequest returns a single request with its comments
func (h *RequestHandler) GetRequest(c *gin.Context) {
	result, err := h.requestService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// actionHandler builds the approve/reject/escalate endpoints. The acting role
// comes from the session token; the engine decides whether it is authorized.
func (h *RequestHandler) actionHandler(action model.WorkflowAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, role := middleware.ActorFrom(c)
		result, err := h.requestService.Advance(c.Request.Context(), c.Param("id"), service.Actor{User: user, Role: role}, action)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
	}
}

type addCommentDTO struct {
	Text string `json:"text"`
}

// AddComment appends a comment to a request. Blank text is accepted and
// dropped without error to match the frontend's behavior.
func (h *RequestHandler) AddComment(c *gin.Context) {
	var dto addCommentDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid comment payload: "+err.Error()))
		return
	}

	user, role := middleware.ActorFrom(c)
	result, err := h.requestService.AddComment(c.Request.Context(), c.Param("id"), service.Actor{User: user, Role: role}, dto.Text)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// DeleteRequest removes a request entirely
func (h *RequestHandler) DeleteRequest(c *gin.Context) {
	if err := h.requestService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": c.Param("id")}))
}

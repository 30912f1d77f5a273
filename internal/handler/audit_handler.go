package handler

import (
	"encoding/csv"
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/audit-logs")
	group.Use(middleware.RequireRole(model.RoleAdmin, model.RoleAuditor))
	{
		group.GET("", h.GetAuditLogs)
		group.GET("/export", h.ExportAuditLogs)
	}
}

// GetAuditLogs returns paginated audit entries, newest first
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.auditService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

// ExportAuditLogs streams the full log as CSV in the stable export field order
func (h *AuditHandler) ExportAuditLogs(c *gin.Context) {
	records, err := h.auditService.Export(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="audit-log.csv"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(service.ExportHeader())
	for _, r := range records {
		_ = w.Write(r.Fields())
	}
	w.Flush()
}

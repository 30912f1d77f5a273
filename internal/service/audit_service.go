package service

import (
	"context"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
)

type AuditLogResponse struct {
	ID        string `json:"id"`
	RequestID string `json:"request_id,omitempty"`
	User      string `json:"user"`
	Role      string `json:"role"`
	Action    string `json:"action"`
	Details   string `json:"details"`
	Timestamp string `json:"timestamp"`
}

// ExportRecord is one audit row in the stable export field order:
// timestamp, user, role, action, requestId, details. The export collaborator
// (CSV/PDF rendering) relies on this ordering being fixed.
type ExportRecord struct {
	Timestamp string
	User      string
	Role      string
	Action    string
	RequestID string
	Details   string
}

// ExportHeader returns the column names in export field order.
func ExportHeader() []string {
	return []string{"timestamp", "user", "role", "action", "request_id", "details"}
}

// Fields returns the record's values in export field order.
func (r ExportRecord) Fields() []string {
	return []string{r.Timestamp, r.User, r.Role, r.Action, r.RequestID, r.Details}
}

// AuditService exposes the read side of the audit recorder: paginated
// listing for the viewer and a stable-ordered projection for export.
type AuditService interface {
	List(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error)
	Export(ctx context.Context) ([]ExportRecord, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) List(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error) {
	entries, total, err := s.auditRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditLogResponse, 0, len(entries))
	for _, e := range entries {
		res = append(res, toAuditResponse(e))
	}
	return res, total, nil
}

func (s *auditService) Export(ctx context.Context) ([]ExportRecord, error) {
	entries, err := s.auditRepo.All(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]ExportRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, ExportRecord{
			Timestamp: e.Timestamp.Format(time.RFC3339),
			User:      e.User,
			Role:      e.Role.String(),
			Action:    e.Action,
			RequestID: e.RequestID,
			Details:   e.Details,
		})
	}
	return records, nil
}

func toAuditResponse(e model.AuditEntry) AuditLogResponse {
	return AuditLogResponse{
		ID:        e.ID,
		RequestID: e.RequestID,
		User:      e.User,
		Role:      e.Role.String(),
		Action:    e.Action,
		Details:   e.Details,
		Timestamp: e.Timestamp.Format(time.RFC3339),
	}
}

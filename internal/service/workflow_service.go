package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"
	"backend/pkg/idgen"
)

// WorkflowStepDTO mirrors the builder's step payload.
type WorkflowStepDTO struct {
	ID              string `json:"id"`
	Name            string `json:"name" binding:"required"`
	RequiredRole    string `json:"required_role" binding:"required"`
	Order           int    `json:"order"`
	ResultingStatus string `json:"resulting_status"`
}

// WorkflowService owns the workflow definition: ordered stage reads and the
// admin-gated whole-list replacement.
type WorkflowService interface {
	Steps(ctx context.Context) ([]model.WorkflowStep, error)
	Replace(ctx context.Context, actor Actor, steps []WorkflowStepDTO) ([]model.WorkflowStep, error)
}

type workflowService struct {
	workflowRepo repository.WorkflowRepository
	requestRepo  repository.RequestRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
	ids          idgen.Generator
	now          func() time.Time
	log          zerolog.Logger
}

func NewWorkflowService(
	workflowRepo repository.WorkflowRepository,
	requestRepo repository.RequestRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
	ids idgen.Generator,
	log zerolog.Logger,
) WorkflowService {
	return &workflowService{
		workflowRepo: workflowRepo,
		requestRepo:  requestRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
		ids:          ids,
		now:          time.Now,
		log:          log,
	}
}

func (s *workflowService) Steps(ctx context.Context) ([]model.WorkflowStep, error) {
	return s.workflowRepo.Steps(ctx)
}

// Replace validates, normalizes and atomically swaps the stage list. It
// refuses definitions that would strand in-flight requests: every non-terminal
// request's assignee role must still map to a stage in the new list.
func (s *workflowService) Replace(ctx context.Context, actor Actor, dtos []WorkflowStepDTO) ([]model.WorkflowStep, error) {
	steps := make([]model.WorkflowStep, 0, len(dtos))
	for i, d := range dtos {
		id := d.ID
		if id == "" {
			id = s.ids.NewID("WF")
		}
		order := d.Order
		if order == 0 {
			order = i + 1
		}
		steps = append(steps, model.WorkflowStep{
			ID:              id,
			Name:            d.Name,
			RequiredRole:    model.Role(d.RequiredRole),
			Order:           order,
			ResultingStatus: model.RequestStatus(d.ResultingStatus),
		})
	}

	normalized := model.NormalizeSteps(steps)
	if err := model.ValidateSteps(normalized); err != nil {
		return nil, err
	}

	activeRoles, err := s.requestRepo.ActiveAssigneeRoles(ctx)
	if err != nil {
		return nil, err
	}
	for _, role := range activeRoles {
		if role == model.RoleAdmin {
			// Escalated requests are always routable to Admin regardless of
			// the workflow shape.
			continue
		}
		if model.StageForRole(normalized, role) == nil {
			return nil, fmt.Errorf("%w: in-flight requests are assigned to role %s, which has no stage in the new definition", model.ErrInvalidDefinition, role)
		}
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if replaceErr := s.workflowRepo.Replace(txCtx, normalized); replaceErr != nil {
			return replaceErr
		}
		audit := model.AuditEntry{
			ID:        s.ids.NewID("LOG"),
			User:      actor.User,
			Role:      actor.Role,
			Action:    model.AuditActionSchemaUpdated,
			Details:   fmt.Sprintf("Workflow replaced with %d stages", len(normalized)),
			Timestamp: s.now(),
		}
		return s.auditRepo.Append(txCtx, &audit)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("stages", len(normalized)).Str("actor", actor.User).Msg("workflow schema replaced")
	s.hub.Publish(ws.Event{Type: ws.EventSchemaUpdated})

	return normalized, nil
}

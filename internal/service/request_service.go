package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"
	"backend/pkg/idgen"
)

// Actor identifies who is performing an operation. The caller supplies it;
// the engine does not authenticate — it only enforces that the acting role
// matches the request's current assignee.
type Actor struct {
	User string
	Role model.Role
}

// --- DTOs ---

type CreateRequestDTO struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Amount      string `json:"amount"`
}

type RequestFilterDTO struct {
	Status string
	Page   int
	Limit  int
}

type CommentResponse struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type RequestResponse struct {
	ID                  string            `json:"id"`
	Title               string            `json:"title"`
	Description         string            `json:"description"`
	Type                string            `json:"type"`
	Status              string            `json:"status"`
	Priority            string            `json:"priority"`
	Amount              string            `json:"amount"`
	Requester           string            `json:"requester"`
	CurrentAssigneeRole *string           `json:"current_assignee_role"`
	CreatedAt           string            `json:"created_at"`
	UpdatedAt           string            `json:"updated_at"`
	Comments            []CommentResponse `json:"comments"`
}

// --- Interface ---

// RequestService is the transition engine plus the request lifecycle
// operations around it. Every successful transition commits exactly one audit
// entry atomically with the state change.
type RequestService interface {
	Submit(ctx context.Context, actor Actor, req CreateRequestDTO) (RequestResponse, error)
	Advance(ctx context.Context, id string, actor Actor, action model.WorkflowAction) (RequestResponse, error)
	AddComment(ctx context.Context, id string, actor Actor, text string) (RequestResponse, error)
	Get(ctx context.Context, id string) (RequestResponse, error)
	List(ctx context.Context, filter RequestFilterDTO) ([]RequestResponse, int64, error)
	Delete(ctx context.Context, id string) error
}

type requestService struct {
	requestRepo  repository.RequestRepository
	workflowRepo repository.WorkflowRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
	ids          idgen.Generator
	now          func() time.Time
	log          zerolog.Logger
}

func NewRequestService(
	requestRepo repository.RequestRepository,
	workflowRepo repository.WorkflowRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
	ids idgen.Generator,
	log zerolog.Logger,
) RequestService {
	return &requestService{
		requestRepo:  requestRepo,
		workflowRepo: workflowRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
		ids:          ids,
		now:          time.Now,
		log:          log,
	}
}

// --- Implementation ---

func (s *requestService) Submit(ctx context.Context, actor Actor, dto CreateRequestDTO) (RequestResponse, error) {
	if strings.TrimSpace(dto.Title) == "" {
		return RequestResponse{}, fmt.Errorf("%w: title is required", model.ErrValidation)
	}
	if strings.TrimSpace(dto.Description) == "" {
		return RequestResponse{}, fmt.Errorf("%w: description is required", model.ErrValidation)
	}

	priority := model.Priority(dto.Priority)
	if priority == "" {
		priority = model.PriorityMedium
	}

	amount := decimal.Zero
	if dto.Amount != "" {
		parsed, err := decimal.NewFromString(dto.Amount)
		if err != nil {
			return RequestResponse{}, fmt.Errorf("%w: invalid amount %q", model.ErrValidation, dto.Amount)
		}
		amount = parsed
	}

	steps, err := s.workflowRepo.Steps(ctx)
	if err != nil {
		return RequestResponse{}, err
	}
	if len(steps) < 2 {
		return RequestResponse{}, fmt.Errorf("%w: workflow has no approval stage to route new requests to", model.ErrInvalidDefinition)
	}
	// New requests skip the Draft stage and land on the first approval gate.
	entry := steps[1]

	now := s.now()
	req := model.Request{
		ID:                  s.ids.NewID("REQ"),
		Title:               strings.TrimSpace(dto.Title),
		Description:         strings.TrimSpace(dto.Description),
		Type:                dto.Type,
		Status:              entry.ResultingStatus,
		Priority:            priority,
		Amount:              amount,
		Requester:           actor.User,
		CurrentAssigneeRole: model.RolePtr(entry.RequiredRole),
		CreatedAt:           now,
		UpdatedAt:           now,
		Comments:            []model.Comment{},
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.requestRepo.Create(txCtx, &req); createErr != nil {
			return createErr
		}
		audit := model.AuditEntry{
			ID:        s.ids.NewID("LOG"),
			RequestID: req.ID,
			User:      actor.User,
			Role:      actor.Role,
			Action:    model.AuditActionRequestCreated,
			Details:   fmt.Sprintf("Initialized requisition: %s", req.Title),
			Timestamp: now,
		}
		return s.auditRepo.Append(txCtx, &audit)
	})
	if err != nil {
		return RequestResponse{}, err
	}

	s.log.Info().Str("request_id", req.ID).Str("requester", actor.User).Msg("request submitted")
	s.hub.Publish(ws.Event{Type: ws.EventRequestCreated, RequestID: req.ID, Status: req.Status.String()})
	s.hub.Publish(ws.Event{Type: ws.EventAuditAppended, RequestID: req.ID, Action: model.AuditActionRequestCreated})

	return toRequestResponse(req), nil
}

// Advance runs one state machine step. The read-validate-write cycle executes
// under the repository's per-record guard, and the paired audit append joins
// it in the same unit of work, so no transition is observable without its
// audit entry.
func (s *requestService) Advance(ctx context.Context, id string, actor Actor, action model.WorkflowAction) (RequestResponse, error) {
	var updated *model.Request

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		steps, err := s.workflowRepo.Steps(txCtx)
		if err != nil {
			return err
		}

		updated, err = s.requestRepo.Update(txCtx, id, func(req *model.Request) error {
			return s.transition(req, steps, actor, action)
		})
		if err != nil {
			return err
		}

		audit := model.AuditEntry{
			ID:        s.ids.NewID("LOG"),
			RequestID: updated.ID,
			User:      actor.User,
			Role:      actor.Role,
			Action:    auditActionFor(action),
			Details:   fmt.Sprintf("%s applied; new status = %s", action, updated.Status),
			Timestamp: updated.UpdatedAt,
		}
		return s.auditRepo.Append(txCtx, &audit)
	})
	if err != nil {
		return RequestResponse{}, err
	}

	s.log.Info().
		Str("request_id", updated.ID).
		Str("action", string(action)).
		Str("status", updated.Status.String()).
		Str("actor", actor.User).
		Msg("request advanced")
	s.hub.Publish(ws.Event{
		Type:      ws.EventRequestAdvanced,
		RequestID: updated.ID,
		Status:    updated.Status.String(),
		Action:    string(action),
	})
	s.hub.Publish(ws.Event{Type: ws.EventAuditAppended, RequestID: updated.ID, Action: auditActionFor(action)})

	return toRequestResponse(*updated), nil
}

// transition applies the state machine rules in place. It is called with the
// request record locked; returning an error leaves the stored request
// untouched.
func (s *requestService) transition(req *model.Request, steps []model.WorkflowStep, actor Actor, action model.WorkflowAction) error {
	if req.Status.IsTerminal() {
		return fmt.Errorf("%w: request %s is already %s", model.ErrUnauthorized, req.ID, req.Status)
	}
	if !req.Assigned(actor.Role) {
		return fmt.Errorf("%w: request %s awaits %s, not %s", model.ErrUnauthorized, req.ID, assigneeName(req), actor.Role)
	}

	switch action {
	case model.ActionReject:
		req.Status = model.StatusRejected
		req.CurrentAssigneeRole = nil

	case model.ActionEscalate:
		// Escalation overrides the workflow shape and routes straight to Admin.
		req.Status = model.StatusEscalated
		req.CurrentAssigneeRole = model.RolePtr(model.RoleAdmin)

	case model.ActionApprove:
		if req.Status == model.StatusEscalated {
			// Approving an escalated request is a deliberate terminal
			// resolution, not a resumption of the pipeline.
			req.Status = model.StatusApproved
			req.CurrentAssigneeRole = nil
			break
		}

		current := model.StageForRole(steps, *req.CurrentAssigneeRole)
		if current == nil {
			return fmt.Errorf("%w: no stage requires role %s", model.ErrInvalidDefinition, *req.CurrentAssigneeRole)
		}
		if next := model.NextStage(steps, current); next != nil {
			req.Status = next.ResultingStatus
			req.CurrentAssigneeRole = model.RolePtr(next.RequiredRole)
		} else {
			req.Status = model.StatusApproved
			req.CurrentAssigneeRole = nil
		}

	default:
		return fmt.Errorf("%w: unknown action %q", model.ErrValidation, action)
	}

	req.UpdatedAt = s.now()
	return nil
}

func (s *requestService) AddComment(ctx context.Context, id string, actor Actor, text string) (RequestResponse, error) {
	// Empty comments are silently dropped to match the frontend's debouncing.
	if strings.TrimSpace(text) == "" {
		current, err := s.requestRepo.GetByID(ctx, id)
		if err != nil {
			return RequestResponse{}, err
		}
		return toRequestResponse(*current), nil
	}

	updated, err := s.requestRepo.Update(ctx, id, func(req *model.Request) error {
		req.Comments = append(req.Comments, model.Comment{
			ID:        s.ids.NewID("CMT"),
			RequestID: req.ID,
			Author:    actor.User,
			Role:      actor.Role,
			Text:      text,
			Timestamp: s.now(),
		})
		// Comments carry their own timestamps; the workflow UpdatedAt is
		// reserved for state transitions.
		return nil
	})
	if err != nil {
		return RequestResponse{}, err
	}

	return toRequestResponse(*updated), nil
}

func (s *requestService) Get(ctx context.Context, id string) (RequestResponse, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return RequestResponse{}, err
	}
	return toRequestResponse(*req), nil
}

func (s *requestService) List(ctx context.Context, filter RequestFilterDTO) ([]RequestResponse, int64, error) {
	requests, total, err := s.requestRepo.List(ctx, repository.RequestFilter{
		Status: model.RequestStatus(filter.Status),
		Page:   filter.Page,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, 0, err
	}

	res := make([]RequestResponse, 0, len(requests))
	for _, r := range requests {
		res = append(res, toRequestResponse(r))
	}
	return res, total, nil
}

func (s *requestService) Delete(ctx context.Context, id string) error {
	return s.requestRepo.Delete(ctx, id)
}

// --- Helpers ---

func auditActionFor(action model.WorkflowAction) string {
	switch action {
	case model.ActionReject:
		return model.AuditActionRejection
	case model.ActionEscalate:
		return model.AuditActionEscalation
	default:
		return model.AuditActionAuthorization
	}
}

func assigneeName(req *model.Request) string {
	if req.CurrentAssigneeRole == nil {
		return "nobody"
	}
	return req.CurrentAssigneeRole.String()
}

func toRequestResponse(r model.Request) RequestResponse {
	resp := RequestResponse{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Type:        r.Type,
		Status:      r.Status.String(),
		Priority:    string(r.Priority),
		Amount:      r.Amount.String(),
		Requester:   r.Requester,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   r.UpdatedAt.Format(time.RFC3339),
		Comments:    make([]CommentResponse, 0, len(r.Comments)),
	}
	if r.CurrentAssigneeRole != nil {
		role := r.CurrentAssigneeRole.String()
		resp.CurrentAssigneeRole = &role
	}
	for _, c := range r.Comments {
		resp.Comments = append(resp.Comments, CommentResponse{
			ID:        c.ID,
			Author:    c.Author,
			Role:      c.Role.String(),
			Text:      c.Text,
			Timestamp: c.Timestamp.Format(time.RFC3339),
		})
	}
	return resp
}

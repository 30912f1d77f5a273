package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/idgen"
)

type SessionResponse struct {
	Token string `json:"token"`
	User  string `json:"user"`
	Role  string `json:"role"`
}

// SessionService manages the simulated acting identity. There is no real
// authentication here: the role switch is a demo toggle, and every switch is
// recorded in the audit log.
type SessionService interface {
	// Start issues a session token for the given identity.
	Start(ctx context.Context, user string, role model.Role) (SessionResponse, error)
	// SwitchRole issues a fresh token with the new role and appends a
	// "Role Switched" audit entry. The entry is attributed to the Admin role
	// regardless of who triggered it, since only the admin console exposes
	// the switch.
	SwitchRole(ctx context.Context, user string, role model.Role) (SessionResponse, error)
}

type sessionService struct {
	auditRepo repository.AuditRepository
	secret    []byte
	ids       idgen.Generator
	now       func() time.Time
	log       zerolog.Logger
}

func NewSessionService(auditRepo repository.AuditRepository, secret []byte, ids idgen.Generator, log zerolog.Logger) SessionService {
	return &sessionService{
		auditRepo: auditRepo,
		secret:    secret,
		ids:       ids,
		now:       time.Now,
		log:       log,
	}
}

func (s *sessionService) Start(ctx context.Context, user string, role model.Role) (SessionResponse, error) {
	if user == "" {
		return SessionResponse{}, fmt.Errorf("%w: user name is required", model.ErrValidation)
	}
	if !role.IsValid() {
		return SessionResponse{}, fmt.Errorf("%w: unknown role %q", model.ErrValidation, role)
	}

	token, err := middleware.IssueToken(user, role, s.secret)
	if err != nil {
		return SessionResponse{}, err
	}
	return SessionResponse{Token: token, User: user, Role: role.String()}, nil
}

func (s *sessionService) SwitchRole(ctx context.Context, user string, role model.Role) (SessionResponse, error) {
	resp, err := s.Start(ctx, user, role)
	if err != nil {
		return SessionResponse{}, err
	}

	audit := model.AuditEntry{
		ID:        s.ids.NewID("LOG"),
		User:      user,
		Role:      model.RoleAdmin,
		Action:    model.AuditActionRoleSwitched,
		Details:   fmt.Sprintf("Account access updated to: %s", role),
		Timestamp: s.now(),
	}
	if err := s.auditRepo.Append(ctx, &audit); err != nil {
		return SessionResponse{}, err
	}

	s.log.Info().Str("user", user).Str("role", role.String()).Msg("simulated role switched")
	return resp, nil
}

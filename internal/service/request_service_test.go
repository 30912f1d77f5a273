package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/model"
	"backend/internal/repository/memory"
	"backend/pkg/idgen"
)

// engineFixture wires the engine against fresh in-memory stores with a
// deterministic id generator and a ticking fake clock.
type engineFixture struct {
	requests *memory.RequestStore
	audit    *memory.AuditStore
	workflow *memory.WorkflowStore
	svc      RequestService
}

func fourStageSteps() []model.WorkflowStep {
	return model.NormalizeSteps([]model.WorkflowStep{
		{ID: "1", Name: "Draft", RequiredRole: model.RoleRequester, Order: 1},
		{ID: "2", Name: "Manager Review", RequiredRole: model.RoleManager, Order: 2},
		{ID: "3", Name: "Finance Verification", RequiredRole: model.RoleFinance, Order: 3},
		{ID: "4", Name: "Final Approval", RequiredRole: model.RoleAdmin, Order: 4},
	})
}

func newEngineFixture(t *testing.T, steps []model.WorkflowStep) *engineFixture {
	t.Helper()

	f := &engineFixture{
		requests: memory.NewRequestStore(),
		audit:    memory.NewAuditStore(),
		workflow: memory.NewWorkflowStore(steps),
	}

	svc := NewRequestService(f.requests, f.workflow, f.audit, memory.NewTxManager(), nil, idgen.NewSequence(), zerolog.Nop())

	// Tick one second per observation so updatedAt comparisons are stable.
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	svc.(*requestService).now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	f.svc = svc
	return f
}

func (f *engineFixture) auditLen(t *testing.T) int {
	t.Helper()
	entries, err := f.audit.All(context.Background())
	require.NoError(t, err)
	return len(entries)
}

func (f *engineFixture) submit(t *testing.T) RequestResponse {
	t.Helper()
	resp, err := f.svc.Submit(context.Background(), Actor{User: "David Miller", Role: model.RoleRequester}, CreateRequestDTO{
		Title:       "AWS Capacity Increase",
		Description: "Reserve capacity for the Q4 peak",
		Type:        "Infrastructure",
		Priority:    "High",
		Amount:      "12500",
	})
	require.NoError(t, err)
	return resp
}

// assertInvariant checks the core invariant: terminal status iff nil assignee.
func assertInvariant(t *testing.T, resp RequestResponse) {
	t.Helper()
	terminal := resp.Status == model.StatusApproved.String() || resp.Status == model.StatusRejected.String()
	if terminal {
		assert.Nil(t, resp.CurrentAssigneeRole, "terminal request must have no assignee")
	} else {
		require.NotNil(t, resp.CurrentAssigneeRole, "active request must have an assignee")
	}
}

func TestSubmitRoutesToFirstApprovalStage(t *testing.T) {
	f := newEngineFixture(t, fourStageSteps())

	resp := f.submit(t)

	assert.Equal(t, model.StatusPendingManager.String(), resp.Status)
	require.NotNil(t, resp.CurrentAssigneeRole)
	assert.Equal(t, model.RoleManager.String(), *resp.CurrentAssigneeRole)
	assert.Equal(t, "David Miller", resp.Requester)
	assert.Equal(t, resp.CreatedAt, resp.UpdatedAt)
	assert.Empty(t, resp.Comments)
	assertInvariant(t, resp)

	entries, err := f.audit.All(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.AuditActionRequestCreated, entries[0].Action)
	assert.Equal(t, resp.ID, entries[0].RequestID)
	assert.Equal(t, "David Miller", entries[0].User)
}

func TestSubmitValidation(t *testing.T) {
	f := newEngineFixture(t, fourStageSteps())
	actor := Actor{User: "David Miller", Role: model.RoleRequester}

	_, err := f.svc.Submit(context.Background(), actor, CreateRequestDTO{Title: "  ", Description: "x"})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.svc.Submit(context.Background(), actor, CreateRequestDTO{Title: "x", Description: ""})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.svc.Submit(context.Background(), actor, CreateRequestDTO{Title: "x", Description: "y", Amount: "not-a-number"})
	assert.ErrorIs(t, err, model.ErrValidation)

	// No request or audit entry leaks out of a failed submission.
	_, total, listErr := f.svc.List(context.Background(), RequestFilterDTO{})
	require.NoError(t, listErr)
	assert.Zero(t, total)
	assert.Zero(t, f.auditLen(t))
}

func TestApproveWalksThePipeline(t *testing.T) {
	f := newEngineFixture(t, fourStageSteps())
	ctx := context.Background()
	req := f.submit(t)

	// Manager approves: hand off to Finance.
	resp, err := f.svc.Advance(ctx, req.ID, Actor{User: "Maria", Role: model.RoleManager}, model.ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingFinance.String(), resp.Status)
	require.NotNil(t, resp.CurrentAssigneeRole)
	assert.Equal(t, model.RoleFinance.String(), *resp.CurrentAssigneeRole)
	assertInvariant(t, resp)

	// Finance approves: hand off to Admin. The Admin stage carries the
	// default pending-manager status per its step mapping.
	resp, err = f.svc.Advance(ctx, req.ID, Actor{User: "Frank", Role: model.RoleFinance}, model.ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingManager.String(), resp.Status)
	require.NotNil(t, resp.CurrentAssigneeRole)
	assert.Equal(t, model.RoleAdmin.String(), *resp.CurrentAssigneeRole)
	assertInvariant(t, resp)

	// Admin sits on the last stage: approval is terminal.
	resp, err = f.svc.Advance(ctx, req.ID, Actor{User: "Alexander", Role: model.RoleAdmin}, model.ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved.String(), resp.Status)
	assert.Nil(t, resp.CurrentAssigneeRole)
	assertInvariant(t, resp)

	// One audit entry per transition plus the creation entry.
	assert.Equal(t, 4, f.auditLen(t))

	// Terminal requests accept nothing further.
	for _, action := range []model.WorkflowAction{model.ActionApprove, model.ActionReject, model.ActionEscalate} {
		_, err := f.svc.Advance(ctx, req.ID, Actor{User: "Alexander", Role: model.RoleAdmin}, action)
		assert.ErrorIs(t, err, model.ErrUnauthorized)
	}
	assert.Equal(t, 4, f.auditLen(t), "failed actions must not append audit entries")
}

func TestRejectIsTerminal(t *testing.T) {
	f := newEngineFixture(t, fourStageSteps())
	ctx := context.Background()
	req := f.submit(t)

	resp, err := f.svc.Advance(ctx, req.ID, Actor{User: "Maria", Role: model.RoleManager}, model.ActionReject)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected.String(), resp.Status)
	assert.Nil(t, resp.CurrentAssigneeRole)
	assertInvariant(t, resp)

	entries, err := f.audit.All(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first: the rejection sits at the head.
	assert.Equal(t, model.AuditActionRejection, entries[0].Action)
	assert.Equal(t, req.ID, entries[0].RequestID)
	assert.Contains(t, entries[0].Details, "new status = Rejected")
}

func TestEscalateRoutesToAdminUnconditionally(t *testing.T) {
	// A workflow with no Admin stage at all: escalation must still land on Admin.
	steps := model.NormalizeSteps([]model.WorkflowStep{
		{ID: "1", Name: "Draft", RequiredRole: model.RoleRequester, Order: 1},
		{ID: "2", Name: "Manager Review", RequiredRole: model.RoleManager, Order: 2},
	})
	f := newEngineFixture(t, steps)
	ctx := context.Background()
	req := f.submit(t)

	resp, err := f.svc.Advance(ctx, req.ID, Actor{User: "Maria", Role: model.RoleManager}, model.ActionEscalate)
	require.NoError(t, err)
	assert.Equal(t, model.StatusEscalated.String(), resp.Status)
	require.NotNil(t, resp.CurrentAssigneeRole)
	assert.Equal(t, model.RoleAdmin.String(), *resp.CurrentAssigneeRole)

	entries, err := f.audit.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.AuditActionEscalation, entries[0].Action)
}

func TestEscalatedResolution(t *testing.T) {
	f := newEngineFixture(t, fourStageSteps())
	ctx := context.Background()
	req := f.submit(t)

	_, err := f.svc.Advance(ctx, req.ID, Actor{User: "Maria", Role: model.RoleManager}, model.ActionEscalate)
	require.NoError(t, err)

	// Only the Admin can act on an escalated request.
	_, err = f.svc.Advance(ctx, req.ID, Actor{User: "Maria", Role: model.RoleManager}, model.ActionApprove)
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	// Re-escalating is allowed and audited, but changes nothing.
	resp, err := f.svc.Advance(ctx, req.ID, Actor{User: "Alexander", Role: model.RoleAdmin}, model.ActionEscalate)
	require.NoError(t, err)
	assert.Equal(t, model.StatusEscalated.String(), resp.Status)

	// Approving from Escalated is a terminal resolution, not a resumption of
	// the pipeline.
	resp, err = f.svc.Advance(ctx, req.ID, Actor{User: "Alexander", Role: model.RoleAdmin}, model.ActionApprove)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved.String(), resp.Status)
	assert.Nil(t, resp.CurrentAssigneeRole)
}

func TestEscalatedRejection(t *testing.T) {
	f := newEngineFixture(t, fourStageSteps())
	ctx := context.Background()
	req := f.submit(t)

	_, err := f.svc.Advance(ctx, req.ID, Actor{User: "Maria", Role: model.RoleManager}, model.ActionEscalate)
	require.NoError(t, err)

	resp, err := f.svc.Advance(ctx, req.ID, Actor{User: "Alexander", Role: model.RoleAdmin}, model.ActionReject)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected.String(), resp.Status)
	assert.Nil(t, resp.CurrentAssigneeRole)
}

func TestUnauthorizedActorLeavesStateUntouched(t *testing.T) {
	f := newEngineFixture(t, fourStageSteps())
	ctx := context.Background()
	req := f.submit(t)
	auditBefore := f.auditLen(t)

	_, err := f.svc.Advance(ctx, req.ID, Actor{User: "Frank", Role: model.RoleFinance}, model.ActionApprove)
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	after, getErr := f.svc.Get(ctx, req.ID)
	require.NoError(t, getErr)
	assert.Equal(t, req.Status, after.Status)
	assert.Equal(t, req.UpdatedAt, after.UpdatedAt)
	require.NotNil(t, after.CurrentAssigneeRole)
	assert.Equal(t, model.RoleManager.String(), *after.CurrentAssigneeRole)
	assert.Equal(t, auditBefore, f.auditLen(t))
}

func TestAdvanceUnknownRequest(t *testing.T) {
	f := newEngineFixture(t, fourStageSteps())

	_, err := f.svc.Advance(context.Background(), "REQ-missing", Actor{User: "Maria", Role: model.RoleManager}, model.ActionApprove)
	assert.ErrorIs(t, err, model.ErrRequestNotFound)
	assert.Zero(t, f.auditLen(t))
}

func TestAuditPrefixStableUnderAppends(t *testing.T) {
	f := newEngineFixture(t, fourStageSteps())
	ctx := context.Background()
	req := f.submit(t)

	before, err := f.audit.All(ctx)
	require.NoError(t, err)
	snapshot := make([]model.AuditEntry, len(before))
	copy(snapshot, before)

	_, err = f.svc.Advance(ctx, req.ID, Actor{User: "Maria", Role: model.RoleManager}, model.ActionApprove)
	require.NoError(t, err)

	after, err := f.audit.All(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(snapshot)+1)
	// Entries appended earlier are byte-for-byte unchanged.
	assert.Equal(t, snapshot, after[1:])
}

func TestAddComment(t *testing.T) {
	f := newEngineFixture(t, fourStageSteps())
	ctx := context.Background()
	req := f.submit(t)

	resp, err := f.svc.AddComment(ctx, req.ID, Actor{User: "Maria", Role: model.RoleManager}, "Looks reasonable, verifying budget.")
	require.NoError(t, err)
	require.Len(t, resp.Comments, 1)
	assert.Equal(t, "Maria", resp.Comments[0].Author)
	assert.Equal(t, model.RoleManager.String(), resp.Comments[0].Role)

	// Comments never touch workflow state or its updatedAt stamp.
	assert.Equal(t, req.Status, resp.Status)
	assert.Equal(t, req.UpdatedAt, resp.UpdatedAt)

	// Arrival order is preserved.
	resp, err = f.svc.AddComment(ctx, req.ID, Actor{User: "Frank", Role: model.RoleFinance}, "Budget confirmed.")
	require.NoError(t, err)
	require.Len(t, resp.Comments, 2)
	assert.Equal(t, "Maria", resp.Comments[0].Author)
	assert.Equal(t, "Frank", resp.Comments[1].Author)
}

func TestAddCommentEdgeCases(t *testing.T) {
	f := newEngineFixture(t, fourStageSteps())
	ctx := context.Background()
	req := f.submit(t)

	// Blank text is a silent no-op, not an error.
	resp, err := f.svc.AddComment(ctx, req.ID, Actor{User: "Maria", Role: model.RoleManager}, "   ")
	require.NoError(t, err)
	assert.Empty(t, resp.Comments)

	_, err = f.svc.AddComment(ctx, "REQ-missing", Actor{User: "Maria", Role: model.RoleManager}, "hello")
	assert.ErrorIs(t, err, model.ErrRequestNotFound)

	// Comments do not grow the audit log.
	_, err = f.svc.AddComment(ctx, req.ID, Actor{User: "Maria", Role: model.RoleManager}, "real comment")
	require.NoError(t, err)
	assert.Equal(t, 1, f.auditLen(t))
}

func TestListFiltersByStatus(t *testing.T) {
	f := newEngineFixture(t, fourStageSteps())
	ctx := context.Background()

	first := f.submit(t)
	second := f.submit(t)

	_, err := f.svc.Advance(ctx, second.ID, Actor{User: "Maria", Role: model.RoleManager}, model.ActionReject)
	require.NoError(t, err)

	pending, total, err := f.svc.List(ctx, RequestFilterDTO{Status: model.StatusPendingManager.String()})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)

	all, total, err := f.svc.List(ctx, RequestFilterDTO{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)
}

func TestDeleteRequest(t *testing.T) {
	f := newEngineFixture(t, fourStageSteps())
	ctx := context.Background()
	req := f.submit(t)
	auditBefore := f.auditLen(t)

	require.NoError(t, f.svc.Delete(ctx, req.ID))

	_, err := f.svc.Get(ctx, req.ID)
	assert.ErrorIs(t, err, model.ErrRequestNotFound)

	// Deletion is a repository operation, not a transition: no audit entry.
	assert.Equal(t, auditBefore, f.auditLen(t))

	assert.ErrorIs(t, f.svc.Delete(ctx, req.ID), model.ErrRequestNotFound)
}

func TestSubmitRequiresApprovalStage(t *testing.T) {
	steps := model.NormalizeSteps([]model.WorkflowStep{
		{ID: "1", Name: "Draft", RequiredRole: model.RoleRequester, Order: 1},
	})
	f := newEngineFixture(t, steps)

	_, err := f.svc.Submit(context.Background(), Actor{User: "David", Role: model.RoleRequester}, CreateRequestDTO{
		Title: "x", Description: "y",
	})
	assert.ErrorIs(t, err, model.ErrInvalidDefinition)
}

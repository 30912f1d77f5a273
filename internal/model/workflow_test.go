package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fourStagePipeline() []WorkflowStep {
	return []WorkflowStep{
		{ID: "1", Name: "Draft", RequiredRole: RoleRequester, Order: 1},
		{ID: "2", Name: "Manager Review", RequiredRole: RoleManager, Order: 2},
		{ID: "3", Name: "Finance Verification", RequiredRole: RoleFinance, Order: 3},
		{ID: "4", Name: "Final Approval", RequiredRole: RoleAdmin, Order: 4},
	}
}

func TestNormalizeStepsSortsAndFillsStatus(t *testing.T) {
	steps := []WorkflowStep{
		{ID: "3", Name: "Finance Verification", RequiredRole: RoleFinance, Order: 3},
		{ID: "1", Name: "Draft", RequiredRole: RoleRequester, Order: 1},
		{ID: "2", Name: "Manager Review", RequiredRole: RoleManager, Order: 2},
	}

	normalized := NormalizeSteps(steps)

	require.Len(t, normalized, 3)
	assert.Equal(t, "1", normalized[0].ID)
	assert.Equal(t, "2", normalized[1].ID)
	assert.Equal(t, "3", normalized[2].ID)

	// Finance stage maps to pending-finance, everything else to pending-manager.
	assert.Equal(t, StatusPendingManager, normalized[0].ResultingStatus)
	assert.Equal(t, StatusPendingManager, normalized[1].ResultingStatus)
	assert.Equal(t, StatusPendingFinance, normalized[2].ResultingStatus)

	// Input slice is untouched.
	assert.Equal(t, "3", steps[0].ID)
	assert.Empty(t, steps[0].ResultingStatus)
}

func TestNormalizeStepsKeepsExplicitStatus(t *testing.T) {
	steps := NormalizeSteps([]WorkflowStep{
		{ID: "1", Name: "Custom", RequiredRole: RoleAdmin, Order: 1, ResultingStatus: StatusPendingFinance},
	})
	assert.Equal(t, StatusPendingFinance, steps[0].ResultingStatus)
}

func TestValidateSteps(t *testing.T) {
	tests := []struct {
		name    string
		steps   []WorkflowStep
		wantErr error
	}{
		{
			name:  "valid pipeline",
			steps: NormalizeSteps(fourStagePipeline()),
		},
		{
			name:    "empty list",
			steps:   nil,
			wantErr: ErrInvalidDefinition,
		},
		{
			name: "blank name",
			steps: []WorkflowStep{
				{ID: "1", Name: "   ", RequiredRole: RoleManager, Order: 1},
			},
			wantErr: ErrInvalidDefinition,
		},
		{
			name: "unknown role",
			steps: []WorkflowStep{
				{ID: "1", Name: "Review", RequiredRole: Role("Intern"), Order: 1},
			},
			wantErr: ErrInvalidDefinition,
		},
		{
			name: "duplicate order",
			steps: []WorkflowStep{
				{ID: "1", Name: "Draft", RequiredRole: RoleRequester, Order: 1},
				{ID: "2", Name: "Review", RequiredRole: RoleManager, Order: 1},
			},
			wantErr: ErrInvalidDefinition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSteps(tt.steps)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestStageForRole(t *testing.T) {
	steps := NormalizeSteps(fourStagePipeline())

	stage := StageForRole(steps, RoleFinance)
	require.NotNil(t, stage)
	assert.Equal(t, "Finance Verification", stage.Name)

	assert.Nil(t, StageForRole(steps, RoleAuditor))
}

func TestNextStage(t *testing.T) {
	steps := NormalizeSteps(fourStagePipeline())

	first := StageForRole(steps, RoleRequester)
	next := NextStage(steps, first)
	require.NotNil(t, next)
	assert.Equal(t, RoleManager, next.RequiredRole)

	last := StageForRole(steps, RoleAdmin)
	assert.Nil(t, NextStage(steps, last))

	assert.Nil(t, NextStage(steps, nil))
	assert.Nil(t, NextStage(steps, &WorkflowStep{ID: "missing"}))
}

func TestStatusIsTerminal(t *testing.T) {
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.False(t, StatusDraft.IsTerminal())
	assert.False(t, StatusPendingManager.IsTerminal())
	assert.False(t, StatusPendingFinance.IsTerminal())
	assert.False(t, StatusEscalated.IsTerminal())
}

package model

import (
	"fmt"
	"sort"
	"strings"
)

// WorkflowStep is one stage of the approval pipeline: the role authorized to
// act at that position and the status a request enters when routed to it.
// The first step represents the originating Draft role, not an approval gate.
type WorkflowStep struct {
	ID           string `gorm:"type:varchar(40);primaryKey" json:"id"`
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	RequiredRole Role   `gorm:"type:varchar(50);not null" json:"required_role"`
	Order        int    `gorm:"column:step_order;not null" json:"order"`

	// ResultingStatus is the status a request takes while waiting at this
	// step. Blank values are filled in by NormalizeSteps.
	ResultingStatus RequestStatus `gorm:"type:varchar(40)" json:"resulting_status"`
}

// defaultResultingStatus preserves the historical routing rule: the Finance
// stage displays as pending-finance, every other stage as pending-manager.
func defaultResultingStatus(role Role) RequestStatus {
	if role == RoleFinance {
		return StatusPendingFinance
	}
	return StatusPendingManager
}

// NormalizeSteps sorts steps by Order and fills in blank ResultingStatus
// fields from each step's role. It returns a new slice; the input is not
// modified.
func NormalizeSteps(steps []WorkflowStep) []WorkflowStep {
	out := make([]WorkflowStep, len(steps))
	copy(out, steps)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	for i := range out {
		if out[i].ResultingStatus == "" {
			out[i].ResultingStatus = defaultResultingStatus(out[i].RequiredRole)
		}
	}
	return out
}

// ValidateSteps checks a normalized step list: it must be non-empty, every
// step must have a name and a known role, and Order values must be strictly
// increasing.
func ValidateSteps(steps []WorkflowStep) error {
	if len(steps) == 0 {
		return fmt.Errorf("%w: workflow must contain at least one step", ErrInvalidDefinition)
	}
	for i, s := range steps {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("%w: step %d has a blank name", ErrInvalidDefinition, i+1)
		}
		if !s.RequiredRole.IsValid() {
			return fmt.Errorf("%w: step %q has unknown role %q", ErrInvalidDefinition, s.Name, s.RequiredRole)
		}
		if i > 0 && steps[i-1].Order >= s.Order {
			return fmt.Errorf("%w: step order values must be strictly increasing", ErrInvalidDefinition)
		}
	}
	return nil
}

// StageForRole returns the first step whose RequiredRole equals role, or nil.
func StageForRole(steps []WorkflowStep, role Role) *WorkflowStep {
	for i := range steps {
		if steps[i].RequiredRole == role {
			return &steps[i]
		}
	}
	return nil
}

// NextStage returns the step following current in the ordered list, or nil
// when current is the last stage.
func NextStage(steps []WorkflowStep, current *WorkflowStep) *WorkflowStep {
	if current == nil {
		return nil
	}
	for i := range steps {
		if steps[i].ID == current.ID {
			if i+1 < len(steps) {
				return &steps[i+1]
			}
			return nil
		}
	}
	return nil
}

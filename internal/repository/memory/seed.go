package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"backend/internal/model"
)

// DefaultWorkflow returns the stock five-stage approval pipeline. The first
// stage is the originating Draft role; every later stage is an approval gate.
func DefaultWorkflow() []model.WorkflowStep {
	return model.NormalizeSteps([]model.WorkflowStep{
		{ID: "1", Name: "Draft", RequiredRole: model.RoleRequester, Order: 1},
		{ID: "2", Name: "Manager Review", RequiredRole: model.RoleManager, Order: 2},
		{ID: "3", Name: "Finance Verification", RequiredRole: model.RoleFinance, Order: 3},
		{ID: "4", Name: "Compliance Check", RequiredRole: model.RoleAuditor, Order: 4},
		{ID: "5", Name: "Final Approval", RequiredRole: model.RoleAdmin, Order: 5},
	})
}

// SeedRequests loads the demo dataset into a RequestStore so the frontend has
// something to browse on a fresh session.
func SeedRequests(rs *RequestStore) {
	now := time.Now()
	day := 24 * time.Hour

	requests := []model.Request{
		{
			ID:          "REQ-882",
			Title:       "AWS Production Cluster Auto-Scaling (Q4 Peak)",
			Description: "Immediate increase in reserve capacity for US-East-1 and EU-West-1 clusters ahead of the global Black Friday event.",
			Type:        "Infrastructure",
			Status:      model.StatusPendingManager,
			Priority:    model.PriorityCritical,
			Amount:      decimal.NewFromInt(12500),
			Requester:   "David Miller",

			CurrentAssigneeRole: model.RolePtr(model.RoleManager),
			CreatedAt:           now.Add(-5 * time.Hour),
			UpdatedAt:           now.Add(-2 * time.Hour),
			Comments: []model.Comment{
				{ID: "c1", RequestID: "REQ-882", Author: "David Miller", Role: model.RoleRequester, Text: "The scaling window closes in 6 hours. Urgency is high.", Timestamp: now},
			},
		},
		{
			ID:          "REQ-754",
			Title:       "Global Cybersecurity Awareness Training (Annual)",
			Description: "Mandatory phishing simulation and compliance training for all 5,000 employees. Vendor: KnowBe4.",
			Type:        "IT Security",
			Status:      model.StatusPendingFinance,
			Priority:    model.PriorityHigh,
			Amount:      decimal.NewFromInt(32400),
			Requester:   "Alice Vance",

			CurrentAssigneeRole: model.RolePtr(model.RoleFinance),
			CreatedAt:           now.Add(-2 * day),
			UpdatedAt:           now.Add(-1 * day),
			Comments: []model.Comment{
				{ID: "c2", RequestID: "REQ-754", Author: "CISO Office", Role: model.RoleManager, Text: "Security budget approved. Passing to Finance for final verification.", Timestamp: now.Add(-1 * day)},
			},
		},
		{
			ID:          "REQ-912",
			Title:       "Office Relocation: Singapore Tech Hub",
			Description: "Logistics and professional moving services for the new office in Marina Bay, including server rack transport.",
			Type:        "Facilities",
			Status:      model.StatusPendingManager,
			Priority:    model.PriorityMedium,
			Amount:      decimal.NewFromInt(15800),
			Requester:   "Li Wei",

			CurrentAssigneeRole: model.RolePtr(model.RoleManager),
			CreatedAt:           now.Add(-1 * day),
			UpdatedAt:           now.Add(-1 * day),
		},
		{
			ID:          "REQ-441",
			Title:       "Recruitment Fees: Senior ML Architect",
			Description: "Placement fee for specialized boutique headhunter (TalentFlow). Terms: 18% of base salary.",
			Type:        "Human Resources",
			Status:      model.StatusApproved,
			Priority:    model.PriorityHigh,
			Amount:      decimal.NewFromInt(28500),
			Requester:   "Emily Watson",

			CreatedAt: now.Add(-15 * day),
			UpdatedAt: now.Add(-12 * day),
			Comments: []model.Comment{
				{ID: "c3", RequestID: "REQ-441", Author: "Finance Lead", Role: model.RoleFinance, Text: "Verified against talent acquisition budget. Approved.", Timestamp: now.Add(-13 * day)},
			},
		},
		{
			ID:          "REQ-219",
			Title:       "Legal Retainer Renewal: Baker & McKenzie",
			Description: "Monthly flat-fee retainer for intellectual property protection and general litigation services.",
			Type:        "Legal",
			Status:      model.StatusPendingFinance,
			Priority:    model.PriorityMedium,
			Amount:      decimal.NewFromInt(5000),
			Requester:   "Robert Stark",

			CurrentAssigneeRole: model.RolePtr(model.RoleFinance),
			CreatedAt:           now.Add(-3 * day),
			UpdatedAt:           now.Add(-1 * day),
		},
		{
			ID:          "REQ-105",
			Title:       "Emergency Generator Maintenance",
			Description: "Scheduled semi-annual maintenance and load bank testing for the backup generators at the Dublin Data Center.",
			Type:        "Maintenance",
			Status:      model.StatusDraft,
			Priority:    model.PriorityMedium,
			Amount:      decimal.NewFromInt(4200),
			Requester:   "Sean O'Malley",

			CurrentAssigneeRole: model.RolePtr(model.RoleRequester),
			CreatedAt:           now,
			UpdatedAt:           now,
		},
		{
			ID:          "REQ-012",
			Title:       "Creative Cloud Team Licenses (50 Seats)",
			Description: "Annual renewal of Adobe Creative Cloud licenses for the global marketing and design teams.",
			Type:        "SaaS License",
			Status:      model.StatusRejected,
			Priority:    model.PriorityMedium,
			Amount:      decimal.NewFromInt(18900),
			Requester:   "Chloe Brooks",

			CreatedAt: now.Add(-30 * day),
			UpdatedAt: now.Add(-25 * day),
			Comments: []model.Comment{
				{ID: "c4", RequestID: "REQ-012", Author: "Procurement Admin", Role: model.RoleFinance, Text: "Seats consolidated into a new Enterprise Agreement. Please resubmit under the NEW-Adobe-EA code.", Timestamp: now.Add(-25 * day)},
			},
		},
	}

	for i := range requests {
		_ = rs.Create(context.Background(), &requests[i])
	}
}

package repository

import (
	"context"

	"backend/internal/model"
)

// RequestFilter narrows List results.
type RequestFilter struct {
	Status model.RequestStatus // empty for all
	Page   int
	Limit  int
}

// RequestRepository is the system of record for requests and their comments.
// Requests are mutated only through Update, which serializes read-modify-write
// cycles per request id.
type RequestRepository interface {
	Create(ctx context.Context, req *model.Request) error
	GetByID(ctx context.Context, id string) (*model.Request, error)
	List(ctx context.Context, filter RequestFilter) ([]model.Request, int64, error)

	// Update loads the request, runs mutate under a per-record exclusion
	// guard, and persists the result. If mutate returns an error the stored
	// request is left untouched and the error is returned unchanged.
	Update(ctx context.Context, id string, mutate func(req *model.Request) error) (*model.Request, error)

	// Delete removes a request entirely. This is a repository-level
	// operation outside the state machine.
	Delete(ctx context.Context, id string) error

	// ActiveAssigneeRoles returns the distinct assignee roles of all
	// non-terminal requests. Used to guard workflow replacement against
	// stranding in-flight requests.
	ActiveAssigneeRoles(ctx context.Context) ([]model.Role, error)
}

// AuditRepository is the append-only audit log. Entries arrive fully formed
// (id and timestamp already assigned) and are never mutated afterwards.
type AuditRepository interface {
	Append(ctx context.Context, entry *model.AuditEntry) error
	// List returns entries newest first.
	List(ctx context.Context, page, limit int) ([]model.AuditEntry, int64, error)
	// All returns every entry newest first, for export.
	All(ctx context.Context) ([]model.AuditEntry, error)
}

// WorkflowRepository holds the ordered stage list. Replace swaps the whole
// list atomically; readers observe either the old list or the new one in full.
type WorkflowRepository interface {
	Steps(ctx context.Context) ([]model.WorkflowStep, error)
	Replace(ctx context.Context, steps []model.WorkflowStep) error
}

// TransactionManager scopes a state mutation and its paired audit append into
// one atomic unit. The postgres implementation runs fn inside a database
// transaction injected via context; the memory implementation relies on the
// stores' own locking and infallible appends.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

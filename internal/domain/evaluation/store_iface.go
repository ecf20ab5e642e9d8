package evaluation

import (
	"context"

	"hrdesk/internal/domain/directory"
)

// StoreAPI is the persistence surface the workflow engine runs against.
type StoreAPI interface {
	CreateCycle(ctx context.Context, cycle Cycle) (string, error)
	GetCycle(ctx context.Context, cycleID string) (*Cycle, error)
	UpdateCycle(ctx context.Context, cycle Cycle) error
	DeleteCycle(ctx context.Context, cycleID string) error
	ListCycles(ctx context.Context, sortField, sortOrder string, limit, offset int) ([]Cycle, int, error)
	CountEvaluationsForCycle(ctx context.Context, cycleID string) (int, error)

	CreateEvaluation(ctx context.Context, ev Evaluation) (*Evaluation, error)
	GetEvaluation(ctx context.Context, evaluationID string) (*Evaluation, error)
	FindEvaluationByOwner(ctx context.Context, cycleID, ownerID string) (*Evaluation, error)
	// SaveEvaluation writes every mutable field guarded by the version
	// token; a stale version yields ErrVersionConflict.
	SaveEvaluation(ctx context.Context, ev *Evaluation) error
	DeleteEvaluation(ctx context.Context, evaluationID string) error
	ListEvaluations(ctx context.Context, filter ListFilter) ([]Evaluation, int, error)
	OwnersWithEvaluation(ctx context.Context, cycleID string) (map[string]bool, error)
}

// Directory resolves organizational identity. The engine consumes it; the
// directory domain owns it.
type Directory interface {
	PrimaryProfile(ctx context.Context, userID string) (directory.Profile, error)
	ActiveUsers(ctx context.Context) ([]directory.UserSummary, error)
	UsersByPrimaryDepartment(ctx context.Context, departmentIDs []string) ([]directory.UserSummary, error)
}

// Notifier fan-outs workflow events. Best effort: failures are logged by
// the implementation and never surface to the caller.
type Notifier interface {
	Notify(ctx context.Context, userID, notifType, title, body string)
}

package evaluation

import (
	"context"
	"strings"
	"time"
)

var cycleSortFields = map[string]string{
	"code":      "code",
	"year":      "year",
	"opens_at":  "opens_at",
	"closes_at": "closes_at",
	"createdAt": "created_at",
}

type CycleInput struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Year      int       `json:"year"`
	Stage     string    `json:"stage"`
	OpensAt   time.Time `json:"opensAt"`
	ClosesAt  time.Time `json:"closesAt"`
	Active    bool      `json:"active"`
	Mandatory bool      `json:"mandatory"`
}

// CreateCycle validates and stores a new evaluation cycle. A new window
// must lie entirely in the future, whether or not the cycle is active.
func (s *Service) CreateCycle(ctx context.Context, input CycleInput) (*Cycle, error) {
	cycle, err := s.buildCycle(input)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if cycle.OpensAt.Before(now) || cycle.ClosesAt.Before(now) {
		return nil, badRequest("cycle window cannot start or end in the past")
	}
	id, err := s.store.CreateCycle(ctx, *cycle)
	if err != nil {
		return nil, err
	}
	cycle.ID = id
	return cycle, nil
}

func (s *Service) GetCycleByID(ctx context.Context, cycleID string) (*Cycle, error) {
	cycle, err := s.store.GetCycle(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	if cycle == nil {
		return nil, ErrCycleNotFound
	}
	return cycle, nil
}

func (s *Service) UpdateCycle(ctx context.Context, cycleID string, input CycleInput) (*Cycle, error) {
	existing, err := s.GetCycleByID(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	cycle, err := s.buildCycle(input)
	if err != nil {
		return nil, err
	}
	// A timestamp that has since passed may be kept as-is, but neither
	// end of the window can be moved into the past.
	now := s.now()
	if cycle.OpensAt.Before(now) && !cycle.OpensAt.Equal(existing.OpensAt) {
		return nil, badRequest("cycle cannot be moved to open in the past")
	}
	if cycle.ClosesAt.Before(now) && !cycle.ClosesAt.Equal(existing.ClosesAt) {
		return nil, badRequest("cycle cannot be moved to close in the past")
	}
	cycle.ID = existing.ID
	cycle.CreatedAt = existing.CreatedAt
	if err := s.store.UpdateCycle(ctx, *cycle); err != nil {
		return nil, err
	}
	return cycle, nil
}

// DeleteCycle refuses to remove a cycle that evaluations reference.
func (s *Service) DeleteCycle(ctx context.Context, cycleID string) error {
	if _, err := s.GetCycleByID(ctx, cycleID); err != nil {
		return err
	}
	count, err := s.store.CountEvaluationsForCycle(ctx, cycleID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCycleReferenced
	}
	return s.store.DeleteCycle(ctx, cycleID)
}

func (s *Service) ListCycles(ctx context.Context, sortField, sortOrder string, limit, offset int) ([]Cycle, int, error) {
	column, ok := cycleSortFields[sortField]
	if !ok {
		column = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		order = "ASC"
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListCycles(ctx, column, order, limit, offset)
}

func (s *Service) buildCycle(input CycleInput) (*Cycle, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, badRequest("cycle code is required")
	}
	if input.Year < 2000 || input.Year > 2200 {
		return nil, badRequest("cycle year %d is out of range", input.Year)
	}
	if input.Stage != StageMidYear && input.Stage != StageYearEnd {
		return nil, badRequest("unknown cycle stage %q", input.Stage)
	}
	if input.OpensAt.IsZero() || input.ClosesAt.IsZero() {
		return nil, badRequest("cycle window is required")
	}
	if !input.OpensAt.Before(input.ClosesAt) {
		return nil, badRequest("cycle must open before it closes")
	}
	if input.Active && input.ClosesAt.Before(s.now()) {
		return nil, badRequest("an active cycle cannot close in the past")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = code
	}
	return &Cycle{
		Code:      code,
		Name:      name,
		Year:      input.Year,
		Stage:     input.Stage,
		OpensAt:   input.OpensAt.UTC(),
		ClosesAt:  input.ClosesAt.UTC(),
		Active:    input.Active,
		Mandatory: input.Mandatory,
	}, nil
}

package evaluation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const evaluationColumns = `id, cycle_id, owner_id, creator_id,
	COALESCE(manager_id::text, ''), COALESCE(md_id::text, ''),
	stage, type, status, ratings,
	score_perf, score_result, score_comp, score_total, COALESCE(grade, ''),
	version,
	submitted_at, owner_signed_at, approver_at, manager_signed_at, md_signed_at, completed_at, rejected_at,
	owner_signature, manager_signature, md_signature,
	COALESCE(owner_comment, ''), COALESCE(manager_comment, ''), COALESCE(md_comment, ''),
	created_at, updated_at`

func (s *Store) CreateCycle(ctx context.Context, cycle Cycle) (string, error) {
	const query = `
		INSERT INTO evaluation_cycles (code, name, year, stage, opens_at, closes_at, active, mandatory)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	var id string
	err := s.DB.QueryRow(ctx, query,
		cycle.Code, cycle.Name, cycle.Year, cycle.Stage,
		cycle.OpensAt, cycle.ClosesAt, cycle.Active, cycle.Mandatory,
	).Scan(&id)
	if isUniqueViolation(err) {
		return "", conflict("cycle code %s already exists for %d", cycle.Code, cycle.Year)
	}
	if err != nil {
		return "", fmt.Errorf("create cycle: %w", err)
	}
	return id, nil
}

func (s *Store) GetCycle(ctx context.Context, cycleID string) (*Cycle, error) {
	const query = `
		SELECT id, code, name, year, stage, opens_at, closes_at, active, mandatory, created_at
		FROM evaluation_cycles
		WHERE id = $1`

	var cycle Cycle
	err := s.DB.QueryRow(ctx, query, cycleID).Scan(
		&cycle.ID, &cycle.Code, &cycle.Name, &cycle.Year, &cycle.Stage,
		&cycle.OpensAt, &cycle.ClosesAt, &cycle.Active, &cycle.Mandatory, &cycle.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cycle: %w", err)
	}
	return &cycle, nil
}

func (s *Store) UpdateCycle(ctx context.Context, cycle Cycle) error {
	const query = `
		UPDATE evaluation_cycles
		SET code = $2, name = $3, year = $4, stage = $5, opens_at = $6, closes_at = $7, active = $8, mandatory = $9
		WHERE id = $1`

	tag, err := s.DB.Exec(ctx, query,
		cycle.ID, cycle.Code, cycle.Name, cycle.Year, cycle.Stage,
		cycle.OpensAt, cycle.ClosesAt, cycle.Active, cycle.Mandatory,
	)
	if isUniqueViolation(err) {
		return conflict("cycle code %s already exists for %d", cycle.Code, cycle.Year)
	}
	if err != nil {
		return fmt.Errorf("update cycle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCycleNotFound
	}
	return nil
}

func (s *Store) DeleteCycle(ctx context.Context, cycleID string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM evaluation_cycles WHERE id = $1`, cycleID)
	if err != nil {
		return fmt.Errorf("delete cycle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCycleNotFound
	}
	return nil
}

func (s *Store) ListCycles(ctx context.Context, sortField, sortOrder string, limit, offset int) ([]Cycle, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, `SELECT COUNT(*) FROM evaluation_cycles`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count cycles: %w", err)
	}

	// sortField and sortOrder come from a whitelist in the service layer.
	query := fmt.Sprintf(`
		SELECT id, code, name, year, stage, opens_at, closes_at, active, mandatory, created_at
		FROM evaluation_cycles
		ORDER BY %s %s
		LIMIT $1 OFFSET $2`, sortField, sortOrder)

	rows, err := s.DB.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list cycles: %w", err)
	}
	defer rows.Close()

	var cycles []Cycle
	for rows.Next() {
		var cycle Cycle
		if err := rows.Scan(
			&cycle.ID, &cycle.Code, &cycle.Name, &cycle.Year, &cycle.Stage,
			&cycle.OpensAt, &cycle.ClosesAt, &cycle.Active, &cycle.Mandatory, &cycle.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan cycle: %w", err)
		}
		cycles = append(cycles, cycle)
	}
	return cycles, total, rows.Err()
}

func (s *Store) CountEvaluationsForCycle(ctx context.Context, cycleID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM evaluations WHERE cycle_id = $1`, cycleID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count evaluations: %w", err)
	}
	return count, nil
}

func (s *Store) CreateEvaluation(ctx context.Context, ev Evaluation) (*Evaluation, error) {
	const query = `
		INSERT INTO evaluations (
			cycle_id, owner_id, creator_id, manager_id, md_id,
			stage, type, status, ratings,
			score_perf, score_result, score_comp, score_total, grade, version
		)
		VALUES ($1, $2, $3, NULLIF($4, '')::uuid, NULLIF($5, '')::uuid, $6, $7, $8, $9, $10, $11, $12, $13, NULLIF($14, ''), $15)
		RETURNING id, created_at, updated_at`

	err := s.DB.QueryRow(ctx, query,
		ev.CycleID, ev.OwnerID, ev.CreatorID, ev.ManagerID, ev.MDID,
		ev.Stage, ev.Type, ev.Status, ev.Ratings,
		ev.ScorePerf, ev.ScoreResult, ev.ScoreComp, ev.ScoreTotal, ev.Grade, ev.Version,
	).Scan(&ev.ID, &ev.CreatedAt, &ev.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateEvaluation
	}
	if err != nil {
		return nil, fmt.Errorf("create evaluation: %w", err)
	}
	return &ev, nil
}

func (s *Store) GetEvaluation(ctx context.Context, evaluationID string) (*Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE id = $1`
	ev, err := s.scanEvaluation(s.DB.QueryRow(ctx, query, evaluationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get evaluation: %w", err)
	}
	return ev, nil
}

func (s *Store) FindEvaluationByOwner(ctx context.Context, cycleID, ownerID string) (*Evaluation, error) {
	query := `SELECT ` + evaluationColumns + ` FROM evaluations WHERE cycle_id = $1 AND owner_id = $2`
	ev, err := s.scanEvaluation(s.DB.QueryRow(ctx, query, cycleID, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find evaluation by owner: %w", err)
	}
	return ev, nil
}

// SaveEvaluation persists the full row with a compare-and-swap on the
// version column. A missed swap means another writer got there first.
func (s *Store) SaveEvaluation(ctx context.Context, ev *Evaluation) error {
	const query = `
		UPDATE evaluations
		SET manager_id = NULLIF($3, '')::uuid, md_id = NULLIF($4, '')::uuid,
			type = $5, status = $6, ratings = $7,
			score_perf = $8, score_result = $9, score_comp = $10, score_total = $11, grade = NULLIF($12, ''),
			submitted_at = $13, owner_signed_at = $14, approver_at = $15,
			manager_signed_at = $16, md_signed_at = $17, completed_at = $18, rejected_at = $19,
			owner_signature = $20, manager_signature = $21, md_signature = $22,
			owner_comment = NULLIF($23, ''), manager_comment = NULLIF($24, ''), md_comment = NULLIF($25, ''),
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2`

	tag, err := s.DB.Exec(ctx, query,
		ev.ID, ev.Version, ev.ManagerID, ev.MDID,
		ev.Type, ev.Status, ev.Ratings,
		ev.ScorePerf, ev.ScoreResult, ev.ScoreComp, ev.ScoreTotal, ev.Grade,
		ev.SubmittedAt, ev.OwnerSigned, ev.ApproverAt,
		ev.ManagerSigned, ev.MDSigned, ev.CompletedAt, ev.RejectedAt,
		ev.OwnerSignature, ev.ManagerSignature, ev.MDSignature,
		ev.OwnerComment, ev.ManagerComment, ev.MDComment,
	)
	if err != nil {
		return fmt.Errorf("save evaluation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	ev.Version++
	return nil
}

func (s *Store) DeleteEvaluation(ctx context.Context, evaluationID string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM evaluations WHERE id = $1`, evaluationID)
	if err != nil {
		return fmt.Errorf("delete evaluation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListEvaluations(ctx context.Context, filter ListFilter) ([]Evaluation, int, error) {
	where := `WHERE ($1 = '' OR cycle_id::text = $1)
		AND ($2 = '' OR owner_id::text = $2)
		AND ($3 = '' OR status = $3)
		AND ($4 = '' OR owner_id::text = $4 OR creator_id::text = $4 OR manager_id::text = $4 OR md_id::text = $4)`
	args := []any{filter.CycleID, filter.OwnerID, filter.Status, filter.ParticipantID}

	var total int
	if err := s.DB.QueryRow(ctx, `SELECT COUNT(*) FROM evaluations `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count evaluations: %w", err)
	}

	query := `SELECT ` + evaluationColumns + ` FROM evaluations ` + where +
		` ORDER BY created_at DESC LIMIT $5 OFFSET $6`
	rows, err := s.DB.Query(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	var evaluations []Evaluation
	for rows.Next() {
		ev, err := s.scanEvaluation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan evaluation: %w", err)
		}
		evaluations = append(evaluations, *ev)
	}
	return evaluations, total, rows.Err()
}

func (s *Store) OwnersWithEvaluation(ctx context.Context, cycleID string) (map[string]bool, error) {
	rows, err := s.DB.Query(ctx, `SELECT owner_id FROM evaluations WHERE cycle_id = $1`, cycleID)
	if err != nil {
		return nil, fmt.Errorf("owners with evaluation: %w", err)
	}
	defer rows.Close()

	owners := map[string]bool{}
	for rows.Next() {
		var ownerID string
		if err := rows.Scan(&ownerID); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		owners[ownerID] = true
	}
	return owners, rows.Err()
}

func (s *Store) scanEvaluation(row pgx.Row) (*Evaluation, error) {
	var ev Evaluation
	err := row.Scan(
		&ev.ID, &ev.CycleID, &ev.OwnerID, &ev.CreatorID,
		&ev.ManagerID, &ev.MDID,
		&ev.Stage, &ev.Type, &ev.Status, &ev.Ratings,
		&ev.ScorePerf, &ev.ScoreResult, &ev.ScoreComp, &ev.ScoreTotal, &ev.Grade,
		&ev.Version,
		&ev.SubmittedAt, &ev.OwnerSigned, &ev.ApproverAt,
		&ev.ManagerSigned, &ev.MDSigned, &ev.CompletedAt, &ev.RejectedAt,
		&ev.OwnerSignature, &ev.ManagerSignature, &ev.MDSignature,
		&ev.OwnerComment, &ev.ManagerComment, &ev.MDComment,
		&ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrdesk/internal/domain/auth"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateOrganization(ctx context.Context, name, code string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO organizations (name, code)
    VALUES ($1, $2)
    RETURNING id
  `, name, code).Scan(&id)
	return id, err
}

func (s *Store) ListOrganizations(ctx context.Context) ([]Organization, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, code, created_at
    FROM organizations
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []Organization
	for rows.Next() {
		var org Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.Code, &org.CreatedAt); err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

func (s *Store) CreateDepartment(ctx context.Context, orgID, name, code string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (organization_id, name, code, status)
    VALUES ($1, $2, $3, 'active')
    RETURNING id
  `, orgID, name, code).Scan(&id)
	return id, err
}

func (s *Store) GetDepartment(ctx context.Context, departmentID string) (*Department, error) {
	var dep Department
	err := s.DB.QueryRow(ctx, `
    SELECT id, organization_id, name, code, status, created_at
    FROM departments
    WHERE id = $1 AND status = 'active'
  `, departmentID).Scan(&dep.ID, &dep.OrganizationID, &dep.Name, &dep.Code, &dep.Status, &dep.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &dep, nil
}

func (s *Store) ListDepartments(ctx context.Context, orgID string, limit, offset int) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, organization_id, name, code, status, created_at
    FROM departments
    WHERE organization_id = $1 AND status = 'active'
    ORDER BY name
    LIMIT $2 OFFSET $3
  `, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deps []Department
	for rows.Next() {
		var dep Department
		if err := rows.Scan(&dep.ID, &dep.OrganizationID, &dep.Name, &dep.Code, &dep.Status, &dep.CreatedAt); err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}
	return deps, rows.Err()
}

func (s *Store) UpdateDepartment(ctx context.Context, departmentID, name, code string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE departments SET name = $1, code = $2, updated_at = now()
    WHERE id = $3 AND status = 'active'
  `, name, code, departmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDepartment soft-deletes; it refuses while any active membership
// still points at the department.
func (s *Store) DeleteDepartment(ctx context.Context, departmentID string) error {
	var active int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM user_departments
    WHERE department_id = $1 AND is_active
  `, departmentID).Scan(&active); err != nil {
		return err
	}
	if active > 0 {
		return ErrDepartmentInUse
	}
	tag, err := s.DB.Exec(ctx, `
    UPDATE departments SET status = 'deleted', updated_at = now() WHERE id = $1 AND status = 'active'
  `, departmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, orgID, email, fullName, passwordHash, role string) (string, error) {
	var exists int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE email = $1", email).Scan(&exists); err != nil {
		return "", err
	}
	if exists > 0 {
		return "", ErrEmailTaken
	}

	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (organization_id, email, full_name, password_hash, role, status)
    VALUES ($1, $2, $3, $4, $5, 'active')
    RETURNING id
  `, orgID, email, fullName, passwordHash, role).Scan(&id)
	return id, err
}

func (s *Store) GetUser(ctx context.Context, userID string, includeDeleted bool) (*User, error) {
	query := `
    SELECT id, COALESCE(organization_id::text, ''), email, full_name, role,
           COALESCE(primary_membership_id::text, ''), status, last_login, created_at
    FROM users
    WHERE id = $1`
	if !includeDeleted {
		query += " AND status = 'active'"
	}

	var u User
	err := s.DB.QueryRow(ctx, query, userID).Scan(
		&u.ID, &u.OrganizationID, &u.Email, &u.FullName, &u.Role,
		&u.PrimaryMembershipID, &u.Status, &u.LastLogin, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context, orgID string, includeDeleted bool, limit, offset int) ([]User, int, error) {
	filter := " WHERE organization_id = $1"
	if !includeDeleted {
		filter += " AND status = 'active'"
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users"+filter, orgID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT id, COALESCE(organization_id::text, ''), email, full_name, role,
           COALESCE(primary_membership_id::text, ''), status, last_login, created_at
    FROM users`+filter+`
    ORDER BY full_name
    LIMIT $2 OFFSET $3
  `, orgID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.OrganizationID, &u.Email, &u.FullName, &u.Role,
			&u.PrimaryMembershipID, &u.Status, &u.LastLogin, &u.CreatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (s *Store) UpdateUser(ctx context.Context, userID, fullName, role string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users SET full_name = $1, role = $2, updated_at = now()
    WHERE id = $3 AND status = 'active'
  `, fullName, role, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SoftDeleteUser(ctx context.Context, userID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users SET status = 'deleted', updated_at = now() WHERE id = $1 AND status = 'active'
  `, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var status string
		err := s.DB.QueryRow(ctx, "SELECT status FROM users WHERE id = $1", userID).Scan(&status)
		if err == nil && status == "deleted" {
			return ErrUserDeleted
		}
		return ErrNotFound
	}
	return nil
}

func (s *Store) RestoreUser(ctx context.Context, userID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users SET status = 'active', updated_at = now() WHERE id = $1 AND status = 'deleted'
  `, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeUser hard-deletes a soft-deleted user. Normal removal goes through
// SoftDeleteUser; this is the explicit override.
func (s *Store) PurgeUser(ctx context.Context, userID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM users WHERE id = $1 AND status = 'deleted'", userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ActiveMemberships(ctx context.Context, userID string) ([]Membership, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT ud.id, ud.user_id, ud.department_id, d.name, ud.rank,
           COALESCE(ud.position_title, ''), ud.started_at, ud.ended_at, ud.is_active
    FROM user_departments ud
    JOIN departments d ON ud.department_id = d.id
    WHERE ud.user_id = $1 AND ud.is_active AND ud.ended_at IS NULL
    ORDER BY ud.started_at
  `, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []Membership
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.ID, &m.UserID, &m.DepartmentID, &m.Department, &m.RankCode,
			&m.PositionTitle, &m.StartedAt, &m.EndedAt, &m.Active); err != nil {
			return nil, err
		}
		m.Rank = ParseRank(m.RankCode)
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

// PrimaryProfile resolves the user's role, primary assignment and active
// memberships in one pass. Deleted and unknown users yield ErrNotFound.
func (s *Store) PrimaryProfile(ctx context.Context, userID string) (Profile, error) {
	var profile Profile
	var role string
	var primaryMembershipID string
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, full_name, role, COALESCE(primary_membership_id::text, '')
    FROM users
    WHERE id = $1 AND status = 'active'
  `, userID).Scan(&profile.UserID, &profile.Email, &profile.FullName, &role, &primaryMembershipID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	profile.Role = auth.ParseRole(role)
	profile.PrimaryRank = RankUnknown

	memberships, err := s.ActiveMemberships(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	profile.Memberships = memberships

	for _, m := range memberships {
		if m.ID == primaryMembershipID {
			profile.PrimaryDepartmentID = m.DepartmentID
			profile.PrimaryRank = m.Rank
			break
		}
	}
	return profile, nil
}

// AssignMembership creates a new department assignment. Superseded active
// rows for the same (user, department) pair are closed, the one-active-MD
// invariant is checked before anything is written, and the primary pointer
// is updated when requested. All of it runs in one transaction.
func (s *Store) AssignMembership(ctx context.Context, userID, departmentID string, rank Rank, title string, makePrimary bool) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	membershipID, err := assignMembershipTx(ctx, tx, userID, departmentID, rank, title, makePrimary)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return membershipID, nil
}

func assignMembershipTx(ctx context.Context, tx pgx.Tx, userID, departmentID string, rank Rank, title string, makePrimary bool) (string, error) {
	if rank == RankMD {
		var mdCount int
		if err := tx.QueryRow(ctx, `
      SELECT COUNT(1) FROM user_departments
      WHERE department_id = $1 AND rank = 'MD' AND is_active AND user_id <> $2
    `, departmentID, userID).Scan(&mdCount); err != nil {
			return "", err
		}
		if mdCount > 0 {
			return "", ErrDuplicateMD
		}
	}

	if _, err := tx.Exec(ctx, `
    UPDATE user_departments
    SET is_active = false, ended_at = now()
    WHERE user_id = $1 AND department_id = $2 AND is_active
  `, userID, departmentID); err != nil {
		return "", err
	}

	var membershipID string
	if err := tx.QueryRow(ctx, `
    INSERT INTO user_departments (user_id, department_id, rank, position_title, started_at, is_active)
    VALUES ($1, $2, $3, $4, now(), true)
    RETURNING id
  `, userID, departmentID, rank.String(), title).Scan(&membershipID); err != nil {
		return "", err
	}

	if makePrimary {
		if _, err := tx.Exec(ctx, `
      UPDATE users SET primary_membership_id = $1, updated_at = now() WHERE id = $2
    `, membershipID, userID); err != nil {
			return "", err
		}
	}

	return membershipID, nil
}

// ChangePosition applies a promote/demote: the new assignment and its
// append-only audit row commit together or not at all.
func (s *Store) ChangePosition(ctx context.Context, change PositionChange, makePrimary bool) (string, error) {
	toRank := ParseRank(change.ToRank)

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	membershipID, err := assignMembershipTx(ctx, tx, change.UserID, change.ToDepartmentID, toRank, change.ToTitle, makePrimary)
	if err != nil {
		return "", err
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO position_change_logs
      (user_id, actor_id, from_department_id, to_department_id, from_rank, to_rank, from_title, to_title, reason, effective_at)
    VALUES ($1, $2, NULLIF($3,''), $4, NULLIF($5,''), $6, NULLIF($7,''), NULLIF($8,''), NULLIF($9,''), $10)
  `, change.UserID, change.ActorID, change.FromDepartmentID, change.ToDepartmentID,
		change.FromRank, change.ToRank, change.FromTitle, change.ToTitle, change.Reason, change.EffectiveAt); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return membershipID, nil
}

// EndMembership closes an assignment. A closed membership never becomes
// active or primary again, so the primary pointer is cleared when it
// referenced this row.
func (s *Store) EndMembership(ctx context.Context, membershipID string) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var userID string
	err = tx.QueryRow(ctx, `
    UPDATE user_departments
    SET is_active = false, ended_at = now()
    WHERE id = $1 AND is_active
    RETURNING user_id
  `, membershipID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
    UPDATE users SET primary_membership_id = NULL, updated_at = now()
    WHERE id = $1 AND primary_membership_id = $2
  `, userID, membershipID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) SetPrimaryMembership(ctx context.Context, userID, membershipID string) error {
	var active bool
	err := s.DB.QueryRow(ctx, `
    SELECT is_active AND ended_at IS NULL
    FROM user_departments
    WHERE id = $1 AND user_id = $2
  `, membershipID, userID).Scan(&active)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotPrimaryCapable
	}
	if err != nil {
		return err
	}
	if !active {
		return ErrMembershipEnded
	}
	_, err = s.DB.Exec(ctx, `
    UPDATE users SET primary_membership_id = $1, updated_at = now() WHERE id = $2
  `, membershipID, userID)
	return err
}

func (s *Store) ListPositionChanges(ctx context.Context, userID string, limit, offset int) ([]PositionChange, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, user_id, actor_id,
           COALESCE(from_department_id::text, ''), to_department_id,
           COALESCE(from_rank, ''), to_rank,
           COALESCE(from_title, ''), COALESCE(to_title, ''), COALESCE(reason, ''),
           effective_at
    FROM position_change_logs
    WHERE user_id = $1
    ORDER BY effective_at DESC
    LIMIT $2 OFFSET $3
  `, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []PositionChange
	for rows.Next() {
		var c PositionChange
		if err := rows.Scan(&c.ID, &c.UserID, &c.ActorID, &c.FromDepartmentID, &c.ToDepartmentID,
			&c.FromRank, &c.ToRank, &c.FromTitle, &c.ToTitle, &c.Reason, &c.EffectiveAt); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// ActiveUsers returns every non-deleted user with their resolved primary
// assignment; used by the privileged eligibility path.
func (s *Store) ActiveUsers(ctx context.Context) ([]UserSummary, error) {
	return s.userSummaries(ctx, `
    SELECT u.id, u.email, u.full_name, u.role,
           COALESCE(ud.department_id::text, ''), COALESCE(ud.rank, '')
    FROM users u
    LEFT JOIN user_departments ud ON ud.id = u.primary_membership_id AND ud.is_active
    WHERE u.status = 'active'
    ORDER BY u.full_name
  `)
}

// UsersByPrimaryDepartment returns non-deleted users whose primary
// department is one of the given ids.
func (s *Store) UsersByPrimaryDepartment(ctx context.Context, departmentIDs []string) ([]UserSummary, error) {
	if len(departmentIDs) == 0 {
		return nil, nil
	}
	return s.userSummaries(ctx, `
    SELECT u.id, u.email, u.full_name, u.role,
           ud.department_id::text, ud.rank
    FROM users u
    JOIN user_departments ud ON ud.id = u.primary_membership_id AND ud.is_active
    WHERE u.status = 'active' AND ud.department_id = ANY($1)
    ORDER BY u.full_name
  `, departmentIDs)
}

func (s *Store) userSummaries(ctx context.Context, query string, args ...any) ([]UserSummary, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []UserSummary
	for rows.Next() {
		var u UserSummary
		var role, rank string
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &role, &u.PrimaryDepartmentID, &rank); err != nil {
			return nil, err
		}
		u.Role = auth.ParseRole(role)
		u.PrimaryRank = ParseRank(rank)
		users = append(users, u)
	}
	return users, rows.Err()
}

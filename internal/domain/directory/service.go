package directory

import (
	"context"
	"time"

	"hrdesk/internal/domain/auth"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) CreateOrganization(ctx context.Context, name, code string) (string, error) {
	return s.store.CreateOrganization(ctx, name, code)
}

func (s *Service) ListOrganizations(ctx context.Context) ([]Organization, error) {
	return s.store.ListOrganizations(ctx)
}

func (s *Service) CreateDepartment(ctx context.Context, orgID, name, code string) (string, error) {
	return s.store.CreateDepartment(ctx, orgID, name, code)
}

func (s *Service) GetDepartment(ctx context.Context, departmentID string) (*Department, error) {
	return s.store.GetDepartment(ctx, departmentID)
}

func (s *Service) ListDepartments(ctx context.Context, orgID string, limit, offset int) ([]Department, error) {
	return s.store.ListDepartments(ctx, orgID, limit, offset)
}

func (s *Service) UpdateDepartment(ctx context.Context, departmentID, name, code string) error {
	return s.store.UpdateDepartment(ctx, departmentID, name, code)
}

func (s *Service) DeleteDepartment(ctx context.Context, departmentID string) error {
	return s.store.DeleteDepartment(ctx, departmentID)
}

func (s *Service) CreateUser(ctx context.Context, orgID, email, fullName, password, role string) (string, error) {
	if !auth.ParseRole(role).Valid() {
		return "", ErrInvalidRole
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	return s.store.CreateUser(ctx, orgID, email, fullName, hash, string(auth.ParseRole(role)))
}

func (s *Service) GetUser(ctx context.Context, userID string, includeDeleted bool) (*User, error) {
	return s.store.GetUser(ctx, userID, includeDeleted)
}

func (s *Service) ListUsers(ctx context.Context, orgID string, includeDeleted bool, limit, offset int) ([]User, int, error) {
	return s.store.ListUsers(ctx, orgID, includeDeleted, limit, offset)
}

func (s *Service) UpdateUser(ctx context.Context, userID, fullName, role string) error {
	if !auth.ParseRole(role).Valid() {
		return ErrInvalidRole
	}
	return s.store.UpdateUser(ctx, userID, fullName, string(auth.ParseRole(role)))
}

func (s *Service) SoftDeleteUser(ctx context.Context, userID string) error {
	return s.store.SoftDeleteUser(ctx, userID)
}

func (s *Service) RestoreUser(ctx context.Context, userID string) error {
	return s.store.RestoreUser(ctx, userID)
}

func (s *Service) PurgeUser(ctx context.Context, userID string) error {
	return s.store.PurgeUser(ctx, userID)
}

func (s *Service) AssignMembership(ctx context.Context, userID, departmentID, rank, title string, makePrimary bool) (string, error) {
	parsed := ParseRank(rank)
	if !parsed.Valid() {
		return "", ErrInvalidRank
	}
	if _, err := s.store.GetUser(ctx, userID, false); err != nil {
		return "", err
	}
	if _, err := s.store.GetDepartment(ctx, departmentID); err != nil {
		return "", err
	}
	return s.store.AssignMembership(ctx, userID, departmentID, parsed, title, makePrimary)
}

func (s *Service) EndMembership(ctx context.Context, membershipID string) error {
	return s.store.EndMembership(ctx, membershipID)
}

func (s *Service) SetPrimaryMembership(ctx context.Context, userID, membershipID string) error {
	return s.store.SetPrimaryMembership(ctx, userID, membershipID)
}

// ChangePosition promotes or demotes a user into a department, recording
// the transition in the append-only position change log.
func (s *Service) ChangePosition(ctx context.Context, actorID, userID, toDepartmentID, toRank, toTitle, reason string, makePrimary bool) (string, error) {
	if !ParseRank(toRank).Valid() {
		return "", ErrInvalidRank
	}
	if _, err := s.store.GetDepartment(ctx, toDepartmentID); err != nil {
		return "", err
	}

	profile, err := s.store.PrimaryProfile(ctx, userID)
	if err != nil {
		return "", err
	}

	change := PositionChange{
		UserID:         userID,
		ActorID:        actorID,
		ToDepartmentID: toDepartmentID,
		ToRank:         ParseRank(toRank).String(),
		ToTitle:        toTitle,
		Reason:         reason,
		EffectiveAt:    time.Now().UTC(),
	}
	change.FromDepartmentID = profile.PrimaryDepartmentID
	if profile.PrimaryRank.Valid() {
		change.FromRank = profile.PrimaryRank.String()
	}
	for _, m := range profile.Memberships {
		if m.DepartmentID == profile.PrimaryDepartmentID {
			change.FromTitle = m.PositionTitle
			break
		}
	}

	return s.store.ChangePosition(ctx, change, makePrimary)
}

func (s *Service) ListPositionChanges(ctx context.Context, userID string, limit, offset int) ([]PositionChange, error) {
	return s.store.ListPositionChanges(ctx, userID, limit, offset)
}

func (s *Service) ActiveMemberships(ctx context.Context, userID string) ([]Membership, error) {
	return s.store.ActiveMemberships(ctx, userID)
}

func (s *Service) PrimaryProfile(ctx context.Context, userID string) (Profile, error) {
	return s.store.PrimaryProfile(ctx, userID)
}

func (s *Service) ActiveUsers(ctx context.Context) ([]UserSummary, error) {
	return s.store.ActiveUsers(ctx)
}

func (s *Service) UsersByPrimaryDepartment(ctx context.Context, departmentIDs []string) ([]UserSummary, error) {
	return s.store.UsersByPrimaryDepartment(ctx, departmentIDs)
}

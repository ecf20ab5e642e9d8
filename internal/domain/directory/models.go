package directory

import (
	"time"

	"hrdesk/internal/domain/auth"
)

const (
	StatusActive  = "active"
	StatusDeleted = "deleted"
)

type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
}

type Department struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	Name           string    `json:"name"`
	Code           string    `json:"code"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

type User struct {
	ID                  string     `json:"id"`
	OrganizationID      string     `json:"organizationId"`
	Email               string     `json:"email"`
	FullName            string     `json:"fullName"`
	Role                string     `json:"role"`
	PrimaryMembershipID string     `json:"primaryMembershipId,omitempty"`
	Status              string     `json:"status"`
	LastLogin           *time.Time `json:"lastLogin,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// Membership is one (user, department, time span) assignment.
type Membership struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	DepartmentID  string     `json:"departmentId"`
	Department    string     `json:"department,omitempty"`
	Rank          Rank       `json:"-"`
	RankCode      string     `json:"rank"`
	PositionTitle string     `json:"positionTitle,omitempty"`
	StartedAt     time.Time  `json:"startedAt"`
	EndedAt       *time.Time `json:"endedAt,omitempty"`
	Active        bool       `json:"active"`
}

// PositionChange is one append-only audit row for a promote/demote.
type PositionChange struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	ActorID          string    `json:"actorId"`
	FromDepartmentID string    `json:"fromDepartmentId,omitempty"`
	ToDepartmentID   string    `json:"toDepartmentId"`
	FromRank         string    `json:"fromRank,omitempty"`
	ToRank           string    `json:"toRank"`
	FromTitle        string    `json:"fromTitle,omitempty"`
	ToTitle          string    `json:"toTitle,omitempty"`
	Reason           string    `json:"reason,omitempty"`
	EffectiveAt      time.Time `json:"effectiveAt"`
}

// UserSummary is the slim row eligibility listings work with.
type UserSummary struct {
	ID                  string    `json:"id"`
	Email               string    `json:"email"`
	FullName            string    `json:"fullName"`
	Role                auth.Role `json:"role"`
	PrimaryDepartmentID string    `json:"primaryDepartmentId,omitempty"`
	PrimaryRank         Rank      `json:"-"`
}

// Profile is a user's resolved organizational identity: role, primary
// assignment and all active memberships. It doubles as the authorization
// context passed through evaluation calls, so privilege is derived once
// per request instead of per check.
type Profile struct {
	UserID              string
	Email               string
	FullName            string
	Role                auth.Role
	PrimaryDepartmentID string
	PrimaryRank         Rank
	Memberships         []Membership
}

// Complete reports whether the profile can participate in evaluations: a
// resolvable role plus at least one active membership with a valid rank.
func (p Profile) Complete() bool {
	if !p.Role.Valid() {
		return false
	}
	for _, m := range p.Memberships {
		if m.Rank.Valid() {
			return true
		}
	}
	return false
}

func (p Profile) HoldsMDRank() bool {
	for _, m := range p.Memberships {
		if m.Rank == RankMD {
			return true
		}
	}
	return false
}

// Privileged actors bypass department-scoped eligibility: admin/HR roles
// and anyone holding MD rank.
func (p Profile) Privileged() bool {
	return p.Role.Elevated() || p.PrimaryRank == RankMD || p.HoldsMDRank()
}

// RankIn returns the profile's rank within a department, or RankUnknown
// when it holds no active membership there.
func (p Profile) RankIn(departmentID string) Rank {
	for _, m := range p.Memberships {
		if m.DepartmentID == departmentID {
			return m.Rank
		}
	}
	return RankUnknown
}

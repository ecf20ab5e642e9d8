package directory

import (
	"testing"

	"hrdesk/internal/domain/auth"
)

func activeMembership(dept string, rank Rank) Membership {
	return Membership{ID: "m-" + dept, DepartmentID: dept, Rank: rank, Active: true}
}

func TestProfileComplete(t *testing.T) {
	profile := Profile{
		Role:        auth.RoleStaff,
		Memberships: []Membership{activeMembership("d1", RankStaf)},
	}
	if !profile.Complete() {
		t.Fatal("role plus ranked membership should be complete")
	}

	profile.Memberships[0].Rank = RankUnknown
	if profile.Complete() {
		t.Fatal("membership without a valid rank is not complete")
	}

	profile.Memberships[0].Rank = RankStaf
	profile.Role = auth.RoleUnknown
	if profile.Complete() {
		t.Fatal("missing role is not complete")
	}

	if (Profile{Role: auth.RoleStaff}).Complete() {
		t.Fatal("no memberships is not complete")
	}
}

func TestProfilePrivileged(t *testing.T) {
	admin := Profile{Role: auth.RoleAdmin}
	if !admin.Privileged() {
		t.Fatal("admin role is privileged")
	}

	hr := Profile{Role: auth.RoleHR}
	if !hr.Privileged() {
		t.Fatal("hr role is privileged")
	}

	mdMember := Profile{
		Role:        auth.RoleStaff,
		PrimaryRank: RankStaf,
		Memberships: []Membership{activeMembership("d1", RankMD)},
	}
	if !mdMember.Privileged() {
		t.Fatal("holding MD rank in any membership is privileged")
	}

	plain := Profile{
		Role:        auth.RoleStaff,
		PrimaryRank: RankManager,
		Memberships: []Membership{activeMembership("d1", RankManager)},
	}
	if plain.Privileged() {
		t.Fatal("manager rank alone is not privileged")
	}
}

func TestProfileRankIn(t *testing.T) {
	profile := Profile{
		Memberships: []Membership{
			activeMembership("d1", RankManager),
			activeMembership("d2", RankStaf),
		},
	}
	if profile.RankIn("d1") != RankManager {
		t.Fatal("expected manager rank in d1")
	}
	if profile.RankIn("d2") != RankStaf {
		t.Fatal("expected staf rank in d2")
	}
	if profile.RankIn("d3") != RankUnknown {
		t.Fatal("expected unknown rank outside memberships")
	}
}

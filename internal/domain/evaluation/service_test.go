package evaluation

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"
	"time"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/directory"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	cycles      map[string]*Cycle
	evaluations map[string]*Evaluation
	nextID      int

	lastSortField string
	lastSortOrder string
	beforeSave    func(stored *Evaluation)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		cycles:      map[string]*Cycle{},
		evaluations: map[string]*Evaluation{},
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeStore) CreateCycle(ctx context.Context, cycle Cycle) (string, error) {
	cycle.ID = f.id("cycle")
	cycle.CreatedAt = testNow
	f.cycles[cycle.ID] = &cycle
	return cycle.ID, nil
}

func (f *fakeStore) GetCycle(ctx context.Context, cycleID string) (*Cycle, error) {
	cycle, ok := f.cycles[cycleID]
	if !ok {
		return nil, nil
	}
	copied := *cycle
	return &copied, nil
}

func (f *fakeStore) UpdateCycle(ctx context.Context, cycle Cycle) error {
	if _, ok := f.cycles[cycle.ID]; !ok {
		return ErrCycleNotFound
	}
	f.cycles[cycle.ID] = &cycle
	return nil
}

func (f *fakeStore) DeleteCycle(ctx context.Context, cycleID string) error {
	if _, ok := f.cycles[cycleID]; !ok {
		return ErrCycleNotFound
	}
	delete(f.cycles, cycleID)
	return nil
}

func (f *fakeStore) ListCycles(ctx context.Context, sortField, sortOrder string, limit, offset int) ([]Cycle, int, error) {
	f.lastSortField = sortField
	f.lastSortOrder = sortOrder
	var cycles []Cycle
	for _, cycle := range f.cycles {
		cycles = append(cycles, *cycle)
	}
	return cycles, len(cycles), nil
}

func (f *fakeStore) CountEvaluationsForCycle(ctx context.Context, cycleID string) (int, error) {
	count := 0
	for _, ev := range f.evaluations {
		if ev.CycleID == cycleID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CreateEvaluation(ctx context.Context, ev Evaluation) (*Evaluation, error) {
	for _, existing := range f.evaluations {
		if existing.CycleID == ev.CycleID && existing.OwnerID == ev.OwnerID {
			return nil, ErrDuplicateEvaluation
		}
	}
	ev.ID = f.id("ev")
	ev.CreatedAt = testNow
	ev.UpdatedAt = testNow
	stored := ev
	f.evaluations[ev.ID] = &stored
	return &ev, nil
}

func (f *fakeStore) GetEvaluation(ctx context.Context, evaluationID string) (*Evaluation, error) {
	ev, ok := f.evaluations[evaluationID]
	if !ok {
		return nil, nil
	}
	copied := *ev
	return &copied, nil
}

func (f *fakeStore) FindEvaluationByOwner(ctx context.Context, cycleID, ownerID string) (*Evaluation, error) {
	for _, ev := range f.evaluations {
		if ev.CycleID == cycleID && ev.OwnerID == ownerID {
			copied := *ev
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SaveEvaluation(ctx context.Context, ev *Evaluation) error {
	stored, ok := f.evaluations[ev.ID]
	if !ok {
		return ErrNotFound
	}
	if f.beforeSave != nil {
		f.beforeSave(stored)
	}
	if stored.Version != ev.Version {
		return ErrVersionConflict
	}
	ev.Version++
	ev.UpdatedAt = testNow
	copied := *ev
	f.evaluations[ev.ID] = &copied
	return nil
}

func (f *fakeStore) DeleteEvaluation(ctx context.Context, evaluationID string) error {
	if _, ok := f.evaluations[evaluationID]; !ok {
		return ErrNotFound
	}
	delete(f.evaluations, evaluationID)
	return nil
}

func (f *fakeStore) ListEvaluations(ctx context.Context, filter ListFilter) ([]Evaluation, int, error) {
	var result []Evaluation
	for _, ev := range f.evaluations {
		if filter.CycleID != "" && ev.CycleID != filter.CycleID {
			continue
		}
		if filter.OwnerID != "" && ev.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Status != "" && ev.Status != filter.Status {
			continue
		}
		if filter.ParticipantID != "" {
			p := filter.ParticipantID
			if ev.OwnerID != p && ev.CreatorID != p && ev.ManagerID != p && ev.MDID != p {
				continue
			}
		}
		result = append(result, *ev)
	}
	return result, len(result), nil
}

func (f *fakeStore) OwnersWithEvaluation(ctx context.Context, cycleID string) (map[string]bool, error) {
	owners := map[string]bool{}
	for _, ev := range f.evaluations {
		if ev.CycleID == cycleID {
			owners[ev.OwnerID] = true
		}
	}
	return owners, nil
}

type fakeDirectory struct {
	profiles map[string]directory.Profile
	users    []directory.UserSummary
}

func (d *fakeDirectory) PrimaryProfile(ctx context.Context, userID string) (directory.Profile, error) {
	profile, ok := d.profiles[userID]
	if !ok {
		return directory.Profile{}, directory.ErrNotFound
	}
	return profile, nil
}

func (d *fakeDirectory) ActiveUsers(ctx context.Context) ([]directory.UserSummary, error) {
	return d.users, nil
}

func (d *fakeDirectory) UsersByPrimaryDepartment(ctx context.Context, departmentIDs []string) ([]directory.UserSummary, error) {
	wanted := map[string]bool{}
	for _, id := range departmentIDs {
		wanted[id] = true
	}
	var result []directory.UserSummary
	for _, user := range d.users {
		if wanted[user.PrimaryDepartmentID] {
			result = append(result, user)
		}
	}
	return result, nil
}

type notification struct {
	userID    string
	notifType string
}

type fakeNotifier struct {
	sent []notification
}

func (n *fakeNotifier) Notify(ctx context.Context, userID, notifType, title, body string) {
	n.sent = append(n.sent, notification{userID: userID, notifType: notifType})
}

func testProfile(userID string, role auth.Role, departmentID string, rank directory.Rank) directory.Profile {
	return directory.Profile{
		UserID:              userID,
		Email:               userID + "@example.test",
		FullName:            "User " + userID,
		Role:                role,
		PrimaryDepartmentID: departmentID,
		PrimaryRank:         rank,
		Memberships: []directory.Membership{
			{UserID: userID, DepartmentID: departmentID, Rank: rank, Active: true},
		},
	}
}

func newTestService() (*Service, *fakeStore, *fakeDirectory, *fakeNotifier) {
	store := newFakeStore()
	dir := &fakeDirectory{
		profiles: map[string]directory.Profile{
			"u-staff": testProfile("u-staff", auth.RoleStaff, "d1", directory.RankStaf),
			"u-mgr":   testProfile("u-mgr", auth.RoleManager, "d1", directory.RankManager),
			"u-md":    testProfile("u-md", auth.RoleUser, "d1", directory.RankMD),
			"u-hr":    testProfile("u-hr", auth.RoleHR, "d2", directory.RankStaf),
			"u-other": testProfile("u-other", auth.RoleStaff, "d2", directory.RankStaf),
		},
	}
	for _, profile := range dir.profiles {
		dir.users = append(dir.users, directory.UserSummary{
			ID:                  profile.UserID,
			Email:               profile.Email,
			FullName:            profile.FullName,
			Role:                profile.Role,
			PrimaryDepartmentID: profile.PrimaryDepartmentID,
			PrimaryRank:         profile.PrimaryRank,
		})
	}
	notifier := &fakeNotifier{}
	service := NewService(store, dir, notifier)
	service.now = func() time.Time { return testNow }
	return service, store, dir, notifier
}

func seedOpenCycle(store *fakeStore) string {
	id, _ := store.CreateCycle(context.Background(), Cycle{
		Code:     "MY26",
		Name:     "Mid-year 2026",
		Year:     2026,
		Stage:    StageMidYear,
		OpensAt:  testNow.Add(-24 * time.Hour),
		ClosesAt: testNow.Add(24 * time.Hour),
		Active:   true,
	})
	return id
}

func actor(userID string, role auth.Role) auth.UserContext {
	return auth.UserContext{UserID: userID, Role: role}
}

func testSignature() string {
	return base64.StdEncoding.EncodeToString([]byte("ink-over-the-dotted-line"))
}

func maxOperationalRatings() map[string]any {
	ratings := map[string]any{}
	for _, key := range perfDoubleKeys {
		ratings[key] = 10
	}
	for _, key := range perfSingleKeys {
		ratings[key] = 10
	}
	for _, key := range resultOperationalKeys {
		ratings[key] = 10
	}
	for _, key := range competencyKeys {
		ratings[key] = 5
	}
	return ratings
}

func TestCreateIsIdempotentPerCycleAndOwner(t *testing.T) {
	service, store, _, _ := newTestService()
	cycleID := seedOpenCycle(store)
	ctx := context.Background()

	first, err := service.Create(ctx, actor("u-staff", auth.RoleStaff), CreateInput{CycleID: cycleID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Status != StatusDraft || first.OwnerID != "u-staff" || first.Stage != StageMidYear {
		t.Fatalf("unexpected draft: %+v", first)
	}

	second, err := service.Create(ctx, actor("u-staff", auth.RoleStaff), CreateInput{CycleID: cycleID})
	if err != nil {
		t.Fatalf("repeat create: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected the existing evaluation back, got %s and %s", first.ID, second.ID)
	}
	if len(store.evaluations) != 1 {
		t.Fatalf("expected a single row, got %d", len(store.evaluations))
	}
}

func TestCreateRequiresOpenCycle(t *testing.T) {
	service, store, _, _ := newTestService()
	cycleID, _ := store.CreateCycle(context.Background(), Cycle{
		Code: "YE25", Year: 2025, Stage: StageYearEnd,
		OpensAt: testNow.Add(-48 * time.Hour), ClosesAt: testNow.Add(-24 * time.Hour),
		Active: true,
	})

	_, err := service.Create(context.Background(), actor("u-staff", auth.RoleStaff), CreateInput{CycleID: cycleID})
	assertWorkflowError(t, err, "cycle_closed")
}

func TestCreateForAnotherUserChecksEligibility(t *testing.T) {
	service, store, _, _ := newTestService()
	cycleID := seedOpenCycle(store)
	ctx := context.Background()

	_, err := service.Create(ctx, actor("u-staff", auth.RoleStaff), CreateInput{CycleID: cycleID, OwnerID: "u-mgr"})
	assertWorkflowError(t, err, "forbidden_evaluate")

	ev, err := service.Create(ctx, actor("u-mgr", auth.RoleManager), CreateInput{CycleID: cycleID, OwnerID: "u-staff"})
	if err != nil {
		t.Fatalf("manager creating for report: %v", err)
	}
	if ev.OwnerID != "u-staff" || ev.CreatorID != "u-mgr" {
		t.Fatalf("unexpected ownership: %+v", ev)
	}

	// The idempotent lookup must not leak an existing row to an actor who
	// would not have been allowed to create it.
	_, err = service.Create(ctx, actor("u-other", auth.RoleStaff), CreateInput{CycleID: cycleID, OwnerID: "u-staff"})
	assertWorkflowError(t, err, "forbidden_evaluate")
}

func TestSubmitSelfChainCompletesInOneCall(t *testing.T) {
	service, store, _, notifier := newTestService()
	cycleID := seedOpenCycle(store)
	ctx := context.Background()
	owner := actor("u-mgr", auth.RoleManager)

	draft, err := service.Create(ctx, owner, CreateInput{
		CycleID:   cycleID,
		ManagerID: "u-mgr",
		Ratings:   maxOperationalRatings(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ev, err := service.Submit(ctx, owner, draft.ID, testSignature(), "done")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ev.Status != StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", ev.Status)
	}
	for _, ts := range []*time.Time{ev.SubmittedAt, ev.OwnerSigned, ev.ApproverAt, ev.ManagerSigned, ev.MDSigned, ev.CompletedAt} {
		if ts == nil {
			t.Fatalf("expected every step stamped: %+v", ev)
		}
	}
	if len(ev.ManagerSignature) == 0 || len(ev.MDSignature) == 0 {
		t.Fatal("expected submitter signature on the short-circuited steps")
	}
	if ev.ScoreTotal != 100 || ev.Grade != "A" {
		t.Fatalf("expected a perfect score, got %v/%s", ev.ScoreTotal, ev.Grade)
	}
	if len(notifier.sent) == 0 || notifier.sent[len(notifier.sent)-1].notifType != "evaluation.completed" {
		t.Fatalf("expected completion notification, got %+v", notifier.sent)
	}
}

func TestSubmitStopsAtAssignedManager(t *testing.T) {
	service, store, _, notifier := newTestService()
	cycleID := seedOpenCycle(store)
	ctx := context.Background()
	owner := actor("u-staff", auth.RoleStaff)

	draft, err := service.Create(ctx, owner, CreateInput{CycleID: cycleID, ManagerID: "u-mgr", MDID: "u-md"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ev, err := service.Submit(ctx, owner, draft.ID, testSignature(), "")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ev.Status != StatusSubmitted {
		t.Fatalf("expected SUBMITTED, got %s", ev.Status)
	}
	if ev.ManagerSigned != nil || len(ev.ManagerSignature) != 0 {
		t.Fatal("manager step must remain pending")
	}
	if len(notifier.sent) != 1 || notifier.sent[0].userID != "u-mgr" || notifier.sent[0].notifType != "evaluation.submitted" {
		t.Fatalf("expected manager notification, got %+v", notifier.sent)
	}
}

func TestSubmitRequiresCompleteProfile(t *testing.T) {
	service, store, dir, _ := newTestService()
	cycleID := seedOpenCycle(store)
	ctx := context.Background()

	dir.profiles["u-bare"] = directory.Profile{UserID: "u-bare", Role: auth.RoleStaff}
	dir.users = append(dir.users, directory.UserSummary{ID: "u-bare", Role: auth.RoleStaff})

	draft, err := service.Create(ctx, actor("u-bare", auth.RoleStaff), CreateInput{CycleID: cycleID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = service.Submit(ctx, actor("u-bare", auth.RoleStaff), draft.ID, testSignature(), "")
	assertWorkflowError(t, err, "profile_incomplete")
}

func TestSubmitRejectsNonOwner(t *testing.T) {
	service, store, _, _ := newTestService()
	cycleID := seedOpenCycle(store)
	ctx := context.Background()

	draft, _ := service.Create(ctx, actor("u-staff", auth.RoleStaff), CreateInput{CycleID: cycleID, ManagerID: "u-mgr"})
	_, err := service.Submit(ctx, actor("u-mgr", auth.RoleManager), draft.ID, testSignature(), "")
	assertWorkflowError(t, err, "forbidden")
}

func TestManagerApprovalCascadesWhenHoldingMDSlot(t *testing.T) {
	service, store, _, _ := newTestService()
	cycleID := seedOpenCycle(store)
	ctx := context.Background()
	owner := actor("u-staff", auth.RoleStaff)

	draft, _ := service.Create(ctx, owner, CreateInput{CycleID: cycleID, ManagerID: "u-md", MDID: "u-md"})
	if _, err := service.Submit(ctx, owner, draft.ID, testSignature(), ""); err != nil {
		t.Fatalf("submit: %v", err)
	}

	ev, err := service.ApproveByManager(ctx, actor("u-md", auth.RoleUser), draft.ID, testSignature(), "approved")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if ev.Status != StatusCompleted {
		t.Fatalf("expected cascade to COMPLETED, got %s", ev.Status)
	}
	if ev.ManagerSigned == nil || ev.MDSigned == nil || ev.CompletedAt == nil {
		t.Fatalf("expected both approval steps stamped: %+v", ev)
	}
}

func TestApprovalRequiresAssignedApprover(t *testing.T) {
	service, store, _, _ := newTestService()
	cycleID := seedOpenCycle(store)
	ctx := context.Background()
	owner := actor("u-staff", auth.RoleStaff)

	draft, _ := service.Create(ctx, owner, CreateInput{CycleID: cycleID, ManagerID: "u-mgr", MDID: "u-md"})
	service.Submit(ctx, owner, draft.ID, testSignature(), "")

	_, err := service.ApproveByManager(ctx, actor("u-md", auth.RoleUser), draft.ID, testSignature(), "")
	assertWorkflowError(t, err, "forbidden")

	// MD approval out of order: the manager has not signed yet.
	_, err = service.ApproveByMD(ctx, actor("u-md", auth.RoleUser), draft.ID, testSignature(), "")
	assertWorkflowError(t, err, "conflict")
}

func TestApprovalAndRejectConflictBeforeSubmission(t *testing.T) {
	service, store, _, _ := newTestService()
	cycleID := seedOpenCycle(store)
	ctx := context.Background()
	owner := actor("u-staff", auth.RoleStaff)

	draft, _ := service.Create(ctx, owner, CreateInput{CycleID: cycleID, ManagerID: "u-mgr", MDID: "u-md"})

	_, err := service.ApproveByManager(ctx, actor("u-mgr", auth.RoleManager), draft.ID, testSignature(), "")
	assertWorkflowError(t, err, "conflict")

	_, err = service.Reject(ctx, actor("u-mgr", auth.RoleManager), draft.ID, "too early")
	assertWorkflowError(t, err, "conflict")
}

func TestRejectReturnsEvaluationToEditableState(t *testing.T) {
	service, store, _, _ := newTestService()
	cycleID := seedOpenCycle(store)
	ctx := context.Background()
	owner := actor("u-staff", auth.RoleStaff)

	draft, _ := service.Create(ctx, owner, CreateInput{CycleID: cycleID, ManagerID: "u-mgr"})
	service.Submit(ctx, owner, draft.ID, testSignature(), "")

	ev, err := service.Reject(ctx, actor("u-mgr", auth.RoleManager), draft.ID, "please revise section 2")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if ev.Status != StatusRejected || ev.RejectedAt == nil {
		t.Fatalf("expected REJECTED, got %+v", ev)
	}
	if ev.ManagerComment != "please revise section 2" {
		t.Fatalf("expected the comment on the manager slot, got %q", ev.ManagerComment)
	}

	if _, err := service.Update(ctx, owner, draft.ID, UpdatePatch{Ratings: map[string]any{"integrity": 5}}); err != nil {
		t.Fatalf("update after reject: %v", err)
	}
	resubmitted, err := service.Submit(ctx, owner, draft.ID, testSignature(), "")
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if resubmitted.Status != StatusSubmitted || resubmitted.RejectedAt != nil {
		t.Fatalf("expected a clean resubmission, got %+v", resubmitted)
	}
}

func TestRejectRequiresAssignedApprover(t *testing.T) {
	service, store, _, _ := newTestService()
	cycleID := seedOpenCycle(store)
	ctx := context.Background()
	owner := actor("u-staff", auth.RoleStaff)

	draft, _ := service.Create(ctx, owner, CreateInput{CycleID: cycleID, ManagerID: "u-mgr"})
	service.Submit(ctx, owner, draft.ID, testSignature(), "")

	_, err := service.Reject(ctx, actor("u-other", auth.RoleStaff), draft.ID, "nope")
	assertWorkflowError(t, err, "forbidden")
}

func TestUpdateRecomputesScores(t *testing.T) {
	service, store, _, _ := newTestService()
	cycleID := seedOpenCycle(store)
	ctx := context.Background()
	owner := actor("u-staff", auth.RoleStaff)

	draft, _ := service.Create(ctx, owner, CreateInput{CycleID: cycleID})
	if draft.ScoreTotal != 0 {
		t.Fatalf("expected zero scores on an empty draft, got %v", draft.ScoreTotal)
	}

	updated, err := service.Update(ctx, owner, draft.ID, UpdatePatch{Ratings: maxOperationalRatings()})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ScoreTotal != 100 || updated.Grade != "A" {
		t.Fatalf("expected recomputed scores, got %v/%s", updated.ScoreTotal, updated.Grade)
	}
	if updated.Version != draft.Version+1 {
		t.Fatalf("expected version bump, got %d", updated.Version)
	}
}

func TestUpdateBlockedOutsideEditableStatuses(t *testing.T) {
	service, store, _, _ := newTestService()
	cycleID := seedOpenCycle(store)
	ctx := context.Background()
	owner := actor("u-staff", auth.RoleStaff)

	draft, _ := service.Create(ctx, owner, CreateInput{CycleID: cycleID, ManagerID: "u-mgr"})
	service.Submit(ctx, owner, draft.ID, testSignature(), "")

	_, err := service.Update(ctx, owner, draft.ID, UpdatePatch{Ratings: map[string]any{"integrity": 5}})
	assertWorkflowError(t, err, "conflict")
}

func TestUpdateDetectsConcurrentWriter(t *testing.T) {
	service, store, _, _ := newTestService()
	cycleID := seedOpenCycle(store)
	ctx := context.Background()
	owner := actor("u-staff", auth.RoleStaff)

	draft, _ := service.Create(ctx, owner, CreateInput{CycleID: cycleID})
	store.beforeSave = func(stored *Evaluation) { stored.Version++ }

	_, err := service.Update(ctx, owner, draft.ID, UpdatePatch{Ratings: map[string]any{"integrity": 5}})
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
}

func TestCycleClosingMidFlowBlocksApproval(t *testing.T) {
	service, store, _, _ := newTestService()
	cycleID := seedOpenCycle(store)
	ctx := context.Background()
	owner := actor("u-staff", auth.RoleStaff)

	draft, _ := service.Create(ctx, owner, CreateInput{CycleID: cycleID, ManagerID: "u-mgr"})
	service.Submit(ctx, owner, draft.ID, testSignature(), "")

	store.cycles[cycleID].ClosesAt = testNow.Add(-time.Hour)

	_, err := service.ApproveByManager(ctx, actor("u-mgr", auth.RoleManager), draft.ID, testSignature(), "")
	assertWorkflowError(t, err, "cycle_closed")
}

func TestDeleteRequiresOwnershipOrElevatedRole(t *testing.T) {
	service, store, _, _ := newTestService()
	cycleID := seedOpenCycle(store)
	ctx := context.Background()

	draft, _ := service.Create(ctx, actor("u-staff", auth.RoleStaff), CreateInput{CycleID: cycleID})

	err := service.Delete(ctx, actor("u-other", auth.RoleStaff), draft.ID)
	assertWorkflowError(t, err, "forbidden")

	if err := service.Delete(ctx, actor("u-hr", auth.RoleHR), draft.ID); err != nil {
		t.Fatalf("HR delete: %v", err)
	}
	if len(store.evaluations) != 0 {
		t.Fatal("expected the row gone")
	}
}

func TestListScopesToParticipantForRegularUsers(t *testing.T) {
	service, store, _, _ := newTestService()
	cycleID := seedOpenCycle(store)
	ctx := context.Background()

	service.Create(ctx, actor("u-staff", auth.RoleStaff), CreateInput{CycleID: cycleID})
	service.Create(ctx, actor("u-other", auth.RoleStaff), CreateInput{CycleID: cycleID})

	mine, _, err := service.List(ctx, actor("u-staff", auth.RoleStaff), ListFilter{CycleID: cycleID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 1 || mine[0].OwnerID != "u-staff" {
		t.Fatalf("expected only own evaluations, got %+v", mine)
	}

	all, _, err := service.List(ctx, actor("u-hr", auth.RoleHR), ListFilter{CycleID: cycleID})
	if err != nil {
		t.Fatalf("list as HR: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected HR to see everything, got %d", len(all))
	}
}

func TestGetEnforcesViewAuthorization(t *testing.T) {
	service, store, _, _ := newTestService()
	cycleID := seedOpenCycle(store)
	ctx := context.Background()

	draft, _ := service.Create(ctx, actor("u-staff", auth.RoleStaff), CreateInput{CycleID: cycleID, ManagerID: "u-mgr"})

	if _, err := service.Get(ctx, actor("u-mgr", auth.RoleManager), draft.ID); err != nil {
		t.Fatalf("assigned manager view: %v", err)
	}
	if _, err := service.Get(ctx, actor("u-md", auth.RoleUser), draft.ID); err != nil {
		t.Fatalf("MD-ranked view: %v", err)
	}
	_, err := service.Get(ctx, actor("u-other", auth.RoleStaff), draft.ID)
	assertWorkflowError(t, err, "forbidden")
}

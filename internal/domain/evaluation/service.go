package evaluation

import (
	"context"
	"errors"
	"time"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/directory"
)

// Service owns the evaluation lifecycle: draft creation through
// multi-party sign-off. Every mutating call re-validates the cycle window
// and the actor's authority before touching the row.
type Service struct {
	store  StoreAPI
	dir    Directory
	notify Notifier
	now    func() time.Time
}

func NewService(store StoreAPI, dir Directory, notify Notifier) *Service {
	return &Service{store: store, dir: dir, notify: notify, now: time.Now}
}

type CreateInput struct {
	CycleID   string         `json:"cycleId"`
	OwnerID   string         `json:"ownerId"`
	Type      string         `json:"type"`
	ManagerID string         `json:"managerId"`
	MDID      string         `json:"mdId"`
	Ratings   map[string]any `json:"ratings"`
}

// Create opens a draft for (cycle, owner). It is idempotent: an existing
// row for the pair is returned as-is instead of erroring or duplicating.
func (s *Service) Create(ctx context.Context, actor auth.UserContext, input CreateInput) (*Evaluation, error) {
	owner := input.OwnerID
	if owner == "" {
		owner = actor.UserID
	}

	cycle, err := s.openCycle(ctx, input.CycleID)
	if err != nil {
		return nil, err
	}

	// Eligibility comes before the idempotent lookup so an ineligible
	// actor cannot read someone else's row through a repeat create.
	if actor.UserID != owner {
		if err := s.CanEvaluate(ctx, actor.UserID, owner); err != nil {
			return nil, err
		}
	}

	if existing, err := s.store.FindEvaluationByOwner(ctx, cycle.ID, owner); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	evalType := input.Type
	if evalType == "" {
		evalType = TypeOperational
	}
	if evalType != TypeOperational && evalType != TypeSupervisor {
		return nil, badRequest("unknown evaluation type %q", input.Type)
	}

	scores := ComputeScores(input.Ratings, evalType)
	ev := Evaluation{
		CycleID:     cycle.ID,
		OwnerID:     owner,
		CreatorID:   actor.UserID,
		ManagerID:   input.ManagerID,
		MDID:        input.MDID,
		Stage:       cycle.Stage,
		Type:        evalType,
		Status:      StatusDraft,
		Ratings:     input.Ratings,
		ScorePerf:   scores.Perf,
		ScoreResult: scores.Result,
		ScoreComp:   scores.Comp,
		ScoreTotal:  scores.Total,
		Grade:       ComputeGrade(scores.Total),
		Version:     1,
	}

	created, err := s.store.CreateEvaluation(ctx, ev)
	if errors.Is(err, ErrDuplicateEvaluation) {
		// Lost a creation race; the winner's row is the answer.
		return s.store.FindEvaluationByOwner(ctx, cycle.ID, owner)
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, actor auth.UserContext, evaluationID string) (*Evaluation, error) {
	ev, err := s.getEvaluation(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(ctx, actor, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Update merges draft fields. Only the owner or an admin/HR actor may
// edit, only while the evaluation is editable, and only inside the cycle
// window. Scores are recomputed whenever ratings change.
func (s *Service) Update(ctx context.Context, actor auth.UserContext, evaluationID string, patch UpdatePatch) (*Evaluation, error) {
	ev, err := s.getEvaluation(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	if ev.Status != StatusDraft && ev.Status != StatusRejected {
		return nil, conflict("evaluation in status %s cannot be updated", ev.Status)
	}
	if _, err := s.openCycle(ctx, ev.CycleID); err != nil {
		return nil, err
	}
	if actor.UserID != ev.OwnerID && !actor.Role.Elevated() {
		return nil, forbidden("only the owner or HR may update an evaluation")
	}

	if patch.Type != nil {
		if *patch.Type != TypeOperational && *patch.Type != TypeSupervisor {
			return nil, badRequest("unknown evaluation type %q", *patch.Type)
		}
		ev.Type = *patch.Type
	}
	if patch.ManagerID != nil {
		ev.ManagerID = *patch.ManagerID
	}
	if patch.MDID != nil {
		ev.MDID = *patch.MDID
	}
	if patch.Comment != nil {
		ev.OwnerComment = *patch.Comment
	}
	if len(patch.Ratings) > 0 {
		if ev.Ratings == nil {
			ev.Ratings = map[string]any{}
		}
		for key, value := range patch.Ratings {
			ev.Ratings[key] = value
		}
	}

	s.applyScores(ev)

	if err := s.store.SaveEvaluation(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Submit signs the form on behalf of its owner and advances it through
// every approval step the owner also occupies: an unset or self-held
// manager or MD slot short-circuits, so a fully self-chained form goes
// DRAFT to COMPLETED in one call.
func (s *Service) Submit(ctx context.Context, actor auth.UserContext, evaluationID, signature, comment string) (*Evaluation, error) {
	ev, err := s.getEvaluation(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	if actor.UserID != ev.OwnerID {
		return nil, forbidden("only the owner may submit an evaluation")
	}
	if ev.Status != StatusDraft && ev.Status != StatusRejected {
		return nil, conflict("evaluation in status %s cannot be submitted", ev.Status)
	}
	if _, err := s.openCycle(ctx, ev.CycleID); err != nil {
		return nil, err
	}

	profile, err := s.profile(ctx, ev.OwnerID)
	if err != nil {
		return nil, err
	}
	if !profile.Complete() {
		return nil, ErrProfileIncomplete
	}

	sig, err := DecodeSignature(signature)
	if err != nil {
		return nil, err
	}

	// Scores always come from the persisted ratings, never the request.
	s.applyScores(ev)

	now := s.now().UTC()
	ev.Status = StatusSubmitted
	ev.SubmittedAt = &now
	ev.OwnerSigned = &now
	ev.OwnerSignature = sig
	if comment != "" {
		ev.OwnerComment = comment
	}
	ev.RejectedAt = nil

	s.runCascade(ev, actor.UserID, sig, comment, now)

	if err := s.store.SaveEvaluation(ctx, ev); err != nil {
		return nil, err
	}
	s.notifyTransition(ctx, ev)
	return ev, nil
}

// ApproveByManager records the first sign-off. When the same person also
// holds the MD slot (or it is unset) the cascade completes the form in
// the same call.
func (s *Service) ApproveByManager(ctx context.Context, actor auth.UserContext, evaluationID, signature, comment string) (*Evaluation, error) {
	ev, err := s.getEvaluation(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	if ev.Status != StatusSubmitted {
		return nil, conflict("evaluation must be submitted before manager approval")
	}
	if ev.ManagerID == "" || actor.UserID != ev.ManagerID {
		return nil, forbidden("only the assigned manager may approve")
	}
	if _, err := s.openCycle(ctx, ev.CycleID); err != nil {
		return nil, err
	}

	sig, err := DecodeSignature(signature)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	s.runCascade(ev, actor.UserID, sig, comment, now)

	if err := s.store.SaveEvaluation(ctx, ev); err != nil {
		return nil, err
	}
	s.notifyTransition(ctx, ev)
	return ev, nil
}

// ApproveByMD records the final sign-off.
func (s *Service) ApproveByMD(ctx context.Context, actor auth.UserContext, evaluationID, signature, comment string) (*Evaluation, error) {
	ev, err := s.getEvaluation(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	if ev.Status != StatusApproverApproved {
		return nil, conflict("evaluation must be manager-approved before MD approval")
	}
	if ev.MDID == "" || actor.UserID != ev.MDID {
		return nil, forbidden("only the assigned MD may approve")
	}
	if _, err := s.openCycle(ctx, ev.CycleID); err != nil {
		return nil, err
	}

	sig, err := DecodeSignature(signature)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	s.runCascade(ev, actor.UserID, sig, comment, now)

	if err := s.store.SaveEvaluation(ctx, ev); err != nil {
		return nil, err
	}
	s.notifyTransition(ctx, ev)
	return ev, nil
}

// Reject sends an in-flight evaluation back to an editable state. The
// rejection comment lands on whichever approver role rejected.
func (s *Service) Reject(ctx context.Context, actor auth.UserContext, evaluationID, comment string) (*Evaluation, error) {
	ev, err := s.getEvaluation(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	if ev.Status != StatusSubmitted && ev.Status != StatusApproverApproved {
		return nil, conflict("evaluation in status %s cannot be rejected", ev.Status)
	}
	isManager := ev.ManagerID != "" && actor.UserID == ev.ManagerID
	isMD := ev.MDID != "" && actor.UserID == ev.MDID
	if !isManager && !isMD {
		return nil, forbidden("only an assigned approver may reject")
	}
	if _, err := s.openCycle(ctx, ev.CycleID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	ev.Status = StatusRejected
	ev.RejectedAt = &now
	if isManager {
		ev.ManagerComment = comment
	} else {
		ev.MDComment = comment
	}

	if err := s.store.SaveEvaluation(ctx, ev); err != nil {
		return nil, err
	}
	s.notifyOwner(ctx, ev, "evaluation.rejected", "Evaluation returned",
		"Your evaluation was rejected and can be revised and resubmitted.")
	return ev, nil
}

// Delete hard-deletes the row. There is no status guard; authorization is
// ownership or an elevated role, and the removal lands in the audit log.
func (s *Service) Delete(ctx context.Context, actor auth.UserContext, evaluationID string) error {
	ev, err := s.getEvaluation(ctx, evaluationID)
	if err != nil {
		return err
	}
	if actor.UserID != ev.OwnerID && actor.UserID != ev.CreatorID && !actor.Role.Elevated() {
		return forbidden("not allowed to delete this evaluation")
	}
	return s.store.DeleteEvaluation(ctx, ev.ID)
}

func (s *Service) List(ctx context.Context, actor auth.UserContext, filter ListFilter) ([]Evaluation, int, error) {
	if !actor.Role.Elevated() {
		filter.ParticipantID = actor.UserID
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.store.ListEvaluations(ctx, filter)
}

// approvalStep is one pending sign-off in cascade order. A step applies
// when the evaluation sits in its from-status and its approver slot is
// unset or held by the acting user.
type approvalStep struct {
	approverID string
	from       string
	stamp      func(ev *Evaluation, sig []byte, comment string, now time.Time)
}

func (s *Service) runCascade(ev *Evaluation, actorID string, sig []byte, comment string, now time.Time) {
	steps := []approvalStep{
		{approverID: ev.ManagerID, from: StatusSubmitted, stamp: stampManagerStep},
		{approverID: ev.MDID, from: StatusApproverApproved, stamp: stampMDStep},
	}
	for _, step := range steps {
		if ev.Status != step.from {
			continue
		}
		if step.approverID != "" && step.approverID != actorID {
			continue
		}
		step.stamp(ev, sig, comment, now)
	}
}

func stampManagerStep(ev *Evaluation, sig []byte, comment string, now time.Time) {
	ev.Status = StatusApproverApproved
	ev.ApproverAt = &now
	ev.ManagerSigned = &now
	ev.ManagerSignature = sig
	if comment != "" {
		ev.ManagerComment = comment
	}
}

func stampMDStep(ev *Evaluation, sig []byte, comment string, now time.Time) {
	ev.Status = StatusCompleted
	ev.MDSigned = &now
	ev.CompletedAt = &now
	ev.MDSignature = sig
	if comment != "" {
		ev.MDComment = comment
	}
}

func (s *Service) applyScores(ev *Evaluation) {
	scores := ComputeScores(ev.Ratings, ev.Type)
	ev.ScorePerf = scores.Perf
	ev.ScoreResult = scores.Result
	ev.ScoreComp = scores.Comp
	ev.ScoreTotal = scores.Total
	ev.Grade = ComputeGrade(scores.Total)
}

func (s *Service) getEvaluation(ctx context.Context, evaluationID string) (*Evaluation, error) {
	ev, err := s.store.GetEvaluation(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, ErrNotFound
	}
	return ev, nil
}

func (s *Service) openCycle(ctx context.Context, cycleID string) (*Cycle, error) {
	cycle, err := s.store.GetCycle(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	if cycle == nil {
		return nil, ErrCycleNotFound
	}
	if !cycle.OpenAt(s.now()) {
		return nil, ErrCycleClosed
	}
	return cycle, nil
}

func (s *Service) profile(ctx context.Context, userID string) (directory.Profile, error) {
	profile, err := s.dir.PrimaryProfile(ctx, userID)
	if errors.Is(err, directory.ErrNotFound) {
		return directory.Profile{}, &Error{Status: 404, Code: "not_found", Message: "user not found"}
	}
	if err != nil {
		return directory.Profile{}, err
	}
	return profile, nil
}

func (s *Service) authorizeView(ctx context.Context, actor auth.UserContext, ev *Evaluation) error {
	switch actor.UserID {
	case ev.OwnerID, ev.CreatorID:
		return nil
	}
	if ev.ManagerID != "" && actor.UserID == ev.ManagerID {
		return nil
	}
	if ev.MDID != "" && actor.UserID == ev.MDID {
		return nil
	}
	if actor.Role.Elevated() {
		return nil
	}
	profile, err := s.profile(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if profile.Privileged() {
		return nil
	}
	return forbidden("not allowed to view this evaluation")
}

func (s *Service) notifyTransition(ctx context.Context, ev *Evaluation) {
	if s.notify == nil {
		return
	}
	switch ev.Status {
	case StatusSubmitted:
		if ev.ManagerID != "" {
			s.notify.Notify(ctx, ev.ManagerID, "evaluation.submitted", "Evaluation awaiting approval",
				"An evaluation has been submitted for your approval.")
		}
	case StatusApproverApproved:
		if ev.MDID != "" {
			s.notify.Notify(ctx, ev.MDID, "evaluation.approved", "Evaluation awaiting MD approval",
				"An evaluation is ready for final approval.")
		}
	case StatusCompleted:
		s.notifyOwner(ctx, ev, "evaluation.completed", "Evaluation completed",
			"Your evaluation has been fully approved.")
	}
}

func (s *Service) notifyOwner(ctx context.Context, ev *Evaluation, notifType, title, body string) {
	if s.notify == nil {
		return
	}
	s.notify.Notify(ctx, ev.OwnerID, notifType, title, body)
}

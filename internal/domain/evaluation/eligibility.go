package evaluation

import (
	"context"

	"hrdesk/internal/domain/directory"
)

// CanEvaluate decides whether evaluator may open an evaluation for
// evaluatee. Self-evaluation is always allowed. Otherwise the evaluator
// needs a complete profile, and either a privileged standing (admin/HR
// role or an MD rank) or a membership in the evaluatee's primary
// department with a rank strictly above the evaluatee's primary rank.
// A secondary membership of the evaluatee never grants access.
func (s *Service) CanEvaluate(ctx context.Context, evaluatorID, evaluateeID string) error {
	if evaluatorID == evaluateeID {
		return nil
	}

	evaluator, err := s.profile(ctx, evaluatorID)
	if err != nil {
		return err
	}
	if !evaluator.Complete() {
		return ErrProfileIncomplete
	}
	if evaluator.Privileged() {
		return nil
	}

	evaluatee, err := s.profile(ctx, evaluateeID)
	if err != nil {
		return err
	}
	if evaluatee.PrimaryDepartmentID == "" || !evaluatee.PrimaryRank.Valid() {
		return ErrForbiddenEvaluate
	}

	mine := evaluator.RankIn(evaluatee.PrimaryDepartmentID)
	if mine == directory.RankUnknown || !mine.Above(evaluatee.PrimaryRank) {
		return ErrForbiddenEvaluate
	}
	return nil
}

// ListEligibleEvaluatees returns the users the evaluator may open
// evaluations for in the given cycle. Privileged evaluators see every
// active user; everyone else sees only strictly lower-ranked colleagues
// in their own departments. Users who already hold an evaluation in the
// cycle are filtered out unless IncludeTaken is set.
func (s *Service) ListEligibleEvaluatees(ctx context.Context, cycleID, evaluatorID string, opts EligibleOptions) ([]directory.UserSummary, error) {
	evaluator, err := s.profile(ctx, evaluatorID)
	if err != nil {
		return nil, err
	}
	// A privileged evaluator sees everyone even without a membership of
	// their own; only the department-scoped path needs a complete profile.
	if !evaluator.Privileged() && !evaluator.Complete() {
		return nil, ErrProfileIncomplete
	}

	taken := map[string]bool{}
	if cycleID != "" && !opts.IncludeTaken {
		taken, err = s.store.OwnersWithEvaluation(ctx, cycleID)
		if err != nil {
			return nil, err
		}
	}

	var candidates []directory.UserSummary
	if evaluator.Privileged() {
		candidates, err = s.dir.ActiveUsers(ctx)
	} else {
		var departmentIDs []string
		for _, membership := range evaluator.Memberships {
			departmentIDs = append(departmentIDs, membership.DepartmentID)
		}
		candidates, err = s.dir.UsersByPrimaryDepartment(ctx, departmentIDs)
	}
	if err != nil {
		return nil, err
	}

	eligible := make([]directory.UserSummary, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ID == evaluatorID {
			if !opts.IncludeSelf {
				continue
			}
		} else if !evaluator.Privileged() {
			mine := evaluator.RankIn(candidate.PrimaryDepartmentID)
			if mine == directory.RankUnknown || !mine.Above(candidate.PrimaryRank) {
				continue
			}
		}
		if taken[candidate.ID] {
			continue
		}
		eligible = append(eligible, candidate)
	}

	// An evaluator with nobody below them still gets their own form.
	if len(eligible) == 0 && opts.IncludeSelf && !taken[evaluatorID] {
		eligible = append(eligible, directory.UserSummary{
			ID:                  evaluator.UserID,
			Email:               evaluator.Email,
			FullName:            evaluator.FullName,
			Role:                evaluator.Role,
			PrimaryDepartmentID: evaluator.PrimaryDepartmentID,
			PrimaryRank:         evaluator.PrimaryRank,
		})
	}
	return eligible, nil
}

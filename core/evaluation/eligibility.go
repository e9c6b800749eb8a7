package evaluation

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/hfarfan/evadocente/core"
)

var (
	errSelfEvaluation = errors.New("a teacher cannot peer-evaluate themselves")
	errStaleDate      = errors.New("the assignment's effective date is in the past")
)

// CanCreateInstance reports whether a new instance for (channel, period) would
// violate the one-active-instance invariant. The returned conflict carries the
// id of the pre-existing instance so callers can offer "edit" instead of
// "create".
func (svc *Service) CanCreateInstance(ctx context.Context, channel Channel, periodID int) error {
	existing, err := svc.repo.GetActiveInstance(ctx, channel, periodID)
	switch {
	case err == nil:
		return core.NewConflictError(core.ConflictDuplicateInstance, ErrInstanceExists, existing.ID)
	case errors.Cause(err) == ErrInstanceNotFound:
		return nil
	default:
		return errors.Wrap(err, "checking active instance")
	}
}

// CanCreateAssignment checks the self-evaluation, temporal and uniqueness
// rules for a proposed peer assignment. A null-subject grant and a
// subject-specific grant for the same pair do not collide.
func (svc *Service) CanCreateAssignment(ctx context.Context, na NewAssignment) error {
	if na.EvaluatorID == na.EvaluatedID {
		return core.NewConflictError(core.ConflictSelfEvaluation, errSelfEvaluation)
	}
	if isStale(na.EffectiveDate) {
		return core.NewConflictError(core.ConflictStaleDate, errStaleDate)
	}

	existing, err := svc.repo.GetAssignment(ctx, na.PeriodID, na.EvaluatorID, na.EvaluatedID, na.SubjectID)
	switch {
	case err == nil:
		return core.NewConflictError(core.ConflictDuplicateAssignment, ErrAssignmentExists, existing.ID)
	case errors.Cause(err) == ErrAssignmentNotFound:
		return nil
	default:
		return errors.Wrap(err, "checking assignment")
	}
}

// CanSubmitResponses reports whether the (instance, evaluator, subject key)
// tuple has already been evaluated.
func (svc *Service) CanSubmitResponses(ctx context.Context, instanceID, evaluatorID int, subjectKey string) error {
	_, err := svc.repo.GetResponseGroup(ctx, instanceID, evaluatorID, subjectKey)
	switch {
	case err == nil:
		return core.NewConflictError(core.ConflictAlreadyEvaluated, ErrGroupExists)
	case errors.Cause(err) == ErrGroupNotFound:
		return nil
	default:
		return errors.Wrap(err, "checking response group")
	}
}

// isStale compares calendar days in the effective date's own location,
// not instants: an assignment dated today at 00:00 is never stale, whatever
// the current wall-clock time.
func isStale(effective time.Time) bool {
	now := nowFunc().In(effective.Location())
	ny, nm, nd := now.Date()
	ey, em, ed := effective.Date()
	if ey != ny {
		return ey < ny
	}
	if em != nm {
		return em < nm
	}
	return ed < nd
}

func (svc *Service) duplicateInstanceConflict(ctx context.Context, channel Channel, periodID int) error {
	existing, err := svc.repo.GetActiveInstance(ctx, channel, periodID)
	if err != nil {
		return errors.Wrap(err, "resolving duplicate instance")
	}
	return core.NewConflictError(core.ConflictDuplicateInstance, ErrInstanceExists, existing.ID)
}

func (svc *Service) duplicateAssignmentConflict(ctx context.Context, na NewAssignment) error {
	existing, err := svc.repo.GetAssignment(ctx, na.PeriodID, na.EvaluatorID, na.EvaluatedID, na.SubjectID)
	if err != nil {
		return errors.Wrap(err, "resolving duplicate assignment")
	}
	return core.NewConflictError(core.ConflictDuplicateAssignment, ErrAssignmentExists, existing.ID)
}

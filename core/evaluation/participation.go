package evaluation

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hfarfan/evadocente/core"
)

// computeParticipation builds the per-channel and aggregate participation
// rates for a period. A channel only counts when an instance exists for it
// (no instance means no expectation, not a penalty), and a channel whose
// expected count is 0 is omitted from the breakdown entirely. The aggregate
// rate sums completed and expected across channels before dividing, so small
// channels do not bias it.
func (svc *Service) computeParticipation(ctx context.Context, periodID int) (ParticipationReport, error) {
	report := ParticipationReport{
		PeriodID:  periodID,
		Breakdown: make(map[Channel]ChannelParticipation),
	}

	for _, channel := range []Channel{ChannelSelf, ChannelStudent, ChannelPeer} {
		inst, err := svc.repo.GetActiveInstance(ctx, channel, periodID)
		if err != nil {
			if errors.Cause(err) == ErrInstanceNotFound {
				continue
			}
			return ParticipationReport{}, errors.Wrap(err, "fetching instance")
		}

		expected, err := svc.expectedCount(ctx, channel, periodID)
		if err != nil {
			return ParticipationReport{}, err
		}
		if expected == 0 {
			continue
		}

		completed, err := svc.repo.CompletedGroupCount(ctx, inst.ID)
		if err != nil {
			return ParticipationReport{}, errors.Wrap(err, "counting completed groups")
		}

		report.Breakdown[channel] = ChannelParticipation{
			Completed: completed,
			Expected:  expected,
			Rate:      core.Round2(float64(completed) / float64(expected) * 100),
		}
		report.Completed += completed
		report.Expected += expected
	}

	if report.Expected > 0 {
		report.Rate = core.Round2(float64(report.Completed) / float64(report.Expected) * 100)
	}
	return report, nil
}

// expectedCount derives the theoretical evaluation count for a channel from
// enrollment/distributive data.
func (svc *Service) expectedCount(ctx context.Context, channel Channel, periodID int) (int, error) {
	switch channel {
	case ChannelSelf:
		// one expected self-evaluation per teacher holding at least one
		// active teaching assignment in the period
		teachers, err := svc.academicRepo.TeachersWithAssignments(ctx, periodID)
		if err != nil {
			return 0, errors.Wrap(err, "fetching teachers with assignments")
		}
		return len(teachers), nil
	case ChannelStudent:
		// one expected evaluation per (enrolled student, teaching assignment) pair
		count, err := svc.academicRepo.EnrollmentPairCount(ctx, periodID)
		if err != nil {
			return 0, errors.Wrap(err, "counting enrollment pairs")
		}
		return count, nil
	case ChannelPeer:
		// one expected evaluation per declared peer assignment
		count, err := svc.repo.CountAssignments(ctx, periodID)
		if err != nil {
			return 0, errors.Wrap(err, "counting peer assignments")
		}
		return count, nil
	}
	return 0, nil
}

package evaluation

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/hfarfan/evadocente/core"
)

// likertScale maps the 0–5 response scale to 0–100.
const likertScale = 20.0

// ChannelAverage computes the 0–100 average of one channel for one teacher in
// one period, or null when the channel has no data (no instance, no responses,
// or no reconciled assignment ids). Null is never 0: a missing channel simply
// does not exist for scoring purposes.
func (svc *Service) ChannelAverage(ctx context.Context, channel Channel, periodID int, cedula string) (null.Float64, error) {
	if channel == ChannelAuthority {
		vals, err := svc.repo.AuthorityScoreValues(ctx, periodID, cedula)
		if err != nil {
			return null.Float64{}, errors.Wrap(err, "fetching authority scores")
		}
		if len(vals) == 0 {
			return null.Float64{}, nil
		}
		// authority ratings are already on the 0–100 scale
		return null.Float64From(mean(vals)), nil
	}

	inst, err := svc.repo.GetActiveInstance(ctx, channel, periodID)
	if err != nil {
		if errors.Cause(err) == ErrInstanceNotFound {
			return null.Float64{}, nil
		}
		return null.Float64{}, errors.Wrap(err, "fetching instance")
	}

	teacher, err := svc.teacher(ctx, cedula)
	if err != nil {
		return null.Float64{}, err
	}
	if len(teacher.AssignmentIDs) == 0 {
		return null.Float64{}, nil
	}

	vals, err := svc.repo.ResponseValues(ctx, inst.ID, teacher.AssignmentIDs)
	if err != nil {
		return null.Float64{}, errors.Wrap(err, "fetching response values")
	}
	if len(vals) == 0 {
		return null.Float64{}, nil
	}
	return null.Float64From(mean(vals) * likertScale), nil
}

// computeComposite aggregates the four channel averages into one weighted
// score. Only channels with data contribute, and the result is renormalized
// over the weights actually present; a teacher with no populated channel gets
// a null composite, never 0.
func (svc *Service) computeComposite(ctx context.Context, periodID int, cedula string) (CompositeResult, error) {
	res := CompositeResult{
		PeriodID:   periodID,
		Cedula:     cedula,
		PerChannel: make(map[Channel]null.Float64, len(Channels)),
	}

	var weightedSum, weightTotal float64
	for _, channel := range Channels {
		avg, err := svc.ChannelAverage(ctx, channel, periodID, cedula)
		if err != nil {
			return CompositeResult{}, err
		}
		if avg.Valid {
			weightedSum += avg.Float64 * channel.Weight()
			weightTotal += channel.Weight()
			res.PerChannel[channel] = null.Float64From(core.Round2(avg.Float64))
		} else {
			res.PerChannel[channel] = null.Float64{}
		}
	}

	if weightTotal > 0 {
		res.Composite = null.Float64From(core.Round2(weightedSum / weightTotal))
	}
	return res, nil
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

package evaluation

import (
	"context"
	"sort"

	"github.com/hfarfan/evadocente/core"
)

const namePlaceholder = "(sin nombre)"

// TeacherComposite returns the per-channel averages and weighted composite for
// one teacher in one period. Cache-backed; an empty result (all channels null)
// is a legitimate value, not an error.
func (svc *Service) TeacherComposite(ctx context.Context, periodID int, cedula string) (CompositeResult, error) {
	cedula = core.CleanString(cedula)
	if err := core.Validate.Var(cedula, "required,cedula"); err != nil {
		return CompositeResult{}, core.NewValidationError(err, core.FieldError{Field: "cedula", Error: "must be a valid 10-digit cédula"})
	}

	key := core.CacheKey("composite", periodID, cedula)
	if v, ok := svc.dashCache.Get(key); ok {
		return v.(CompositeResult), nil
	}

	if _, err := svc.period(ctx, periodID); err != nil {
		return CompositeResult{}, err
	}
	if _, err := svc.teacher(ctx, cedula); err != nil {
		return CompositeResult{}, err
	}

	res, err := svc.computeComposite(ctx, periodID, cedula)
	if err != nil {
		return CompositeResult{}, err
	}
	svc.dashCache.Set(key, res)
	return res, nil
}

// PeriodParticipation returns the period's completed/expected counts and rates,
// per channel and aggregated. Cache-backed.
func (svc *Service) PeriodParticipation(ctx context.Context, periodID int) (ParticipationReport, error) {
	key := core.CacheKey("participation", periodID)
	if v, ok := svc.dashCache.Get(key); ok {
		return v.(ParticipationReport), nil
	}

	if _, err := svc.period(ctx, periodID); err != nil {
		return ParticipationReport{}, err
	}

	report, err := svc.computeParticipation(ctx, periodID)
	if err != nil {
		return ParticipationReport{}, err
	}
	svc.dashCache.Set(key, report)
	return report, nil
}

// DetailedResults returns one row per teacher of the period, with composites,
// grouped by career then name. Display-name enrichment is optional: a missing
// name degrades to a placeholder and never aborts the aggregate.
func (svc *Service) DetailedResults(ctx context.Context, periodID int) ([]TeacherResult, error) {
	key := core.CacheKey("results", periodID)
	if v, ok := svc.dashCache.Get(key); ok {
		return v.([]TeacherResult), nil
	}

	if _, err := svc.period(ctx, periodID); err != nil {
		return nil, err
	}

	teachers, err := svc.academicRepo.TeachersWithAssignments(ctx, periodID)
	if err != nil {
		return nil, err
	}

	results := make([]TeacherResult, 0, len(teachers))
	for _, teacher := range teachers {
		composite, err := svc.computeComposite(ctx, periodID, teacher.Cedula)
		if err != nil {
			return nil, err
		}
		name := teacher.Name
		if name == "" {
			name = namePlaceholder
		}
		results = append(results, TeacherResult{
			Cedula:          teacher.Cedula,
			Name:            name,
			Career:          teacher.Career,
			CompositeResult: composite,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Career != results[j].Career {
			return results[i].Career < results[j].Career
		}
		return results[i].Name < results[j].Name
	})

	svc.dashCache.Set(key, results)
	return results, nil
}

package evaluation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/hfarfan/evadocente/core"
	"github.com/hfarfan/evadocente/core/academic"
)

var nowFunc = time.Now // mockable

type Service struct {
	repo         Repository
	academicRepo academic.Repository
	mailSvc      core.EmailService
	logger       core.Logger

	dashCache   *core.Cache // dashboard aggregates, short TTL
	lookupCache *core.Cache // slow-changing lookups (teachers, periods), longer TTL
}

func NewService(repo Repository, academicRepo academic.Repository, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		repo:         repo,
		academicRepo: academicRepo,
		mailSvc:      mailSvc,
		logger:       logger,
		dashCache:    core.NewCache(core.Conf.DashboardCacheTTL),
		lookupCache:  core.NewCache(core.Conf.LookupCacheTTL),
	}
}

// CreateInstance opens a new evaluation campaign for (channel, period).
// Fails with a DUPLICATE_INSTANCE conflict carrying the existing instance id if
// one is already active for the pair.
func (svc *Service) CreateInstance(ctx context.Context, ni NewInstance) (Instance, error) {
	if err := ni.Validate(); err != nil {
		return Instance{}, err
	}
	if _, err := svc.period(ctx, ni.PeriodID); err != nil {
		return Instance{}, err
	}
	if err := svc.CanCreateInstance(ctx, ni.Channel, ni.PeriodID); err != nil {
		return Instance{}, err
	}

	now := nowFunc().UTC()
	inst, err := svc.repo.CreateInstance(ctx, Instance{
		Channel:   ni.Channel,
		PeriodID:  ni.PeriodID,
		Status:    InstancePending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		// the unique index is the final arbiter; a concurrent create lands here
		if errors.Cause(err) == ErrInstanceExists {
			return Instance{}, svc.duplicateInstanceConflict(ctx, ni.Channel, ni.PeriodID)
		}
		return Instance{}, errors.Wrap(err, "creating instance")
	}
	return inst, nil
}

// CreateAssignment declares a peer-evaluation grant for the period.
func (svc *Service) CreateAssignment(ctx context.Context, na NewAssignment) (PeerAssignment, error) {
	if err := na.Validate(); err != nil {
		return PeerAssignment{}, err
	}
	if _, err := svc.period(ctx, na.PeriodID); err != nil {
		return PeerAssignment{}, err
	}
	if err := svc.CanCreateAssignment(ctx, na); err != nil {
		return PeerAssignment{}, err
	}

	pa, err := svc.repo.CreateAssignment(ctx, PeerAssignment{
		PeriodID:      na.PeriodID,
		EvaluatorID:   na.EvaluatorID,
		EvaluatedID:   na.EvaluatedID,
		SubjectID:     na.SubjectID,
		EffectiveDate: na.EffectiveDate,
		StartsAt:      na.StartsAt,
		EndsAt:        na.EndsAt,
		CreatedAt:     nowFunc().UTC(),
	})
	if err != nil {
		if errors.Cause(err) == ErrAssignmentExists {
			return PeerAssignment{}, svc.duplicateAssignmentConflict(ctx, na)
		}
		return PeerAssignment{}, errors.Wrap(err, "creating assignment")
	}
	return pa, nil
}

// SubmitResponses persists one evaluator's answer set for one evaluated
// subject. A second submission for the same (instance, evaluator, subject key)
// tuple fails with ALREADY_EVALUATED unless Replace is set, in which case the
// existing group is replaced; exactly one group exists for the tuple afterwards.
func (svc *Service) SubmitResponses(ctx context.Context, sr SubmitResponses) (ResponseGroup, error) {
	if err := sr.Validate(); err != nil {
		return ResponseGroup{}, err
	}
	if _, err := svc.repo.GetInstance(ctx, sr.InstanceID); err != nil {
		return ResponseGroup{}, err
	}
	if !sr.Replace {
		if err := svc.CanSubmitResponses(ctx, sr.InstanceID, sr.EvaluatorID, sr.SubjectKey); err != nil {
			return ResponseGroup{}, err
		}
	}

	records := make([]ResponseRecord, 0, len(sr.Responses))
	for _, r := range sr.Responses {
		records = append(records, ResponseRecord{QuestionID: r.QuestionID, Value: r.Value})
	}
	group, err := svc.repo.UpsertResponseGroup(ctx, ResponseGroup{
		ID:           uuid.New(),
		InstanceID:   sr.InstanceID,
		EvaluatorID:  sr.EvaluatorID,
		SubjectKey:   sr.SubjectKey,
		AssignmentID: sr.AssignmentID,
		Done:         true,
		SubmittedAt:  nowFunc().UTC(),
		Responses:    records,
	})
	if err != nil {
		if errors.Cause(err) == ErrGroupExists {
			return ResponseGroup{}, core.NewConflictError(core.ConflictAlreadyEvaluated, ErrGroupExists)
		}
		return ResponseGroup{}, errors.Wrap(err, "persisting responses")
	}
	return group, nil
}

// FinalizeInstance marks an instance completed once its response batch has
// been persisted. The reverse transition never happens here; supersession is
// an external admin operation.
func (svc *Service) FinalizeInstance(ctx context.Context, id int) (Instance, error) {
	inst, err := svc.repo.FinalizeInstance(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrInstanceNotFound {
			return Instance{}, err
		}
		return Instance{}, errors.Wrap(err, "finalizing instance")
	}
	return inst, nil
}

// SetAuthorityScore records an authority's 0–100 rating for a teacher,
// replacing (soft-deleting) any prior active row for the same
// (period, teacher, authority).
func (svc *Service) SetAuthorityScore(ctx context.Context, ns NewAuthorityScore) (AuthorityScore, error) {
	if err := ns.Validate(); err != nil {
		return AuthorityScore{}, err
	}
	if _, err := svc.period(ctx, ns.PeriodID); err != nil {
		return AuthorityScore{}, err
	}
	if _, err := svc.teacher(ctx, ns.Cedula); err != nil {
		return AuthorityScore{}, err
	}

	score, err := svc.repo.UpsertAuthorityScore(ctx, AuthorityScore{
		PeriodID:    ns.PeriodID,
		Cedula:      ns.Cedula,
		AuthorityID: ns.AuthorityID,
		Score:       ns.Score,
		CreatedAt:   nowFunc().UTC(),
	})
	if err != nil {
		return AuthorityScore{}, errors.Wrap(err, "saving authority score")
	}
	return score, nil
}

// period resolves a period through the lookup cache.
func (svc *Service) period(ctx context.Context, id int) (academic.Period, error) {
	key := core.CacheKey("period", id)
	if v, ok := svc.lookupCache.Get(key); ok {
		return v.(academic.Period), nil
	}
	period, err := svc.academicRepo.GetPeriod(ctx, id)
	if err != nil {
		if errors.Cause(err) == academic.ErrPeriodNotFound {
			return academic.Period{}, err
		}
		return academic.Period{}, errors.Wrap(err, "fetching period")
	}
	svc.lookupCache.Set(key, period)
	return period, nil
}

// teacher resolves a teacher (with its unioned internal assignment ids)
// through the lookup cache.
func (svc *Service) teacher(ctx context.Context, cedula string) (academic.Teacher, error) {
	key := core.CacheKey("teacher", cedula)
	if v, ok := svc.lookupCache.Get(key); ok {
		return v.(academic.Teacher), nil
	}
	teacher, err := svc.academicRepo.GetTeacherByCedula(ctx, cedula)
	if err != nil {
		if errors.Cause(err) == academic.ErrTeacherNotFound {
			return academic.Teacher{}, err
		}
		return academic.Teacher{}, errors.Wrap(err, "fetching teacher")
	}
	svc.lookupCache.Set(key, teacher)
	return teacher, nil
}

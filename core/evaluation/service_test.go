package evaluation

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/hfarfan/evadocente/core"
	"github.com/hfarfan/evadocente/core/academic"
)

func foundPeriodFn(_ context.Context, id int) (academic.Period, error) {
	return academic.Period{ID: id, Name: "2024-1", Active: true}, nil
}

func TestCreateInstance(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending instance", func(t *testing.T) {
		repo := &repoStub{
			getActiveInstanceFn: notFoundInstanceFn,
			createInstanceFn: func(_ context.Context, inst Instance) (Instance, error) {
				inst.ID = 1
				return inst, nil
			},
		}
		svc, _ := newStubService(repo, &academicStub{getPeriodFn: foundPeriodFn})

		inst, err := svc.CreateInstance(ctx, NewInstance{Channel: ChannelSelf, PeriodID: 1})
		if err != nil {
			t.Fatalf("CreateInstance() error = %v", err)
		}
		if inst.ID != 1 || inst.Status != InstancePending {
			t.Errorf("CreateInstance() = %+v, want id 1 and pending status", inst)
		}
	})

	t.Run("unknown period", func(t *testing.T) {
		academicRepo := &academicStub{
			getPeriodFn: func(context.Context, int) (academic.Period, error) {
				return academic.Period{}, academic.ErrPeriodNotFound
			},
		}
		svc, _ := newStubService(&repoStub{}, academicRepo)

		_, err := svc.CreateInstance(ctx, NewInstance{Channel: ChannelSelf, PeriodID: 404})
		if errors.Cause(err) != academic.ErrPeriodNotFound {
			t.Errorf("CreateInstance() error = %v, want ErrPeriodNotFound", err)
		}
	})

	t.Run("invalid channel", func(t *testing.T) {
		svc, _ := newStubService(&repoStub{}, &academicStub{})

		_, err := svc.CreateInstance(ctx, NewInstance{Channel: "gossip", PeriodID: 1})
		if err == nil {
			t.Error("CreateInstance() error = nil, want validation error")
		}
	})

	t.Run("concurrent create loses to the unique index", func(t *testing.T) {
		// the pre-check passes but the insert hits the index; the conflict must
		// still carry the winning instance's id
		var checked bool
		repo := &repoStub{
			getActiveInstanceFn: func(context.Context, Channel, int) (Instance, error) {
				if !checked {
					checked = true
					return Instance{}, ErrInstanceNotFound
				}
				return Instance{ID: 7}, nil
			},
			createInstanceFn: func(context.Context, Instance) (Instance, error) {
				return Instance{}, ErrInstanceExists
			},
		}
		svc, _ := newStubService(repo, &academicStub{getPeriodFn: foundPeriodFn})

		_, err := svc.CreateInstance(ctx, NewInstance{Channel: ChannelSelf, PeriodID: 1})
		if !core.IsConflict(err, core.ConflictDuplicateInstance) {
			t.Fatalf("CreateInstance() error = %v, want DUPLICATE_INSTANCE conflict", err)
		}
		if cErr := err.(*core.ConflictError); cErr.ExistingID != 7 {
			t.Errorf("ExistingID = %d, want 7", cErr.ExistingID)
		}
	})
}

func TestSubmitResponses(t *testing.T) {
	ctx := context.Background()

	foundInstanceFn := func(_ context.Context, id int) (Instance, error) {
		return Instance{ID: id, Channel: ChannelSelf, PeriodID: 1}, nil
	}
	responses := []ResponseInput{{QuestionID: 1, Value: 4}, {QuestionID: 2, Value: 5}}

	t.Run("persists a completed group", func(t *testing.T) {
		var saved ResponseGroup
		repo := &repoStub{
			getInstanceFn: foundInstanceFn,
			getResponseGroupFn: func(context.Context, int, int, string) (ResponseGroup, error) {
				return ResponseGroup{}, ErrGroupNotFound
			},
			upsertResponseGroupFn: func(_ context.Context, group ResponseGroup) (ResponseGroup, error) {
				saved = group
				return group, nil
			},
		}
		svc, _ := newStubService(repo, &academicStub{})

		group, err := svc.SubmitResponses(ctx, SubmitResponses{
			InstanceID:   1,
			EvaluatorID:  10,
			AssignmentID: 33,
			Responses:    responses,
		})
		if err != nil {
			t.Fatalf("SubmitResponses() error = %v", err)
		}
		if !group.Done {
			t.Error("group.Done = false, want true")
		}
		// the subject key defaults to the evaluated assignment id
		if saved.SubjectKey != "33" {
			t.Errorf("SubjectKey = %q, want %q", saved.SubjectKey, "33")
		}
		if len(saved.Responses) != 2 {
			t.Errorf("len(Responses) = %d, want 2", len(saved.Responses))
		}
	})

	t.Run("second submission is rejected", func(t *testing.T) {
		repo := &repoStub{
			getInstanceFn: foundInstanceFn,
			getResponseGroupFn: func(context.Context, int, int, string) (ResponseGroup, error) {
				return ResponseGroup{}, nil
			},
		}
		svc, _ := newStubService(repo, &academicStub{})

		_, err := svc.SubmitResponses(ctx, SubmitResponses{
			InstanceID:   1,
			EvaluatorID:  10,
			AssignmentID: 33,
			Responses:    responses,
		})
		if !core.IsConflict(err, core.ConflictAlreadyEvaluated) {
			t.Errorf("SubmitResponses() error = %v, want ALREADY_EVALUATED conflict", err)
		}
	})

	t.Run("replace skips the duplicate check", func(t *testing.T) {
		var replaced bool
		repo := &repoStub{
			getInstanceFn: foundInstanceFn,
			upsertResponseGroupFn: func(_ context.Context, group ResponseGroup) (ResponseGroup, error) {
				replaced = true
				return group, nil
			},
		}
		svc, _ := newStubService(repo, &academicStub{})

		_, err := svc.SubmitResponses(ctx, SubmitResponses{
			InstanceID:   1,
			EvaluatorID:  10,
			AssignmentID: 33,
			Replace:      true,
			Responses:    responses,
		})
		if err != nil {
			t.Fatalf("SubmitResponses() error = %v", err)
		}
		if !replaced {
			t.Error("UpsertResponseGroup was not called")
		}
	})

	t.Run("unknown instance", func(t *testing.T) {
		repo := &repoStub{
			getInstanceFn: func(context.Context, int) (Instance, error) {
				return Instance{}, ErrInstanceNotFound
			},
		}
		svc, _ := newStubService(repo, &academicStub{})

		_, err := svc.SubmitResponses(ctx, SubmitResponses{
			InstanceID:   404,
			EvaluatorID:  10,
			AssignmentID: 33,
			Responses:    responses,
		})
		if errors.Cause(err) != ErrInstanceNotFound {
			t.Errorf("SubmitResponses() error = %v, want ErrInstanceNotFound", err)
		}
	})

	t.Run("out-of-range value", func(t *testing.T) {
		svc, _ := newStubService(&repoStub{}, &academicStub{})

		_, err := svc.SubmitResponses(ctx, SubmitResponses{
			InstanceID:   1,
			EvaluatorID:  10,
			AssignmentID: 33,
			Responses:    []ResponseInput{{QuestionID: 1, Value: 6}},
		})
		if err == nil {
			t.Error("SubmitResponses() error = nil, want validation error")
		}
	})

	t.Run("empty answer set", func(t *testing.T) {
		svc, _ := newStubService(&repoStub{}, &academicStub{})

		_, err := svc.SubmitResponses(ctx, SubmitResponses{
			InstanceID:   1,
			EvaluatorID:  10,
			AssignmentID: 33,
		})
		if err == nil {
			t.Error("SubmitResponses() error = nil, want validation error")
		}
	})
}

func TestFinalizeInstance(t *testing.T) {
	ctx := context.Background()

	t.Run("marks the instance completed", func(t *testing.T) {
		repo := &repoStub{
			finalizeInstanceFn: func(_ context.Context, id int) (Instance, error) {
				return Instance{ID: id, Status: InstanceCompleted}, nil
			},
		}
		svc, _ := newStubService(repo, &academicStub{})

		inst, err := svc.FinalizeInstance(ctx, 1)
		if err != nil {
			t.Fatalf("FinalizeInstance() error = %v", err)
		}
		if inst.Status != InstanceCompleted {
			t.Errorf("Status = %s, want %s", inst.Status, InstanceCompleted)
		}
	})

	t.Run("unknown instance", func(t *testing.T) {
		repo := &repoStub{
			finalizeInstanceFn: func(context.Context, int) (Instance, error) {
				return Instance{}, ErrInstanceNotFound
			},
		}
		svc, _ := newStubService(repo, &academicStub{})

		if _, err := svc.FinalizeInstance(ctx, 404); errors.Cause(err) != ErrInstanceNotFound {
			t.Errorf("FinalizeInstance() error = %v, want ErrInstanceNotFound", err)
		}
	})
}

func TestSetAuthorityScore(t *testing.T) {
	ctx := context.Background()

	foundTeacherFn := func(_ context.Context, cedula string) (academic.Teacher, error) {
		return academic.Teacher{Cedula: cedula}, nil
	}

	t.Run("saves the rating", func(t *testing.T) {
		fixedNow := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
		nowFunc = func() time.Time { return fixedNow }
		defer func() { nowFunc = time.Now }()

		var saved AuthorityScore
		repo := &repoStub{
			upsertAuthorityFn: func(_ context.Context, score AuthorityScore) (AuthorityScore, error) {
				saved = score
				score.ID = 1
				return score, nil
			},
		}
		academicRepo := &academicStub{getPeriodFn: foundPeriodFn, getTeacherByCedulaFn: foundTeacherFn}
		svc, _ := newStubService(repo, academicRepo)

		score, err := svc.SetAuthorityScore(ctx, NewAuthorityScore{
			PeriodID:    1,
			Cedula:      "0102030405",
			AuthorityID: 3,
			Score:       85.5,
		})
		if err != nil {
			t.Fatalf("SetAuthorityScore() error = %v", err)
		}
		if score.ID != 1 || saved.Score != 85.5 {
			t.Errorf("SetAuthorityScore() = %+v, want id 1 and score 85.5", score)
		}
		if !saved.CreatedAt.Equal(fixedNow) {
			t.Errorf("CreatedAt = %v, want %v", saved.CreatedAt, fixedNow)
		}
	})

	t.Run("score above 100", func(t *testing.T) {
		svc, _ := newStubService(&repoStub{}, &academicStub{})

		_, err := svc.SetAuthorityScore(ctx, NewAuthorityScore{
			PeriodID:    1,
			Cedula:      "0102030405",
			AuthorityID: 3,
			Score:       101,
		})
		if err == nil {
			t.Error("SetAuthorityScore() error = nil, want validation error")
		}
	})

	t.Run("malformed cedula", func(t *testing.T) {
		svc, _ := newStubService(&repoStub{}, &academicStub{})

		_, err := svc.SetAuthorityScore(ctx, NewAuthorityScore{
			PeriodID:    1,
			Cedula:      "not-a-cedula",
			AuthorityID: 3,
			Score:       80,
		})
		if err == nil {
			t.Error("SetAuthorityScore() error = nil, want validation error")
		}
	})

	t.Run("unknown teacher", func(t *testing.T) {
		academicRepo := &academicStub{
			getPeriodFn: foundPeriodFn,
			getTeacherByCedulaFn: func(context.Context, string) (academic.Teacher, error) {
				return academic.Teacher{}, academic.ErrTeacherNotFound
			},
		}
		svc, _ := newStubService(&repoStub{}, academicRepo)

		_, err := svc.SetAuthorityScore(ctx, NewAuthorityScore{
			PeriodID:    1,
			Cedula:      "0102030405",
			AuthorityID: 3,
			Score:       80,
		})
		if errors.Cause(err) != academic.ErrTeacherNotFound {
			t.Errorf("SetAuthorityScore() error = %v, want ErrTeacherNotFound", err)
		}
	})
}

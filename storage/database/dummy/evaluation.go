package dummydb

import (
	"context"
	"fmt"

	"github.com/volatiletech/null/v8"

	"github.com/hfarfan/evadocente/core/evaluation"
)

type evaluationRepository struct {
	db *evaluationTables
}

var _ evaluation.Repository = (*evaluationRepository)(nil) // interface compliance check

func NewEvaluationRepository(db *DB) evaluation.Repository {
	return &evaluationRepository{db: db.evaluation}
}

func groupKey(instanceID, evaluatorID int, subjectKey string) string {
	return fmt.Sprintf("%d:%d:%s", instanceID, evaluatorID, subjectKey)
}

func (repo *evaluationRepository) CreateInstance(_ context.Context, inst evaluation.Instance) (evaluation.Instance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.instances {
		if existing.Channel == inst.Channel && existing.PeriodID == inst.PeriodID && !existing.Deleted {
			return evaluation.Instance{}, evaluation.ErrInstanceExists
		}
	}
	repo.db.instancePK++
	inst.ID = repo.db.instancePK
	repo.db.instances[inst.ID] = &inst
	return inst, nil
}

func (repo *evaluationRepository) GetInstance(_ context.Context, id int) (evaluation.Instance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if inst, ok := repo.db.instances[id]; ok && !inst.Deleted {
		return *inst, nil
	}
	return evaluation.Instance{}, evaluation.ErrInstanceNotFound
}

func (repo *evaluationRepository) GetActiveInstance(_ context.Context, channel evaluation.Channel, periodID int) (evaluation.Instance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, inst := range repo.db.instances {
		if inst.Channel == channel && inst.PeriodID == periodID && !inst.Deleted {
			return *inst, nil
		}
	}
	return evaluation.Instance{}, evaluation.ErrInstanceNotFound
}

func (repo *evaluationRepository) FinalizeInstance(_ context.Context, id int) (evaluation.Instance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	inst, ok := repo.db.instances[id]
	if !ok || inst.Deleted {
		return evaluation.Instance{}, evaluation.ErrInstanceNotFound
	}
	inst.Status = evaluation.InstanceCompleted
	return *inst, nil
}

func (repo *evaluationRepository) CreateAssignment(_ context.Context, pa evaluation.PeerAssignment) (evaluation.PeerAssignment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.assignments {
		if existing.PeriodID == pa.PeriodID &&
			existing.EvaluatorID == pa.EvaluatorID &&
			existing.EvaluatedID == pa.EvaluatedID &&
			sameSubject(existing.SubjectID, pa.SubjectID) {
			return evaluation.PeerAssignment{}, evaluation.ErrAssignmentExists
		}
	}
	repo.db.assignmentPK++
	pa.ID = repo.db.assignmentPK
	repo.db.assignments[pa.ID] = &pa
	return pa, nil
}

func (repo *evaluationRepository) GetAssignment(_ context.Context, periodID, evaluatorID, evaluatedID int, subjectID null.Int) (evaluation.PeerAssignment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, pa := range repo.db.assignments {
		if pa.PeriodID == periodID &&
			pa.EvaluatorID == evaluatorID &&
			pa.EvaluatedID == evaluatedID &&
			sameSubject(pa.SubjectID, subjectID) {
			return *pa, nil
		}
	}
	return evaluation.PeerAssignment{}, evaluation.ErrAssignmentNotFound
}

func (repo *evaluationRepository) CountAssignments(_ context.Context, periodID int) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, pa := range repo.db.assignments {
		if pa.PeriodID == periodID {
			count++
		}
	}
	return count, nil
}

func (repo *evaluationRepository) GetResponseGroup(_ context.Context, instanceID, evaluatorID int, subjectKey string) (evaluation.ResponseGroup, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if group, ok := repo.db.groups[groupKey(instanceID, evaluatorID, subjectKey)]; ok {
		return *group, nil
	}
	return evaluation.ResponseGroup{}, evaluation.ErrGroupNotFound
}

func (repo *evaluationRepository) UpsertResponseGroup(_ context.Context, group evaluation.ResponseGroup) (evaluation.ResponseGroup, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.groups[groupKey(group.InstanceID, group.EvaluatorID, group.SubjectKey)] = &group
	return group, nil
}

func (repo *evaluationRepository) CompletedGroupCount(_ context.Context, instanceID int) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, group := range repo.db.groups {
		if group.InstanceID == instanceID && group.Done {
			count++
		}
	}
	return count, nil
}

func (repo *evaluationRepository) ResponseValues(_ context.Context, instanceID int, assignmentIDs []int) ([]float64, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ids := make(map[int]bool, len(assignmentIDs))
	for _, id := range assignmentIDs {
		ids[id] = true
	}

	var values []float64
	for _, group := range repo.db.groups {
		if group.InstanceID != instanceID || !group.Done || !ids[group.AssignmentID] {
			continue
		}
		for _, rec := range group.Responses {
			values = append(values, rec.Value)
		}
	}
	return values, nil
}

func (repo *evaluationRepository) UpsertAuthorityScore(_ context.Context, score evaluation.AuthorityScore) (evaluation.AuthorityScore, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.authorityScores {
		if existing.PeriodID == score.PeriodID &&
			existing.Cedula == score.Cedula &&
			existing.AuthorityID == score.AuthorityID {
			existing.Deleted = true
		}
	}
	repo.db.scorePK++
	score.ID = repo.db.scorePK
	repo.db.authorityScores = append(repo.db.authorityScores, &score)
	return score, nil
}

func (repo *evaluationRepository) AuthorityScoreValues(_ context.Context, periodID int, cedula string) ([]float64, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var values []float64
	for _, score := range repo.db.authorityScores {
		if score.PeriodID == periodID && score.Cedula == cedula && !score.Deleted {
			values = append(values, score.Score)
		}
	}
	return values, nil
}

func sameSubject(a, b null.Int) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Int == b.Int
}

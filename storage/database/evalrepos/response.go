package evalrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/hfarfan/evadocente/core/evaluation"
)

type groupRow struct {
	ID           uuid.UUID `db:"id"`
	InstanceID   int       `db:"instance_id"`
	EvaluatorID  int       `db:"evaluator_id"`
	SubjectKey   string    `db:"subject_key"`
	AssignmentID int       `db:"assignment_id"`
	Done         bool      `db:"done"`
	SubmittedAt  time.Time `db:"submitted_at"`
}

type recordRow struct {
	ID         int       `db:"id"`
	GroupID    uuid.UUID `db:"group_id"`
	QuestionID int       `db:"question_id"`
	Value      float64   `db:"value"`
}

func (repo *Repository) GetResponseGroup(ctx context.Context, instanceID, evaluatorID int, subjectKey string) (evaluation.ResponseGroup, error) {
	const query = `
		SELECT * FROM response_group
		WHERE instance_id = $1 AND evaluator_id = $2 AND subject_key = $3`

	var row groupRow
	if err := repo.db.GetContext(ctx, &row, query, instanceID, evaluatorID, subjectKey); err != nil {
		return evaluation.ResponseGroup{}, trapNoRowsErr(err, evaluation.ErrGroupNotFound, "fetching response group")
	}

	const recQuery = `SELECT * FROM response_record WHERE group_id = $1 ORDER BY question_id`
	var recs []recordRow
	if err := repo.db.SelectContext(ctx, &recs, recQuery, row.ID); err != nil {
		return evaluation.ResponseGroup{}, errors.Wrap(err, "fetching response records")
	}

	group := evaluation.ResponseGroup{
		ID:           row.ID,
		InstanceID:   row.InstanceID,
		EvaluatorID:  row.EvaluatorID,
		SubjectKey:   row.SubjectKey,
		AssignmentID: row.AssignmentID,
		Done:         row.Done,
		SubmittedAt:  row.SubmittedAt,
		Responses:    make([]evaluation.ResponseRecord, 0, len(recs)),
	}
	for _, rec := range recs {
		group.Responses = append(group.Responses, evaluation.ResponseRecord{
			ID:         rec.ID,
			QuestionID: rec.QuestionID,
			Value:      rec.Value,
		})
	}
	return group, nil
}

// UpsertResponseGroup replaces the whole group for its
// (instance, evaluator, subject key) tuple in one transaction. The unique
// index on the tuple turns a concurrent duplicate insert into ErrGroupExists.
func (repo *Repository) UpsertResponseGroup(ctx context.Context, group evaluation.ResponseGroup) (evaluation.ResponseGroup, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return evaluation.ResponseGroup{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	const delQuery = `
		DELETE FROM response_group
		WHERE instance_id = $1 AND evaluator_id = $2 AND subject_key = $3`
	if _, err = tx.ExecContext(ctx, delQuery, group.InstanceID, group.EvaluatorID, group.SubjectKey); err != nil {
		return evaluation.ResponseGroup{}, errors.Wrap(err, "deleting prior response group")
	}

	const insQuery = `
		INSERT INTO response_group
			(id, instance_id, evaluator_id, subject_key, assignment_id, done, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = tx.ExecContext(
		ctx, insQuery,
		group.ID, group.InstanceID, group.EvaluatorID, group.SubjectKey,
		group.AssignmentID, group.Done, group.SubmittedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return evaluation.ResponseGroup{}, evaluation.ErrGroupExists
		}
		return evaluation.ResponseGroup{}, errors.Wrap(err, "inserting response group")
	}

	const recQuery = `INSERT INTO response_record (group_id, question_id, value) VALUES ($1, $2, $3)`
	for _, rec := range group.Responses {
		if _, err = tx.ExecContext(ctx, recQuery, group.ID, rec.QuestionID, rec.Value); err != nil {
			return evaluation.ResponseGroup{}, errors.Wrap(err, "inserting response record")
		}
	}

	if err = tx.Commit(); err != nil {
		return evaluation.ResponseGroup{}, errors.Wrap(err, "committing response group")
	}
	return group, nil
}

func (repo *Repository) CompletedGroupCount(ctx context.Context, instanceID int) (int, error) {
	const query = `SELECT COUNT(*) FROM response_group WHERE instance_id = $1 AND done`

	var count int
	if err := repo.db.GetContext(ctx, &count, query, instanceID); err != nil {
		return 0, errors.Wrap(err, "counting completed groups")
	}
	return count, nil
}

func (repo *Repository) ResponseValues(ctx context.Context, instanceID int, assignmentIDs []int) ([]float64, error) {
	if len(assignmentIDs) == 0 {
		return nil, nil
	}

	const query = `
		SELECT r.value
		FROM response_record r
		JOIN response_group g ON g.id = r.group_id
		WHERE g.instance_id = $1 AND g.done AND g.assignment_id = ANY($2)`

	var values []float64
	if err := repo.db.SelectContext(ctx, &values, query, instanceID, pq.Array(assignmentIDs)); err != nil {
		return nil, errors.Wrap(err, "fetching response values")
	}
	return values, nil
}

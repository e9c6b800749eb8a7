package evalrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/hfarfan/evadocente/core/evaluation"
)

type assignmentRow struct {
	ID            int       `db:"id"`
	PeriodID      int       `db:"period_id"`
	EvaluatorID   int       `db:"evaluator_id"`
	EvaluatedID   int       `db:"evaluated_id"`
	SubjectID     null.Int  `db:"subject_id"`
	EffectiveDate time.Time `db:"effective_date"`
	StartsAt      null.Time `db:"starts_at"`
	EndsAt        null.Time `db:"ends_at"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r assignmentRow) toDomain() evaluation.PeerAssignment {
	return evaluation.PeerAssignment{
		ID:            r.ID,
		PeriodID:      r.PeriodID,
		EvaluatorID:   r.EvaluatorID,
		EvaluatedID:   r.EvaluatedID,
		SubjectID:     r.SubjectID,
		EffectiveDate: r.EffectiveDate,
		StartsAt:      r.StartsAt,
		EndsAt:        r.EndsAt,
		CreatedAt:     r.CreatedAt,
	}
}

func (repo *Repository) CreateAssignment(ctx context.Context, pa evaluation.PeerAssignment) (evaluation.PeerAssignment, error) {
	const query = `
		INSERT INTO peer_assignment
			(period_id, evaluator_id, evaluated_id, subject_id, effective_date, starts_at, ends_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := repo.db.QueryRowContext(
		ctx, query,
		pa.PeriodID, pa.EvaluatorID, pa.EvaluatedID, pa.SubjectID,
		pa.EffectiveDate, pa.StartsAt, pa.EndsAt, pa.CreatedAt,
	).Scan(&pa.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return evaluation.PeerAssignment{}, evaluation.ErrAssignmentExists
		}
		return evaluation.PeerAssignment{}, errors.Wrap(err, "inserting assignment")
	}
	return pa, nil
}

func (repo *Repository) GetAssignment(ctx context.Context, periodID, evaluatorID, evaluatedID int, subjectID null.Int) (evaluation.PeerAssignment, error) {
	const query = `
		SELECT * FROM peer_assignment
		WHERE period_id = $1 AND evaluator_id = $2 AND evaluated_id = $3
		  AND COALESCE(subject_id, -1) = COALESCE($4, -1)`

	var row assignmentRow
	if err := repo.db.GetContext(ctx, &row, query, periodID, evaluatorID, evaluatedID, subjectID); err != nil {
		return evaluation.PeerAssignment{}, trapNoRowsErr(err, evaluation.ErrAssignmentNotFound, "fetching assignment")
	}
	return row.toDomain(), nil
}

func (repo *Repository) CountAssignments(ctx context.Context, periodID int) (int, error) {
	const query = `SELECT COUNT(*) FROM peer_assignment WHERE period_id = $1`

	var count int
	if err := repo.db.GetContext(ctx, &count, query, periodID); err != nil {
		return 0, errors.Wrap(err, "counting assignments")
	}
	return count, nil
}

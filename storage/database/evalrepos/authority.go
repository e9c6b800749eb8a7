package evalrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hfarfan/evadocente/core/evaluation"
)

// UpsertAuthorityScore soft-deletes any active row for the same
// (period, teacher, authority) and inserts the new one, in one transaction.
func (repo *Repository) UpsertAuthorityScore(ctx context.Context, score evaluation.AuthorityScore) (evaluation.AuthorityScore, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return evaluation.AuthorityScore{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	const delQuery = `
		UPDATE authority_score
		SET deleted = true
		WHERE period_id = $1 AND cedula = $2 AND authority_id = $3 AND NOT deleted`
	if _, err = tx.ExecContext(ctx, delQuery, score.PeriodID, score.Cedula, score.AuthorityID); err != nil {
		return evaluation.AuthorityScore{}, errors.Wrap(err, "soft-deleting prior authority score")
	}

	const insQuery = `
		INSERT INTO authority_score (period_id, cedula, authority_id, score, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err = tx.QueryRowContext(
		ctx, insQuery,
		score.PeriodID, score.Cedula, score.AuthorityID, score.Score, score.CreatedAt,
	).Scan(&score.ID)
	if err != nil {
		return evaluation.AuthorityScore{}, errors.Wrap(err, "inserting authority score")
	}

	if err = tx.Commit(); err != nil {
		return evaluation.AuthorityScore{}, errors.Wrap(err, "committing authority score")
	}
	return score, nil
}

func (repo *Repository) AuthorityScoreValues(ctx context.Context, periodID int, cedula string) ([]float64, error) {
	const query = `
		SELECT score FROM authority_score
		WHERE period_id = $1 AND cedula = $2 AND NOT deleted`

	var values []float64
	if err := repo.db.SelectContext(ctx, &values, query, periodID, cedula); err != nil {
		return nil, errors.Wrap(err, "fetching authority scores")
	}
	return values, nil
}

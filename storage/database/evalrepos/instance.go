package evalrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/hfarfan/evadocente/core/evaluation"
)

type instanceRow struct {
	ID        int       `db:"id"`
	Channel   string    `db:"channel"`
	PeriodID  int       `db:"period_id"`
	Status    string    `db:"status"`
	Deleted   bool      `db:"deleted"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r instanceRow) toDomain() evaluation.Instance {
	return evaluation.Instance{
		ID:        r.ID,
		Channel:   evaluation.Channel(r.Channel),
		PeriodID:  r.PeriodID,
		Status:    evaluation.InstanceStatus(r.Status),
		Deleted:   r.Deleted,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (repo *Repository) CreateInstance(ctx context.Context, inst evaluation.Instance) (evaluation.Instance, error) {
	const query = `
		INSERT INTO evaluation_instance (channel, period_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := repo.db.QueryRowContext(
		ctx, query,
		string(inst.Channel), inst.PeriodID, string(inst.Status), inst.CreatedAt, inst.UpdatedAt,
	).Scan(&inst.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return evaluation.Instance{}, evaluation.ErrInstanceExists
		}
		return evaluation.Instance{}, errors.Wrap(err, "inserting instance")
	}
	return inst, nil
}

func (repo *Repository) GetInstance(ctx context.Context, id int) (evaluation.Instance, error) {
	const query = `SELECT * FROM evaluation_instance WHERE id = $1 AND NOT deleted`

	var row instanceRow
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return evaluation.Instance{}, trapNoRowsErr(err, evaluation.ErrInstanceNotFound, "fetching instance")
	}
	return row.toDomain(), nil
}

func (repo *Repository) GetActiveInstance(ctx context.Context, channel evaluation.Channel, periodID int) (evaluation.Instance, error) {
	const query = `SELECT * FROM evaluation_instance WHERE channel = $1 AND period_id = $2 AND NOT deleted`

	var row instanceRow
	if err := repo.db.GetContext(ctx, &row, query, string(channel), periodID); err != nil {
		return evaluation.Instance{}, trapNoRowsErr(err, evaluation.ErrInstanceNotFound, "fetching active instance")
	}
	return row.toDomain(), nil
}

func (repo *Repository) FinalizeInstance(ctx context.Context, id int) (evaluation.Instance, error) {
	const query = `
		UPDATE evaluation_instance
		SET status = $2, updated_at = now()
		WHERE id = $1 AND NOT deleted
		RETURNING id, channel, period_id, status, deleted, created_at, updated_at`

	var row instanceRow
	err := repo.db.GetContext(ctx, &row, query, id, string(evaluation.InstanceCompleted))
	if err != nil {
		return evaluation.Instance{}, trapNoRowsErr(err, evaluation.ErrInstanceNotFound, "finalizing instance")
	}
	return row.toDomain(), nil
}

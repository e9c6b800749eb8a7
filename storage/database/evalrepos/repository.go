package evalrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/hfarfan/evadocente/core/evaluation"
)

// Repository is the sqlx implementation of evaluation.Repository against the
// evaluation store. The unique indexes created by the migrations are the final
// arbiter for every uniqueness invariant; unique violations are mapped back to
// the domain's sentinel errors.
type Repository struct {
	db *sqlx.DB
}

var _ evaluation.Repository = (*Repository)(nil) // interface compliance check

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// trapNoRowsErr maps psql "no rows" to the given sentinel.
func trapNoRowsErr(err error, sentinel error, msg string) error {
	if err == sql.ErrNoRows {
		return sentinel
	}
	return errors.Wrap(err, msg)
}

// isUniqueViolation reports whether err is a postgres unique-constraint violation.
func isUniqueViolation(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == "23505"
}

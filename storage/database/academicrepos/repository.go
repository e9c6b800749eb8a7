package academicrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/hfarfan/evadocente/core/academic"
)

// Repository is the sqlx implementation of academic.Repository against the
// institutional record store. The schema is a historical artifact of two
// merged systems and keeps its original mixed-case table names; every query
// here quotes them. Strictly read-only.
type Repository struct {
	db *sqlx.DB
}

var _ academic.Repository = (*Repository)(nil) // interface compliance check

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

type periodRow struct {
	ID     int    `db:"id_periodo"`
	Name   string `db:"nombre"`
	Active bool   `db:"activo"`
}

type teacherRow struct {
	Cedula string         `db:"cedula"`
	Name   sql.NullString `db:"nombres"`
	Email  sql.NullString `db:"correo"`
	Career sql.NullString `db:"carrera"`
}

func (r teacherRow) toDomain() academic.Teacher {
	return academic.Teacher{
		Cedula: r.Cedula,
		Name:   r.Name.String,
		Email:  r.Email.String,
		Career: r.Career.String,
	}
}

func (repo *Repository) GetPeriod(ctx context.Context, id int) (academic.Period, error) {
	const query = `SELECT id_periodo, nombre, activo FROM "Periodo" WHERE id_periodo = $1`

	var row periodRow
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return academic.Period{}, academic.ErrPeriodNotFound
		}
		return academic.Period{}, errors.Wrap(err, "fetching period")
	}
	return academic.Period{ID: row.ID, Name: row.Name, Active: row.Active}, nil
}

func (repo *Repository) QueryPeriods(ctx context.Context) ([]academic.Period, error) {
	const query = `SELECT id_periodo, nombre, activo FROM "Periodo" ORDER BY id_periodo`

	var rows []periodRow
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "fetching periods")
	}
	periods := make([]academic.Period, 0, len(rows))
	for _, row := range rows {
		periods = append(periods, academic.Period{ID: row.ID, Name: row.Name, Active: row.Active})
	}
	return periods, nil
}

func (repo *Repository) GetTeacherByCedula(ctx context.Context, cedula string) (academic.Teacher, error) {
	const query = `SELECT cedula, nombres, correo, carrera FROM "Docente" WHERE cedula = $1`

	var row teacherRow
	if err := repo.db.GetContext(ctx, &row, query, cedula); err != nil {
		if err == sql.ErrNoRows {
			return academic.Teacher{}, academic.ErrTeacherNotFound
		}
		return academic.Teacher{}, errors.Wrap(err, "fetching teacher")
	}
	teacher := row.toDomain()

	// union every internal distributivo id recorded for the cédula, across periods
	const idsQuery = `SELECT id_distributivo FROM "Distributivo" WHERE cedula_docente = $1 ORDER BY id_distributivo`
	if err := repo.db.SelectContext(ctx, &teacher.AssignmentIDs, idsQuery, cedula); err != nil {
		return academic.Teacher{}, errors.Wrap(err, "fetching teacher assignment ids")
	}
	return teacher, nil
}

func (repo *Repository) TeachersWithAssignments(ctx context.Context, periodID int) ([]academic.Teacher, error) {
	const query = `
		SELECT d.cedula, d.nombres, d.correo, d.carrera, dv.id_distributivo
		FROM "Docente" d
		JOIN "Distributivo" dv ON dv.cedula_docente = d.cedula
		WHERE dv.id_periodo = $1 AND dv.activo
		ORDER BY d.cedula, dv.id_distributivo`

	type rowWithID struct {
		teacherRow
		AssignmentID int `db:"id_distributivo"`
	}
	var rows []rowWithID
	if err := repo.db.SelectContext(ctx, &rows, query, periodID); err != nil {
		return nil, errors.Wrap(err, "fetching teachers with assignments")
	}

	// fold the one-row-per-distributivo result into one teacher per cédula
	teachers := make([]academic.Teacher, 0, len(rows))
	byCedula := make(map[string]int, len(rows))
	for _, row := range rows {
		idx, ok := byCedula[row.Cedula]
		if !ok {
			teachers = append(teachers, row.toDomain())
			idx = len(teachers) - 1
			byCedula[row.Cedula] = idx
		}
		teachers[idx].AssignmentIDs = append(teachers[idx].AssignmentIDs, row.AssignmentID)
	}
	return teachers, nil
}

func (repo *Repository) AssignmentIDs(ctx context.Context, periodID int, cedula string) ([]int, error) {
	const query = `
		SELECT id_distributivo FROM "Distributivo"
		WHERE id_periodo = $1 AND cedula_docente = $2
		ORDER BY id_distributivo`

	var ids []int
	if err := repo.db.SelectContext(ctx, &ids, query, periodID, cedula); err != nil {
		return nil, errors.Wrap(err, "fetching assignment ids")
	}
	return ids, nil
}

func (repo *Repository) EnrollmentPairCount(ctx context.Context, periodID int) (int, error) {
	// one row per (student, distributivo) pair
	const query = `
		SELECT COUNT(*)
		FROM "Matricula" m
		JOIN "Distributivo" dv ON dv.id_distributivo = m.id_distributivo
		WHERE dv.id_periodo = $1 AND dv.activo`

	var count int
	if err := repo.db.GetContext(ctx, &count, query, periodID); err != nil {
		return 0, errors.Wrap(err, "counting enrollment pairs")
	}
	return count, nil
}

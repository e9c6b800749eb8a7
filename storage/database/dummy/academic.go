package dummydb

import (
	"context"
	"sort"

	"github.com/hfarfan/evadocente/core/academic"
)

type academicRepository struct {
	db *academicTables
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *DB) academic.Repository {
	return &academicRepository{db: db.academic}
}

func (repo *academicRepository) GetPeriod(_ context.Context, id int) (academic.Period, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.periods[id]; ok {
		return *p, nil
	}
	return academic.Period{}, academic.ErrPeriodNotFound
}

func (repo *academicRepository) QueryPeriods(_ context.Context) ([]academic.Period, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	periods := make([]academic.Period, 0, len(repo.db.periods))
	for _, p := range repo.db.periods {
		periods = append(periods, *p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].ID < periods[j].ID })
	return periods, nil
}

func (repo *academicRepository) GetTeacherByCedula(_ context.Context, cedula string) (academic.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.teachers[cedula]; ok {
		return *t, nil
	}
	return academic.Teacher{}, academic.ErrTeacherNotFound
}

func (repo *academicRepository) TeachersWithAssignments(_ context.Context, periodID int) ([]academic.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	cedulas := make(map[string]bool)
	for _, ta := range repo.db.assignments {
		if ta.PeriodID == periodID && ta.Active {
			cedulas[ta.Cedula] = true
		}
	}

	teachers := make([]academic.Teacher, 0, len(cedulas))
	for cedula := range cedulas {
		if t, ok := repo.db.teachers[cedula]; ok {
			teachers = append(teachers, *t)
		}
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].Cedula < teachers[j].Cedula })
	return teachers, nil
}

func (repo *academicRepository) AssignmentIDs(_ context.Context, periodID int, cedula string) ([]int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var ids []int
	for _, ta := range repo.db.assignments {
		if ta.PeriodID == periodID && ta.Cedula == cedula {
			ids = append(ids, ta.ID)
		}
	}
	return ids, nil
}

func (repo *academicRepository) EnrollmentPairCount(_ context.Context, periodID int) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.db.enrollmentPairs[periodID], nil
}

package academic

import (
	"context"
	"errors"
)

var (
	// errors
	ErrTeacherNotFound = errors.New("teacher not found")
	ErrPeriodNotFound  = errors.New("period not found")
)

type (
	// Teacher is one physical person, identified by their cédula.
	// AssignmentIDs holds every internal teaching-assignment ("distributivo") id
	// recorded for that cédula; the same person may appear under several ids
	// across subjects and periods, and all of them must be reconciled before
	// any aggregation.
	Teacher struct {
		Cedula        string `json:"cedula"`
		Name          string `json:"name"`
		Email         string `json:"email"`
		Career        string `json:"career"`
		AssignmentIDs []int  `json:"-"`
	}

	// Period is an academic term. Created externally; immutable once
	// evaluations reference it.
	Period struct {
		ID     int    `json:"id"`
		Name   string `json:"name"`
		Active bool   `json:"active"`
	}

	TeachingAssignment struct {
		ID          int    `json:"id"`
		PeriodID    int    `json:"period_id"`
		Cedula      string `json:"cedula"`
		SubjectID   int    `json:"subject_id"`
		SubjectName string `json:"subject_name"`
		Active      bool   `json:"active"`
	}

	// Repository is the read-only contract against the institutional academic
	// record store. This engine never writes through it.
	Repository interface {
		GetPeriod(ctx context.Context, id int) (Period, error)
		QueryPeriods(ctx context.Context) ([]Period, error)
		// GetTeacherByCedula returns the teacher with every internal
		// teaching-assignment id recorded for that cédula, across periods.
		GetTeacherByCedula(ctx context.Context, cedula string) (Teacher, error)
		// TeachersWithAssignments returns the teachers holding at least one
		// active teaching assignment in the period.
		TeachersWithAssignments(ctx context.Context, periodID int) ([]Teacher, error)
		// AssignmentIDs returns the internal teaching-assignment ids of the
		// period for one cédula.
		AssignmentIDs(ctx context.Context, periodID int, cedula string) ([]int, error)
		// EnrollmentPairCount counts distinct (enrolled student, teaching
		// assignment) pairs in the period.
		EnrollmentPairCount(ctx context.Context, periodID int) (int, error)
	}
)

package dummydb

import (
	"sync"

	"github.com/hfarfan/evadocente/core/academic"
	"github.com/hfarfan/evadocente/core/evaluation"
)

// DB is an in-memory stand-in for both stores, used as a test fake.
type DB struct {
	evaluation *evaluationTables
	academic   *academicTables
}

type evaluationTables struct {
	sync.RWMutex
	instances       map[int]*evaluation.Instance
	assignments     map[int]*evaluation.PeerAssignment
	groups          map[string]*evaluation.ResponseGroup // key: instance:evaluator:subjectKey
	authorityScores []*evaluation.AuthorityScore

	instancePK   int
	assignmentPK int
	scorePK      int
}

type academicTables struct {
	sync.RWMutex
	periods         map[int]*academic.Period
	teachers        map[string]*academic.Teacher
	assignments     []academic.TeachingAssignment
	enrollmentPairs map[int]int // periodID -> (student, assignment) pair count
}

func NewDB() *DB {
	return &DB{
		evaluation: &evaluationTables{
			instances:   make(map[int]*evaluation.Instance),
			assignments: make(map[int]*evaluation.PeerAssignment),
			groups:      make(map[string]*evaluation.ResponseGroup),
		},
		academic: &academicTables{
			periods:         make(map[int]*academic.Period),
			teachers:        make(map[string]*academic.Teacher),
			enrollmentPairs: make(map[int]int),
		},
	}
}

// Seed helpers for the read-only academic side.

func (db *DB) AddPeriod(p academic.Period) {
	db.academic.Lock()
	defer db.academic.Unlock()
	db.academic.periods[p.ID] = &p
}

func (db *DB) AddTeacher(t academic.Teacher) {
	db.academic.Lock()
	defer db.academic.Unlock()
	db.academic.teachers[t.Cedula] = &t
}

func (db *DB) AddTeachingAssignment(ta academic.TeachingAssignment) {
	db.academic.Lock()
	defer db.academic.Unlock()
	db.academic.assignments = append(db.academic.assignments, ta)
	if t, ok := db.academic.teachers[ta.Cedula]; ok {
		t.AssignmentIDs = append(t.AssignmentIDs, ta.ID)
	}
}

func (db *DB) SetEnrollmentPairs(periodID, count int) {
	db.academic.Lock()
	defer db.academic.Unlock()
	db.academic.enrollmentPairs[periodID] = count
}

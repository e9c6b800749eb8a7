package evaluation

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/hfarfan/evadocente/core"
)

var (
	// errors
	ErrInstanceNotFound   = errors.New("evaluation instance not found")
	ErrAssignmentNotFound = errors.New("peer assignment not found")
	ErrGroupNotFound      = errors.New("response group not found")
	ErrInstanceExists     = errors.New("an active instance already exists for this channel and period")
	ErrAssignmentExists   = errors.New("an identical peer assignment already exists for this period")
	ErrGroupExists        = errors.New("this evaluator already evaluated this subject in this instance")
)

// Channel is one of the four evaluation types. Wire names follow the source
// system's ponderation table.
type Channel string

const (
	ChannelSelf      Channel = "autoevaluacion"
	ChannelStudent   Channel = "heteroevaluacion"
	ChannelPeer      Channel = "coevaluacion"
	ChannelAuthority Channel = "autoridades"
)

var (
	Channels = []Channel{ChannelSelf, ChannelStudent, ChannelPeer, ChannelAuthority}

	channelWeights = map[Channel]float64{
		ChannelSelf:      0.10,
		ChannelStudent:   0.40,
		ChannelPeer:      0.30,
		ChannelAuthority: 0.20,
	}
)

func (c Channel) Weight() float64 { return channelWeights[c] }

func (c Channel) Valid() bool {
	_, ok := channelWeights[c]
	return ok
}

type InstanceStatus string

const (
	InstancePending   InstanceStatus = "pending"
	InstanceCompleted InstanceStatus = "completed"
)

// Instance is one running campaign of a channel for one period.
// At most one non-deleted instance exists per (channel, period).
type Instance struct {
	ID        int            `json:"id"`
	Channel   Channel        `json:"channel"`
	PeriodID  int            `json:"period_id"`
	Status    InstanceStatus `json:"status"`
	Deleted   bool           `json:"-"`
	CreatedAt time.Time      `json:"created_at"` // UTC
	UpdatedAt time.Time      `json:"updated_at"` // UTC
}

// ResponseRecord is one evaluator's answer to one question. Immutable once written.
type ResponseRecord struct {
	ID         int     `json:"id"`
	QuestionID int     `json:"question_id"`
	Value      float64 `json:"value"` // 0–5 Likert
}

// ResponseGroup is the completed set of ResponseRecords for one
// (instance, evaluator, subject key) tuple. Unique per tuple; the edit path
// replaces the whole group, never appends a second one.
type ResponseGroup struct {
	ID           uuid.UUID        `json:"id"`
	InstanceID   int              `json:"instance_id"`
	EvaluatorID  int              `json:"evaluator_id"`
	SubjectKey   string           `json:"subject_key"`
	AssignmentID int              `json:"assignment_id"` // evaluated teaching assignment
	Done         bool             `json:"done"`
	SubmittedAt  time.Time        `json:"submitted_at"` // UTC
	Responses    []ResponseRecord `json:"responses"`
}

// PeerAssignment licenses one teacher to evaluate another in a period.
// A null-subject row and a subject-specific row for the same pair are distinct
// eligibility grants.
type PeerAssignment struct {
	ID            int       `json:"id"`
	PeriodID      int       `json:"period_id"`
	EvaluatorID   int       `json:"evaluator_id"`
	EvaluatedID   int       `json:"evaluated_id"`
	SubjectID     null.Int  `json:"subject_id"`
	EffectiveDate time.Time `json:"effective_date"`
	StartsAt      null.Time `json:"starts_at"`
	EndsAt        null.Time `json:"ends_at"`
	CreatedAt     time.Time `json:"created_at"` // UTC
}

// AuthorityScore is a direct 0–100 rating given by an authority to a teacher
// for a period. One active row per (period, teacher, authority); replaced rows
// are soft-deleted.
type AuthorityScore struct {
	ID          int       `json:"id"`
	PeriodID    int       `json:"period_id"`
	Cedula      string    `json:"cedula"`
	AuthorityID int       `json:"authority_id"`
	Score       float64   `json:"score"`
	Deleted     bool      `json:"-"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// CompositeResult is derived, never persisted as source of truth.
// Composite is null iff every channel is null.
type CompositeResult struct {
	PeriodID   int                      `json:"period_id"`
	Cedula     string                   `json:"cedula"`
	PerChannel map[Channel]null.Float64 `json:"per_channel"`
	Composite  null.Float64             `json:"composite"`
}

type ChannelParticipation struct {
	Completed int     `json:"completed"`
	Expected  int     `json:"expected"`
	Rate      float64 `json:"rate"`
}

// ParticipationReport sums completed and expected across channels before
// dividing; channels with expected == 0 are absent from Breakdown.
type ParticipationReport struct {
	PeriodID  int                              `json:"period_id"`
	Completed int                              `json:"completed"`
	Expected  int                              `json:"expected"`
	Rate      float64                          `json:"rate"`
	Breakdown map[Channel]ChannelParticipation `json:"breakdown"`
}

// TeacherResult is one row of the period-level detailed view.
type TeacherResult struct {
	Cedula string `json:"cedula"`
	Name   string `json:"name"`
	Career string `json:"career"`
	CompositeResult
}

// NewInstance contains information needed to open a new evaluation instance.
type NewInstance struct {
	Channel  Channel `json:"channel" validate:"required,oneof=autoevaluacion heteroevaluacion coevaluacion autoridades"`
	PeriodID int     `json:"period_id" validate:"required,min=1"`
}

func (ni *NewInstance) Validate() error { return core.Validate.Struct(ni) }

// NewAssignment contains information needed to declare a peer assignment.
type NewAssignment struct {
	PeriodID      int       `json:"period_id" validate:"required,min=1"`
	EvaluatorID   int       `json:"evaluator_id" validate:"required,min=1"`
	EvaluatedID   int       `json:"evaluated_id" validate:"required,min=1"`
	SubjectID     null.Int  `json:"subject_id"`
	EffectiveDate time.Time `json:"effective_date" validate:"required"`
	StartsAt      null.Time `json:"starts_at"`
	EndsAt        null.Time `json:"ends_at"`
}

func (na *NewAssignment) Validate() error {
	if err := core.Validate.Struct(na); err != nil {
		return err
	}
	if na.StartsAt.Valid && na.EndsAt.Valid && !na.EndsAt.Time.After(na.StartsAt.Time) {
		return core.NewValidationError(nil, core.FieldError{Field: "ends_at", Error: "must be strictly after starts_at"})
	}
	return nil
}

// ResponseInput is one answered question of a submission.
type ResponseInput struct {
	QuestionID int     `json:"question_id" validate:"required,min=1"`
	Value      float64 `json:"value" validate:"min=0,max=5"`
}

// SubmitResponses contains one evaluator's full answer set for one evaluated
// subject. Replace requests the explicit edit path: the existing group is
// replaced instead of the submission being rejected as a duplicate.
type SubmitResponses struct {
	InstanceID   int             `json:"instance_id" validate:"required,min=1"`
	EvaluatorID  int             `json:"evaluator_id" validate:"required,min=1"`
	AssignmentID int             `json:"assignment_id" validate:"required,min=1"`
	SubjectKey   string          `json:"subject_key"`
	Replace      bool            `json:"replace"`
	Responses    []ResponseInput `json:"responses" validate:"required,min=1,dive"`
}

func (sr *SubmitResponses) Validate() error {
	sr.SubjectKey = core.CleanString(sr.SubjectKey)
	if sr.SubjectKey == "" && sr.AssignmentID > 0 {
		sr.SubjectKey = strconv.Itoa(sr.AssignmentID)
	}
	return core.Validate.Struct(sr)
}

// NewAuthorityScore contains information needed to set an authority rating.
type NewAuthorityScore struct {
	PeriodID    int     `json:"period_id" validate:"required,min=1"`
	Cedula      string  `json:"cedula" validate:"required,cedula"`
	AuthorityID int     `json:"authority_id" validate:"required,min=1"`
	Score       float64 `json:"score" validate:"min=0,max=100"`
}

func (ns *NewAuthorityScore) Validate() error {
	ns.Cedula = core.CleanString(ns.Cedula)
	return core.Validate.Struct(ns)
}

type (
	// Repository is the read/write contract against the local evaluation store,
	// the system of record for this engine. Unique indexes at the storage layer
	// are the ultimate arbiter for every uniqueness invariant; the service-side
	// eligibility checks are a fast path, not the sole guarantee.
	Repository interface {
		// instances
		CreateInstance(ctx context.Context, inst Instance) (Instance, error)
		GetInstance(ctx context.Context, id int) (Instance, error)
		// GetActiveInstance returns the single non-deleted instance for
		// (channel, period), or ErrInstanceNotFound.
		GetActiveInstance(ctx context.Context, channel Channel, periodID int) (Instance, error)
		FinalizeInstance(ctx context.Context, id int) (Instance, error)

		// peer assignments
		CreateAssignment(ctx context.Context, pa PeerAssignment) (PeerAssignment, error)
		// GetAssignment matches subjectID exactly: a null subject only matches
		// the null-subject row.
		GetAssignment(ctx context.Context, periodID, evaluatorID, evaluatedID int, subjectID null.Int) (PeerAssignment, error)
		CountAssignments(ctx context.Context, periodID int) (int, error)

		// response groups
		GetResponseGroup(ctx context.Context, instanceID, evaluatorID int, subjectKey string) (ResponseGroup, error)
		// UpsertResponseGroup atomically replaces the group for the tuple
		// (instanceID, evaluatorID, subjectKey); exactly one group exists after
		// it returns.
		UpsertResponseGroup(ctx context.Context, group ResponseGroup) (ResponseGroup, error)
		CompletedGroupCount(ctx context.Context, instanceID int) (int, error)
		// ResponseValues returns every raw response value recorded in the
		// instance against any of the given teaching-assignment ids.
		ResponseValues(ctx context.Context, instanceID int, assignmentIDs []int) ([]float64, error)

		// authority scores
		UpsertAuthorityScore(ctx context.Context, score AuthorityScore) (AuthorityScore, error)
		AuthorityScoreValues(ctx context.Context, periodID int, cedula string) ([]float64, error)
	}
)

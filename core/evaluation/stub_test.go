package evaluation

import (
	"context"
	"sync"

	"github.com/volatiletech/null/v8"

	"github.com/hfarfan/evadocente/core"
	"github.com/hfarfan/evadocente/core/academic"
)

// repoStub overrides only the methods a test exercises; calling anything else
// panics through the embedded nil interface.
type repoStub struct {
	Repository

	createInstanceFn      func(ctx context.Context, inst Instance) (Instance, error)
	getInstanceFn         func(ctx context.Context, id int) (Instance, error)
	getActiveInstanceFn   func(ctx context.Context, channel Channel, periodID int) (Instance, error)
	finalizeInstanceFn    func(ctx context.Context, id int) (Instance, error)
	createAssignmentFn    func(ctx context.Context, pa PeerAssignment) (PeerAssignment, error)
	getAssignmentFn       func(ctx context.Context, periodID, evaluatorID, evaluatedID int, subjectID null.Int) (PeerAssignment, error)
	countAssignmentsFn    func(ctx context.Context, periodID int) (int, error)
	getResponseGroupFn    func(ctx context.Context, instanceID, evaluatorID int, subjectKey string) (ResponseGroup, error)
	upsertResponseGroupFn func(ctx context.Context, group ResponseGroup) (ResponseGroup, error)
	completedGroupCountFn func(ctx context.Context, instanceID int) (int, error)
	responseValuesFn      func(ctx context.Context, instanceID int, assignmentIDs []int) ([]float64, error)
	upsertAuthorityFn     func(ctx context.Context, score AuthorityScore) (AuthorityScore, error)
	authorityValuesFn     func(ctx context.Context, periodID int, cedula string) ([]float64, error)
}

func (s *repoStub) CreateInstance(ctx context.Context, inst Instance) (Instance, error) {
	return s.createInstanceFn(ctx, inst)
}

func (s *repoStub) GetInstance(ctx context.Context, id int) (Instance, error) {
	return s.getInstanceFn(ctx, id)
}

func (s *repoStub) GetActiveInstance(ctx context.Context, channel Channel, periodID int) (Instance, error) {
	return s.getActiveInstanceFn(ctx, channel, periodID)
}

func (s *repoStub) FinalizeInstance(ctx context.Context, id int) (Instance, error) {
	return s.finalizeInstanceFn(ctx, id)
}

func (s *repoStub) CreateAssignment(ctx context.Context, pa PeerAssignment) (PeerAssignment, error) {
	return s.createAssignmentFn(ctx, pa)
}

func (s *repoStub) GetAssignment(ctx context.Context, periodID, evaluatorID, evaluatedID int, subjectID null.Int) (PeerAssignment, error) {
	return s.getAssignmentFn(ctx, periodID, evaluatorID, evaluatedID, subjectID)
}

func (s *repoStub) CountAssignments(ctx context.Context, periodID int) (int, error) {
	return s.countAssignmentsFn(ctx, periodID)
}

func (s *repoStub) GetResponseGroup(ctx context.Context, instanceID, evaluatorID int, subjectKey string) (ResponseGroup, error) {
	return s.getResponseGroupFn(ctx, instanceID, evaluatorID, subjectKey)
}

func (s *repoStub) UpsertResponseGroup(ctx context.Context, group ResponseGroup) (ResponseGroup, error) {
	return s.upsertResponseGroupFn(ctx, group)
}

func (s *repoStub) CompletedGroupCount(ctx context.Context, instanceID int) (int, error) {
	return s.completedGroupCountFn(ctx, instanceID)
}

func (s *repoStub) ResponseValues(ctx context.Context, instanceID int, assignmentIDs []int) ([]float64, error) {
	return s.responseValuesFn(ctx, instanceID, assignmentIDs)
}

func (s *repoStub) UpsertAuthorityScore(ctx context.Context, score AuthorityScore) (AuthorityScore, error) {
	return s.upsertAuthorityFn(ctx, score)
}

func (s *repoStub) AuthorityScoreValues(ctx context.Context, periodID int, cedula string) ([]float64, error) {
	return s.authorityValuesFn(ctx, periodID, cedula)
}

type academicStub struct {
	academic.Repository

	getPeriodFn               func(ctx context.Context, id int) (academic.Period, error)
	getTeacherByCedulaFn      func(ctx context.Context, cedula string) (academic.Teacher, error)
	teachersWithAssignmentsFn func(ctx context.Context, periodID int) ([]academic.Teacher, error)
	enrollmentPairCountFn     func(ctx context.Context, periodID int) (int, error)
}

func (s *academicStub) GetPeriod(ctx context.Context, id int) (academic.Period, error) {
	return s.getPeriodFn(ctx, id)
}

func (s *academicStub) GetTeacherByCedula(ctx context.Context, cedula string) (academic.Teacher, error) {
	return s.getTeacherByCedulaFn(ctx, cedula)
}

func (s *academicStub) TeachersWithAssignments(ctx context.Context, periodID int) ([]academic.Teacher, error) {
	return s.teachersWithAssignmentsFn(ctx, periodID)
}

func (s *academicStub) EnrollmentPairCount(ctx context.Context, periodID int) (int, error) {
	return s.enrollmentPairCountFn(ctx, periodID)
}

type mailStub struct {
	mu       sync.Mutex
	messages []*core.EmailMessage
}

func (m *mailStub) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, messages...)
}

func (m *mailStub) sent() []*core.EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.messages
}

func newStubService(repo Repository, academicRepo academic.Repository) (*Service, *mailStub) {
	mail := &mailStub{}
	return NewService(repo, academicRepo, mail, nil), mail
}

// notFoundInstanceFn is the common "no instance for any channel" stub.
func notFoundInstanceFn(context.Context, Channel, int) (Instance, error) {
	return Instance{}, ErrInstanceNotFound
}

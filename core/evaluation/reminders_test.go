package evaluation

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/hfarfan/evadocente/core/academic"
)

func TestSendReminders(t *testing.T) {
	ctx := context.Background()

	teachers := []academic.Teacher{
		{Cedula: "0101010101", Name: "Done, Dora", Email: "dora@uni.test", AssignmentIDs: []int{11}},
		{Cedula: "0202020202", Name: "Pending, Pablo", Email: "pablo@uni.test", AssignmentIDs: []int{12, 13}},
		{Cedula: "0303030303", Name: "Nomail, Nora", Email: "", AssignmentIDs: []int{14}},
	}

	t.Run("reminds only pending teachers with an email", func(t *testing.T) {
		repo := &repoStub{
			getActiveInstanceFn: func(_ context.Context, channel Channel, periodID int) (Instance, error) {
				if channel != ChannelSelf {
					return Instance{}, ErrInstanceNotFound
				}
				return Instance{ID: 1, Channel: channel, PeriodID: periodID}, nil
			},
			getResponseGroupFn: func(_ context.Context, instanceID, evaluatorID int, subjectKey string) (ResponseGroup, error) {
				// only Dora (assignment 11) completed her self-evaluation
				if instanceID == 1 && evaluatorID == 11 && subjectKey == strconv.Itoa(11) {
					return ResponseGroup{InstanceID: 1, EvaluatorID: 11, Done: true}, nil
				}
				return ResponseGroup{}, ErrGroupNotFound
			},
		}
		academicRepo := &academicStub{
			getPeriodFn: foundPeriodFn,
			teachersWithAssignmentsFn: func(context.Context, int) ([]academic.Teacher, error) {
				return teachers, nil
			},
		}
		svc, mail := newStubService(repo, academicRepo)

		sent, err := svc.SendReminders(ctx, 1)
		if err != nil {
			t.Fatalf("SendReminders() error = %v", err)
		}
		if sent != 1 {
			t.Fatalf("SendReminders() = %d, want 1", sent)
		}

		msgs := mail.sent()
		if len(msgs) != 1 {
			t.Fatalf("len(messages) = %d, want 1", len(msgs))
		}
		msg := msgs[0]
		if len(msg.To) != 1 || msg.To[0].Address != "pablo@uni.test" {
			t.Errorf("To = %v, want pablo@uni.test", msg.To)
		}
		if !strings.Contains(msg.Subject, "2024-1") {
			t.Errorf("Subject = %q, want it to name the period", msg.Subject)
		}
		if msg.TemplateName != "evaluation-reminder" {
			t.Errorf("TemplateName = %q, want evaluation-reminder", msg.TemplateName)
		}
	})

	t.Run("no self-evaluation instance means nothing to remind", func(t *testing.T) {
		repo := &repoStub{getActiveInstanceFn: notFoundInstanceFn}
		academicRepo := &academicStub{getPeriodFn: foundPeriodFn}
		svc, mail := newStubService(repo, academicRepo)

		sent, err := svc.SendReminders(ctx, 1)
		if err != nil {
			t.Fatalf("SendReminders() error = %v", err)
		}
		if sent != 0 {
			t.Errorf("SendReminders() = %d, want 0", sent)
		}
		if len(mail.sent()) != 0 {
			t.Errorf("len(messages) = %d, want 0", len(mail.sent()))
		}
	})
}

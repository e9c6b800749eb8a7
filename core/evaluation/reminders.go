package evaluation

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"

	"github.com/pkg/errors"

	"github.com/hfarfan/evadocente/core"
	"github.com/hfarfan/evadocente/core/academic"
)

type reminderData struct {
	TeacherName string
	PeriodName  string
}

// SendReminders emails every teacher of the period who has not completed their
// self-evaluation. Returns the number of reminders handed to the email
// service. A period without a self-evaluation instance has nothing to remind
// about. Teachers without an email address are skipped.
func (svc *Service) SendReminders(ctx context.Context, periodID int) (int, error) {
	period, err := svc.period(ctx, periodID)
	if err != nil {
		return 0, err
	}

	inst, err := svc.repo.GetActiveInstance(ctx, ChannelSelf, periodID)
	if err != nil {
		if errors.Cause(err) == ErrInstanceNotFound {
			return 0, nil
		}
		return 0, errors.Wrap(err, "fetching self-evaluation instance")
	}

	teachers, err := svc.academicRepo.TeachersWithAssignments(ctx, periodID)
	if err != nil {
		return 0, errors.Wrap(err, "fetching teachers with assignments")
	}

	messages := make([]*core.EmailMessage, 0, len(teachers))
	for _, teacher := range teachers {
		if teacher.Email == "" {
			continue
		}
		done, err := svc.selfEvaluationDone(ctx, inst.ID, teacher)
		if err != nil {
			return 0, err
		}
		if done {
			continue
		}
		messages = append(messages, &core.EmailMessage{
			To:           []mail.Address{{Name: teacher.Name, Address: teacher.Email}},
			Subject:      fmt.Sprintf("Autoevaluación pendiente: %s", period.Name),
			TemplateName: "evaluation-reminder",
			TemplateData: reminderData{TeacherName: teacher.Name, PeriodName: period.Name},
		})
	}

	if len(messages) > 0 {
		svc.mailSvc.SendMessages(messages...)
	}
	return len(messages), nil
}

// selfEvaluationDone reports whether any of the teacher's assignment ids has a
// completed self-evaluation group in the instance.
func (svc *Service) selfEvaluationDone(ctx context.Context, instanceID int, teacher academic.Teacher) (bool, error) {
	for _, id := range teacher.AssignmentIDs {
		_, err := svc.repo.GetResponseGroup(ctx, instanceID, id, strconv.Itoa(id))
		switch {
		case err == nil:
			return true, nil
		case errors.Cause(err) == ErrGroupNotFound:
			continue
		default:
			return false, errors.Wrap(err, "checking self-evaluation group")
		}
	}
	return false, nil
}

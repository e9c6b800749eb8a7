package evaluation

import (
	"context"
	"testing"

	"github.com/hfarfan/evadocente/core/academic"
)

func TestComputeParticipation(t *testing.T) {
	ctx := context.Background()

	type channelData struct {
		expected  int
		completed int
	}

	tests := []struct {
		name          string
		channels      map[Channel]channelData // only channels with an instance
		wantBreakdown map[Channel]ChannelParticipation
		wantCompleted int
		wantExpected  int
		wantRate      float64
	}{
		{
			name: "aggregate sums counts before dividing",
			// 6 completed of 10 expected across channels: 60.00
			channels: map[Channel]channelData{
				ChannelSelf:    {expected: 2, completed: 1},
				ChannelStudent: {expected: 5, completed: 4},
				ChannelPeer:    {expected: 3, completed: 1},
			},
			wantBreakdown: map[Channel]ChannelParticipation{
				ChannelSelf:    {Completed: 1, Expected: 2, Rate: 50},
				ChannelStudent: {Completed: 4, Expected: 5, Rate: 80},
				ChannelPeer:    {Completed: 1, Expected: 3, Rate: 33.33},
			},
			wantCompleted: 6,
			wantExpected:  10,
			wantRate:      60,
		},
		{
			name: "channel with zero expected is omitted",
			channels: map[Channel]channelData{
				ChannelSelf: {expected: 4, completed: 3},
				ChannelPeer: {expected: 0, completed: 0},
			},
			wantBreakdown: map[Channel]ChannelParticipation{
				ChannelSelf: {Completed: 3, Expected: 4, Rate: 75},
			},
			wantCompleted: 3,
			wantExpected:  4,
			wantRate:      75,
		},
		{
			name:          "no instances yields an empty report",
			channels:      map[Channel]channelData{},
			wantBreakdown: map[Channel]ChannelParticipation{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instanceIDs := map[Channel]int{ChannelSelf: 1, ChannelStudent: 2, ChannelPeer: 3}
			completedByInstance := make(map[int]int)
			for channel, data := range tt.channels {
				completedByInstance[instanceIDs[channel]] = data.completed
			}

			repo := &repoStub{
				getActiveInstanceFn: func(_ context.Context, channel Channel, periodID int) (Instance, error) {
					if _, ok := tt.channels[channel]; !ok {
						return Instance{}, ErrInstanceNotFound
					}
					return Instance{ID: instanceIDs[channel], Channel: channel, PeriodID: periodID}, nil
				},
				completedGroupCountFn: func(_ context.Context, instanceID int) (int, error) {
					return completedByInstance[instanceID], nil
				},
				countAssignmentsFn: func(context.Context, int) (int, error) {
					return tt.channels[ChannelPeer].expected, nil
				},
			}
			academicRepo := &academicStub{
				teachersWithAssignmentsFn: func(context.Context, int) ([]academic.Teacher, error) {
					teachers := make([]academic.Teacher, tt.channels[ChannelSelf].expected)
					return teachers, nil
				},
				enrollmentPairCountFn: func(context.Context, int) (int, error) {
					return tt.channels[ChannelStudent].expected, nil
				},
			}
			svc, _ := newStubService(repo, academicRepo)

			report, err := svc.computeParticipation(ctx, 1)
			if err != nil {
				t.Fatalf("computeParticipation() error = %v", err)
			}
			if report.Completed != tt.wantCompleted {
				t.Errorf("Completed = %d, want %d", report.Completed, tt.wantCompleted)
			}
			if report.Expected != tt.wantExpected {
				t.Errorf("Expected = %d, want %d", report.Expected, tt.wantExpected)
			}
			if report.Rate != tt.wantRate {
				t.Errorf("Rate = %v, want %v", report.Rate, tt.wantRate)
			}
			if len(report.Breakdown) != len(tt.wantBreakdown) {
				t.Errorf("Breakdown has %d channels, want %d", len(report.Breakdown), len(tt.wantBreakdown))
			}
			for channel, want := range tt.wantBreakdown {
				if got := report.Breakdown[channel]; got != want {
					t.Errorf("Breakdown[%s] = %+v, want %+v", channel, got, want)
				}
			}
		})
	}
}

package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
)

type fakeSchedulerConfig struct {
	redisURL string
}

func (f fakeSchedulerConfig) GetRedisURL() string       { return f.redisURL }
func (f fakeSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (f fakeSchedulerConfig) GetAsynqQueueName() string { return "default" }
func (f fakeSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(fakeSchedulerConfig{}); err == nil {
		t.Fatal("expected error without a redis url")
	}
}

func TestClientSchedulesReminder(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(fakeSchedulerConfig{redisURL: "redis://" + srv.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	err = client.ScheduleMeetingReminder(context.Background(), MeetingReminderPayload{
		LeadID:    uuid.NewString(),
		MeetingID: uuid.NewString(),
	}, time.Now().Add(10*time.Minute))
	if err != nil {
		t.Fatalf("ScheduleMeetingReminder: %v", err)
	}

	if len(srv.Keys()) == 0 {
		t.Error("expected the task to be persisted in redis")
	}
}

package reminders

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"salescrm_backend/internal/leads/domain"
	"salescrm_backend/internal/leads/repository"
	"salescrm_backend/internal/notification"
	"salescrm_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeMeetings struct {
	upcoming []repository.UpcomingMeeting
	meetings map[uuid.UUID]repository.Meeting
	leads    map[uuid.UUID]repository.Lead
}

func (f *fakeMeetings) ListUpcomingScheduled(_ context.Context, _, _ time.Time) ([]repository.UpcomingMeeting, error) {
	return f.upcoming, nil
}

func (f *fakeMeetings) GetMeeting(_ context.Context, _, meetingID uuid.UUID) (repository.Meeting, error) {
	m, ok := f.meetings[meetingID]
	if !ok {
		return repository.Meeting{}, errors.New("meeting not found")
	}
	return m, nil
}

func (f *fakeMeetings) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	l, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, errors.New("lead not found")
	}
	return l, nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	reminders []notification.MeetingReminder
	failFor   uuid.UUID
}

func (f *fakeNotifier) NotifyUpcomingMeeting(_ context.Context, r notification.MeetingReminder) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.MeetingID == f.failFor {
		return 0, errors.New("notifier unavailable")
	}
	f.reminders = append(f.reminders, r)
	return 1, nil
}

func upcomingMeeting(name string) repository.UpcomingMeeting {
	return repository.UpcomingMeeting{
		Meeting: repository.Meeting{
			ID:          uuid.New(),
			LeadID:      uuid.New(),
			Title:       "Call with " + name,
			MeetingDate: time.Now().Add(10 * time.Minute),
			Status:      domain.MeetingScheduled,
		},
		LeadFirstName: name,
		LeadLastName:  "Kumar",
	}
}

func TestScanNotifiesEachUpcomingMeeting(t *testing.T) {
	meetings := &fakeMeetings{upcoming: []repository.UpcomingMeeting{
		upcomingMeeting("Anita"),
		upcomingMeeting("Ravi"),
		upcomingMeeting("Priya"),
	}}
	notifier := &fakeNotifier{}
	scan := NewScanService(meetings, notifier, 20*time.Minute, logger.New("development"))

	result, err := scan.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.ProcessedCount != 3 {
		t.Errorf("processedCount = %d, want 3", result.ProcessedCount)
	}
	if result.NotificationsCreated != 3 {
		t.Errorf("notificationsCreated = %d, want 3", result.NotificationsCreated)
	}
	if len(notifier.reminders) != 3 {
		t.Errorf("reminders = %d", len(notifier.reminders))
	}
}

func TestScanSurvivesNotifierFailures(t *testing.T) {
	bad := upcomingMeeting("Anita")
	meetings := &fakeMeetings{upcoming: []repository.UpcomingMeeting{
		bad,
		upcomingMeeting("Ravi"),
	}}
	notifier := &fakeNotifier{failFor: bad.ID}
	scan := NewScanService(meetings, notifier, 20*time.Minute, logger.New("development"))

	result, err := scan.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.ProcessedCount != 2 {
		t.Errorf("processedCount = %d, want 2", result.ProcessedCount)
	}
	if result.NotificationsCreated != 1 {
		t.Errorf("notificationsCreated = %d, want 1: the failed meeting is skipped", result.NotificationsCreated)
	}
}

func TestRemindMeetingSkipsNonScheduled(t *testing.T) {
	leadID := uuid.New()
	meetingID := uuid.New()
	meetings := &fakeMeetings{
		meetings: map[uuid.UUID]repository.Meeting{
			meetingID: {ID: meetingID, LeadID: leadID, Status: domain.MeetingCancelled},
		},
		leads: map[uuid.UUID]repository.Lead{
			leadID: {ID: leadID, FirstName: "Anita", LastName: "Desai"},
		},
	}
	notifier := &fakeNotifier{}
	scan := NewScanService(meetings, notifier, 20*time.Minute, logger.New("development"))

	if err := scan.RemindMeeting(context.Background(), leadID, meetingID); err != nil {
		t.Fatalf("RemindMeeting: %v", err)
	}
	if len(notifier.reminders) != 0 {
		t.Error("cancelled meeting must not produce a reminder")
	}
}

func TestRemindMeetingNotifiesAssignee(t *testing.T) {
	leadID := uuid.New()
	meetingID := uuid.New()
	assignee := uuid.New()
	meetings := &fakeMeetings{
		meetings: map[uuid.UUID]repository.Meeting{
			meetingID: {ID: meetingID, LeadID: leadID, Title: "Demo", Status: domain.MeetingScheduled, MeetingDate: time.Now().Add(5 * time.Minute)},
		},
		leads: map[uuid.UUID]repository.Lead{
			leadID: {ID: leadID, FirstName: "Anita", LastName: "Desai", AssignedTo: &assignee},
		},
	}
	notifier := &fakeNotifier{}
	scan := NewScanService(meetings, notifier, 20*time.Minute, logger.New("development"))

	if err := scan.RemindMeeting(context.Background(), leadID, meetingID); err != nil {
		t.Fatalf("RemindMeeting: %v", err)
	}
	if len(notifier.reminders) != 1 {
		t.Fatalf("reminders = %d, want 1", len(notifier.reminders))
	}
	r := notifier.reminders[0]
	if r.LeadName != "Anita Desai" || r.AssignedTo == nil || *r.AssignedTo != assignee {
		t.Errorf("reminder = %+v", r)
	}
}

func TestCronSecretGuard(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(secret string) *gin.Engine {
		r := gin.New()
		r.GET("/cron/meetings", CronSecretGuard(secret), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true})
		})
		return r
	}

	t.Run("valid secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cron/meetings", nil)
		req.Header.Set("Authorization", "Bearer topsecret")
		w := httptest.NewRecorder()
		newRouter("topsecret").ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cron/meetings", nil)
		req.Header.Set("Authorization", "Bearer wrong")
		w := httptest.NewRecorder()
		newRouter("topsecret").ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cron/meetings", nil)
		w := httptest.NewRecorder()
		newRouter("topsecret").ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("no secret configured", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cron/meetings", nil)
		w := httptest.NewRecorder()
		newRouter("").ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200 when guard is disabled", w.Code)
		}
	})
}

// Package reminders scans for meetings about to start and pushes them into
// the notification pipeline. The scan runs from an external cron hitting the
// HTTP endpoint; individual reminders can also arrive via the task queue.
package reminders

import (
	"context"
	"strings"
	"sync"
	"time"

	"salescrm_backend/internal/leads/domain"
	"salescrm_backend/internal/leads/repository"
	"salescrm_backend/internal/notification"
	"salescrm_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const scanConcurrency = 4

// MeetingSource lists scheduled meetings for the scan and resolves single
// meetings for queued reminders.
type MeetingSource interface {
	ListUpcomingScheduled(ctx context.Context, from, to time.Time) ([]repository.UpcomingMeeting, error)
	GetMeeting(ctx context.Context, leadID, meetingID uuid.UUID) (repository.Meeting, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
}

// Notifier delivers the reminder to its recipients.
type Notifier interface {
	NotifyUpcomingMeeting(ctx context.Context, reminder notification.MeetingReminder) (int, error)
}

// ScanResult summarizes one reminder scan.
type ScanResult struct {
	ProcessedCount       int `json:"processedCount"`
	NotificationsCreated int `json:"notificationsCreated"`
}

// ScanService finds meetings entering the reminder window.
type ScanService struct {
	meetings MeetingSource
	notifier Notifier
	window   time.Duration
	log      *logger.Logger
	now      func() time.Time
}

// NewScanService creates a reminder scan service. window is how far ahead the
// scan looks for scheduled meetings.
func NewScanService(meetings MeetingSource, notifier Notifier, window time.Duration, log *logger.Logger) *ScanService {
	if window <= 0 {
		window = 20 * time.Minute
	}
	return &ScanService{
		meetings: meetings,
		notifier: notifier,
		window:   window,
		log:      log,
		now:      time.Now,
	}
}

// Run scans for scheduled meetings starting within the window and notifies
// their recipients. Per-meeting failures are logged and skipped so one bad
// row cannot stall the whole scan.
func (s *ScanService) Run(ctx context.Context) (ScanResult, error) {
	now := s.now()
	upcoming, err := s.meetings.ListUpcomingScheduled(ctx, now, now.Add(s.window))
	if err != nil {
		return ScanResult{}, err
	}

	var (
		mu      sync.Mutex
		created int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)
	for _, meeting := range upcoming {
		g.Go(func() error {
			n, err := s.notifier.NotifyUpcomingMeeting(gctx, toReminder(meeting))
			if err != nil {
				if s.log != nil {
					s.log.Error("meeting reminder failed",
						"meetingId", meeting.ID.String(), "error", err.Error())
				}
				return nil
			}
			mu.Lock()
			created += n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ScanResult{}, err
	}

	return ScanResult{ProcessedCount: len(upcoming), NotificationsCreated: created}, nil
}

// RemindMeeting handles a single queued reminder: the meeting is re-checked
// so reminders for meetings that were cancelled or completed in the meantime
// are dropped.
func (s *ScanService) RemindMeeting(ctx context.Context, leadID, meetingID uuid.UUID) error {
	meeting, err := s.meetings.GetMeeting(ctx, leadID, meetingID)
	if err != nil {
		return err
	}
	if meeting.Status != domain.MeetingScheduled {
		if s.log != nil {
			s.log.Info("skipping reminder for non-scheduled meeting",
				"meetingId", meetingID.String(), "status", meeting.Status)
		}
		return nil
	}

	lead, err := s.meetings.GetByID(ctx, leadID)
	if err != nil {
		return err
	}

	_, err = s.notifier.NotifyUpcomingMeeting(ctx, notification.MeetingReminder{
		LeadID:      lead.ID,
		MeetingID:   meeting.ID,
		Title:       meeting.Title,
		MeetingDate: meeting.MeetingDate,
		LeadName:    strings.TrimSpace(lead.FirstName + " " + lead.LastName),
		AssignedTo:  lead.AssignedTo,
	})
	return err
}

func toReminder(m repository.UpcomingMeeting) notification.MeetingReminder {
	return notification.MeetingReminder{
		LeadID:      m.LeadID,
		MeetingID:   m.ID,
		Title:       m.Title,
		MeetingDate: m.MeetingDate,
		LeadName:    strings.TrimSpace(m.LeadFirstName + " " + m.LeadLastName),
		AssignedTo:  m.LeadAssignedTo,
	}
}

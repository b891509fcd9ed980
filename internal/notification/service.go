package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"salescrm_backend/internal/email"
	"salescrm_backend/internal/events"
	"salescrm_backend/internal/users"
	"salescrm_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	opNotifyLeadCreated     = "notification.service.notify_lead_created"
	opNotifyUpcomingMeeting = "notification.service.notify_upcoming_meeting"

	// reminderDedupWindow suppresses a second reminder for the same meeting
	// to the same user within this window.
	reminderDedupWindow = time.Hour
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, p CreateParams) (Notification, error)
	ExistsSimilarSince(ctx context.Context, userID uuid.UUID, nType, linkFragment string, since time.Time) (bool, error)
}

// UserDirectory resolves notification recipients.
type UserDirectory interface {
	ListActiveByRoles(ctx context.Context, roles []string) ([]users.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (users.User, error)
}

// MeetingReminder describes one upcoming meeting due for a reminder.
type MeetingReminder struct {
	LeadID      uuid.UUID
	MeetingID   uuid.UUID
	Title       string
	MeetingDate time.Time
	LeadName    string
	AssignedTo  *uuid.UUID
}

// Service creates notifications and delivers the accompanying emails.
type Service struct {
	store   Store
	users   UserDirectory
	sender  email.Sender
	baseURL string
	log     *logger.Logger
	now     func() time.Time
}

// NewService creates a notification service. baseURL is the frontend origin
// used to build deep links into the lead detail view.
func NewService(store Store, users UserDirectory, sender email.Sender, baseURL string, log *logger.Logger) *Service {
	return &Service{
		store:   store,
		users:   users,
		sender:  sender,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
		now:     time.Now,
	}
}

func (s *Service) leadLink(leadID uuid.UUID) string {
	return fmt.Sprintf("%s/leads/%s", s.baseURL, leadID)
}

func (s *Service) meetingLink(leadID, meetingID uuid.UUID) string {
	return fmt.Sprintf("%s/leads/%s?meeting=%s", s.baseURL, leadID, meetingID)
}

// NotifyLeadCreated creates an in-app notification for every active Admin,
// Lead and Member, and emails the Admins. Email delivery is best effort: a
// failed send is logged and does not fail the fan-out.
func (s *Service) NotifyLeadCreated(ctx context.Context, ev events.LeadCreated) (int, error) {
	recipients, err := s.users.ListActiveByRoles(ctx, []string{users.RoleAdmin, users.RoleLead, users.RoleMember})
	if err != nil {
		return 0, err
	}

	leadName := strings.TrimSpace(ev.FirstName + " " + ev.LastName)
	title := fmt.Sprintf("New lead: %s", leadName)
	message := fmt.Sprintf("%s (%s) came in via %s", leadName, ev.Email, ev.Channel)
	if ev.Source != "" {
		message += fmt.Sprintf(", source %s", ev.Source)
	}
	link := s.leadLink(ev.LeadID)

	created := 0
	for _, recipient := range recipients {
		if _, err := s.store.Create(ctx, CreateParams{
			UserID:  recipient.ID,
			Title:   title,
			Message: message,
			Type:    TypeLeadCreated,
			Link:    link,
		}); err != nil {
			s.logError(ctx, opNotifyLeadCreated, "create notification", recipient.ID, err)
			continue
		}
		created++

		if recipient.Role != users.RoleAdmin {
			continue
		}
		if err := s.sender.SendLeadCreatedEmail(ctx, recipient.Email, email.LeadCreatedEmail{
			RecipientName: recipient.Name,
			LeadName:      leadName,
			LeadEmail:     ev.Email,
			Channel:       ev.Channel,
			SourceName:    ev.Source,
			LeadURL:       link,
		}); err != nil {
			s.logError(ctx, opNotifyLeadCreated, "send email", recipient.ID, err)
		}
	}

	return created, nil
}

// NotifyUpcomingMeeting reminds the assigned user about a meeting about to
// start; when the lead is unassigned, every active Admin is reminded instead.
// A user who was already reminded about this meeting within the dedup window
// is skipped. Returns the number of notifications created.
func (s *Service) NotifyUpcomingMeeting(ctx context.Context, reminder MeetingReminder) (int, error) {
	recipients, err := s.reminderRecipients(ctx, reminder.AssignedTo)
	if err != nil {
		return 0, err
	}

	title := fmt.Sprintf("Upcoming meeting with %s", reminder.LeadName)
	message := fmt.Sprintf("Meeting at %s", reminder.MeetingDate.Format("15:04 MST"))
	if reminder.Title != "" {
		message = fmt.Sprintf("%s at %s", reminder.Title, reminder.MeetingDate.Format("15:04 MST"))
	}
	link := s.meetingLink(reminder.LeadID, reminder.MeetingID)

	created := 0
	for _, recipient := range recipients {
		since := s.now().Add(-reminderDedupWindow)
		exists, err := s.store.ExistsSimilarSince(ctx, recipient.ID, TypeMeetingReminder, reminder.MeetingID.String(), since)
		if err != nil {
			s.logError(ctx, opNotifyUpcomingMeeting, "dedup check", recipient.ID, err)
			continue
		}
		if exists {
			continue
		}

		if _, err := s.store.Create(ctx, CreateParams{
			UserID:  recipient.ID,
			Title:   title,
			Message: message,
			Type:    TypeMeetingReminder,
			Link:    link,
		}); err != nil {
			s.logError(ctx, opNotifyUpcomingMeeting, "create notification", recipient.ID, err)
			continue
		}
		created++

		if err := s.sender.SendMeetingReminderEmail(ctx, recipient.Email, email.MeetingReminderEmail{
			RecipientName: recipient.Name,
			LeadName:      reminder.LeadName,
			MeetingTitle:  reminder.Title,
			MeetingTime:   reminder.MeetingDate.Format("Mon 2 Jan 15:04 MST"),
			LeadURL:       link,
		}); err != nil {
			s.logError(ctx, opNotifyUpcomingMeeting, "send email", recipient.ID, err)
		}
	}

	return created, nil
}

// reminderRecipients resolves who gets a meeting reminder: the assigned user
// when the lead has one and that user is still active, active Admins
// otherwise.
func (s *Service) reminderRecipients(ctx context.Context, assignedTo *uuid.UUID) ([]users.User, error) {
	if assignedTo != nil && *assignedTo != uuid.Nil {
		user, err := s.users.GetByID(ctx, *assignedTo)
		if err == nil && user.Status == users.StatusActive {
			return []users.User{user}, nil
		}
		if err != nil {
			s.logError(ctx, opNotifyUpcomingMeeting, "resolve assignee", *assignedTo, err)
		}
	}
	return s.users.ListActiveByRoles(ctx, []string{users.RoleAdmin})
}

func (s *Service) logError(ctx context.Context, op, step string, userID uuid.UUID, err error) {
	if s.log != nil {
		s.log.WithContext(ctx).Error("notification step failed",
			"op", op, "step", step, "userId", userID.String(), "error", err.Error())
	}
}

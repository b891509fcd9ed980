package notification

import (
	"context"
	"strings"
	"testing"
	"time"

	"salescrm_backend/internal/email"
	"salescrm_backend/internal/events"
	"salescrm_backend/internal/users"
	"salescrm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	created []CreateParams
}

func (f *fakeStore) Create(_ context.Context, p CreateParams) (Notification, error) {
	f.created = append(f.created, p)
	return Notification{ID: uuid.New(), UserID: p.UserID, Title: p.Title, Type: p.Type, Link: p.Link}, nil
}

func (f *fakeStore) ExistsSimilarSince(_ context.Context, userID uuid.UUID, nType, linkFragment string, since time.Time) (bool, error) {
	for _, p := range f.created {
		if p.UserID == userID && p.Type == nType && strings.Contains(p.Link, linkFragment) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) createdFor(userID uuid.UUID) []CreateParams {
	var out []CreateParams
	for _, p := range f.created {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out
}

type fakeDirectory struct {
	users []users.User
}

func (f *fakeDirectory) ListActiveByRoles(_ context.Context, roles []string) ([]users.User, error) {
	var out []users.User
	for _, u := range f.users {
		if u.Status != users.StatusActive {
			continue
		}
		for _, role := range roles {
			if u.Role == role {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeDirectory) GetByID(_ context.Context, id uuid.UUID) (users.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return users.User{}, context.Canceled
}

type recordingSender struct {
	leadEmails     []string
	reminderEmails []string
}

func (r *recordingSender) SendLeadCreatedEmail(_ context.Context, toEmail string, _ email.LeadCreatedEmail) error {
	r.leadEmails = append(r.leadEmails, toEmail)
	return nil
}

func (r *recordingSender) SendMeetingReminderEmail(_ context.Context, toEmail string, _ email.MeetingReminderEmail) error {
	r.reminderEmails = append(r.reminderEmails, toEmail)
	return nil
}

func activeUser(role string) users.User {
	return users.User{
		ID:     uuid.New(),
		Name:   role + " user",
		Email:  strings.ToLower(role) + "@example.com",
		Role:   role,
		Status: users.StatusActive,
	}
}

func TestNotifyLeadCreatedFansOutToAllRoles(t *testing.T) {
	admin := activeUser(users.RoleAdmin)
	lead := activeUser(users.RoleLead)
	member := activeUser(users.RoleMember)
	inactive := activeUser(users.RoleAdmin)
	inactive.Status = "Inactive"

	store := &fakeStore{}
	sender := &recordingSender{}
	svc := NewService(store, &fakeDirectory{users: []users.User{admin, lead, member, inactive}}, sender, "https://crm.example.com", logger.New("development"))

	created, err := svc.NotifyLeadCreated(context.Background(), events.LeadCreated{
		LeadID:    uuid.New(),
		FirstName: "Anita",
		LastName:  "Desai",
		Email:     "anita@example.com",
		Channel:   "contact-form",
		Source:    "Company Website",
	})
	if err != nil {
		t.Fatalf("NotifyLeadCreated: %v", err)
	}

	if created != 3 {
		t.Errorf("created = %d, want 3 (inactive user excluded)", created)
	}
	if len(store.created) != 3 {
		t.Fatalf("rows = %d, want 3", len(store.created))
	}
	for _, p := range store.created {
		if p.Type != TypeLeadCreated {
			t.Errorf("type = %q", p.Type)
		}
		if !strings.Contains(p.Title, "Anita Desai") {
			t.Errorf("title = %q, want lead name", p.Title)
		}
	}

	if len(sender.leadEmails) != 1 || sender.leadEmails[0] != admin.Email {
		t.Errorf("emails = %v, want only the admin", sender.leadEmails)
	}
}

func TestNotifyUpcomingMeetingPrefersAssignee(t *testing.T) {
	admin := activeUser(users.RoleAdmin)
	assignee := activeUser(users.RoleMember)

	store := &fakeStore{}
	sender := &recordingSender{}
	svc := NewService(store, &fakeDirectory{users: []users.User{admin, assignee}}, sender, "https://crm.example.com", logger.New("development"))

	created, err := svc.NotifyUpcomingMeeting(context.Background(), MeetingReminder{
		LeadID:      uuid.New(),
		MeetingID:   uuid.New(),
		Title:       "Intro call",
		MeetingDate: time.Now().Add(15 * time.Minute),
		LeadName:    "Anita Desai",
		AssignedTo:  &assignee.ID,
	})
	if err != nil {
		t.Fatalf("NotifyUpcomingMeeting: %v", err)
	}

	if created != 1 {
		t.Fatalf("created = %d, want 1", created)
	}
	if store.created[0].UserID != assignee.ID {
		t.Errorf("recipient = %s, want the assignee", store.created[0].UserID)
	}
	if len(store.createdFor(admin.ID)) != 0 {
		t.Error("admin should not be notified when the lead is assigned")
	}
	if len(sender.reminderEmails) != 1 || sender.reminderEmails[0] != assignee.Email {
		t.Errorf("reminder emails = %v", sender.reminderEmails)
	}
}

func TestNotifyUpcomingMeetingFallsBackToAdmins(t *testing.T) {
	admin1 := activeUser(users.RoleAdmin)
	admin2 := activeUser(users.RoleAdmin)
	member := activeUser(users.RoleMember)

	store := &fakeStore{}
	svc := NewService(store, &fakeDirectory{users: []users.User{admin1, admin2, member}}, &recordingSender{}, "https://crm.example.com", logger.New("development"))

	created, err := svc.NotifyUpcomingMeeting(context.Background(), MeetingReminder{
		LeadID:      uuid.New(),
		MeetingID:   uuid.New(),
		MeetingDate: time.Now().Add(10 * time.Minute),
		LeadName:    "Ravi Kumar",
	})
	if err != nil {
		t.Fatalf("NotifyUpcomingMeeting: %v", err)
	}

	if created != 2 {
		t.Errorf("created = %d, want both admins", created)
	}
	if len(store.createdFor(member.ID)) != 0 {
		t.Error("member should not receive unassigned-lead reminders")
	}
}

func TestNotifyUpcomingMeetingDedupWindow(t *testing.T) {
	assignee := activeUser(users.RoleMember)

	store := &fakeStore{}
	svc := NewService(store, &fakeDirectory{users: []users.User{assignee}}, &recordingSender{}, "https://crm.example.com", logger.New("development"))

	reminder := MeetingReminder{
		LeadID:      uuid.New(),
		MeetingID:   uuid.New(),
		MeetingDate: time.Now().Add(15 * time.Minute),
		LeadName:    "Anita Desai",
		AssignedTo:  &assignee.ID,
	}

	first, err := svc.NotifyUpcomingMeeting(context.Background(), reminder)
	if err != nil {
		t.Fatalf("first reminder: %v", err)
	}
	second, err := svc.NotifyUpcomingMeeting(context.Background(), reminder)
	if err != nil {
		t.Fatalf("second reminder: %v", err)
	}

	if first != 1 || second != 0 {
		t.Errorf("created = (%d, %d), want (1, 0): repeat within the window must be suppressed", first, second)
	}

	// A different meeting for the same lead is not suppressed.
	other := reminder
	other.MeetingID = uuid.New()
	third, err := svc.NotifyUpcomingMeeting(context.Background(), other)
	if err != nil {
		t.Fatalf("third reminder: %v", err)
	}
	if third != 1 {
		t.Errorf("created = %d, want 1 for a distinct meeting", third)
	}
}

func TestLeadCreatedSubscription(t *testing.T) {
	admin := activeUser(users.RoleAdmin)

	store := &fakeStore{}
	svc := NewService(store, &fakeDirectory{users: []users.User{admin}}, &recordingSender{}, "https://crm.example.com", logger.New("development"))

	bus := events.NewInMemoryBus(logger.New("development"))
	RegisterSubscribers(bus, svc, logger.New("development"))

	err := bus.PublishSync(context.Background(), events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		FirstName: "Priya",
		LastName:  "Singh",
		Email:     "priya@example.com",
		Channel:   "partner-webhook",
	})
	if err != nil {
		t.Fatalf("PublishSync: %v", err)
	}

	if len(store.created) != 1 {
		t.Errorf("rows = %d, want 1", len(store.created))
	}
}

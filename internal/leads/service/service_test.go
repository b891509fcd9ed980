package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"salescrm_backend/internal/events"
	"salescrm_backend/internal/hierarchy"
	"salescrm_backend/internal/leads/domain"
	"salescrm_backend/internal/leads/repository"
	"salescrm_backend/internal/leads/transport"
	"salescrm_backend/internal/taxonomy"
	"salescrm_backend/platform/apperr"

	"github.com/google/uuid"
)

// fakeStore is an in-memory LeadStore keyed by normalized email.
type fakeStore struct {
	mu       sync.Mutex
	leads    map[uuid.UUID]repository.Lead
	byEmail  map[string]uuid.UUID
	remarks  map[uuid.UUID][]repository.Remark
	meetings map[uuid.UUID][]repository.Meeting
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:    make(map[uuid.UUID]repository.Lead),
		byEmail:  make(map[string]uuid.UUID),
		remarks:  make(map[uuid.UUID][]repository.Remark),
		meetings: make(map[uuid.UUID][]repository.Meeting),
	}
}

func (f *fakeStore) CreateIfAbsent(_ context.Context, p repository.CreateParams) (repository.Lead, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if id, ok := f.byEmail[p.Email]; ok {
		return f.leads[id], false, nil
	}

	lead := repository.Lead{
		ID:         uuid.New(),
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Email:      p.Email,
		Phone:      p.Phone,
		Company:    p.Company,
		SourceID:   p.SourceID,
		SourceType: p.SourceType,
		SourceURL:  p.SourceURL,
		Status:     domain.StatusNew,
		Details:    p.Details,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	f.leads[lead.ID] = lead
	f.byEmail[p.Email] = lead.ID
	return lead, true, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, nil
}

func (f *fakeStore) List(_ context.Context, _ repository.ListFilter) ([]repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Lead, 0, len(f.leads))
	for _, lead := range f.leads {
		out = append(out, lead)
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, id uuid.UUID, p repository.UpdateParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	if p.Value != nil {
		lead.Value = *p.Value
	}
	if p.AssignedTo != nil {
		lead.AssignedTo = p.AssignedTo
	}
	if p.Phone != nil {
		lead.Phone = *p.Phone
	}
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeStore) SetStatus(_ context.Context, id uuid.UUID, status string) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	lead.Status = status
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return apperr.NotFound("lead not found")
	}
	delete(f.leads, id)
	delete(f.byEmail, lead.Email)
	return nil
}

func (f *fakeStore) AppendRemark(_ context.Context, p repository.RemarkParams) (repository.Remark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	remark := repository.Remark{
		ID:          uuid.New(),
		LeadID:      p.LeadID,
		Note:        p.Note,
		Method:      p.Method,
		AddedBy:     p.AddedBy,
		AddedByName: p.AddedByName,
		CreatedAt:   time.Now(),
	}
	f.remarks[p.LeadID] = append(f.remarks[p.LeadID], remark)
	return remark, nil
}

func (f *fakeStore) ListRemarks(_ context.Context, leadID uuid.UUID) ([]repository.Remark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]repository.Remark(nil), f.remarks[leadID]...), nil
}

func (f *fakeStore) CreateMeeting(_ context.Context, p repository.MeetingParams) (repository.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	meeting := repository.Meeting{
		ID:          uuid.New(),
		LeadID:      p.LeadID,
		Title:       p.Title,
		MeetingDate: p.MeetingDate,
		Link:        p.Link,
		Status:      domain.MeetingScheduled,
		HostID:      p.HostID,
		SchedulerID: p.SchedulerID,
		Notes:       p.Notes,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.meetings[p.LeadID] = append(f.meetings[p.LeadID], meeting)
	return meeting, nil
}

func (f *fakeStore) GetMeeting(_ context.Context, leadID, meetingID uuid.UUID) (repository.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.meetings[leadID] {
		if m.ID == meetingID {
			return m, nil
		}
	}
	return repository.Meeting{}, apperr.NotFound("meeting not found")
}

func (f *fakeStore) ListMeetings(_ context.Context, leadID uuid.UUID) ([]repository.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]repository.Meeting(nil), f.meetings[leadID]...), nil
}

func (f *fakeStore) UpdateMeetingStatus(_ context.Context, leadID, meetingID uuid.UUID, status, notes string) (repository.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.meetings[leadID] {
		if m.ID == meetingID {
			m.Status = status
			if notes != "" {
				m.Notes = notes
			}
			f.meetings[leadID][i] = m
			return m, nil
		}
	}
	return repository.Meeting{}, apperr.NotFound("meeting not found")
}

// fakeHierarchy records upserted paths without touching a database.
type fakeHierarchy struct {
	mu    sync.Mutex
	calls []taxonomy.Path
}

func (f *fakeHierarchy) UpsertPath(_ context.Context, path taxonomy.Path, sourceName, sourceType string) (hierarchy.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	st := sourceType
	return hierarchy.Node{ID: uuid.New(), Level: hierarchy.LevelSource, Name: sourceName, SourceType: &st}, nil
}

// recordingBus captures published events synchronously.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) byName(name string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]events.Event, 0)
	for _, e := range b.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

func newTestService() (*Service, *fakeStore, *fakeHierarchy, *recordingBus) {
	store := newFakeStore()
	hier := &fakeHierarchy{}
	bus := &recordingBus{}
	classifier := taxonomy.New(taxonomy.DefaultRules(), taxonomy.DefaultFallback())
	svc := New(store, hier, classifier, bus, nil)
	return svc, store, hier, bus
}

func contactIntake(email string) transport.LeadIntake {
	return transport.LeadIntake{
		Channel:        "contact-form",
		FirstName:      "Priya",
		LastName:       "Singh",
		Email:          email,
		Signal:         "AI Chatbot | We need a chatbot for our store",
		SourceType:     transport.SourceTypeWebsite,
		RouteHierarchy: true,
		SourceName:     "Company Website",
	}
}

func TestIngestCreatesLeadWithDefaults(t *testing.T) {
	svc, store, hier, bus := newTestService()

	result, err := svc.Ingest(context.Background(), contactIntake("priya@example.com"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if !result.Created {
		t.Error("Created = false on first submission")
	}
	if result.Lead.Status != domain.StatusNew {
		t.Errorf("status = %q, want New", result.Lead.Status)
	}
	if result.Lead.Value != 0 {
		t.Errorf("value = %d, want 0", result.Lead.Value)
	}
	if result.Lead.SourceID == nil {
		t.Error("lead has no hierarchy source attribution")
	}

	if len(hier.calls) != 1 {
		t.Fatalf("hierarchy upserts = %d, want 1", len(hier.calls))
	}
	if hier.calls[0].Domain != "AI Services" {
		t.Errorf("classified domain = %q, want AI Services", hier.calls[0].Domain)
	}

	remarks := store.remarks[result.Lead.ID]
	if len(remarks) != 1 {
		t.Fatalf("intake remarks = %d, want 1", len(remarks))
	}
	if !strings.Contains(remarks[0].Note, "chatbot") {
		t.Errorf("intake remark %q does not carry the inbound message", remarks[0].Note)
	}
	if remarks[0].Method != domain.MethodOther {
		t.Errorf("intake remark method = %q, want %q", remarks[0].Method, domain.MethodOther)
	}

	if got := bus.byName(events.LeadCreated{}.EventName()); len(got) != 1 {
		t.Errorf("LeadCreated events = %d, want 1", len(got))
	}
}

func TestIngestDedupByEmail(t *testing.T) {
	svc, store, _, bus := newTestService()
	ctx := context.Background()

	first, err := svc.Ingest(ctx, contactIntake("priya@example.com"))
	if err != nil {
		t.Fatalf("first Ingest: %v", err)
	}

	// Same address with different case and padding must dedup.
	second, err := svc.Ingest(ctx, contactIntake("  PRIYA@Example.COM "))
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}

	if second.Created {
		t.Error("Created = true on duplicate submission")
	}
	if second.Lead.ID != first.Lead.ID {
		t.Errorf("duplicate returned lead %s, want %s", second.Lead.ID, first.Lead.ID)
	}
	if len(store.leads) != 1 {
		t.Errorf("lead rows = %d, want 1", len(store.leads))
	}
	if got := bus.byName(events.LeadCreated{}.EventName()); len(got) != 1 {
		t.Errorf("LeadCreated events after duplicate = %d, want 1", len(got))
	}
	// Duplicate submissions write no remark.
	if remarks := store.remarks[first.Lead.ID]; len(remarks) != 1 {
		t.Errorf("remarks after duplicate = %d, want 1", len(remarks))
	}
}

func TestIngestValidation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*transport.LeadIntake)
	}{
		{"missing first name", func(i *transport.LeadIntake) { i.FirstName = " " }},
		{"missing email", func(i *transport.LeadIntake) { i.Email = "" }},
		{"malformed email", func(i *transport.LeadIntake) { i.Email = "not-an-email" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			intake := contactIntake("priya@example.com")
			tc.mutate(&intake)
			_, err := svc.Ingest(ctx, intake)
			if !apperr.Is(err, apperr.KindValidation) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
}

func TestIngestDomainOverrideSkipsClassifier(t *testing.T) {
	svc, _, hier, _ := newTestService()

	intake := contactIntake("meta-lead@example.com")
	intake.Channel = "meta-leadgen"
	intake.Signal = "we want a website" // would classify to Web & App
	intake.DomainOverride = "Social Media Marketing"
	intake.CampaignOverride = "Spring Campaign"
	intake.SourceName = "Meta Ads (Spring Sale)"
	intake.SourceType = transport.SourceTypeMeta

	if _, err := svc.Ingest(context.Background(), intake); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if len(hier.calls) != 1 {
		t.Fatalf("hierarchy upserts = %d, want 1", len(hier.calls))
	}
	if hier.calls[0].Domain != "Social Media Marketing" {
		t.Errorf("domain = %q, want override", hier.calls[0].Domain)
	}
	if hier.calls[0].Campaign != "Spring Campaign" {
		t.Errorf("campaign = %q, want override", hier.calls[0].Campaign)
	}
}

func TestSetStatusPermissiveButValidated(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	result, err := svc.Ingest(ctx, contactIntake("priya@example.com"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	// Won straight from New is allowed; so is moving back.
	if _, err := svc.SetStatus(ctx, result.Lead.ID, domain.StatusWon); err != nil {
		t.Errorf("SetStatus(Won): %v", err)
	}
	if _, err := svc.SetStatus(ctx, result.Lead.ID, domain.StatusContacted); err != nil {
		t.Errorf("SetStatus back to Contacted: %v", err)
	}

	if _, err := svc.SetStatus(ctx, result.Lead.ID, "Bogus"); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("SetStatus(Bogus) err = %v, want validation error", err)
	}
}

func TestScheduleMeetingSideEffects(t *testing.T) {
	svc, store, _, bus := newTestService()
	ctx := context.Background()

	result, err := svc.Ingest(ctx, contactIntake("priya@example.com"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	meeting, err := svc.ScheduleMeeting(ctx, result.Lead.ID, transport.ScheduleMeetingRequest{
		Title:       "Discovery call",
		MeetingDate: time.Now().Add(48 * time.Hour),
	}, nil)
	if err != nil {
		t.Fatalf("ScheduleMeeting: %v", err)
	}

	if meeting.Status != domain.MeetingScheduled {
		t.Errorf("meeting status = %q, want Scheduled", meeting.Status)
	}
	if store.leads[result.Lead.ID].Status != domain.StatusContacted {
		t.Errorf("lead status = %q, want Contacted after scheduling", store.leads[result.Lead.ID].Status)
	}
	if got := bus.byName(events.MeetingScheduled{}.EventName()); len(got) != 1 {
		t.Errorf("MeetingScheduled events = %d, want 1", len(got))
	}
}

func TestAddMeetingHasNoSideEffects(t *testing.T) {
	svc, store, _, bus := newTestService()
	ctx := context.Background()

	result, err := svc.Ingest(ctx, contactIntake("priya@example.com"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if _, err := svc.AddMeeting(ctx, result.Lead.ID, transport.AddMeetingRequest{
		Title:       "Backfilled discovery call",
		MeetingDate: time.Now().Add(24 * time.Hour),
	}); err != nil {
		t.Fatalf("AddMeeting: %v", err)
	}

	if store.leads[result.Lead.ID].Status != domain.StatusNew {
		t.Errorf("lead status = %q, general edit must not touch status", store.leads[result.Lead.ID].Status)
	}
	if got := bus.byName(events.MeetingScheduled{}.EventName()); len(got) != 0 {
		t.Errorf("MeetingScheduled events = %d, want 0", len(got))
	}
}

func TestUpdateMeetingStatusIsolation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	result, err := svc.Ingest(ctx, contactIntake("priya@example.com"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	leadID := result.Lead.ID

	first, err := svc.ScheduleMeeting(ctx, leadID, transport.ScheduleMeetingRequest{
		Title: "First call", MeetingDate: time.Now().Add(24 * time.Hour),
	}, nil)
	if err != nil {
		t.Fatalf("ScheduleMeeting: %v", err)
	}
	second, err := svc.ScheduleMeeting(ctx, leadID, transport.ScheduleMeetingRequest{
		Title: "Second call", MeetingDate: time.Now().Add(72 * time.Hour),
	}, nil)
	if err != nil {
		t.Fatalf("ScheduleMeeting second: %v", err)
	}

	updated, err := svc.UpdateMeetingStatus(ctx, leadID, first.ID, transport.UpdateMeetingStatusRequest{Status: domain.MeetingCompleted})
	if err != nil {
		t.Fatalf("UpdateMeetingStatus: %v", err)
	}
	if updated.Status != domain.MeetingCompleted {
		t.Errorf("status = %q, want Completed", updated.Status)
	}

	detail, err := svc.Get(ctx, leadID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	for _, m := range detail.Meetings {
		if m.ID == second.ID && m.Status != domain.MeetingScheduled {
			t.Errorf("sibling meeting status = %q, must stay Scheduled", m.Status)
		}
	}

	// Terminal states stay terminal.
	_, err = svc.UpdateMeetingStatus(ctx, leadID, first.ID, transport.UpdateMeetingStatusRequest{Status: domain.MeetingScheduled})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("reopening completed meeting err = %v, want validation error", err)
	}

	// Unknown meeting ID is NotFound, never silent.
	_, err = svc.UpdateMeetingStatus(ctx, leadID, uuid.New(), transport.UpdateMeetingStatusRequest{Status: domain.MeetingCancelled})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("unknown meeting err = %v, want not found", err)
	}
}

func TestAppendRemarkKeepsHistory(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	result, err := svc.Ingest(ctx, contactIntake("priya@example.com"))
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	for _, note := range []string{"Called, no answer", "Emailed the proposal", "Follow-up booked"} {
		if _, err := svc.AppendRemark(ctx, result.Lead.ID, transport.AddRemarkRequest{Note: note}, nil, "Asha"); err != nil {
			t.Fatalf("AppendRemark(%q): %v", note, err)
		}
	}

	detail, err := svc.Get(ctx, result.Lead.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	// Intake remark plus three appended ones, in order.
	if len(detail.Remarks) != 4 {
		t.Fatalf("remarks = %d, want 4", len(detail.Remarks))
	}
	if detail.Remarks[3].Note != "Follow-up booked" {
		t.Errorf("last remark = %q, want newest appended", detail.Remarks[3].Note)
	}
}

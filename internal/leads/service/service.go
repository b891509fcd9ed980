// Package service implements the lead intake pipeline and lead mutations.
package service

import (
	"context"
	"fmt"
	"strings"

	"salescrm_backend/internal/events"
	"salescrm_backend/internal/hierarchy"
	"salescrm_backend/internal/leads/domain"
	"salescrm_backend/internal/leads/repository"
	"salescrm_backend/internal/leads/transport"
	"salescrm_backend/internal/taxonomy"
	"salescrm_backend/platform/apperr"
	"salescrm_backend/platform/logger"
	"salescrm_backend/platform/phone"

	"github.com/google/uuid"
)

const (
	opIngest              = "leads.service.ingest"
	opSetStatus           = "leads.service.set_status"
	opScheduleMeeting     = "leads.service.schedule_meeting"
	opUpdateMeetingStatus = "leads.service.update_meeting_status"
)

// LeadStore is the repository surface the service depends on.
type LeadStore interface {
	CreateIfAbsent(ctx context.Context, p repository.CreateParams) (repository.Lead, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	List(ctx context.Context, filter repository.ListFilter) ([]repository.Lead, error)
	Update(ctx context.Context, id uuid.UUID, p repository.UpdateParams) (repository.Lead, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) (repository.Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AppendRemark(ctx context.Context, p repository.RemarkParams) (repository.Remark, error)
	ListRemarks(ctx context.Context, leadID uuid.UUID) ([]repository.Remark, error)
	CreateMeeting(ctx context.Context, p repository.MeetingParams) (repository.Meeting, error)
	GetMeeting(ctx context.Context, leadID, meetingID uuid.UUID) (repository.Meeting, error)
	ListMeetings(ctx context.Context, leadID uuid.UUID) ([]repository.Meeting, error)
	UpdateMeetingStatus(ctx context.Context, leadID, meetingID uuid.UUID, status, notes string) (repository.Meeting, error)
}

// PathUpserter resolves classified paths to hierarchy source nodes.
type PathUpserter interface {
	UpsertPath(ctx context.Context, path taxonomy.Path, sourceName, sourceType string) (hierarchy.Node, error)
}

// Service orchestrates lead intake and lifecycle operations.
type Service struct {
	repo       LeadStore
	hierarchy  PathUpserter
	classifier *taxonomy.Classifier
	bus        events.Bus
	log        *logger.Logger
}

// New creates a leads service.
func New(repo LeadStore, hier PathUpserter, classifier *taxonomy.Classifier, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		hierarchy:  hier,
		classifier: classifier,
		bus:        bus,
		log:        log,
	}
}

// NormalizeEmail lowercases and trims an email for dedup comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Ingest runs the shared intake pipeline: validate, normalize, classify and
// attribute, then create-if-absent keyed by email. Duplicate submissions
// return the existing lead with Created=false and cause no writes, no
// events and no notifications.
func (s *Service) Ingest(ctx context.Context, intake transport.LeadIntake) (transport.IngestResult, error) {
	firstName := strings.TrimSpace(intake.FirstName)
	if firstName == "" {
		return transport.IngestResult{}, apperr.Validation("firstName is required").WithOp(opIngest)
	}
	email := NormalizeEmail(intake.Email)
	if email == "" || !strings.Contains(email, "@") {
		return transport.IngestResult{}, apperr.Validation("a valid email is required").WithOp(opIngest)
	}

	lastName := strings.TrimSpace(intake.LastName)
	if lastName == "" {
		lastName = "-"
	}

	var sourceID *uuid.UUID
	var resolved *transport.HierarchyPath
	sourceLabel := intake.SourceName
	if intake.RouteHierarchy {
		if s.hierarchy == nil {
			return transport.IngestResult{}, apperr.Internal("hierarchy service not configured").WithOp(opIngest)
		}
		path := s.resolvePath(intake)
		source, err := s.hierarchy.UpsertPath(ctx, path, intake.SourceName, intake.SourceType)
		if err != nil {
			return transport.IngestResult{}, err
		}
		sourceID = &source.ID
		resolved = &transport.HierarchyPath{
			Project:   path.Project,
			Domain:    path.Domain,
			Subdomain: path.Subdomain,
			Campaign:  path.Campaign,
			Source:    source.Name,
		}
	}

	lead, created, err := s.repo.CreateIfAbsent(ctx, repository.CreateParams{
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		Phone:      phone.NormalizeE164(intake.Phone),
		Company:    strings.TrimSpace(intake.Company),
		SourceID:   sourceID,
		SourceType: transport.CoerceSourceType(intake.SourceType),
		SourceURL:  strings.TrimSpace(intake.SourceURL),
		Details:    intake.Details,
	})
	if err != nil {
		return transport.IngestResult{}, err
	}

	if created {
		if note := intakeRemark(intake); note != "" {
			if _, remarkErr := s.repo.AppendRemark(ctx, repository.RemarkParams{
				LeadID:      lead.ID,
				Note:        note,
				Method:      domain.MethodOther,
				AddedByName: "System",
			}); remarkErr != nil && s.log != nil {
				s.log.WithContext(ctx).Warn("intake remark failed", "leadId", lead.ID, "error", remarkErr.Error())
			}
		}

		if s.bus != nil {
			s.bus.Publish(ctx, events.LeadCreated{
				BaseEvent: events.NewBaseEvent(),
				LeadID:    lead.ID,
				FirstName: lead.FirstName,
				LastName:  lead.LastName,
				Email:     lead.Email,
				Channel:   intake.Channel,
				Source:    sourceLabel,
			})
		}
	}

	return transport.IngestResult{Created: created, Lead: toTransportLead(lead), Hierarchy: resolved}, nil
}

// resolvePath picks the hierarchy path for an intake: channel overrides pin
// the domain/campaign, otherwise the classifier routes the free-text signal.
func (s *Service) resolvePath(intake transport.LeadIntake) taxonomy.Path {
	if intake.DomainOverride == "" {
		return s.classifier.Classify(intake.Signal)
	}

	path := s.classifier.DefaultPath()
	path.Domain = intake.DomainOverride
	path.Subdomain = intake.DomainOverride
	if intake.CampaignOverride != "" {
		path.Campaign = intake.CampaignOverride
	}
	return path
}

func intakeRemark(intake transport.LeadIntake) string {
	signal := strings.TrimSpace(intake.Signal)
	if signal != "" {
		return signal
	}
	if intake.Channel != "" {
		return fmt.Sprintf("Lead captured via %s", intake.Channel)
	}
	return ""
}

// Get returns a lead with its remark and meeting history.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.LeadDetail, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.LeadDetail{}, err
	}

	remarks, err := s.repo.ListRemarks(ctx, id)
	if err != nil {
		return transport.LeadDetail{}, err
	}

	meetings, err := s.repo.ListMeetings(ctx, id)
	if err != nil {
		return transport.LeadDetail{}, err
	}

	detail := transport.LeadDetail{Lead: toTransportLead(lead)}
	detail.Remarks = toTransportRemarks(remarks)
	detail.Meetings = toTransportMeetings(meetings)
	return detail, nil
}

// List returns leads matching the filter.
func (s *Service) List(ctx context.Context, filter repository.ListFilter) ([]transport.Lead, error) {
	leads, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]transport.Lead, 0, len(leads))
	for _, lead := range leads {
		out = append(out, toTransportLead(lead))
	}
	return out, nil
}

// Update applies a general edit to contact fields, value and assignment.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (transport.Lead, error) {
	params := repository.UpdateParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Company:   req.Company,
		Value:     req.Value,
	}
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone)
		params.Phone = &normalized
	}
	if req.AssignedTo != nil {
		assignee, err := uuid.Parse(*req.AssignedTo)
		if err != nil {
			return transport.Lead{}, apperr.Validation("invalid assignedTo")
		}
		params.AssignedTo = &assignee
	}

	lead, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return transport.Lead{}, err
	}
	return toTransportLead(lead), nil
}

// SetStatus overwrites the lead status. Any valid status may follow any
// other; this method is the single chokepoint where a stricter transition
// matrix would live.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) (transport.Lead, error) {
	if !domain.IsValidLeadStatus(status) {
		return transport.Lead{}, apperr.Validation("invalid lead status").WithOp(opSetStatus)
	}

	lead, err := s.repo.SetStatus(ctx, id, status)
	if err != nil {
		return transport.Lead{}, err
	}
	return toTransportLead(lead), nil
}

// AppendRemark adds a note to a lead's history.
func (s *Service) AppendRemark(ctx context.Context, leadID uuid.UUID, req transport.AddRemarkRequest, addedBy *uuid.UUID, addedByName string) (transport.Remark, error) {
	if _, err := s.repo.GetByID(ctx, leadID); err != nil {
		return transport.Remark{}, err
	}

	remark, err := s.repo.AppendRemark(ctx, repository.RemarkParams{
		LeadID:            leadID,
		Note:              req.Note,
		Method:            req.Method,
		LastContactedDate: req.LastContactedDate,
		AddedBy:           addedBy,
		AddedByName:       addedByName,
	})
	if err != nil {
		return transport.Remark{}, err
	}
	return toTransportRemark(remark), nil
}

// ScheduleMeeting books a meeting through the dedicated scheduling action:
// the meeting starts Scheduled, the lead moves to Contacted, and a
// MeetingScheduled event is published so a reminder can be enqueued.
func (s *Service) ScheduleMeeting(ctx context.Context, leadID uuid.UUID, req transport.ScheduleMeetingRequest, schedulerID *uuid.UUID) (transport.Meeting, error) {
	if _, err := s.repo.GetByID(ctx, leadID); err != nil {
		return transport.Meeting{}, err
	}

	var hostID *uuid.UUID
	if req.HostID != nil {
		parsed, err := uuid.Parse(*req.HostID)
		if err != nil {
			return transport.Meeting{}, apperr.Validation("invalid hostId").WithOp(opScheduleMeeting)
		}
		hostID = &parsed
	}

	meeting, err := s.repo.CreateMeeting(ctx, repository.MeetingParams{
		LeadID:      leadID,
		Title:       req.Title,
		MeetingDate: req.MeetingDate,
		Link:        req.Link,
		HostID:      hostID,
		SchedulerID: schedulerID,
		Notes:       req.Notes,
	})
	if err != nil {
		return transport.Meeting{}, err
	}

	if _, statusErr := s.repo.SetStatus(ctx, leadID, domain.StatusContacted); statusErr != nil && s.log != nil {
		s.log.WithContext(ctx).Warn("lead status side-effect failed", "leadId", leadID, "error", statusErr.Error())
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.MeetingScheduled{
			BaseEvent:   events.NewBaseEvent(),
			LeadID:      leadID,
			MeetingID:   meeting.ID,
			Title:       meeting.Title,
			MeetingDate: meeting.MeetingDate,
		})
	}

	return toTransportMeeting(meeting), nil
}

// AddMeeting records a meeting through the general edit path: no lead
// status side-effect and no scheduling event.
func (s *Service) AddMeeting(ctx context.Context, leadID uuid.UUID, req transport.AddMeetingRequest) (transport.Meeting, error) {
	if _, err := s.repo.GetByID(ctx, leadID); err != nil {
		return transport.Meeting{}, err
	}

	meeting, err := s.repo.CreateMeeting(ctx, repository.MeetingParams{
		LeadID:      leadID,
		Title:       req.Title,
		MeetingDate: req.MeetingDate,
		Link:        req.Link,
		Notes:       req.Notes,
	})
	if err != nil {
		return transport.Meeting{}, err
	}
	return toTransportMeeting(meeting), nil
}

// UpdateMeetingStatus moves one meeting through its lifecycle. Unknown
// meeting IDs are NotFound; transitions out of a terminal status are
// rejected.
func (s *Service) UpdateMeetingStatus(ctx context.Context, leadID, meetingID uuid.UUID, req transport.UpdateMeetingStatusRequest) (transport.Meeting, error) {
	if !domain.IsValidMeetingStatus(req.Status) {
		return transport.Meeting{}, apperr.Validation("invalid meeting status").WithOp(opUpdateMeetingStatus)
	}

	current, err := s.repo.GetMeeting(ctx, leadID, meetingID)
	if err != nil {
		return transport.Meeting{}, err
	}
	if !domain.CanTransitionMeeting(current.Status, req.Status) {
		return transport.Meeting{}, apperr.Validation(
			fmt.Sprintf("meeting cannot move from %s to %s", current.Status, req.Status),
		).WithOp(opUpdateMeetingStatus)
	}

	meeting, err := s.repo.UpdateMeetingStatus(ctx, leadID, meetingID, req.Status, req.Notes)
	if err != nil {
		return transport.Meeting{}, err
	}
	return toTransportMeeting(meeting), nil
}

// Delete removes a lead with its history.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ---- mapping helpers ----

func toTransportLead(l repository.Lead) transport.Lead {
	return transport.Lead{
		ID:         l.ID,
		FirstName:  l.FirstName,
		LastName:   l.LastName,
		Email:      l.Email,
		Phone:      l.Phone,
		Company:    l.Company,
		SourceID:   l.SourceID,
		SourceType: l.SourceType,
		SourceURL:  l.SourceURL,
		Status:     l.Status,
		Value:      l.Value,
		AssignedTo: l.AssignedTo,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

func toTransportRemark(r repository.Remark) transport.Remark {
	return transport.Remark{
		ID:                r.ID,
		LeadID:            r.LeadID,
		Note:              r.Note,
		Method:            r.Method,
		LastContactedDate: r.LastContactedDate,
		AddedBy:           r.AddedBy,
		AddedByName:       r.AddedByName,
		CreatedAt:         r.CreatedAt,
	}
}

func toTransportRemarks(remarks []repository.Remark) []transport.Remark {
	out := make([]transport.Remark, 0, len(remarks))
	for _, r := range remarks {
		out = append(out, toTransportRemark(r))
	}
	return out
}

func toTransportMeeting(m repository.Meeting) transport.Meeting {
	return transport.Meeting{
		ID:          m.ID,
		LeadID:      m.LeadID,
		Title:       m.Title,
		MeetingDate: m.MeetingDate,
		Link:        m.Link,
		Status:      m.Status,
		HostID:      m.HostID,
		SchedulerID: m.SchedulerID,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toTransportMeetings(meetings []repository.Meeting) []transport.Meeting {
	out := make([]transport.Meeting, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, toTransportMeeting(m))
	}
	return out
}

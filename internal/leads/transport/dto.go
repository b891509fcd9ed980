// Package transport defines the wire DTOs for the leads bounded context.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// Source types accepted on intake. Unknown values coerce to Other.
const (
	SourceTypeWebsite = "Website"
	SourceTypeMeta    = "Meta"
	SourceTypeManual  = "Manual"
	SourceTypeOther   = "Other"
)

// CoerceSourceType maps an arbitrary value onto the known source types.
func CoerceSourceType(value string) string {
	switch value {
	case SourceTypeWebsite, SourceTypeMeta, SourceTypeManual, SourceTypeOther:
		return value
	default:
		return SourceTypeOther
	}
}

// LeadIntake is the canonical intake value every ingestion channel produces.
// Webhook parsers normalize their payloads into this shape before handing
// off to the lead service.
type LeadIntake struct {
	Channel    string            // originating endpoint, for logging and events
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Company    string
	SourceType string
	SourceURL  string
	Signal     string            // free text routed through the classifier
	Details    map[string]string // channel-specific extras, persisted as JSONB

	// RouteHierarchy controls whether the intake is classified and attributed
	// to a hierarchy source node.
	RouteHierarchy bool
	// DomainOverride pins the hierarchy domain instead of classifying Signal.
	DomainOverride string
	// CampaignOverride pins the hierarchy campaign.
	CampaignOverride string
	// SourceName names the Source leaf node (e.g. "Company Website").
	SourceName string
}

// HierarchyPath labels the attribution chain a routed intake resolved to.
type HierarchyPath struct {
	Project   string `json:"project"`
	Domain    string `json:"domain"`
	Subdomain string `json:"subdomain"`
	Campaign  string `json:"campaign"`
	Source    string `json:"source"`
}

// IngestResult reports the outcome of an intake. Hierarchy is set only when
// the intake was routed through the marketing hierarchy.
type IngestResult struct {
	Created   bool
	Lead      Lead
	Hierarchy *HierarchyPath
}

// Lead is the wire representation of a lead.
type Lead struct {
	ID         uuid.UUID  `json:"id"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Company    string     `json:"company"`
	SourceID   *uuid.UUID `json:"sourceId,omitempty"`
	SourceType string     `json:"sourceType"`
	SourceURL  string     `json:"sourceUrl,omitempty"`
	Status     string     `json:"status"`
	Value      int64      `json:"value"`
	AssignedTo *uuid.UUID `json:"assignedTo,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Remark is an append-only note on a lead.
type Remark struct {
	ID                uuid.UUID  `json:"id"`
	LeadID            uuid.UUID  `json:"leadId"`
	Note              string     `json:"note"`
	Method            string     `json:"method,omitempty"`
	LastContactedDate *time.Time `json:"lastContactedDate,omitempty"`
	AddedBy           *uuid.UUID `json:"addedBy,omitempty"`
	AddedByName       string     `json:"addedByName,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// Meeting is a scheduled interaction with a lead.
type Meeting struct {
	ID          uuid.UUID  `json:"id"`
	LeadID      uuid.UUID  `json:"leadId"`
	Title       string     `json:"title"`
	MeetingDate time.Time  `json:"meetingDate"`
	Link        string     `json:"link,omitempty"`
	Status      string     `json:"status"`
	HostID      *uuid.UUID `json:"hostId,omitempty"`
	SchedulerID *uuid.UUID `json:"schedulerId,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// LeadDetail bundles a lead with its remark and meeting history.
type LeadDetail struct {
	Lead
	Remarks  []Remark  `json:"remarks"`
	Meetings []Meeting `json:"meetings"`
}

// CreateLeadRequest is the body for authenticated manual lead creation.
type CreateLeadRequest struct {
	FirstName  string `json:"firstName" validate:"required,min=1,max=100"`
	LastName   string `json:"lastName" validate:"max=100"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"max=30"`
	Company    string `json:"company" validate:"max=200"`
	SourceType string `json:"sourceType" validate:"omitempty,oneof=Website Meta Manual Other"`
	Value      int64  `json:"value" validate:"gte=0"`
}

// UpdateLeadRequest is the body for general lead edits. Nil fields are left
// untouched. Status changes go through the dedicated status endpoint.
type UpdateLeadRequest struct {
	FirstName  *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName   *string `json:"lastName" validate:"omitempty,max=100"`
	Phone      *string `json:"phone" validate:"omitempty,max=30"`
	Company    *string `json:"company" validate:"omitempty,max=200"`
	Value      *int64  `json:"value" validate:"omitempty,gte=0"`
	AssignedTo *string `json:"assignedTo" validate:"omitempty,uuid"`
}

// SetStatusRequest is the body for the status endpoint.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AddRemarkRequest is the body for appending a remark.
type AddRemarkRequest struct {
	Note              string     `json:"note" validate:"required,min=1,max=5000"`
	Method            string     `json:"method" validate:"omitempty,oneof=Call Email WhatsApp In-Person Other"`
	LastContactedDate *time.Time `json:"lastContactedDate"`
}

// ScheduleMeetingRequest is the body for the dedicated scheduling action.
type ScheduleMeetingRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=300"`
	MeetingDate time.Time `json:"meetingDate" validate:"required"`
	Link        string    `json:"link" validate:"max=500"`
	HostID      *string   `json:"hostId" validate:"omitempty,uuid"`
	Notes       string    `json:"notes" validate:"max=5000"`
}

// AddMeetingRequest is the body for the general meeting edit path.
type AddMeetingRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=300"`
	MeetingDate time.Time `json:"meetingDate" validate:"required"`
	Link        string    `json:"link" validate:"max=500"`
	Notes       string    `json:"notes" validate:"max=5000"`
}

// UpdateMeetingStatusRequest is the body for meeting status updates.
type UpdateMeetingStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes" validate:"max=5000"`
}

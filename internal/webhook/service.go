// Package webhook provides the inbound lead capture bounded context:
// the public contact form, the signed Meta lead-ads webhook and the
// partner intake endpoint.
package webhook

import (
	"context"
	"fmt"
	"strings"

	"salescrm_backend/internal/leads/transport"
	"salescrm_backend/platform/logger"
	"salescrm_backend/platform/sanitize"
)

// Channel names used for logging, events and intake remarks.
const (
	ChannelContactForm = "contact-form"
	ChannelMeta        = "meta-leadgen"
	ChannelPartner     = "partner-webhook"
)

// Hierarchy constants for the website and Meta capture paths.
const (
	sourceNameWebsite   = "Company Website"
	metaDomain          = "Social Media Marketing"
	defaultMetaCampaign = "Meta Lead Ads"
)

// LeadIngestor is the lead service surface the webhook module needs.
type LeadIngestor interface {
	Ingest(ctx context.Context, intake transport.LeadIntake) (transport.IngestResult, error)
}

// Service converts channel payloads into canonical intakes.
type Service struct {
	ingestor LeadIngestor
	fetcher  LeadFetcher
	log      *logger.Logger
}

// NewService creates a webhook service.
func NewService(ingestor LeadIngestor, fetcher LeadFetcher, log *logger.Logger) *Service {
	return &Service{ingestor: ingestor, fetcher: fetcher, log: log}
}

// ContactSubmission is the public contact form payload.
type ContactSubmission struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
}

// ProcessContactForm ingests a public contact form submission. The subject
// and message drive taxonomy classification; the lead is attributed to the
// website source.
func (s *Service) ProcessContactForm(ctx context.Context, sub ContactSubmission) (transport.IngestResult, error) {
	firstName, lastName := SplitFullName(sanitize.Text(sub.FullName))

	subject := sanitize.Text(sub.Subject)
	message := sanitize.Text(sub.Message)
	signal := strings.Trim(subject+" | "+message, "| ")

	return s.ingestor.Ingest(ctx, transport.LeadIntake{
		Channel:        ChannelContactForm,
		FirstName:      firstName,
		LastName:       lastName,
		Email:          sub.Email,
		Phone:          sub.Phone,
		Signal:         signal,
		SourceType:     transport.SourceTypeWebsite,
		RouteHierarchy: true,
		SourceName:     sourceNameWebsite,
		Details: map[string]string{
			"subject": subject,
			"message": message,
		},
	})
}

// PartnerLead is the partner intake payload.
type PartnerLead struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Company    string `json:"company"`
	SourceType string `json:"sourceType"`
	SourceURL  string `json:"sourceUrl"`
}

// ProcessPartnerLead ingests a partner submission. Partners carry their own
// attribution, so the intake bypasses hierarchy routing; unknown source
// types coerce to Other.
func (s *Service) ProcessPartnerLead(ctx context.Context, lead PartnerLead) (transport.IngestResult, error) {
	return s.ingestor.Ingest(ctx, transport.LeadIntake{
		Channel:    ChannelPartner,
		FirstName:  sanitize.Text(lead.FirstName),
		LastName:   sanitize.Text(lead.LastName),
		Email:      lead.Email,
		Phone:      lead.Phone,
		Company:    sanitize.Text(lead.Company),
		SourceType: transport.CoerceSourceType(lead.SourceType),
		SourceURL:  lead.SourceURL,
	})
}

// MetaPayload is the webhook envelope Meta posts for page events.
type MetaPayload struct {
	Object string      `json:"object"`
	Entry  []MetaEntry `json:"entry"`
}

// MetaEntry is one page entry in a Meta webhook delivery.
type MetaEntry struct {
	ID      string       `json:"id"`
	Time    int64        `json:"time"`
	Changes []MetaChange `json:"changes"`
}

// MetaChange is one change notification within an entry.
type MetaChange struct {
	Field string          `json:"field"`
	Value MetaChangeValue `json:"value"`
}

// MetaChangeValue carries the leadgen reference for a change.
type MetaChangeValue struct {
	LeadgenID   string `json:"leadgen_id"`
	AdID        string `json:"ad_id"`
	FormID      string `json:"form_id"`
	PageID      string `json:"page_id"`
	CreatedTime int64  `json:"created_time"`
}

// ProcessMetaEvents walks every leadgen change in a delivery. Each event is
// processed in isolation: a failed Graph fetch or an unusable field set is
// logged and skipped while the remaining events continue. The caller
// acknowledges the delivery regardless, so Meta does not retry a batch for
// one bad event.
func (s *Service) ProcessMetaEvents(ctx context.Context, payload MetaPayload) {
	if payload.Object != "page" {
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "leadgen" {
				continue
			}
			if err := s.processLeadgenChange(ctx, change.Value); err != nil {
				if s.log != nil {
					s.log.WithContext(ctx).Error("meta leadgen event skipped",
						"leadgenId", change.Value.LeadgenID,
						"error", err.Error(),
					)
				}
			}
		}
	}
}

func (s *Service) processLeadgenChange(ctx context.Context, value MetaChangeValue) error {
	if value.LeadgenID == "" {
		return fmt.Errorf("change carries no leadgen id")
	}
	if s.fetcher == nil {
		return fmt.Errorf("graph client not configured")
	}

	graphLead, err := s.fetcher.FetchLead(ctx, value.LeadgenID)
	if err != nil {
		return err
	}

	fields := ExtractLeadFields(graphLead.FieldData)
	if fields.IsIncomplete() {
		return fmt.Errorf("leadgen %s has neither name nor email", value.LeadgenID)
	}

	firstName, lastName := SplitFullName(fields.FullName)
	if firstName == "" {
		// Name missing but email present: derive a placeholder from the email.
		firstName = strings.SplitN(fields.Email, "@", 2)[0]
	}

	adName := strings.TrimSpace(graphLead.AdName)
	if adName == "" {
		adName = value.AdID
	}
	sourceName := "Meta Ads"
	if adName != "" {
		sourceName = fmt.Sprintf("Meta Ads (%s)", adName)
	}

	campaign := strings.TrimSpace(graphLead.CampaignName)
	if campaign == "" {
		campaign = defaultMetaCampaign
	}

	result, err := s.ingestor.Ingest(ctx, transport.LeadIntake{
		Channel:          ChannelMeta,
		FirstName:        firstName,
		LastName:         lastName,
		Email:            fields.Email,
		Phone:            fields.Phone,
		SourceType:       transport.SourceTypeMeta,
		RouteHierarchy:   true,
		DomainOverride:   metaDomain,
		CampaignOverride: campaign,
		SourceName:       sourceName,
		Details: map[string]string{
			"leadgenId": value.LeadgenID,
			"formId":    value.FormID,
			"pageId":    value.PageID,
		},
	})
	if err != nil {
		return err
	}

	if s.log != nil {
		s.log.WithContext(ctx).Info("meta leadgen processed",
			"leadgenId", value.LeadgenID,
			"leadId", result.Lead.ID,
			"created", result.Created,
		)
	}
	return nil
}

// Package email delivers transactional notification mails over SMTP.
package email

import (
	"context"

	"salescrm_backend/platform/config"
	"salescrm_backend/platform/logger"
)

// LeadCreatedEmail carries the data for a new-lead notification mail.
type LeadCreatedEmail struct {
	RecipientName string
	LeadName      string
	LeadEmail     string
	Channel       string
	SourceName    string
	LeadURL       string
}

// MeetingReminderEmail carries the data for an upcoming-meeting mail.
type MeetingReminderEmail struct {
	RecipientName string
	LeadName      string
	MeetingTitle  string
	MeetingTime   string
	LeadURL       string
}

// Sender delivers notification emails.
type Sender interface {
	SendLeadCreatedEmail(ctx context.Context, toEmail string, data LeadCreatedEmail) error
	SendMeetingReminderEmail(ctx context.Context, toEmail string, data MeetingReminderEmail) error
}

// NoopSender discards all emails. Used when SMTP is not configured so the
// notification pipeline keeps working without delivery.
type NoopSender struct {
	log *logger.Logger
}

// NewNoopSender creates a sender that only logs.
func NewNoopSender(log *logger.Logger) *NoopSender {
	return &NoopSender{log: log}
}

func (n *NoopSender) SendLeadCreatedEmail(_ context.Context, toEmail string, data LeadCreatedEmail) error {
	if n.log != nil {
		n.log.Info("email delivery disabled, skipping lead notification", "to", toEmail, "lead", data.LeadName)
	}
	return nil
}

func (n *NoopSender) SendMeetingReminderEmail(_ context.Context, toEmail string, data MeetingReminderEmail) error {
	if n.log != nil {
		n.log.Info("email delivery disabled, skipping meeting reminder", "to", toEmail, "lead", data.LeadName)
	}
	return nil
}

// NewSender picks the SMTP sender when email is enabled, the noop sender
// otherwise.
func NewSender(cfg config.EmailConfig, log *logger.Logger) Sender {
	if !cfg.GetEmailEnabled() {
		return NewNoopSender(log)
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

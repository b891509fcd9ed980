// Package domain provides core business rules for the leads bounded context.
package domain

// Lead statuses in canonical display order.
const (
	StatusNew           = "New"
	StatusInProgress    = "In Progress"
	StatusContacted     = "Contacted"
	StatusNeedsAnalysis = "Needs Analysis"
	StatusProposalSent  = "Proposal Sent"
	StatusQualified     = "Qualified"
	StatusWon           = "Won"
	StatusLost          = "Lost"
	StatusClosed        = "Closed"
)

// LeadStatuses lists all valid lead statuses in display order.
var LeadStatuses = []string{
	StatusNew,
	StatusInProgress,
	StatusContacted,
	StatusNeedsAnalysis,
	StatusProposalSent,
	StatusQualified,
	StatusWon,
	StatusLost,
	StatusClosed,
}

// IsValidLeadStatus reports whether the value is a known lead status.
func IsValidLeadStatus(status string) bool {
	for _, s := range LeadStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Remark contact methods.
const (
	MethodCall     = "Call"
	MethodEmail    = "Email"
	MethodWhatsApp = "WhatsApp"
	MethodInPerson = "In-Person"
	MethodOther    = "Other"
)

// Meeting statuses.
const (
	MeetingScheduled   = "Scheduled"
	MeetingCompleted   = "Completed"
	MeetingRescheduled = "Rescheduled"
	MeetingCancelled   = "Cancelled"
)

// MeetingStatuses lists all valid meeting statuses.
var MeetingStatuses = []string{
	MeetingScheduled,
	MeetingCompleted,
	MeetingRescheduled,
	MeetingCancelled,
}

// IsValidMeetingStatus reports whether the value is a known meeting status.
func IsValidMeetingStatus(status string) bool {
	for _, s := range MeetingStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// CanTransitionMeeting reports whether a meeting may move from one status to
// another. Only Scheduled meetings move; Completed, Rescheduled and
// Cancelled are terminal. Rescheduled is a historical label: booking the
// follow-up meeting is a separate action.
func CanTransitionMeeting(from, to string) bool {
	if !IsValidMeetingStatus(from) || !IsValidMeetingStatus(to) {
		return false
	}
	if from == to {
		return true
	}
	return from == MeetingScheduled
}

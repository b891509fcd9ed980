package domain

import "testing"

func TestMeetingTransitions(t *testing.T) {
	cases := []struct {
		from string
		to   string
		want bool
	}{
		{MeetingScheduled, MeetingCompleted, true},
		{MeetingScheduled, MeetingRescheduled, true},
		{MeetingScheduled, MeetingCancelled, true},
		{MeetingCompleted, MeetingScheduled, false},
		{MeetingCompleted, MeetingCancelled, false},
		{MeetingRescheduled, MeetingCompleted, false},
		{MeetingCancelled, MeetingScheduled, false},
		{MeetingScheduled, MeetingScheduled, true},
		{MeetingScheduled, "Unknown", false},
		{"Unknown", MeetingCompleted, false},
	}

	for _, tc := range cases {
		if got := CanTransitionMeeting(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransitionMeeting(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestLeadStatusValidation(t *testing.T) {
	for _, s := range LeadStatuses {
		if !IsValidLeadStatus(s) {
			t.Errorf("IsValidLeadStatus(%q) = false", s)
		}
	}
	// Multi-word pipeline stages must be accepted verbatim.
	for _, s := range []string{"In Progress", "Needs Analysis", "Proposal Sent", "Closed"} {
		if !IsValidLeadStatus(s) {
			t.Errorf("IsValidLeadStatus(%q) = false", s)
		}
	}
	for _, s := range []string{"", "new", "Open", "Archived", "Proposal", "Negotiation"} {
		if IsValidLeadStatus(s) {
			t.Errorf("IsValidLeadStatus(%q) = true", s)
		}
	}
}

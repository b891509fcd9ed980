package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salescrm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	opCreateMeeting        = "leads.repository.create_meeting"
	opGetMeeting           = "leads.repository.get_meeting"
	opListMeetings         = "leads.repository.list_meetings"
	opUpdateMeetingStatus  = "leads.repository.update_meeting_status"
	opListUpcomingMeetings = "leads.repository.list_upcoming_meetings"
)

// Meeting is a scheduled interaction row.
type Meeting struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	Title       string
	MeetingDate time.Time
	Link        string
	Status      string
	HostID      *uuid.UUID
	SchedulerID *uuid.UUID
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MeetingParams holds the fields for a new meeting.
type MeetingParams struct {
	LeadID      uuid.UUID
	Title       string
	MeetingDate time.Time
	Link        string
	HostID      *uuid.UUID
	SchedulerID *uuid.UUID
	Notes       string
}

// UpcomingMeeting joins a scheduled meeting with its lead for reminder scans.
type UpcomingMeeting struct {
	Meeting
	LeadFirstName  string
	LeadLastName   string
	LeadEmail      string
	LeadAssignedTo *uuid.UUID
}

const meetingColumns = `id, lead_id, title, meeting_date, link, status, host_id, scheduler_id, notes, created_at, updated_at`

func scanMeeting(row pgx.Row) (Meeting, error) {
	var m Meeting
	err := row.Scan(
		&m.ID, &m.LeadID, &m.Title, &m.MeetingDate, &m.Link, &m.Status,
		&m.HostID, &m.SchedulerID, &m.Notes, &m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

// CreateMeeting inserts a meeting in Scheduled status.
func (r *Repository) CreateMeeting(ctx context.Context, p MeetingParams) (Meeting, error) {
	if r == nil || r.pool == nil {
		return Meeting{}, apperr.Internal(errRepoNotConfigured).WithOp(opCreateMeeting)
	}

	meeting, err := scanMeeting(r.pool.QueryRow(ctx, `
		INSERT INTO lead_meetings (lead_id, title, meeting_date, link, host_id, scheduler_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+meetingColumns+`
	`, p.LeadID, p.Title, p.MeetingDate, p.Link, p.HostID, p.SchedulerID, p.Notes))
	if err != nil {
		return Meeting{}, apperr.Internal(fmt.Sprintf("create meeting failed: %v", err)).WithOp(opCreateMeeting)
	}

	return meeting, nil
}

// GetMeeting returns a meeting scoped to its lead.
func (r *Repository) GetMeeting(ctx context.Context, leadID, meetingID uuid.UUID) (Meeting, error) {
	if r == nil || r.pool == nil {
		return Meeting{}, apperr.Internal(errRepoNotConfigured).WithOp(opGetMeeting)
	}

	meeting, err := scanMeeting(r.pool.QueryRow(ctx, `
		SELECT `+meetingColumns+` FROM lead_meetings WHERE id = $1 AND lead_id = $2
	`, meetingID, leadID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Meeting{}, apperr.NotFound("meeting not found").WithOp(opGetMeeting)
		}
		return Meeting{}, apperr.Internal(fmt.Sprintf("get meeting failed: %v", err)).WithOp(opGetMeeting)
	}

	return meeting, nil
}

// ListMeetings returns a lead's meetings, soonest first.
func (r *Repository) ListMeetings(ctx context.Context, leadID uuid.UUID) ([]Meeting, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opListMeetings)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+meetingColumns+` FROM lead_meetings WHERE lead_id = $1 ORDER BY meeting_date
	`, leadID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list meetings failed: %v", err)).WithOp(opListMeetings)
	}
	defer rows.Close()

	items := make([]Meeting, 0)
	for rows.Next() {
		meeting, scanErr := scanMeeting(rows)
		if scanErr != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan meetings failed: %v", scanErr)).WithOp(opListMeetings)
		}
		items = append(items, meeting)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate meetings failed: %v", rowsErr)).WithOp(opListMeetings)
	}

	return items, nil
}

// UpdateMeetingStatus updates one meeting in place. Sibling meetings on the
// same lead are untouched.
func (r *Repository) UpdateMeetingStatus(ctx context.Context, leadID, meetingID uuid.UUID, status, notes string) (Meeting, error) {
	if r == nil || r.pool == nil {
		return Meeting{}, apperr.Internal(errRepoNotConfigured).WithOp(opUpdateMeetingStatus)
	}

	meeting, err := scanMeeting(r.pool.QueryRow(ctx, `
		UPDATE lead_meetings
		SET status = $3, notes = CASE WHEN $4 <> '' THEN $4 ELSE notes END, updated_at = now()
		WHERE id = $1 AND lead_id = $2
		RETURNING `+meetingColumns+`
	`, meetingID, leadID, status, notes))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Meeting{}, apperr.NotFound("meeting not found").WithOp(opUpdateMeetingStatus)
		}
		return Meeting{}, apperr.Internal(fmt.Sprintf("update meeting status failed: %v", err)).WithOp(opUpdateMeetingStatus)
	}

	return meeting, nil
}

// ListUpcomingScheduled returns Scheduled meetings whose date falls within
// [from, to], joined with lead contact fields for notification fan-out.
func (r *Repository) ListUpcomingScheduled(ctx context.Context, from, to time.Time) ([]UpcomingMeeting, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opListUpcomingMeetings)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.lead_id, m.title, m.meeting_date, m.link, m.status,
		       m.host_id, m.scheduler_id, m.notes, m.created_at, m.updated_at,
		       l.first_name, l.last_name, l.email, l.assigned_to
		FROM lead_meetings m
		JOIN leads l ON l.id = m.lead_id
		WHERE m.status = 'Scheduled' AND m.meeting_date BETWEEN $1 AND $2
		ORDER BY m.meeting_date
	`, from, to)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list upcoming meetings failed: %v", err)).WithOp(opListUpcomingMeetings)
	}
	defer rows.Close()

	items := make([]UpcomingMeeting, 0)
	for rows.Next() {
		var u UpcomingMeeting
		if scanErr := rows.Scan(
			&u.ID, &u.LeadID, &u.Title, &u.MeetingDate, &u.Link, &u.Status,
			&u.HostID, &u.SchedulerID, &u.Notes, &u.CreatedAt, &u.UpdatedAt,
			&u.LeadFirstName, &u.LeadLastName, &u.LeadEmail, &u.LeadAssignedTo,
		); scanErr != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan upcoming meetings failed: %v", scanErr)).WithOp(opListUpcomingMeetings)
		}
		items = append(items, u)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate upcoming meetings failed: %v", rowsErr)).WithOp(opListUpcomingMeetings)
	}

	return items, nil
}

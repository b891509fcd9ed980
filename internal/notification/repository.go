// Package notification fans lead and meeting events out to in-app
// notifications and email.
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salescrm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opCreate             = "notification.repository.create"
	opList               = "notification.repository.list"
	opCountUnread        = "notification.repository.count_unread"
	opMarkRead           = "notification.repository.mark_read"
	opMarkAllRead        = "notification.repository.mark_all_read"
	opExistsSimilarSince = "notification.repository.exists_similar_since"

	errRepoNotConfigured = "notification repository not configured"
	errUserIDRequired    = "userId is required"
)

// Notification types.
const (
	TypeLeadCreated     = "LeadCreated"
	TypeMeetingReminder = "MeetingReminder"
	TypeSystem          = "System"
)

type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateParams struct {
	UserID  uuid.UUID
	Title   string
	Message string
	Type    string
	Link    string
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (Notification, error) {
	if r == nil || r.pool == nil {
		return Notification{}, apperr.Internal(errRepoNotConfigured).WithOp(opCreate)
	}
	if p.UserID == uuid.Nil {
		return Notification{}, apperr.Validation(errUserIDRequired).WithOp(opCreate)
	}
	if p.Title == "" {
		return Notification{}, apperr.Validation("title is required").WithOp(opCreate)
	}

	nType := p.Type
	if nType == "" {
		nType = TypeSystem
	}

	var n Notification
	err := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, title, message, type, link)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, title, message, type, read, link, created_at
	`, p.UserID, p.Title, p.Message, nType, p.Link).Scan(
		&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Read, &n.Link, &n.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Notification{}, apperr.Validation("invalid userId").WithOp(opCreate)
		}
		return Notification{}, apperr.Internal(fmt.Sprintf("create notification failed: %v", err)).WithOp(opCreate)
	}

	return n, nil
}

func (r *Repository) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]Notification, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opList)
	}
	if userID == uuid.Nil {
		return nil, apperr.Validation(errUserIDRequired).WithOp(opList)
	}
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	query := `
		SELECT id, user_id, title, message, type, read, link, created_at
		FROM notifications
		WHERE user_id = $1`
	if unreadOnly {
		query += ` AND read = false`
	}
	query += `
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list notifications failed: %v", err)).WithOp(opList)
	}
	defer rows.Close()

	notifications := make([]Notification, 0, limit)
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Read, &n.Link, &n.CreatedAt); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan notification failed: %v", err)).WithOp(opList)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate notifications failed: %v", err)).WithOp(opList)
	}

	return notifications, nil
}

func (r *Repository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	if r == nil || r.pool == nil {
		return 0, apperr.Internal(errRepoNotConfigured).WithOp(opCountUnread)
	}
	if userID == uuid.Nil {
		return 0, apperr.Validation(errUserIDRequired).WithOp(opCountUnread)
	}

	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = false`, userID,
	).Scan(&count)
	if err != nil {
		return 0, apperr.Internal(fmt.Sprintf("count unread failed: %v", err)).WithOp(opCountUnread)
	}
	return count, nil
}

// MarkRead marks one notification read. The update is scoped to the owner so
// users cannot touch each other's notifications.
func (r *Repository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opMarkRead)
	}
	if userID == uuid.Nil || notificationID == uuid.Nil {
		return apperr.Validation("userId and notificationId are required").WithOp(opMarkRead)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`,
		notificationID, userID,
	)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("mark read failed: %v", err)).WithOp(opMarkRead)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("notification not found").WithOp(opMarkRead)
	}
	return nil
}

func (r *Repository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, apperr.Internal(errRepoNotConfigured).WithOp(opMarkAllRead)
	}
	if userID == uuid.Nil {
		return 0, apperr.Validation(errUserIDRequired).WithOp(opMarkAllRead)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = true WHERE user_id = $1 AND read = false`, userID,
	)
	if err != nil {
		return 0, apperr.Internal(fmt.Sprintf("mark all read failed: %v", err)).WithOp(opMarkAllRead)
	}
	return tag.RowsAffected(), nil
}

// ExistsSimilarSince reports whether the user already received a notification
// of the given type whose link contains the fragment, created after the
// cutoff. The reminder scanner keys the fragment on the meeting ID to
// suppress repeated reminders for the same meeting.
// Compile-time check that Repository implements Store
var _ Store = (*Repository)(nil)

func (r *Repository) ExistsSimilarSince(ctx context.Context, userID uuid.UUID, nType, linkFragment string, since time.Time) (bool, error) {
	if r == nil || r.pool == nil {
		return false, apperr.Internal(errRepoNotConfigured).WithOp(opExistsSimilarSince)
	}
	if userID == uuid.Nil {
		return false, apperr.Validation(errUserIDRequired).WithOp(opExistsSimilarSince)
	}

	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE user_id = $1 AND type = $2 AND link LIKE '%' || $3 || '%' AND created_at > $4
		)
	`, userID, nType, linkFragment, since).Scan(&exists)
	if err != nil {
		return false, apperr.Internal(fmt.Sprintf("similarity check failed: %v", err)).WithOp(opExistsSimilarSince)
	}
	return exists, nil
}

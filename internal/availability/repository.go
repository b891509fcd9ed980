// Package availability stores the weekly availability windows leaders
// publish so meetings can be planned around them. The windows are advisory:
// nothing blocks scheduling a meeting outside them.
package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salescrm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opGetWeek = "availability.repository.get_week"
	opSetWeek = "availability.repository.set_week"

	errRepoNotConfigured = "availability repository not configured"
)

// Slot is one day's availability window.
type Slot struct {
	ID          uuid.UUID `json:"id"`
	LeaderID    uuid.UUID `json:"leaderId"`
	DayOfWeek   int       `json:"dayOfWeek"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	IsAvailable bool      `json:"isAvailable"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SlotInput is one day's window as submitted by the leader.
type SlotInput struct {
	DayOfWeek   int    `json:"dayOfWeek"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	IsAvailable bool   `json:"isAvailable"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetWeek returns the leader's slots ordered by day of week.
func (r *Repository) GetWeek(ctx context.Context, leaderID uuid.UUID) ([]Slot, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opGetWeek)
	}
	if leaderID == uuid.Nil {
		return nil, apperr.Validation("leaderId is required").WithOp(opGetWeek)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, leader_id, day_of_week, start_time, end_time, is_available, created_at, updated_at
		FROM availability
		WHERE leader_id = $1
		ORDER BY day_of_week
	`, leaderID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("get week failed: %v", err)).WithOp(opGetWeek)
	}
	defer rows.Close()

	slots := make([]Slot, 0, 7)
	for rows.Next() {
		var s Slot
		if err := rows.Scan(&s.ID, &s.LeaderID, &s.DayOfWeek, &s.StartTime, &s.EndTime, &s.IsAvailable, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan slot failed: %v", err)).WithOp(opGetWeek)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate slots failed: %v", err)).WithOp(opGetWeek)
	}

	return slots, nil
}

// SetWeek upserts the given slots for the leader in one transaction. A slot
// for a day that already has one replaces it; days not mentioned keep their
// existing window.
func (r *Repository) SetWeek(ctx context.Context, leaderID uuid.UUID, slots []SlotInput) ([]Slot, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opSetWeek)
	}
	if leaderID == uuid.Nil {
		return nil, apperr.Validation("leaderId is required").WithOp(opSetWeek)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("begin set week failed: %v", err)).WithOp(opSetWeek)
	}
	defer tx.Rollback(ctx)

	for _, slot := range slots {
		_, err := tx.Exec(ctx, `
			INSERT INTO availability (leader_id, day_of_week, start_time, end_time, is_available)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (leader_id, day_of_week)
			DO UPDATE SET start_time = EXCLUDED.start_time,
			              end_time = EXCLUDED.end_time,
			              is_available = EXCLUDED.is_available,
			              updated_at = now()
		`, leaderID, slot.DayOfWeek, slot.StartTime, slot.EndTime, slot.IsAvailable)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return nil, apperr.Validation("unknown leaderId").WithOp(opSetWeek)
			}
			if errors.As(err, &pgErr) && pgErr.Code == "23514" {
				return nil, apperr.Validation("dayOfWeek must be between 0 and 6").WithOp(opSetWeek)
			}
			return nil, apperr.Internal(fmt.Sprintf("upsert slot failed: %v", err)).WithOp(opSetWeek)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("commit set week failed: %v", err)).WithOp(opSetWeek)
	}

	return r.GetWeek(ctx, leaderID)
}

package repository

import (
	"context"
	"fmt"
	"time"

	"salescrm_backend/platform/apperr"

	"github.com/google/uuid"
)

const (
	opAppendRemark = "leads.repository.append_remark"
	opListRemarks  = "leads.repository.list_remarks"
)

// Remark is an append-only note on a lead. There is no update or delete path.
type Remark struct {
	ID                uuid.UUID
	LeadID            uuid.UUID
	Note              string
	Method            string
	LastContactedDate *time.Time
	AddedBy           *uuid.UUID
	AddedByName       string
	CreatedAt         time.Time
}

// RemarkParams holds the fields for a new remark.
type RemarkParams struct {
	LeadID            uuid.UUID
	Note              string
	Method            string
	LastContactedDate *time.Time
	AddedBy           *uuid.UUID
	AddedByName       string
}

// AppendRemark inserts a remark. Existing remarks are never touched.
func (r *Repository) AppendRemark(ctx context.Context, p RemarkParams) (Remark, error) {
	if r == nil || r.pool == nil {
		return Remark{}, apperr.Internal(errRepoNotConfigured).WithOp(opAppendRemark)
	}
	if p.Note == "" {
		return Remark{}, apperr.Validation("remark note is required").WithOp(opAppendRemark)
	}

	var remark Remark
	err := r.pool.QueryRow(ctx, `
		INSERT INTO lead_remarks (lead_id, note, method, last_contacted_date, added_by, added_by_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, lead_id, note, method, last_contacted_date, added_by, added_by_name, created_at
	`, p.LeadID, p.Note, p.Method, p.LastContactedDate, p.AddedBy, p.AddedByName).Scan(
		&remark.ID, &remark.LeadID, &remark.Note, &remark.Method,
		&remark.LastContactedDate, &remark.AddedBy, &remark.AddedByName, &remark.CreatedAt,
	)
	if err != nil {
		return Remark{}, apperr.Internal(fmt.Sprintf("append remark failed: %v", err)).WithOp(opAppendRemark)
	}

	return remark, nil
}

// ListRemarks returns all remarks for a lead in insertion order.
func (r *Repository) ListRemarks(ctx context.Context, leadID uuid.UUID) ([]Remark, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opListRemarks)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, note, method, last_contacted_date, added_by, added_by_name, created_at
		FROM lead_remarks
		WHERE lead_id = $1
		ORDER BY created_at
	`, leadID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list remarks failed: %v", err)).WithOp(opListRemarks)
	}
	defer rows.Close()

	items := make([]Remark, 0)
	for rows.Next() {
		var remark Remark
		if scanErr := rows.Scan(
			&remark.ID, &remark.LeadID, &remark.Note, &remark.Method,
			&remark.LastContactedDate, &remark.AddedBy, &remark.AddedByName, &remark.CreatedAt,
		); scanErr != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan remarks failed: %v", scanErr)).WithOp(opListRemarks)
		}
		items = append(items, remark)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate remarks failed: %v", rowsErr)).WithOp(opListRemarks)
	}

	return items, nil
}

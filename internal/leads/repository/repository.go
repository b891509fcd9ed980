// Package repository provides persistence for the leads bounded context.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"salescrm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opCreateIfAbsent = "leads.repository.create_if_absent"
	opGetByID        = "leads.repository.get_by_id"
	opGetByEmail     = "leads.repository.get_by_email"
	opList           = "leads.repository.list"
	opUpdate         = "leads.repository.update"
	opSetStatus      = "leads.repository.set_status"
	opDelete         = "leads.repository.delete"

	errRepoNotConfigured = "leads repository not configured"
)

// Lead is the persistence model.
type Lead struct {
	ID         uuid.UUID
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Company    string
	SourceID   *uuid.UUID
	SourceType string
	SourceURL  string
	Status     string
	Value      int64
	AssignedTo *uuid.UUID
	Details    map[string]string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateParams holds the fields for a new lead row.
type CreateParams struct {
	FirstName  string
	LastName   string
	Email      string // already normalized (trimmed, lowercased)
	Phone      string
	Company    string
	SourceID   *uuid.UUID
	SourceType string
	SourceURL  string
	Details    map[string]string
}

// UpdateParams holds the optional fields for a general lead edit.
type UpdateParams struct {
	FirstName  *string
	LastName   *string
	Phone      *string
	Company    *string
	Value      *int64
	AssignedTo *uuid.UUID
}

// ListFilter narrows the lead listing.
type ListFilter struct {
	SourceID *uuid.UUID
	Status   string
	Limit    int
	Offset   int
}

// Repository persists leads, remarks and meetings.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a leads repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `id, first_name, last_name, email, phone, company, source_id,
	source_type, source_url, status, value, assigned_to, details, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.Company, &l.SourceID,
		&l.SourceType, &l.SourceURL, &l.Status, &l.Value, &l.AssignedTo, &l.Details,
		&l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

// CreateIfAbsent inserts a lead keyed by its normalized email. When a lead
// with the email already exists, no row is written and the existing lead is
// returned with created=false. Insert and dedup are one atomic statement.
func (r *Repository) CreateIfAbsent(ctx context.Context, p CreateParams) (Lead, bool, error) {
	if r == nil || r.pool == nil {
		return Lead{}, false, apperr.Internal(errRepoNotConfigured).WithOp(opCreateIfAbsent)
	}

	details := p.Details
	if details == nil {
		details = map[string]string{}
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (first_name, last_name, email, phone, company, source_id, source_type, source_url, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (email) DO NOTHING
		RETURNING `+leadColumns+`
	`, p.FirstName, p.LastName, p.Email, p.Phone, p.Company, p.SourceID, p.SourceType, p.SourceURL, details)

	lead, err := scanLead(row)
	if err == nil {
		return lead, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, false, apperr.Internal(fmt.Sprintf("create lead failed: %v", err)).WithOp(opCreateIfAbsent)
	}

	// Conflict path: the row already existed, fetch it by email.
	existing, err := r.GetByEmail(ctx, p.Email)
	if err != nil {
		return Lead{}, false, err
	}
	return existing, false, nil
}

// GetByID returns a lead by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	if r == nil || r.pool == nil {
		return Lead{}, apperr.Internal(errRepoNotConfigured).WithOp(opGetByID)
	}

	lead, err := scanLead(r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound("lead not found").WithOp(opGetByID)
		}
		return Lead{}, apperr.Internal(fmt.Sprintf("get lead failed: %v", err)).WithOp(opGetByID)
	}
	return lead, nil
}

// GetByEmail returns a lead by normalized email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (Lead, error) {
	if r == nil || r.pool == nil {
		return Lead{}, apperr.Internal(errRepoNotConfigured).WithOp(opGetByEmail)
	}

	lead, err := scanLead(r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound("lead not found").WithOp(opGetByEmail)
		}
		return Lead{}, apperr.Internal(fmt.Sprintf("get lead by email failed: %v", err)).WithOp(opGetByEmail)
	}
	return lead, nil
}

// List returns leads matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Lead, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opList)
	}

	where, args := buildLeadListWhere(filter)
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT %s FROM leads %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, leadColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list leads failed: %v", err)).WithOp(opList)
	}
	defer rows.Close()

	items := make([]Lead, 0)
	for rows.Next() {
		lead, scanErr := scanLead(rows)
		if scanErr != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan leads failed: %v", scanErr)).WithOp(opList)
		}
		items = append(items, lead)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate leads failed: %v", rowsErr)).WithOp(opList)
	}

	return items, nil
}

func buildLeadListWhere(filter ListFilter) (string, []interface{}) {
	clauses := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)

	if filter.SourceID != nil {
		args = append(args, *filter.SourceID)
		clauses = append(clauses, fmt.Sprintf("source_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// Update applies a general edit. Only non-nil fields change.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (Lead, error) {
	if r == nil || r.pool == nil {
		return Lead{}, apperr.Internal(errRepoNotConfigured).WithOp(opUpdate)
	}

	sets := make([]string, 0, 6)
	args := []interface{}{id}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if p.FirstName != nil {
		addSet("first_name", *p.FirstName)
	}
	if p.LastName != nil {
		addSet("last_name", *p.LastName)
	}
	if p.Phone != nil {
		addSet("phone", *p.Phone)
	}
	if p.Company != nil {
		addSet("company", *p.Company)
	}
	if p.Value != nil {
		addSet("value", *p.Value)
	}
	if p.AssignedTo != nil {
		addSet("assigned_to", *p.AssignedTo)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	sets = append(sets, "updated_at = now()")

	query := fmt.Sprintf(`UPDATE leads SET %s WHERE id = $1 RETURNING %s`, strings.Join(sets, ", "), leadColumns)
	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound("lead not found").WithOp(opUpdate)
		}
		return Lead{}, apperr.Internal(fmt.Sprintf("update lead failed: %v", err)).WithOp(opUpdate)
	}
	return lead, nil
}

// SetStatus overwrites the lead status. Validation happens in the service;
// this is the only write path for the status column.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status string) (Lead, error) {
	if r == nil || r.pool == nil {
		return Lead{}, apperr.Internal(errRepoNotConfigured).WithOp(opSetStatus)
	}

	lead, err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns+`
	`, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound("lead not found").WithOp(opSetStatus)
		}
		return Lead{}, apperr.Internal(fmt.Sprintf("set lead status failed: %v", err)).WithOp(opSetStatus)
	}
	return lead, nil
}

// Delete removes a lead; remarks and meetings cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opDelete)
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("delete lead failed: %v", err)).WithOp(opDelete)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead not found").WithOp(opDelete)
	}
	return nil
}

// Package hierarchy manages the marketing hierarchy tree
// (Project → Domain → Subdomain → Campaign → Source) used to attribute leads.
package hierarchy

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
	opUpsertNode   = "hierarchy.repository.upsert_node"
	opGetNode      = "hierarchy.repository.get_node"
	opListChildren = "hierarchy.repository.list_children"
	opCreateNode   = "hierarchy.repository.create_node"
	opUpdateStatus = "hierarchy.repository.update_status"
	opDeleteNode   = "hierarchy.repository.delete_node"

	errRepoNotConfigured = "hierarchy repository not configured"
)

// Level names, ordered root to leaf.
const (
	LevelProject   = "Project"
	LevelDomain    = "Domain"
	LevelSubdomain = "Subdomain"
	LevelCampaign  = "Campaign"
	LevelSource    = "Source"
)

// Levels lists the valid hierarchy levels from root to leaf.
var Levels = []string{LevelProject, LevelDomain, LevelSubdomain, LevelCampaign, LevelSource}

// Node is a single hierarchy entry. ParentID is nil only for Project nodes.
type Node struct {
	ID         uuid.UUID  `json:"id"`
	Level      string     `json:"level"`
	Name       string     `json:"name"`
	ParentID   *uuid.UUID `json:"parentId,omitempty"`
	SourceType *string    `json:"sourceType,omitempty"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Repository persists hierarchy nodes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a hierarchy repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const nodeColumns = "id, level, name, parent_id, source_type, status, created_at, updated_at"

// UpsertNode finds or creates a node identified by (level, parentID, name).
// The insert and the uniqueness check are a single atomic statement, so
// concurrent upserts of the same key converge on one row.
func (r *Repository) UpsertNode(ctx context.Context, level, name string, parentID *uuid.UUID, sourceType *string) (Node, error) {
	if r == nil || r.pool == nil {
		return Node{}, apperr.Internal(errRepoNotConfigured).WithOp(opUpsertNode)
	}
	if name == "" {
		return Node{}, apperr.Validation("node name is required").WithOp(opUpsertNode)
	}

	var n Node
	err := r.pool.QueryRow(ctx, `
		INSERT INTO hierarchy_nodes (level, name, parent_id, source_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (level, parent_id, name)
		DO UPDATE SET updated_at = now(), source_type = COALESCE(EXCLUDED.source_type, hierarchy_nodes.source_type)
		RETURNING `+nodeColumns+`
	`, level, name, parentID, sourceType).Scan(
		&n.ID, &n.Level, &n.Name, &n.ParentID, &n.SourceType, &n.Status, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Node{}, apperr.Validation("parent node does not exist").WithOp(opUpsertNode)
		}
		return Node{}, apperr.Internal(fmt.Sprintf("upsert hierarchy node failed: %v", err)).WithOp(opUpsertNode)
	}

	return n, nil
}

// GetNode returns a node by ID.
func (r *Repository) GetNode(ctx context.Context, id uuid.UUID) (Node, error) {
	if r == nil || r.pool == nil {
		return Node{}, apperr.Internal(errRepoNotConfigured).WithOp(opGetNode)
	}

	var n Node
	err := r.pool.QueryRow(ctx, `
		SELECT `+nodeColumns+` FROM hierarchy_nodes WHERE id = $1
	`, id).Scan(&n.ID, &n.Level, &n.Name, &n.ParentID, &n.SourceType, &n.Status, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Node{}, apperr.NotFound("hierarchy node not found").WithOp(opGetNode)
		}
		return Node{}, apperr.Internal(fmt.Sprintf("get hierarchy node failed: %v", err)).WithOp(opGetNode)
	}

	return n, nil
}

// ListChildren lists nodes at a level, optionally scoped to a parent.
// A nil parentID with level Project returns the roots.
func (r *Repository) ListChildren(ctx context.Context, level string, parentID *uuid.UUID) ([]Node, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opListChildren)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+nodeColumns+`
		FROM hierarchy_nodes
		WHERE level = $1 AND parent_id IS NOT DISTINCT FROM $2
		ORDER BY name
	`, level, parentID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list hierarchy nodes failed: %v", err)).WithOp(opListChildren)
	}
	defer rows.Close()

	items := make([]Node, 0)
	for rows.Next() {
		var n Node
		if scanErr := rows.Scan(&n.ID, &n.Level, &n.Name, &n.ParentID, &n.SourceType, &n.Status, &n.CreatedAt, &n.UpdatedAt); scanErr != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan hierarchy nodes failed: %v", scanErr)).WithOp(opListChildren)
		}
		items = append(items, n)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate hierarchy nodes failed: %v", rowsErr)).WithOp(opListChildren)
	}

	return items, nil
}

// UpdateStatus activates or deactivates a node.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (Node, error) {
	if r == nil || r.pool == nil {
		return Node{}, apperr.Internal(errRepoNotConfigured).WithOp(opUpdateStatus)
	}

	var n Node
	err := r.pool.QueryRow(ctx, `
		UPDATE hierarchy_nodes
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+nodeColumns+`
	`, id, status).Scan(&n.ID, &n.Level, &n.Name, &n.ParentID, &n.SourceType, &n.Status, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Node{}, apperr.NotFound("hierarchy node not found").WithOp(opUpdateStatus)
		}
		return Node{}, apperr.Internal(fmt.Sprintf("update hierarchy node failed: %v", err)).WithOp(opUpdateStatus)
	}

	return n, nil
}

// DeleteNode removes a node. The database cascades the delete to all
// descendants; leads pointing at deleted sources keep a null source.
func (r *Repository) DeleteNode(ctx context.Context, id uuid.UUID) error {
	if r == nil || r.pool == nil {
		return apperr.Internal(errRepoNotConfigured).WithOp(opDeleteNode)
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM hierarchy_nodes WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("delete hierarchy node failed: %v", err)).WithOp(opDeleteNode)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("hierarchy node not found").WithOp(opDeleteNode)
	}

	return nil
}

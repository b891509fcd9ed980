package hierarchy

import (
	"context"

	"salescrm_backend/internal/taxonomy"
	"salescrm_backend/platform/apperr"

	"github.com/google/uuid"
)

const opUpsertPath = "hierarchy.service.upsert_path"

// NodeUpserter is the repository surface the service needs.
type NodeUpserter interface {
	UpsertNode(ctx context.Context, level, name string, parentID *uuid.UUID, sourceType *string) (Node, error)
}

// Service resolves classified paths into persisted hierarchy chains.
type Service struct {
	repo NodeUpserter
}

// NewService creates a hierarchy service.
func NewService(repo NodeUpserter) *Service {
	return &Service{repo: repo}
}

// UpsertPath walks the classified path strictly top-down, upserting one node
// per level and feeding each node's ID into the next level's identity key.
// It returns the Source leaf the lead should be attributed to. Repeating the
// call with the same inputs creates no additional nodes.
func (s *Service) UpsertPath(ctx context.Context, path taxonomy.Path, sourceName, sourceType string) (Node, error) {
	if s == nil || s.repo == nil {
		return Node{}, apperr.Internal("hierarchy service not configured").WithOp(opUpsertPath)
	}
	if path.Project == "" || path.Domain == "" || path.Subdomain == "" || path.Campaign == "" {
		return Node{}, apperr.Validation("hierarchy path must name all four levels").WithOp(opUpsertPath)
	}
	if sourceName == "" {
		return Node{}, apperr.Validation("source name is required").WithOp(opUpsertPath)
	}

	project, err := s.repo.UpsertNode(ctx, LevelProject, path.Project, nil, nil)
	if err != nil {
		return Node{}, err
	}

	domain, err := s.repo.UpsertNode(ctx, LevelDomain, path.Domain, &project.ID, nil)
	if err != nil {
		return Node{}, err
	}

	subdomain, err := s.repo.UpsertNode(ctx, LevelSubdomain, path.Subdomain, &domain.ID, nil)
	if err != nil {
		return Node{}, err
	}

	campaign, err := s.repo.UpsertNode(ctx, LevelCampaign, path.Campaign, &subdomain.ID, nil)
	if err != nil {
		return Node{}, err
	}

	var st *string
	if sourceType != "" {
		st = &sourceType
	}
	return s.repo.UpsertNode(ctx, LevelSource, sourceName, &campaign.ID, st)
}

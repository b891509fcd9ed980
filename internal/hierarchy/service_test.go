package hierarchy

import (
	"context"
	"sync"
	"testing"

	"salescrm_backend/internal/taxonomy"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// fakeNodeStore mimics the atomic (level, parentId, name) upsert with a map.
type fakeNodeStore struct {
	mu      sync.Mutex
	nodes   map[string]Node
	upserts int
}

func newFakeNodeStore() *fakeNodeStore {
	return &fakeNodeStore{nodes: make(map[string]Node)}
}

func (f *fakeNodeStore) UpsertNode(_ context.Context, level, name string, parentID *uuid.UUID, sourceType *string) (Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++

	key := level + "|" + name
	if parentID != nil {
		key += "|" + parentID.String()
	}
	if existing, ok := f.nodes[key]; ok {
		return existing, nil
	}

	node := Node{
		ID:         uuid.New(),
		Level:      level,
		Name:       name,
		ParentID:   parentID,
		SourceType: sourceType,
		Status:     "Active",
	}
	f.nodes[key] = node
	return node, nil
}

func (f *fakeNodeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.nodes)
}

var testPath = taxonomy.Path{
	Project:   "Consulting Services",
	Domain:    "AI Services",
	Subdomain: "AI Solutions",
	Campaign:  "AI Enquiries",
}

func TestUpsertPathCreatesFullChain(t *testing.T) {
	store := newFakeNodeStore()
	svc := NewService(store)

	source, err := svc.UpsertPath(context.Background(), testPath, "Company Website", "Website")
	if err != nil {
		t.Fatalf("UpsertPath: %v", err)
	}

	if source.Level != LevelSource {
		t.Errorf("leaf level = %q, want Source", source.Level)
	}
	if source.Name != "Company Website" {
		t.Errorf("leaf name = %q", source.Name)
	}
	if source.ParentID == nil {
		t.Error("source has no campaign parent")
	}
	if store.count() != 5 {
		t.Errorf("node count = %d, want 5", store.count())
	}
}

func TestUpsertPathIdempotent(t *testing.T) {
	store := newFakeNodeStore()
	svc := NewService(store)

	first, err := svc.UpsertPath(context.Background(), testPath, "Company Website", "Website")
	if err != nil {
		t.Fatalf("UpsertPath: %v", err)
	}
	second, err := svc.UpsertPath(context.Background(), testPath, "Company Website", "Website")
	if err != nil {
		t.Fatalf("UpsertPath repeat: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("repeated upsert returned different sources: %s vs %s", first.ID, second.ID)
	}
	if store.count() != 5 {
		t.Errorf("node count after repeat = %d, want 5", store.count())
	}
}

func TestUpsertPathSharesAncestors(t *testing.T) {
	store := newFakeNodeStore()
	svc := NewService(store)

	ctx := context.Background()
	if _, err := svc.UpsertPath(ctx, testPath, "Company Website", "Website"); err != nil {
		t.Fatalf("UpsertPath: %v", err)
	}

	other := testPath
	other.Campaign = "Meta AI Campaign"
	if _, err := svc.UpsertPath(ctx, other, "Meta Ads (Spring)", "Meta"); err != nil {
		t.Fatalf("UpsertPath sibling: %v", err)
	}

	// Shared Project/Domain/Subdomain plus two campaigns and two sources.
	if store.count() != 7 {
		t.Errorf("node count = %d, want 7", store.count())
	}
}

func TestUpsertPathConcurrent(t *testing.T) {
	store := newFakeNodeStore()
	svc := NewService(store)

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			_, err := svc.UpsertPath(context.Background(), testPath, "Company Website", "Website")
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent UpsertPath: %v", err)
	}

	if store.count() != 5 {
		t.Errorf("node count after concurrent upserts = %d, want 5", store.count())
	}
}

func TestUpsertPathRejectsIncompletePath(t *testing.T) {
	svc := NewService(newFakeNodeStore())

	partial := testPath
	partial.Campaign = ""
	if _, err := svc.UpsertPath(context.Background(), partial, "Company Website", "Website"); err == nil {
		t.Error("expected error for incomplete path")
	}

	if _, err := svc.UpsertPath(context.Background(), testPath, "", "Website"); err == nil {
		t.Error("expected error for empty source name")
	}
}

package traceability

import (
	"context"
	"testing"

	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryLineageRepo is an in-memory LineageRepository for graph tests
type memoryLineageRepo struct {
	edges []TransformationInput
}

func (r *memoryLineageRepo) FindByID(_ context.Context, id uuid.UUID) (*TransformationInput, error) {
	for i := range r.edges {
		if r.edges[i].ID == id {
			return &r.edges[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryLineageRepo) FindByChildLot(_ context.Context, childLotID uuid.UUID) ([]TransformationInput, error) {
	var out []TransformationInput
	for _, e := range r.edges {
		if e.ChildLotID == childLotID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryLineageRepo) FindByParentLot(_ context.Context, parentLotID uuid.UUID) ([]TransformationInput, error) {
	var out []TransformationInput
	for _, e := range r.edges {
		if e.ParentLotID == parentLotID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryLineageRepo) FindByTransformationEvent(_ context.Context, eventID uuid.UUID) ([]TransformationInput, error) {
	var out []TransformationInput
	for _, e := range r.edges {
		if e.TransformationEventID == eventID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryLineageRepo) Save(_ context.Context, edge *TransformationInput) error {
	r.edges = append(r.edges, *edge)
	return nil
}

func (r *memoryLineageRepo) link(t *testing.T, parent, child uuid.UUID) {
	t.Helper()
	edge, err := NewTransformationInput(uuid.New(), child, parent, uuid.New(), decimal.NewFromInt(1), "KG")
	require.NoError(t, err)
	r.edges = append(r.edges, *edge)
}

func TestLineageManager_SingleHop(t *testing.T) {
	repo := &memoryLineageRepo{}
	manager := NewLineageManager(repo)
	ctx := context.Background()

	raw := uuid.New()
	washed := uuid.New()
	bagged := uuid.New()
	repo.link(t, raw, washed)
	repo.link(t, washed, bagged)

	t.Run("parents returns direct inputs only", func(t *testing.T) {
		parents, err := manager.Parents(ctx, bagged)

		require.NoError(t, err)
		require.Len(t, parents, 1)
		assert.Equal(t, washed, parents[0].ParentLotID)
	})

	t.Run("children returns direct outputs only", func(t *testing.T) {
		children, err := manager.Children(ctx, raw)

		require.NoError(t, err)
		require.Len(t, children, 1)
		assert.Equal(t, washed, children[0].ChildLotID)
	})

	t.Run("hasAtLeastOneParent distinguishes derived from origin lots", func(t *testing.T) {
		hasParent, err := manager.HasAtLeastOneParent(ctx, washed)
		require.NoError(t, err)
		assert.True(t, hasParent)

		hasParent, err = manager.HasAtLeastOneParent(ctx, raw)
		require.NoError(t, err)
		assert.False(t, hasParent)
	})
}

func TestLineageManager_FullTraversal(t *testing.T) {
	repo := &memoryLineageRepo{}
	manager := NewLineageManager(repo)
	ctx := context.Background()

	// fieldA ┐
	//        ├→ washed → bagged
	// fieldB ┘
	fieldA := uuid.New()
	fieldB := uuid.New()
	washed := uuid.New()
	bagged := uuid.New()
	repo.link(t, fieldA, washed)
	repo.link(t, fieldB, washed)
	repo.link(t, washed, bagged)

	t.Run("full ancestry carries depth and path", func(t *testing.T) {
		ancestry, err := manager.FullAncestry(ctx, bagged, DefaultMaxTraversalDepth)

		require.NoError(t, err)
		require.Len(t, ancestry, 3)

		byLot := map[uuid.UUID]LineageNode{}
		for _, node := range ancestry {
			byLot[node.LotID] = node
		}
		assert.Equal(t, 1, byLot[washed].Depth)
		assert.Equal(t, 2, byLot[fieldA].Depth)
		assert.Equal(t, 2, byLot[fieldB].Depth)
		assert.Contains(t, byLot[fieldA].Path, washed.String())
	})

	t.Run("full descendants from an origin field", func(t *testing.T) {
		descendants, err := manager.FullDescendants(ctx, fieldA, DefaultMaxTraversalDepth)

		require.NoError(t, err)
		assert.Len(t, descendants, 2)
	})

	t.Run("maxDepth truncates the walk", func(t *testing.T) {
		ancestry, err := manager.FullAncestry(ctx, bagged, 1)

		require.NoError(t, err)
		require.Len(t, ancestry, 1)
		assert.Equal(t, washed, ancestry[0].LotID)
	})

	t.Run("caller depth above the hard cap is clamped", func(t *testing.T) {
		_, err := manager.FullAncestry(ctx, bagged, 10_000)

		require.NoError(t, err)
	})

	t.Run("traversal terminates on a corrupt cyclic graph", func(t *testing.T) {
		cyclicRepo := &memoryLineageRepo{}
		a := uuid.New()
		b := uuid.New()
		cyclicRepo.link(t, a, b)
		cyclicRepo.link(t, b, a) // corruption: inserted behind the guard's back

		cyclicManager := NewLineageManager(cyclicRepo)
		nodes, err := cyclicManager.FullDescendants(ctx, a, DefaultMaxTraversalDepth)

		require.NoError(t, err)
		assert.Len(t, nodes, 1)
	})
}

func TestLineageManager_WouldCreateCycle(t *testing.T) {
	repo := &memoryLineageRepo{}
	manager := NewLineageManager(repo)
	ctx := context.Background()

	a := uuid.New()
	b := uuid.New()
	c := uuid.New()
	repo.link(t, a, b) // a → b
	repo.link(t, b, c) // b → c

	t.Run("edge making a lot its own ancestor is detected", func(t *testing.T) {
		// proposed: c → a, but a is already an ancestor of c
		cycle, err := manager.WouldCreateCycle(ctx, c, a)

		require.NoError(t, err)
		assert.True(t, cycle)
	})

	t.Run("self edge is a cycle", func(t *testing.T) {
		cycle, err := manager.WouldCreateCycle(ctx, a, a)

		require.NoError(t, err)
		assert.True(t, cycle)
	})

	t.Run("legitimate new edge passes", func(t *testing.T) {
		d := uuid.New()
		cycle, err := manager.WouldCreateCycle(ctx, c, d)

		require.NoError(t, err)
		assert.False(t, cycle)
	})
}

package traceability

import (
	"context"
	"strings"

	"github.com/foodtrace/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultMaxTraversalDepth caps recursive lineage walks. The cap is enforced
// unconditionally: caller-supplied depths above it are clamped, so malformed
// or adversarial graphs can never drive an unbounded walk.
const DefaultMaxTraversalDepth = 50

// LineageNode is one lot in an ancestry or descendants result
type LineageNode struct {
	LotID  uuid.UUID `json:"lotId"`
	Depth  int       `json:"depth"`
	Path   string    `json:"path"` // Slash-joined lot IDs from the queried lot to this node
	EdgeID uuid.UUID `json:"edgeId"`
}

// LineageManager answers parent/child and full ancestry/descendants queries
// over the transformation edge table, and guards edge insertion against
// cycles.
type LineageManager struct {
	edges LineageRepository
}

// NewLineageManager creates a lineage manager
func NewLineageManager(edges LineageRepository) *LineageManager {
	return &LineageManager{edges: edges}
}

// Parents returns the single-hop input edges of a lot
func (m *LineageManager) Parents(ctx context.Context, lotID uuid.UUID) ([]TransformationInput, error) {
	return m.edges.FindByChildLot(ctx, lotID)
}

// Children returns the single-hop output edges of a lot
func (m *LineageManager) Children(ctx context.Context, lotID uuid.UUID) ([]TransformationInput, error) {
	return m.edges.FindByParentLot(ctx, lotID)
}

// HasAtLeastOneParent is the synchronous enforcement hook for transformation
// events: a child lot must reference at least one input lot.
func (m *LineageManager) HasAtLeastOneParent(ctx context.Context, lotID uuid.UUID) (bool, error) {
	parents, err := m.edges.FindByChildLot(ctx, lotID)
	if err != nil {
		return false, err
	}
	return len(parents) > 0, nil
}

// FullAncestry walks parent edges transitively up to maxDepth. Each node
// carries its depth from the queried lot and the path taken to reach it.
func (m *LineageManager) FullAncestry(ctx context.Context, lotID uuid.UUID, maxDepth int) ([]LineageNode, error) {
	return m.traverse(ctx, lotID, maxDepth, m.parentStep)
}

// FullDescendants walks child edges transitively up to maxDepth
func (m *LineageManager) FullDescendants(ctx context.Context, lotID uuid.UUID, maxDepth int) ([]LineageNode, error) {
	return m.traverse(ctx, lotID, maxDepth, m.childStep)
}

// WouldCreateCycle reports whether adding an edge parent→child would make
// the parent its own ancestor. The check walks the child's existing
// descendants looking for the proposed parent. Callers must run this inside
// the same transaction that inserts the edge.
func (m *LineageManager) WouldCreateCycle(ctx context.Context, parentLotID, childLotID uuid.UUID) (bool, error) {
	if parentLotID == childLotID {
		return true, nil
	}
	descendants, err := m.FullDescendants(ctx, childLotID, DefaultMaxTraversalDepth)
	if err != nil {
		return false, err
	}
	for _, node := range descendants {
		if node.LotID == parentLotID {
			return true, nil
		}
	}
	return false, nil
}

// stepFunc returns the next-hop edges for a lot and the lot ID on the far
// side of each edge.
type stepFunc func(ctx context.Context, lotID uuid.UUID) ([]TransformationInput, func(TransformationInput) uuid.UUID, error)

func (m *LineageManager) parentStep(ctx context.Context, lotID uuid.UUID) ([]TransformationInput, func(TransformationInput) uuid.UUID, error) {
	edges, err := m.edges.FindByChildLot(ctx, lotID)
	return edges, func(e TransformationInput) uuid.UUID { return e.ParentLotID }, err
}

func (m *LineageManager) childStep(ctx context.Context, lotID uuid.UUID) ([]TransformationInput, func(TransformationInput) uuid.UUID, error) {
	edges, err := m.edges.FindByParentLot(ctx, lotID)
	return edges, func(e TransformationInput) uuid.UUID { return e.ChildLotID }, err
}

type frame struct {
	lotID uuid.UUID
	depth int
	path  []string
}

// traverse is a breadth-first walk with a visited set. Visited lots are not
// re-expanded, so even a corrupt graph containing a cycle terminates.
func (m *LineageManager) traverse(ctx context.Context, rootID uuid.UUID, maxDepth int, step stepFunc) ([]LineageNode, error) {
	if rootID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOT", "Lot ID cannot be empty")
	}
	if maxDepth <= 0 || maxDepth > DefaultMaxTraversalDepth {
		maxDepth = DefaultMaxTraversalDepth
	}

	visited := map[uuid.UUID]struct{}{rootID: {}}
	queue := []frame{{lotID: rootID, depth: 0, path: []string{rootID.String()}}}
	nodes := []LineageNode{}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current := queue[0]
		queue = queue[1:]

		if current.depth >= maxDepth {
			continue
		}

		edges, farSide, err := step(ctx, current.lotID)
		if err != nil {
			return nil, err
		}

		for _, edge := range edges {
			next := farSide(edge)
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}

			path := append(append([]string{}, current.path...), next.String())
			nodes = append(nodes, LineageNode{
				LotID:  next,
				Depth:  current.depth + 1,
				Path:   strings.Join(path, "/"),
				EdgeID: edge.ID,
			})
			queue = append(queue, frame{lotID: next, depth: current.depth + 1, path: path})
		}
	}

	return nodes, nil
}

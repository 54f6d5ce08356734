package traceability

import (
	"context"

	"github.com/foodtrace/backend/internal/domain/traceability"
	"github.com/google/uuid"
)

// LineageService answers lineage queries over persisted transformation edges
type LineageService struct {
	scope TransactionScope
}

// NewLineageService creates a LineageService
func NewLineageService(scope TransactionScope) *LineageService {
	return &LineageService{scope: scope}
}

// Parents returns the direct input edges of a lot
func (s *LineageService) Parents(ctx context.Context, companyID uuid.UUID, tlcCode string) ([]LineageEdgeResponse, error) {
	return s.edges(ctx, companyID, tlcCode, func(manager *traceability.LineageManager, lotID uuid.UUID) ([]traceability.TransformationInput, error) {
		return manager.Parents(ctx, lotID)
	})
}

// Children returns the direct output edges of a lot
func (s *LineageService) Children(ctx context.Context, companyID uuid.UUID, tlcCode string) ([]LineageEdgeResponse, error) {
	return s.edges(ctx, companyID, tlcCode, func(manager *traceability.LineageManager, lotID uuid.UUID) ([]traceability.TransformationInput, error) {
		return manager.Children(ctx, lotID)
	})
}

func (s *LineageService) edges(
	ctx context.Context,
	companyID uuid.UUID,
	tlcCode string,
	query func(*traceability.LineageManager, uuid.UUID) ([]traceability.TransformationInput, error),
) ([]LineageEdgeResponse, error) {
	var responses []LineageEdgeResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lot, err := repos.LotRepo().FindByTLCCode(ctx, companyID, tlcCode)
		if err != nil {
			return err
		}
		edges, err := query(traceability.NewLineageManager(repos.LineageRepo()), lot.ID)
		if err != nil {
			return err
		}
		responses = make([]LineageEdgeResponse, 0, len(edges))
		for i := range edges {
			responses = append(responses, ToLineageEdgeResponse(&edges[i]))
		}
		return nil
	})
	return responses, err
}

// FullAncestry returns every transitive input of a lot up to maxDepth,
// each node annotated with its TLC code for presentation.
func (s *LineageService) FullAncestry(ctx context.Context, companyID uuid.UUID, tlcCode string, maxDepth int) ([]LineageNodeResponse, error) {
	return s.walk(ctx, companyID, tlcCode, maxDepth, (*traceability.LineageManager).FullAncestry)
}

// FullDescendants returns every transitive output of a lot up to maxDepth
func (s *LineageService) FullDescendants(ctx context.Context, companyID uuid.UUID, tlcCode string, maxDepth int) ([]LineageNodeResponse, error) {
	return s.walk(ctx, companyID, tlcCode, maxDepth, (*traceability.LineageManager).FullDescendants)
}

func (s *LineageService) walk(
	ctx context.Context,
	companyID uuid.UUID,
	tlcCode string,
	maxDepth int,
	traverse func(*traceability.LineageManager, context.Context, uuid.UUID, int) ([]traceability.LineageNode, error),
) ([]LineageNodeResponse, error) {
	var responses []LineageNodeResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lot, err := repos.LotRepo().FindByTLCCode(ctx, companyID, tlcCode)
		if err != nil {
			return err
		}
		nodes, err := traverse(traceability.NewLineageManager(repos.LineageRepo()), ctx, lot.ID, maxDepth)
		if err != nil {
			return err
		}

		responses = make([]LineageNodeResponse, 0, len(nodes))
		for _, node := range nodes {
			response := LineageNodeResponse{LotID: node.LotID, Depth: node.Depth, Path: node.Path}
			if nodeLot, err := repos.LotRepo().FindByID(ctx, node.LotID); err == nil {
				response.TLCCode = nodeLot.TLCCode
			}
			responses = append(responses, response)
		}
		return nil
	})
	return responses, err
}

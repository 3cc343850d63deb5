package playersbyteam

import (
	"context"

	"github.com/querymill/readmodel-go/readmodel"

	"github.com/querymill/readmodel-go/example/shared/core"
	"github.com/querymill/readmodel-go/example/shared/shell"
)

// QueryHandler serves PlayersByTeam queries against the player collection.
type QueryHandler struct{}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler() QueryHandler {
	return QueryHandler{}
}

// Handle validates the collection, applies the team filter plus the optional
// season filter as a conjunction, and runs the shared paged query workflow.
func (h QueryHandler) Handle(ctx context.Context, query Query, exec readmodel.Execution) (readmodel.Result, error) {
	if err := shell.EnsureCollection(exec, core.PlayerCollectionName); err != nil {
		return readmodel.Result{}, err
	}

	predicates := []readmodel.Predicate{
		readmodel.Eq(core.PlayerFieldTeamID, query.TeamID),
	}
	if query.Season != nil {
		predicates = append(predicates, readmodel.Eq(core.PlayerFieldSeason, *query.Season))
	}

	return shell.RunPagedQuery(ctx, exec, predicates...)
}

var _ readmodel.Handler[Query] = QueryHandler{}

package playersbyname

import (
	"context"

	"github.com/querymill/readmodel-go/readmodel"

	"github.com/querymill/readmodel-go/example/shared/core"
	"github.com/querymill/readmodel-go/example/shared/shell"
)

// QueryHandler serves PlayersByName queries against the player collection.
type QueryHandler struct{}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler() QueryHandler {
	return QueryHandler{}
}

// Handle validates the collection, filters by exact name, and runs the shared
// paged query workflow.
func (h QueryHandler) Handle(ctx context.Context, query Query, exec readmodel.Execution) (readmodel.Result, error) {
	if err := shell.EnsureCollection(exec, core.PlayerCollectionName); err != nil {
		return readmodel.Result{}, err
	}

	return shell.RunPagedQuery(ctx, exec, readmodel.Eq(core.PlayerFieldName, query.Name))
}

var _ readmodel.Handler[Query] = QueryHandler{}

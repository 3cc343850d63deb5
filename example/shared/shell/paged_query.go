package shell

import (
	"context"
	"fmt"

	"github.com/querymill/readmodel-go/readmodel"
)

// EnsureCollection guards a handler against being dispatched with a
// collection it does not serve. The comparison is case-insensitive.
func EnsureCollection(exec readmodel.Execution, collectionName string) error {
	if !exec.Collection.Is(collectionName) {
		return fmt.Errorf("%w: %q (handler serves %q)",
			readmodel.ErrUnsupportedCollection, exec.Collection.Name, collectionName)
	}

	return nil
}

// RunPagedQuery executes the standard query workflow every handler shares:
// apply the filter conjunction, count the full filtered set, then fetch one
// page with ordering and skip/take applied. The count runs before pagination
// so TotalCount always reflects the filters alone.
func RunPagedQuery(ctx context.Context, exec readmodel.Execution, predicates ...readmodel.Predicate) (readmodel.Result, error) {
	query := exec.Session.Query(exec.Collection).Where(predicates...)

	totalCount, countErr := query.Count(ctx)
	if countErr != nil {
		return readmodel.Result{}, countErr
	}

	query = query.OrderBy(exec.Ordering).Skip(exec.Skip)
	if exec.Take != nil {
		query = query.Take(*exec.Take)
	}

	items, allErr := query.All(ctx)
	if allErr != nil {
		return readmodel.Result{}, allErr
	}

	return readmodel.Result{Items: items, TotalCount: totalCount}, nil
}

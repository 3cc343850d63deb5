package readmodel

import (
	"context"
)

// Session is the narrow storage collaborator interface the dispatch core
// consumes. A session is owned by the caller for the lifetime of one request
// and must not be shared across concurrent requests. Cancellation, if
// supported by the transport, flows through the context into the storage
// calls.
type Session interface {
	Query(collection CollectionDescriptor) DocumentQuery
}

// DocumentQuery is a filterable sequence over one collection's documents.
// Where, OrderBy, Skip and Take compose; Count and All execute.
//
// Count always reflects the filters only: it ignores ordering and
// pagination, so handlers can compute the total before applying skip/take.
type DocumentQuery interface {
	Where(predicates ...Predicate) DocumentQuery
	OrderBy(spec OrderSpec) DocumentQuery
	Skip(n int) DocumentQuery
	Take(n int) DocumentQuery
	Count(ctx context.Context) (int, error)
	All(ctx context.Context) ([]Document, error)
}

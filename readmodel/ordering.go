package readmodel

import (
	"strings"
)

const (
	directionAsc  = "ASC"
	directionDesc = "DESC"
)

// OrderClause is one sort key with its direction.
type OrderClause struct {
	Field      string
	Descending bool
}

// OrderSpec is an ordered sequence of sort keys, applied left to right as
// primary, secondary, tertiary keys. Sorting must be stable: records equal
// under all clauses keep their relative order.
type OrderSpec []OrderClause

// CompileOrdering parses a free-text orderBy string ("name ASC, price DESC")
// into an OrderSpec validated against the collection's sortable whitelist.
//
// Parsing: clauses split on commas; each clause splits on the first
// whitespace run into field name and direction token; the direction is
// case-insensitive ASC or DESC, defaulting to ASC when absent or
// unrecognized. Field names match the whitelist case-insensitively and are
// canonicalized to the whitelist casing.
//
// Fallback policy: a blank orderBy, or a first clause whose field is not
// whitelisted, yields the collection's declared default single-key ordering.
// A later clause with an unknown field is silently dropped while subsequent
// valid clauses still apply. Malformed input never fails a request.
func CompileOrdering(orderBy string, collection CollectionDescriptor) OrderSpec {
	defaultSpec := OrderSpec{collection.DefaultOrder}

	if strings.TrimSpace(orderBy) == "" {
		return defaultSpec
	}

	spec := make(OrderSpec, 0, 2)

	for i, rawClause := range strings.Split(orderBy, ",") {
		tokens := strings.Fields(rawClause)
		if len(tokens) == 0 {
			if i == 0 {
				return defaultSpec
			}
			continue
		}

		field, _, found := collection.SortableField(tokens[0])
		if !found {
			if i == 0 {
				return defaultSpec
			}
			continue
		}

		descending := len(tokens) > 1 && strings.EqualFold(tokens[1], directionDesc)

		spec = append(spec, OrderClause{Field: field, Descending: descending})
	}

	if len(spec) == 0 {
		return defaultSpec
	}

	return spec
}

// String renders the spec back into "field ASC, field DESC" form, mainly
// for logging and span attributes.
func (s OrderSpec) String() string {
	parts := make([]string, 0, len(s))

	for _, clause := range s {
		direction := directionAsc
		if clause.Descending {
			direction = directionDesc
		}
		parts = append(parts, clause.Field+" "+direction)
	}

	return strings.Join(parts, ", ")
}

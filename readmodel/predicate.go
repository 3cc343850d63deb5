package readmodel

import (
	"reflect"
	"slices"
	"strings"
)

// PredicateOp enumerates the comparison operators a predicate can carry.
type PredicateOp int

const (
	OpEq PredicateOp = iota
	OpGte
	OpLte
)

// Predicate is one filter condition over a document field. Handlers compose
// the predicates for their shape as a conjunction: every predicate supplied
// to DocumentQuery.Where must match. An absent optional shape field simply
// contributes no predicate.
type Predicate struct {
	field string
	op    PredicateOp
	value any
}

// Eq builds an equality predicate.
func Eq(field string, value any) Predicate {
	return Predicate{field: field, op: OpEq, value: value}
}

// Gte builds a greater-than-or-equal predicate.
func Gte(field string, value any) Predicate {
	return Predicate{field: field, op: OpGte, value: value}
}

// Lte builds a less-than-or-equal predicate.
func Lte(field string, value any) Predicate {
	return Predicate{field: field, op: OpLte, value: value}
}

func (p Predicate) Field() string {
	return p.field
}

func (p Predicate) Op() PredicateOp {
	return p.op
}

func (p Predicate) Value() any {
	return p.value
}

// NormalizePredicates sanitizes a predicate list before a session applies it:
//   - removing incomplete predicates (empty field or nil value)
//   - sorting by field name, then operator
//   - removing duplicates
//
// Since predicates form a conjunction, reordering and deduplication never
// change which documents match.
func NormalizePredicates(predicates []Predicate) []Predicate {
	normalized := slices.Clone(predicates)

	normalized = slices.DeleteFunc(normalized, func(p Predicate) bool {
		return p.field == "" || p.value == nil
	})

	slices.SortStableFunc(normalized, func(a, b Predicate) int {
		if c := strings.Compare(a.field, b.field); c != 0 {
			return c
		}

		return int(a.op) - int(b.op)
	})

	normalized = slices.CompactFunc(normalized, func(a, b Predicate) bool {
		return a.field == b.field && a.op == b.op && equalValues(a.value, b.value)
	})

	return slices.Clip(normalized)
}

// equalValues compares predicate values without panicking on uncomparable types.
func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if !reflect.TypeOf(a).Comparable() || !reflect.TypeOf(b).Comparable() {
		return false
	}

	return a == b
}

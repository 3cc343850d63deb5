package readmodel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/querymill/readmodel-go/readmodel"
)

func Test_NormalizePredicates(t *testing.T) {
	tests := []struct {
		name     string
		input    []readmodel.Predicate
		expected []readmodel.Predicate
	}{
		{
			name:     "nil_input_stays_empty",
			input:    nil,
			expected: nil,
		},
		{
			name: "incomplete_predicates_are_removed",
			input: []readmodel.Predicate{
				readmodel.Eq("", 7),
				readmodel.Eq("teamId", nil),
				readmodel.Eq("teamId", 7),
			},
			expected: []readmodel.Predicate{
				readmodel.Eq("teamId", 7),
			},
		},
		{
			name: "sorted_by_field_then_operator",
			input: []readmodel.Predicate{
				readmodel.Lte("price", 600.0),
				readmodel.Eq("teamId", 7),
				readmodel.Gte("price", 200.0),
			},
			expected: []readmodel.Predicate{
				readmodel.Gte("price", 200.0),
				readmodel.Lte("price", 600.0),
				readmodel.Eq("teamId", 7),
			},
		},
		{
			name: "exact_duplicates_are_removed",
			input: []readmodel.Predicate{
				readmodel.Eq("teamId", 7),
				readmodel.Eq("teamId", 7),
			},
			expected: []readmodel.Predicate{
				readmodel.Eq("teamId", 7),
			},
		},
		{
			name: "same_field_different_values_both_kept",
			input: []readmodel.Predicate{
				readmodel.Eq("teamId", 7),
				readmodel.Eq("teamId", 8),
			},
			expected: []readmodel.Predicate{
				readmodel.Eq("teamId", 7),
				readmodel.Eq("teamId", 8),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, readmodel.NormalizePredicates(tc.input))
		})
	}
}

func Test_Predicate_Accessors(t *testing.T) {
	predicate := readmodel.Gte("price", 200.5)

	assert.Equal(t, "price", predicate.Field())
	assert.Equal(t, readmodel.OpGte, predicate.Op())
	assert.Equal(t, 200.5, predicate.Value())
}

package readmodel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querymill/readmodel-go/readmodel"
)

func playersCollection() readmodel.CollectionDescriptor {
	return readmodel.CollectionDescriptor{
		Name:    "SuperCoachPlayer",
		Aliases: []string{"Player"},
		Table:   "supercoach_players",
		Sortable: map[string]readmodel.FieldKind{
			"name":   readmodel.FieldString,
			"price":  readmodel.FieldDecimal,
			"season": readmodel.FieldInt,
		},
		DefaultOrder: readmodel.OrderClause{Field: "name"},
	}
}

func teamsCollection() readmodel.CollectionDescriptor {
	return readmodel.CollectionDescriptor{
		Name:         "SuperCoachTeam",
		Aliases:      []string{"Team"},
		Table:        "supercoach_teams",
		Sortable:     map[string]readmodel.FieldKind{"name": readmodel.FieldString},
		DefaultOrder: readmodel.OrderClause{Field: "name"},
	}
}

func Test_CollectionResolver_Resolve(t *testing.T) {
	resolver, err := readmodel.NewCollectionResolver(playersCollection(), teamsCollection())
	require.NoError(t, err)

	tests := []struct {
		name     string
		dataType string
		expected string
	}{
		{name: "canonical_name", dataType: "SuperCoachPlayer", expected: "SuperCoachPlayer"},
		{name: "canonical_name_case_insensitive", dataType: "supercoachplayer", expected: "SuperCoachPlayer"},
		{name: "alias", dataType: "Player", expected: "SuperCoachPlayer"},
		{name: "alias_case_insensitive", dataType: "PLAYER", expected: "SuperCoachPlayer"},
		{name: "second_collection", dataType: "team", expected: "SuperCoachTeam"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			collection, resolveErr := resolver.Resolve(tc.dataType)

			require.NoError(t, resolveErr)
			assert.Equal(t, tc.expected, collection.Name)
		})
	}
}

func Test_CollectionResolver_Resolve_UnknownDataType(t *testing.T) {
	resolver, err := readmodel.NewCollectionResolver(playersCollection())
	require.NoError(t, err)

	_, resolveErr := resolver.Resolve("SuperCoachUmpire")

	require.Error(t, resolveErr)
	assert.ErrorIs(t, resolveErr, readmodel.ErrUnknownDataType)
	assert.True(t, readmodel.IsClientInputError(resolveErr))
}

func Test_NewCollectionResolver_ValidationFailures(t *testing.T) {
	tests := []struct {
		name        string
		descriptors []readmodel.CollectionDescriptor
		expectedErr error
	}{
		{
			name: "empty_name_fails",
			descriptors: []readmodel.CollectionDescriptor{
				{Table: "t", DefaultOrder: readmodel.OrderClause{Field: "name"}},
			},
			expectedErr: readmodel.ErrEmptyCollectionName,
		},
		{
			name: "missing_default_order_fails",
			descriptors: []readmodel.CollectionDescriptor{
				{Name: "SuperCoachPlayer", Table: "t"},
			},
			expectedErr: readmodel.ErrMissingDefaultOrder,
		},
		{
			name: "duplicate_name_fails",
			descriptors: []readmodel.CollectionDescriptor{
				playersCollection(),
				{Name: "supercoachplayer", Table: "t2", DefaultOrder: readmodel.OrderClause{Field: "name"}},
			},
			expectedErr: readmodel.ErrDuplicateCollection,
		},
		{
			name: "alias_colliding_with_name_fails",
			descriptors: []readmodel.CollectionDescriptor{
				playersCollection(),
				{
					Name:         "SomethingElse",
					Aliases:      []string{"player"},
					Table:        "t2",
					DefaultOrder: readmodel.OrderClause{Field: "name"},
				},
			},
			expectedErr: readmodel.ErrDuplicateCollection,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := readmodel.NewCollectionResolver(tc.descriptors[0], tc.descriptors[1:]...)

			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_CollectionDescriptor_SortableField_CanonicalizesCasing(t *testing.T) {
	collection := playersCollection()

	field, kind, found := collection.SortableField("PRICE")

	require.True(t, found)
	assert.Equal(t, "price", field)
	assert.Equal(t, readmodel.FieldDecimal, kind)
}

func Test_CollectionDescriptor_SortKind_FallsBackToString(t *testing.T) {
	collection := playersCollection()

	assert.Equal(t, readmodel.FieldInt, collection.SortKind("season"))
	assert.Equal(t, readmodel.FieldString, collection.SortKind("notWhitelisted"))
}

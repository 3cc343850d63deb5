package readmodel_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querymill/readmodel-go/readmodel"
)

type playerSearchQuery struct {
	Name      string    `json:"name"`
	Active    *bool     `json:"active,omitempty"`
	MaxPrice  *float64  `json:"maxPrice,omitempty"`
	Since     time.Time `json:"since,omitempty"`
	Positions []string  `json:"positions,omitempty"`
}

func (q playerSearchQuery) QueryType() string { return "PlayerSearch" }

func playerSearchDescriptor() readmodel.ShapeDescriptor {
	return readmodel.NewShapeDescriptor[playerSearchQuery](
		"PlayerSearch",
		readmodel.FieldSpec{Name: "name", Kind: readmodel.FieldString, Required: true},
		readmodel.FieldSpec{Name: "active", Kind: readmodel.FieldBool},
		readmodel.FieldSpec{Name: "maxPrice", Kind: readmodel.FieldDecimal},
		readmodel.FieldSpec{Name: "since", Kind: readmodel.FieldDate},
		readmodel.FieldSpec{Name: "positions", Kind: readmodel.FieldString, List: true},
	)
}

func newTestDecoder(t *testing.T) readmodel.Decoder {
	t.Helper()

	registry, err := readmodel.NewTypeRegistry(
		playersByTeamDescriptor(),
		teamsBySeasonDescriptor(),
		playerSearchDescriptor(),
	)
	require.NoError(t, err)

	return readmodel.NewDecoder(registry)
}

func Test_Decoder_Decode_JSONChannel(t *testing.T) {
	decoder := newTestDecoder(t)
	season := 2025

	tests := []struct {
		name     string
		payload  string
		expected readmodel.Query
	}{
		{
			name:     "all_fields_present",
			payload:  `{"queryType":"PlayersByTeam","teamId":7,"season":2025}`,
			expected: playersByTeamQuery{TeamID: 7, Season: &season},
		},
		{
			name:     "optional_field_absent",
			payload:  `{"queryType":"PlayersByTeam","teamId":7}`,
			expected: playersByTeamQuery{TeamID: 7},
		},
		{
			name:     "discriminator_and_field_keys_case_insensitive",
			payload:  `{"QUERYTYPE":"playersbyteam","TEAMID":7}`,
			expected: playersByTeamQuery{TeamID: 7},
		},
		{
			name:     "numeric_string_coerced_to_int",
			payload:  `{"queryType":"PlayersByTeam","teamId":"7"}`,
			expected: playersByTeamQuery{TeamID: 7},
		},
		{
			name:     "unknown_extra_fields_ignored",
			payload:  `{"queryType":"PlayersByTeam","teamId":7,"shoeSize":11}`,
			expected: playersByTeamQuery{TeamID: 7},
		},
		{
			name:    "string_field_accepts_number",
			payload: `{"queryType":"PlayerSearch","name":42}`,
			expected: playerSearchQuery{
				Name: "42",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			shape, err := decoder.Decode([]byte(tc.payload))

			require.NoError(t, err)
			assert.Equal(t, tc.expected, shape)
		})
	}
}

//nolint:funlen
func Test_Decoder_Decode_Failures(t *testing.T) {
	decoder := newTestDecoder(t)

	tests := []struct {
		name        string
		payload     string
		expectedErr error
	}{
		{
			name:        "missing_discriminator",
			payload:     `{"teamId":7}`,
			expectedErr: readmodel.ErrMissingDiscriminator,
		},
		{
			name:        "blank_discriminator",
			payload:     `{"queryType":"  ","teamId":7}`,
			expectedErr: readmodel.ErrMissingDiscriminator,
		},
		{
			name:        "non_string_discriminator",
			payload:     `{"queryType":42,"teamId":7}`,
			expectedErr: readmodel.ErrMissingDiscriminator,
		},
		{
			name:        "unknown_query_type",
			payload:     `{"queryType":"PlayersByShoeSize"}`,
			expectedErr: readmodel.ErrUnknownQueryType,
		},
		{
			name:        "missing_required_field",
			payload:     `{"queryType":"PlayersByTeam","season":2025}`,
			expectedErr: readmodel.ErrMissingRequiredField,
		},
		{
			name:        "null_required_field",
			payload:     `{"queryType":"PlayersByTeam","teamId":null}`,
			expectedErr: readmodel.ErrMissingRequiredField,
		},
		{
			name:        "non_numeric_int_field",
			payload:     `{"queryType":"PlayersByTeam","teamId":"abc"}`,
			expectedErr: readmodel.ErrInvalidFieldValue,
		},
		{
			name:        "fractional_int_field",
			payload:     `{"queryType":"PlayersByTeam","teamId":7.5}`,
			expectedErr: readmodel.ErrInvalidFieldValue,
		},
		{
			name:        "unparsable_date_field",
			payload:     `{"queryType":"PlayerSearch","name":"x","since":"not-a-date"}`,
			expectedErr: readmodel.ErrInvalidFieldValue,
		},
		{
			name:        "malformed_json",
			payload:     `{"queryType":`,
			expectedErr: readmodel.ErrMalformedPayload,
		},
		{
			name:        "non_object_payload",
			payload:     `[1,2,3]`,
			expectedErr: readmodel.ErrMalformedPayload,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			shape, err := decoder.Decode([]byte(tc.payload))

			assert.Nil(t, shape, "decoding is all-or-nothing")
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_Decoder_Decode_MissingRequiredField_NamesTheField(t *testing.T) {
	decoder := newTestDecoder(t)

	_, err := decoder.Decode([]byte(`{"queryType":"PlayersByTeam"}`))

	require.ErrorIs(t, err, readmodel.ErrMissingRequiredField)
	assert.Contains(t, err.Error(), "teamId")
}

func Test_Decoder_DecodeValues_QueryStringChannel(t *testing.T) {
	decoder := newTestDecoder(t)
	season := 2025

	tests := []struct {
		name     string
		values   url.Values
		expected readmodel.Query
	}{
		{
			name: "integers_sniffed_from_strings",
			values: url.Values{
				"queryType": {"PlayersByTeam"},
				"teamId":    {"7"},
				"season":    {"2025"},
			},
			expected: playersByTeamQuery{TeamID: 7, Season: &season},
		},
		{
			name: "string_field_keeps_numeric_looking_value",
			values: url.Values{
				"queryType": {"PlayerSearch"},
				"name":      {"42"},
			},
			expected: playerSearchQuery{Name: "42"},
		},
		{
			name: "bool_and_decimal_sniffing",
			values: url.Values{
				"queryType": {"PlayerSearch"},
				"name":      {"Nathan Cleary"},
				"active":    {"true"},
				"maxPrice":  {"712.5"},
			},
			expected: playerSearchQuery{
				Name:     "Nathan Cleary",
				Active:   boolPtr(true),
				MaxPrice: floatPtr(712.5),
			},
		},
		{
			name: "repeated_keys_become_a_list",
			values: url.Values{
				"queryType": {"PlayerSearch"},
				"name":      {"Nathan Cleary"},
				"positions": {"HOK", "MID"},
			},
			expected: playerSearchQuery{
				Name:      "Nathan Cleary",
				Positions: []string{"HOK", "MID"},
			},
		},
		{
			name: "single_value_for_list_field",
			values: url.Values{
				"queryType": {"PlayerSearch"},
				"name":      {"Nathan Cleary"},
				"positions": {"HOK"},
			},
			expected: playerSearchQuery{
				Name:      "Nathan Cleary",
				Positions: []string{"HOK"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			shape, err := decoder.DecodeValues(tc.values)

			require.NoError(t, err)
			assert.Equal(t, tc.expected, shape)
		})
	}
}

func Test_Decoder_DecodeValues_MissingDiscriminator(t *testing.T) {
	decoder := newTestDecoder(t)

	_, err := decoder.DecodeValues(url.Values{"teamId": {"7"}})

	assert.ErrorIs(t, err, readmodel.ErrMissingDiscriminator)
}

func Test_Decoder_BothChannels_YieldEqualShapes(t *testing.T) {
	decoder := newTestDecoder(t)

	fromJSON, err := decoder.Decode([]byte(`{"queryType":"PlayersByTeam","teamId":7,"season":2025}`))
	require.NoError(t, err)

	fromValues, err := decoder.DecodeValues(url.Values{
		"queryType": {"PlayersByTeam"},
		"teamId":    {"7"},
		"season":    {"2025"},
	})
	require.NoError(t, err)

	assert.Equal(t, fromJSON, fromValues)
}

func Test_Decoder_Decode_IsDeterministic(t *testing.T) {
	decoder := newTestDecoder(t)
	payload := []byte(`{"queryType":"PlayersByTeam","teamId":7,"season":2025}`)

	first, err := decoder.Decode(payload)
	require.NoError(t, err)

	second, err := decoder.Decode(payload)
	require.NoError(t, err)

	assert.Equal(t, first, second, "decoding the same payload twice must yield equal shapes")
}

func Test_Decoder_Decode_DateFormats(t *testing.T) {
	decoder := newTestDecoder(t)

	tests := []struct {
		name     string
		payload  string
		expected time.Time
	}{
		{
			name:     "rfc3339_timestamp",
			payload:  `{"queryType":"PlayerSearch","name":"x","since":"2025-03-15T10:30:00Z"}`,
			expected: time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:     "date_only",
			payload:  `{"queryType":"PlayerSearch","name":"x","since":"2025-03-15"}`,
			expected: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			shape, err := decoder.Decode([]byte(tc.payload))

			require.NoError(t, err)
			search, ok := shape.(playerSearchQuery)
			require.True(t, ok)
			assert.True(t, tc.expected.Equal(search.Since))
		})
	}
}

func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }

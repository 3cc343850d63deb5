package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querymill/readmodel-go/example/demo/httpapi"
	"github.com/querymill/readmodel-go/example/features/query/playersbyteam"
	"github.com/querymill/readmodel-go/example/features/query/teamsbyseason"
	"github.com/querymill/readmodel-go/example/shared/core"
	"github.com/querymill/readmodel-go/readmodel"
	"github.com/querymill/readmodel-go/testutil/fakesession"
	"github.com/querymill/readmodel-go/testutil/testdoubles"
)

type responseBody struct {
	Data       []core.SuperCoachPlayer `json:"data"`
	TotalCount int                     `json:"totalCount"`
	Skip       int                     `json:"skip"`
	Take       *int                    `json:"take"`
	DataType   string                  `json:"dataType"`
}

// newTestServer assembles the full pipeline with an in-memory session. The
// TeamsBySeason shape is registered with the type registry but deliberately
// has no handler, to exercise the configuration-defect path.
func newTestServer(t *testing.T) (http.Handler, *testdoubles.LoggerSpy) {
	t.Helper()

	session := fakesession.NewFakeSession()
	err := session.Seed(core.PlayerCollectionName,
		core.SuperCoachPlayer{PlayerID: "p-1", Name: "Nathan Cleary", TeamID: 7, Season: 2025, Price: 780.4},
		core.SuperCoachPlayer{PlayerID: "p-2", Name: "Isaah Yeo", TeamID: 7, Season: 2025, Price: 612.9},
		core.SuperCoachPlayer{PlayerID: "p-3", Name: "Jahrome Hughes", TeamID: 4, Season: 2025, Price: 745.0},
	)
	require.NoError(t, err)

	types, err := readmodel.NewTypeRegistry(playersbyteam.Descriptor(), teamsbyseason.Descriptor())
	require.NoError(t, err)

	handlers := readmodel.NewHandlerRegistry()
	require.NoError(t, readmodel.Register[playersbyteam.Query](handlers, playersbyteam.NewQueryHandler()))

	logger := testdoubles.NewLoggerSpy()
	dispatcher, err := readmodel.NewDispatcher(handlers, readmodel.WithLogger(logger))
	require.NoError(t, err)

	collections, err := readmodel.NewCollectionResolver(core.PlayersCollection(), core.TeamsCollection())
	require.NoError(t, err)

	server := httpapi.NewServer(readmodel.NewDecoder(types), collections, dispatcher, session, logger)

	return server.Routes(), logger
}

func decodeResponse(t *testing.T, recorder *httptest.ResponseRecorder) responseBody {
	t.Helper()

	var body responseBody
	require.NoError(t, jsoniter.ConfigFastest.Unmarshal(recorder.Body.Bytes(), &body))

	return body
}

func Test_GET_QueryString_HappyPath(t *testing.T) {
	// setup
	routes, _ := newTestServer(t)
	request := httptest.NewRequest(http.MethodGet,
		"/queries/SuperCoachPlayer?queryType=PlayersByTeam&teamId=7&orderBy=price+DESC", nil)
	recorder := httptest.NewRecorder()

	// act
	routes.ServeHTTP(recorder, request)

	// assert
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	body := decodeResponse(t, recorder)
	assert.Equal(t, 2, body.TotalCount)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "Nathan Cleary", body.Data[0].Name, "price DESC should order the dearest player first")
	assert.Equal(t, core.PlayerCollectionName, body.DataType)
}

func Test_GET_ReservedParamsNeverReachTheDecoder(t *testing.T) {
	// setup: ORDERBY and Take in mixed case are envelope params, not shape fields
	routes, _ := newTestServer(t)
	request := httptest.NewRequest(http.MethodGet,
		"/queries/player?queryType=playersbyteam&teamId=7&ORDERBY=name&Take=1&skip=0", nil)
	recorder := httptest.NewRecorder()

	// act
	routes.ServeHTTP(recorder, request)

	// assert
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	body := decodeResponse(t, recorder)
	assert.Equal(t, 2, body.TotalCount)
}

func Test_GET_PaginationParams(t *testing.T) {
	// setup
	routes, _ := newTestServer(t)
	request := httptest.NewRequest(http.MethodGet,
		"/queries/SuperCoachPlayer?queryType=PlayersByTeam&teamId=7&skip=1&take=1", nil)
	recorder := httptest.NewRecorder()

	// act
	routes.ServeHTTP(recorder, request)

	// assert
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	body := decodeResponse(t, recorder)
	assert.Equal(t, 2, body.TotalCount)
	assert.Len(t, body.Data, 1)
	assert.Equal(t, 1, body.Skip)
	require.NotNil(t, body.Take)
	assert.Equal(t, 1, *body.Take)
}

func Test_POST_Envelope_HappyPath(t *testing.T) {
	// setup
	routes, _ := newTestServer(t)
	payload := `{
		"query": {"queryType": "PlayersByTeam", "teamId": 7, "season": 2025},
		"orderBy": "name ASC",
		"skip": 0
	}`
	request := httptest.NewRequest(http.MethodPost, "/queries/SuperCoachPlayer", strings.NewReader(payload))
	recorder := httptest.NewRecorder()

	// act
	routes.ServeHTTP(recorder, request)

	// assert
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	body := decodeResponse(t, recorder)
	assert.Equal(t, 2, body.TotalCount)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "Isaah Yeo", body.Data[0].Name)
}

func Test_ClientInputErrorsReturn400(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{
			name:   "missing_discriminator",
			method: http.MethodGet,
			target: "/queries/SuperCoachPlayer?teamId=7",
		},
		{
			name:   "unknown_query_type",
			method: http.MethodGet,
			target: "/queries/SuperCoachPlayer?queryType=NoSuchQuery",
		},
		{
			name:   "missing_required_field",
			method: http.MethodGet,
			target: "/queries/SuperCoachPlayer?queryType=PlayersByTeam",
		},
		{
			name:   "invalid_field_value",
			method: http.MethodPost,
			target: "/queries/SuperCoachPlayer",
			body:   `{"query": {"queryType": "PlayersByTeam", "teamId": "not-a-number"}}`,
		},
		{
			name:   "unknown_data_type",
			method: http.MethodGet,
			target: "/queries/NoSuchCollection?queryType=PlayersByTeam&teamId=7",
		},
		{
			name:   "malformed_body",
			method: http.MethodPost,
			target: "/queries/SuperCoachPlayer",
			body:   `{"query": not json`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// setup
			routes, _ := newTestServer(t)
			var reader *strings.Reader
			if tc.body != "" {
				reader = strings.NewReader(tc.body)
			} else {
				reader = strings.NewReader("")
			}
			request := httptest.NewRequest(tc.method, tc.target, reader)
			recorder := httptest.NewRecorder()

			// act
			routes.ServeHTTP(recorder, request)

			// assert
			assert.Equal(t, http.StatusBadRequest, recorder.Code, recorder.Body.String())
		})
	}
}

func Test_MissingHandlerReturns500AndLogsError(t *testing.T) {
	// setup: TeamsBySeason decodes fine but no handler is registered for it
	routes, logger := newTestServer(t)
	request := httptest.NewRequest(http.MethodGet,
		"/queries/SuperCoachTeam?queryType=TeamsBySeason&season=2025", nil)
	recorder := httptest.NewRecorder()

	// act
	routes.ServeHTTP(recorder, request)

	// assert
	assert.Equal(t, http.StatusInternalServerError, recorder.Code, recorder.Body.String())

	errorRecords := logger.RecordsAtLevel("error")
	require.Len(t, errorRecords, 1, "the missing handler should be logged at error severity")
	assert.Contains(t, errorRecords[0].Message, "no handler registered")
}

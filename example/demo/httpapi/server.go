package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/querymill/readmodel-go/readmodel"
)

const (
	paramOrderBy = "orderBy"
	paramSkip    = "skip"
	paramTake    = "take"

	logMsgRequestFailed = "query request failed"
	logAttrPath         = "path"
	logAttrError        = "error"
)

// reservedParams are envelope parameters of the query string channel; they
// never reach the shape decoder.
var reservedParams = []string{paramOrderBy, paramSkip, paramTake}

// Server exposes the read-model dispatch pipeline over HTTP.
// One route serves both input channels:
//
//	GET  /queries/{dataType}?queryType=...&field=...  (flattened query string)
//	POST /queries/{dataType}                          (JSON envelope body)
type Server struct {
	decoder     readmodel.Decoder
	collections readmodel.CollectionResolver
	dispatcher  readmodel.Dispatcher
	session     readmodel.Session
	logger      readmodel.Logger
}

// NewServer creates a Server over the assembled dispatch pipeline.
func NewServer(
	decoder readmodel.Decoder,
	collections readmodel.CollectionResolver,
	dispatcher readmodel.Dispatcher,
	session readmodel.Session,
	logger readmodel.Logger,
) *Server {

	return &Server{
		decoder:     decoder,
		collections: collections,
		dispatcher:  dispatcher,
		session:     session,
		logger:      logger,
	}
}

// Routes returns the HTTP handler serving the query endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /queries/{dataType}", s.handleQueryValues)
	mux.HandleFunc("POST /queries/{dataType}", s.handleQueryBody)

	return mux
}

// handleQueryValues serves the flattened query string channel.
func (s *Server) handleQueryValues(w http.ResponseWriter, r *http.Request) {
	collection, err := s.collections.Resolve(r.PathValue("dataType"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	values := r.URL.Query()
	orderBy := values.Get(paramOrderBy)
	skip := parseIntParam(values.Get(paramSkip))
	take := parseTakeParam(values.Get(paramTake))

	for _, reserved := range reservedParams {
		for key := range values {
			if strings.EqualFold(key, reserved) {
				values.Del(key)
			}
		}
	}

	shape, err := s.decoder.DecodeValues(values)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.dispatch(w, r, shape, collection, orderBy, skip, take)
}

// handleQueryBody serves the JSON envelope channel.
func (s *Server) handleQueryBody(w http.ResponseWriter, r *http.Request) {
	collection, err := s.collections.Resolve(r.PathValue("dataType"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body, readErr := io.ReadAll(r.Body)
	if readErr != nil {
		s.writeError(w, r, errors.Join(readmodel.ErrMalformedPayload, readErr))
		return
	}

	var envelope readmodel.Request
	if unmarshalErr := jsoniter.ConfigFastest.Unmarshal(body, &envelope); unmarshalErr != nil {
		s.writeError(w, r, errors.Join(readmodel.ErrMalformedPayload, unmarshalErr))
		return
	}

	shape, err := s.decoder.Decode(envelope.Query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.dispatch(w, r, shape, collection, envelope.OrderBy, envelope.Skip, envelope.Take)
}

func (s *Server) dispatch(
	w http.ResponseWriter,
	r *http.Request,
	shape readmodel.Query,
	collection readmodel.CollectionDescriptor,
	orderBy string,
	skip int,
	take *int,
) {

	result, err := s.dispatcher.Dispatch(r.Context(), shape, collection, orderBy, skip, take, s.session)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, readmodel.Response{
		Data:       result.Items,
		TotalCount: result.TotalCount,
		Skip:       skip,
		Take:       take,
		DataType:   collection.Name,
	})
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps dispatch errors to HTTP status codes: client input errors
// become 400, everything else is a server-side failure.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if readmodel.IsClientInputError(err) || errors.Is(err, readmodel.ErrMalformedPayload) {
		status = http.StatusBadRequest
	}

	if s.logger != nil {
		s.logger.Warn(logMsgRequestFailed, logAttrPath, r.URL.Path, logAttrError, err.Error())
	}

	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	buf, err := jsoniter.ConfigFastest.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

func parseIntParam(raw string) int {
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}

	return parsed
}

func parseTakeParam(raw string) *int {
	if raw == "" {
		return nil
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}

	return &parsed
}

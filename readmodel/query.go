package readmodel

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Query represents the contract for all query shapes.
// Each shape is an immutable value object carrying a unique discriminator
// and a fixed set of filter parameters. Shapes are constructed once per
// request by the Decoder and discarded when the request completes.
type Query interface {
	QueryType() string
}

// Document is one opaque stored record as raw JSON.
type Document = json.RawMessage

// Request is the transport-agnostic envelope for a read model query.
// The Query payload stays raw here; the Decoder turns it into a concrete
// shape using the type registry.
type Request struct {
	ID       uuid.UUID       `json:"id"`
	Query    json.RawMessage `json:"query"`
	OrderBy  string          `json:"orderBy"`
	Skip     int             `json:"skip"`
	Take     *int            `json:"take"`
	DataType string          `json:"dataType"`
}

// Response is the transport-agnostic result envelope.
type Response struct {
	Data       []Document `json:"data"`
	TotalCount int        `json:"totalCount"`
	Skip       int        `json:"skip"`
	Take       *int       `json:"take"`
	DataType   string     `json:"dataType"`
}

// Result is what a handler returns: the paginated records plus the total
// count over the filtered but unpaginated set.
type Result struct {
	Items      []Document
	TotalCount int
}

package readmodel

import (
	"errors"
)

// Request-time failures caused by client input.
var (
	ErrMissingDiscriminator = errors.New("missing query type discriminator")
	ErrUnknownQueryType     = errors.New("unknown query type")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidFieldValue    = errors.New("invalid field value")
	ErrUnknownDataType      = errors.New("unknown data type")
)

// Request-time failures caused by deployment configuration, not by the client.
var (
	ErrNoHandlerRegistered   = errors.New("no handler registered for query type")
	ErrUnsupportedCollection = errors.New("handler does not support the resolved collection")
)

// Startup-time failures. Registries are built eagerly and fail fast.
var (
	ErrEmptyDiscriminator     = errors.New("empty query type discriminator supplied")
	ErrDuplicateDiscriminator = errors.New("duplicate query type discriminator")
	ErrEmptyCollectionName    = errors.New("empty collection name supplied")
	ErrDuplicateCollection    = errors.New("duplicate collection name or alias")
	ErrMissingDefaultOrder    = errors.New("collection has no default ordering")
	ErrDuplicateHandler       = errors.New("duplicate handler registration for query shape")
	ErrInvalidHandlerShape    = errors.New("handler query shape must be a concrete type")
	ErrNilHandlerRegistry     = errors.New("nil handler registry supplied")
)

// IsClientInputError reports whether err is one of the request-time failures
// that a transport layer should translate into a client error (e.g. HTTP 400).
// ErrNoHandlerRegistered and ErrUnsupportedCollection are deliberately excluded:
// they surface at request time but indicate a deployment defect.
func IsClientInputError(err error) bool {
	return errors.Is(err, ErrMissingDiscriminator) ||
		errors.Is(err, ErrUnknownQueryType) ||
		errors.Is(err, ErrMissingRequiredField) ||
		errors.Is(err, ErrInvalidFieldValue) ||
		errors.Is(err, ErrUnknownDataType)
}

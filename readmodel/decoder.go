package readmodel

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// DiscriminatorField is the top-level payload field carrying the query type
// discriminator, matched case-insensitively on both input channels.
const DiscriminatorField = "queryType"

const dateOnlyFormat = "2006-01-02"

// ErrMalformedPayload is returned when the raw payload is not a JSON object.
var ErrMalformedPayload = errors.New("malformed query payload")

// Decoder turns an untyped query payload into the concrete shape registered
// for its discriminator. Two input channels are supported with identical
// semantics: a single JSON object body and a flattened query string. Both
// funnel into the same structural deserialization step, so handler-visible
// behavior does not depend on transport.
//
// Decoding is all-or-nothing: on any failure no shape is returned. Unknown
// extra fields are ignored; missing required fields fail the decode.
type Decoder struct {
	types TypeRegistry
}

// NewDecoder creates a Decoder backed by the supplied type registry.
func NewDecoder(types TypeRegistry) Decoder {
	return Decoder{types: types}
}

// Decode decodes a JSON object payload into a concrete query shape.
func (d Decoder) Decode(payload []byte) (Query, error) {
	rawFields := make(map[string]jsoniter.RawMessage)
	if err := jsoniter.ConfigFastest.Unmarshal(payload, &rawFields); err != nil {
		return nil, errors.Join(ErrMalformedPayload, err)
	}

	fields := make(map[string]any, len(rawFields))
	for key, raw := range rawFields {
		var value any
		if err := jsoniter.ConfigFastest.Unmarshal(raw, &value); err != nil {
			return nil, errors.Join(ErrMalformedPayload, err)
		}
		fields[key] = value
	}

	return d.decodeFields(fields)
}

// DecodeValues decodes a flattened query string into a concrete query shape.
// Each parameter becomes a candidate field; values are sniffed as integer,
// then decimal, then boolean, falling back to string; repeated keys become a
// sequence. The result then takes the same structural deserialization path
// as the JSON channel.
func (d Decoder) DecodeValues(values url.Values) (Query, error) {
	fields := make(map[string]any, len(values))

	for key, candidates := range values {
		switch len(candidates) {
		case 0:
			continue
		case 1:
			fields[key] = sniffValue(candidates[0])
		default:
			sniffed := make([]any, 0, len(candidates))
			for _, candidate := range candidates {
				sniffed = append(sniffed, sniffValue(candidate))
			}
			fields[key] = sniffed
		}
	}

	return d.decodeFields(fields)
}

// decodeFields is the shared structural deserialization step: extract the
// discriminator, resolve the shape descriptor, coerce the declared fields,
// and populate a fresh shape instance.
func (d Decoder) decodeFields(fields map[string]any) (Query, error) {
	discriminator, err := extractDiscriminator(fields)
	if err != nil {
		return nil, err
	}

	descriptor, err := d.types.Resolve(discriminator)
	if err != nil {
		return nil, err
	}

	normalized := make(map[string]any, len(descriptor.Fields))

	for _, spec := range descriptor.Fields {
		value, present := lookupField(fields, spec.Name)
		if !present || value == nil {
			if spec.Required {
				return nil, fmt.Errorf("%w: %q", ErrMissingRequiredField, spec.Name)
			}
			continue
		}

		coerced, coerceErr := coerceField(spec, value)
		if coerceErr != nil {
			return nil, coerceErr
		}

		normalized[spec.Name] = coerced
	}

	if descriptor.decode == nil {
		return nil, errNoDecodeFunc
	}

	buf, marshalErr := jsoniter.ConfigFastest.Marshal(normalized)
	if marshalErr != nil {
		return nil, errors.Join(ErrMalformedPayload, marshalErr)
	}

	shape, decodeErr := descriptor.decode(buf)
	if decodeErr != nil {
		return nil, errors.Join(ErrMalformedPayload, decodeErr)
	}

	return shape, nil
}

func extractDiscriminator(fields map[string]any) (string, error) {
	value, present := lookupField(fields, DiscriminatorField)
	if !present {
		return "", ErrMissingDiscriminator
	}

	discriminator, isString := value.(string)
	if !isString || strings.TrimSpace(discriminator) == "" {
		return "", ErrMissingDiscriminator
	}

	return discriminator, nil
}

// lookupField finds a payload value by field name, case-insensitively.
// An exact match wins over a case-variant one.
func lookupField(fields map[string]any, name string) (any, bool) {
	if value, found := fields[name]; found {
		return value, true
	}

	for key, value := range fields {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}

	return nil, false
}

// coerceField applies the declared-kind coercion rules to one payload value.
func coerceField(spec FieldSpec, value any) (any, error) {
	if spec.List {
		elements, isList := value.([]any)
		if !isList {
			elements = []any{value}
		}

		coerced := make([]any, 0, len(elements))
		for _, element := range elements {
			coercedElement, err := coerceScalar(spec.Kind, element)
			if err != nil {
				return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidFieldValue, spec.Name, err)
			}
			coerced = append(coerced, coercedElement)
		}

		return coerced, nil
	}

	coerced, err := coerceScalar(spec.Kind, value)
	if err != nil {
		return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidFieldValue, spec.Name, err)
	}

	return coerced, nil
}

//nolint:gocognit // one case per (kind, payload type) pair reads better flat
func coerceScalar(kind FieldKind, value any) (any, error) {
	switch kind {
	case FieldInt:
		switch v := value.(type) {
		case float64:
			if v != math.Trunc(v) {
				return nil, fmt.Errorf("%v is not an integer", v)
			}
			return int64(v), nil
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		case string:
			parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%q is not an integer", v)
			}
			return parsed, nil
		}

	case FieldDecimal:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("%q is not a decimal", v)
			}
			return parsed, nil
		}

	case FieldBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("%q is not a boolean", v)
			}
			return parsed, nil
		}

	case FieldString:
		switch v := value.(type) {
		case string:
			return v, nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case int:
			return strconv.Itoa(v), nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		case bool:
			return strconv.FormatBool(v), nil
		}

	case FieldDate:
		if v, isString := value.(string); isString {
			trimmed := strings.TrimSpace(v)
			if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
				return parsed, nil
			}
			if parsed, err := time.ParseInLocation(dateOnlyFormat, trimmed, time.UTC); err == nil {
				return parsed, nil
			}
			return nil, fmt.Errorf("%q is not a date", v)
		}
	}

	return nil, fmt.Errorf("unexpected value %v (%T)", value, value)
}

// sniffValue applies the query-string type sniffing order:
// integer, then decimal, then boolean, then string.
func sniffValue(raw string) any {
	if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return parsed
	}

	if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
		return parsed
	}

	if parsed, err := strconv.ParseBool(raw); err == nil {
		return parsed
	}

	return raw
}

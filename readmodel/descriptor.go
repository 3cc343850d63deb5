package readmodel

import (
	"errors"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// FieldKind enumerates the declared types a shape field can have.
type FieldKind int

const (
	FieldString FieldKind = iota
	FieldInt
	FieldDecimal
	FieldBool
	FieldDate
)

// FieldSpec describes one declared field of a query shape.
// Name must match the shape's JSON tag; matching against incoming payload
// keys is case-insensitive. A field that is not Required contributes no
// filter when absent. List fields accept repeated query-string keys and
// JSON arrays, with every element coerced to Kind.
type FieldSpec struct {
	Name     string
	Kind     FieldKind
	Required bool
	List     bool
}

// ShapeDescriptor pairs a discriminator with a factory for the concrete
// query shape and the field metadata the Decoder needs. Descriptors are
// created at process start and are immutable for the process lifetime.
type ShapeDescriptor struct {
	Discriminator string
	Fields        []FieldSpec

	decode func(data []byte) (Query, error)
}

var errNoDecodeFunc = errors.New("shape descriptor was not built with NewShapeDescriptor")

// NewShapeDescriptor builds the descriptor for the shape type Q.
// The decode step unmarshals a normalized field map into a fresh value of Q,
// so two decodes of the same payload yield field-wise equal shapes.
func NewShapeDescriptor[Q Query](discriminator string, fields ...FieldSpec) ShapeDescriptor {
	return ShapeDescriptor{
		Discriminator: discriminator,
		Fields:        fields,
		decode: func(data []byte) (Query, error) {
			var shape Q
			if err := jsoniter.ConfigFastest.Unmarshal(data, &shape); err != nil {
				return nil, err
			}

			return shape, nil
		},
	}
}

// field returns the FieldSpec whose name matches case-insensitively.
func (sd ShapeDescriptor) field(name string) (FieldSpec, bool) {
	for _, spec := range sd.Fields {
		if strings.EqualFold(spec.Name, name) {
			return spec, true
		}
	}

	return FieldSpec{}, false
}

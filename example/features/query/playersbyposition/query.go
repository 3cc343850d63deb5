package playersbyposition

import (
	"github.com/querymill/readmodel-go/readmodel"
)

// QueryTypeName is the discriminator clients send to select this query shape.
const QueryTypeName = "PlayersByPosition"

// Query filters player documents by playing position, optionally bounded to a
// price range.
type Query struct {
	Position string   `json:"position"`
	MinPrice *float64 `json:"minPrice,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
}

// QueryType returns the query type discriminator.
func (q Query) QueryType() string {
	return QueryTypeName
}

// Descriptor declares the shape for registration with the type registry.
func Descriptor() readmodel.ShapeDescriptor {
	return readmodel.NewShapeDescriptor[Query](
		QueryTypeName,
		readmodel.FieldSpec{Name: "position", Kind: readmodel.FieldString, Required: true},
		readmodel.FieldSpec{Name: "minPrice", Kind: readmodel.FieldDecimal},
		readmodel.FieldSpec{Name: "maxPrice", Kind: readmodel.FieldDecimal},
	)
}

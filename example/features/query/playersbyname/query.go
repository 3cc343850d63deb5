package playersbyname

import (
	"github.com/querymill/readmodel-go/readmodel"
)

// QueryTypeName is the discriminator clients send to select this query shape.
const QueryTypeName = "PlayersByName"

// Query filters player documents by exact display name.
type Query struct {
	Name string `json:"name"`
}

// QueryType returns the query type discriminator.
func (q Query) QueryType() string {
	return QueryTypeName
}

// Descriptor declares the shape for registration with the type registry.
func Descriptor() readmodel.ShapeDescriptor {
	return readmodel.NewShapeDescriptor[Query](
		QueryTypeName,
		readmodel.FieldSpec{Name: "name", Kind: readmodel.FieldString, Required: true},
	)
}

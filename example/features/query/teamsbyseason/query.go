package teamsbyseason

import (
	"github.com/querymill/readmodel-go/readmodel"
)

// QueryTypeName is the discriminator clients send to select this query shape.
const QueryTypeName = "TeamsBySeason"

// Query filters team documents by season.
type Query struct {
	Season int `json:"season"`
}

// QueryType returns the query type discriminator.
func (q Query) QueryType() string {
	return QueryTypeName
}

// Descriptor declares the shape for registration with the type registry.
func Descriptor() readmodel.ShapeDescriptor {
	return readmodel.NewShapeDescriptor[Query](
		QueryTypeName,
		readmodel.FieldSpec{Name: "season", Kind: readmodel.FieldInt, Required: true},
	)
}

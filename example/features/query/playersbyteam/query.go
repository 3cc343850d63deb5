package playersbyteam

import (
	"github.com/querymill/readmodel-go/readmodel"
)

// QueryTypeName is the discriminator clients send to select this query shape.
const QueryTypeName = "PlayersByTeam"

// Query filters player documents by team, optionally narrowed to one season.
type Query struct {
	TeamID int  `json:"teamId"`
	Season *int `json:"season,omitempty"`
}

// QueryType returns the query type discriminator.
func (q Query) QueryType() string {
	return QueryTypeName
}

// Descriptor declares the shape for registration with the type registry.
func Descriptor() readmodel.ShapeDescriptor {
	return readmodel.NewShapeDescriptor[Query](
		QueryTypeName,
		readmodel.FieldSpec{Name: "teamId", Kind: readmodel.FieldInt, Required: true},
		readmodel.FieldSpec{Name: "season", Kind: readmodel.FieldInt},
	)
}

package core

import (
	"github.com/querymill/readmodel-go/readmodel"
)

// PlayerCollectionName is the canonical data-type name for player documents.
const PlayerCollectionName = "SuperCoachPlayer"

// PlayerCollectionAlias is the short alias accepted for player documents.
const PlayerCollectionAlias = "Player"

// Player document field names, matching the JSON keys stored per document.
const (
	PlayerFieldID       = "playerId"
	PlayerFieldName     = "name"
	PlayerFieldTeamID   = "teamId"
	PlayerFieldTeamName = "teamName"
	PlayerFieldPosition = "position"
	PlayerFieldSeason   = "season"
	PlayerFieldPrice    = "price"
	PlayerFieldAverage  = "averagePoints"
	PlayerFieldTotal    = "totalPoints"
	PlayerFieldUpdated  = "updatedAt"
)

// SuperCoachPlayer is the denormalized player statistics document.
type SuperCoachPlayer struct {
	PlayerID      string  `json:"playerId"`
	Name          string  `json:"name"`
	TeamID        int     `json:"teamId"`
	TeamName      string  `json:"teamName"`
	Position      string  `json:"position"`
	Season        int     `json:"season"`
	Price         float64 `json:"price"`
	AveragePoints float64 `json:"averagePoints"`
	TotalPoints   int     `json:"totalPoints"`
	UpdatedAt     string  `json:"updatedAt"`
}

// PlayersCollection describes the player document collection: where it is
// stored, which fields callers may sort by, and the ordering applied when a
// request supplies none.
func PlayersCollection() readmodel.CollectionDescriptor {
	return readmodel.CollectionDescriptor{
		Name:    PlayerCollectionName,
		Aliases: []string{PlayerCollectionAlias},
		Table:   "supercoach_players",
		Sortable: map[string]readmodel.FieldKind{
			PlayerFieldName:     readmodel.FieldString,
			PlayerFieldTeamName: readmodel.FieldString,
			PlayerFieldPosition: readmodel.FieldString,
			PlayerFieldSeason:   readmodel.FieldInt,
			PlayerFieldPrice:    readmodel.FieldDecimal,
			PlayerFieldAverage:  readmodel.FieldDecimal,
			PlayerFieldTotal:    readmodel.FieldInt,
			PlayerFieldUpdated:  readmodel.FieldDate,
		},
		DefaultOrder: readmodel.OrderClause{Field: PlayerFieldName},
	}
}

package core

import (
	"github.com/querymill/readmodel-go/readmodel"
)

// TeamCollectionName is the canonical data-type name for team documents.
const TeamCollectionName = "SuperCoachTeam"

// TeamCollectionAlias is the short alias accepted for team documents.
const TeamCollectionAlias = "Team"

// Team document field names, matching the JSON keys stored per document.
const (
	TeamFieldID      = "teamId"
	TeamFieldName    = "name"
	TeamFieldSeason  = "season"
	TeamFieldWins    = "wins"
	TeamFieldLosses  = "losses"
	TeamFieldFor     = "pointsFor"
	TeamFieldAgainst = "pointsAgainst"
	TeamFieldUpdated = "updatedAt"
)

// SuperCoachTeam is the denormalized team statistics document.
type SuperCoachTeam struct {
	TeamID        int    `json:"teamId"`
	Name          string `json:"name"`
	Season        int    `json:"season"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	PointsFor     int    `json:"pointsFor"`
	PointsAgainst int    `json:"pointsAgainst"`
	UpdatedAt     string `json:"updatedAt"`
}

// TeamsCollection describes the team document collection.
func TeamsCollection() readmodel.CollectionDescriptor {
	return readmodel.CollectionDescriptor{
		Name:    TeamCollectionName,
		Aliases: []string{TeamCollectionAlias},
		Table:   "supercoach_teams",
		Sortable: map[string]readmodel.FieldKind{
			TeamFieldName:    readmodel.FieldString,
			TeamFieldSeason:  readmodel.FieldInt,
			TeamFieldWins:    readmodel.FieldInt,
			TeamFieldLosses:  readmodel.FieldInt,
			TeamFieldFor:     readmodel.FieldInt,
			TeamFieldAgainst: readmodel.FieldInt,
			TeamFieldUpdated: readmodel.FieldDate,
		},
		DefaultOrder: readmodel.OrderClause{Field: TeamFieldName},
	}
}

// DefaultCollections returns every collection the example application serves.
func DefaultCollections() []readmodel.CollectionDescriptor {
	return []readmodel.CollectionDescriptor{
		PlayersCollection(),
		TeamsCollection(),
	}
}

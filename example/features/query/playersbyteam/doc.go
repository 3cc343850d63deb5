// Package playersbyteam implements the PlayersByTeam query:
// all players of one team, optionally narrowed to a single season.
package playersbyteam

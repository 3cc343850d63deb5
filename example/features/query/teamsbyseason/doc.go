// Package teamsbyseason implements the TeamsBySeason query:
// all teams that competed in one season.
package teamsbyseason

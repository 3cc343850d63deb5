// Package playersbyname implements the PlayersByName query:
// all players matching an exact display name.
package playersbyname

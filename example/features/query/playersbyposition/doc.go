// Package playersbyposition implements the PlayersByPosition query:
// all players in one playing position, optionally bounded by price.
package playersbyposition

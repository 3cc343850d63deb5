// Package httpapi exposes the example's read-model dispatch pipeline over
// HTTP, serving both the JSON envelope channel and the flattened query
// string channel through one route per collection.
package httpapi

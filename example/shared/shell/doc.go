// Package shell contains the infrastructure helpers shared by the example's
// query handlers: the collection guard and the count-then-paginate workflow
// every handler runs against its document store session.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'application' or 'adapter' layer.
package shell

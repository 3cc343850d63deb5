// Package core contains the read-model documents for the example:
// fantasy sports player and team statistics.
//
// Documents are the denormalized JSON records stored per collection and
// returned by queries as-is. The package also declares the collection
// descriptors: the canonical data-type names, storage tables, sortable
// field whitelists, and default orderings the dispatch engine needs.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core

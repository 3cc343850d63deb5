// Package readmodel provides the polymorphic query dispatch core for read
// model endpoints: a caller submits a named query with parameters, an
// orderBy string, and pagination bounds; the core resolves the query to a
// handler, executes it against a document store, and returns results plus a
// total count.
//
// The package is organized around four pieces:
//
//   - TypeRegistry: maps a string discriminator to a concrete query shape
//     descriptor. Built eagerly at startup, case-insensitive, fails fast on
//     duplicate discriminators.
//   - Decoder: decodes an open JSON object or flattened query string into
//     the concrete shape for its discriminator, with per-kind value
//     coercion. Decoding is all-or-nothing.
//   - CompileOrdering: turns a free-text "field ASC, field2 DESC" string
//     into a deterministic OrderSpec validated against a per-collection
//     whitelist, falling back to the collection's default ordering.
//   - HandlerRegistry + Dispatcher: bind each shape's runtime type to
//     exactly one handler and invoke it generically; adding a new shape and
//     handler pair never requires modifying the Dispatcher.
//
// Collections (the "what are we querying" axis) are resolved independently
// of shapes through a CollectionResolver; handlers validate the two agree.
//
// Storage is consumed through the narrow Session interface, so every piece
// is unit-testable without a live backend.
//
// Common usage pattern:
//
//	types, _ := readmodel.NewTypeRegistry(playersbyteam.Descriptor())
//	collections, _ := readmodel.NewCollectionResolver(core.PlayersCollection())
//	handlers := readmodel.NewHandlerRegistry()
//	_ = readmodel.Register(handlers, playersbyteam.NewQueryHandler())
//	dispatcher, _ := readmodel.NewDispatcher(handlers)
//
//	decoder := readmodel.NewDecoder(types)
//	shape, _ := decoder.Decode(request.Query)
//	collection, _ := collections.Resolve(request.DataType)
//	result, err := dispatcher.Dispatch(
//		ctx, shape, collection, request.OrderBy, request.Skip, request.Take, session)
package readmodel

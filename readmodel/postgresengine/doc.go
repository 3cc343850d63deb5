// Package postgresengine provides a PostgreSQL implementation of the readmodel session interface.
//
// This package stores read-model documents in JSONB tables, one table per
// collection, supporting multiple database adapters (pgx, sql.DB, sqlx).
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - Optional read replica routing for the PGX adapter
//   - Equality filters via JSONB containment (GIN-index friendly)
//   - Range filters and ordering via typed casts on extracted fields
//   - Count before pagination so totals reflect filters only
//
// Usage examples:
//
//	// Basic usage
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewDocumentStoreFromPGXPool(db)
//
//	// With operational logging (production-safe)
//	store, _ := postgresengine.NewDocumentStoreFromPGXPool(
//		db,
//		postgresengine.WithLogger(logger),
//		postgresengine.WithMetrics(collector),
//	)
//
//	docs, _ := store.Query(collection).
//		Where(readmodel.Eq("teamId", 7)).
//		OrderBy(ordering).
//		Skip(50).
//		Take(25).
//		All(ctx)
package postgresengine

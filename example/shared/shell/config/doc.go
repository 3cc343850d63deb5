// Package config provides configuration helpers for the example:
// fantasy sports read-model queries.
//
// It contains factory functions for creating PostgreSQL connections using
// different drivers (pgx.Pool, sql.DB, sqlx.DB) with env-driven DSNs, plus a
// YAML loader for collection descriptors so deployments can add collections
// without recompiling.
//
// This package is part of the shell (infrastructure) layer.
package config

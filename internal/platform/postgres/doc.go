// Package postgres provides the PostgreSQL backend: connection setup, schema
// migrations and the mapping of PostgreSQL errors onto store errors. The
// stores themselves live in sqlstore and are parameterized by Dialect.
package postgres

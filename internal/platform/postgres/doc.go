// Package postgres provides PostgreSQL-backed implementations of the store
// interfaces: review items, their scheduling state, and the append-only
// review event log.
package postgres

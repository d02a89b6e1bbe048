// Package store provides the console's object table and its durable copy.
//
// The Store holds every live instance in memory keyed by identity
// ("<Class>.<id>"). Mutations (Insert, Delete, attribute changes) are made in
// memory; callers flush with Save after every mutating command so the durable
// copy never lags by more than one command. Reload replaces the table from
// the durable copy and runs once at startup.
//
// # Media
//
//   - FileMedium: one JSON document, identity -> flat attribute mapping,
//     keys sorted, written via temp file + rename
//   - SQLiteMedium: table objects(identity, class, body) with the same flat
//     mapping as JSON in body; WAL mode, single connection, schema tracked
//     by PRAGMA user_version
//
// There is no locking. Two processes sharing one medium race; the last
// writer wins.
package store

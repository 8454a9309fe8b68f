// Package store provides SQLite-backed storage for the dispatch journal and
// the player profile directory.
//
// # Journal
//
// One row per dispatched command (DO, UNDO, REDO), append-only, ordered by
// seq. Each row carries the command's Result and the match state after the
// dispatch as JSON. The journal is an audit trail: nothing reads it back
// into a running session.
//
// # Profiles
//
// Named player identities (name, team, country, characters) that the
// apply-profile intent copies onto a side. Store implements
// command.ProfileSource.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store

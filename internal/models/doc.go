// Package models defines the core domain models for Steady.
//
// # Models
//
//   - Room: an isolated ledger namespace identified by a short code
//   - Member: a (room, user ID) pair with a display name; the unit of
//     authorization for ledger writes
//   - Entry: one signed transaction in a room's ledger
//   - WeeklyFocus: a member's locked focus areas for one week
//   - Event: a best-effort audit record of a domain lifecycle change
//
// # Design Principles
//
//  1. **Capability identifiers**: a user ID is a caller-supplied opaque token,
//     treated as unguessable. There are no accounts and no credentials.
//  2. **Name snapshots**: each Entry carries a copy of the member's display
//     name at write time. Renames do not rewrite history.
//  3. **Append-only ledger**: entries are never updated; the only deletion is
//     the member's own most recent entry inside the undo window.
//  4. **Unix timestamps**: rooms, members, focus records and events use Unix
//     seconds; entries use Unix milliseconds because ordering inside one
//     second matters for streak folding and undo targeting.
package models

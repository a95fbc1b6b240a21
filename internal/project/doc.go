// Package project holds the social-impact project records tracked by impactd.
//
// Project Representation:
//
// Each project is a flat record with six text fields plus an integer ID:
//   - Name, Problem, Initiator, Deadline (required at creation)
//   - Status (free text, "New" by default)
//   - Executor (free text, "Unassigned" by default)
//
// Store:
//
// Store is the authoritative in-memory collection. It preserves insertion
// order so listings and the persisted file are deterministic:
//   - Insert: add a project under a fresh ID
//   - Get: copy of a project by ID
//   - Update: apply a mutation in place
//   - Remove: delete by ID
//   - Entries: ordered copies of every record
//
// Store has no locking of its own. The registry service owns it and
// serializes access.
package project

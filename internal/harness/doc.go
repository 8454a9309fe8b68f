// Package harness runs overlay automation scenarios.
//
// A scenario builds an in-memory control surface, starts a session from an
// inline configuration, feeds it intent lines and checks the final state,
// the undo history, the journal and the remote writes each intent produced.
// Record ids and journal timestamps are deterministic, so traces can be
// compared against golden files.
//
// # Scenario Format
//
//	name: score_and_undo
//	description: "Scores are written and undone"
//	config:
//	  match:
//	    format: BO5
//	    player1: { name: Alice }
//	    player2: { name: Bob }
//	remote:
//	  scoreboard: true
//	steps:
//	  - intent: connect
//	  - intent: score p1 +1
//	  - intent: undo
//	  - intent: undo
//	    expect: { ok: false, message_contains: "Nothing to undo" }
//	assertions:
//	  - type: match
//	    expect: { p1_score: 0 }
//	  - type: write_count
//	    op: set_settings
//	    target: p1_score
//	    count: 2
//
// A step without expect must succeed. Steps may clear or inject faults and
// drop the session before their intent runs.
//
// # Assertion Types
//
//   - match: flat state keys (round_label, format, scene, queue_len and
//     p1_/p2_ name, team, country, score) equal the given values
//   - field: a remote field shows the given text
//   - scene: the surface's current scene
//   - history: undo and redo depths
//   - write_count: number of writes of op against target over all steps
//   - journal: number of journal rows, optionally the last row's command
//
// # Golden Files
//
// RunWithGolden compares a scenario's trace with
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness

// Package automation is the composition root of a scorebridge session.
//
// A Host owns the Tournament, the gateway, the overlay sync and the command
// dispatcher built from one config.Config. Callers (the CLI, the scenario
// harness, a hotkey engine) drive it with intent-level operations, either
// through the typed methods or as text lines parsed by ParseIntent:
//
//	connect
//	scene ingame
//	score p1 +1
//	swap
//	player p2 name="Eve" team=GRN country=fr chars=Ryu,Ken
//	profile p1 daigo
//	enqueue round="Top 8" format=FT3 p1=Carol p2=Dave
//	next
//	undo
//
// Every operation returns a result.Result. Malformed input is rejected with
// INVALID_ARGUMENT before any remote I/O. In strict mode gateway faults
// panic; the host recovers them at its boundary, so callers always get a
// Result.
//
// A Host is not safe for concurrent use: issue one intent at a time.
package automation

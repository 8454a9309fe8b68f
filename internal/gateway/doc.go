// Package gateway is the only path from domain code to the remote control
// surface.
//
// Every remote call passes through a Gateway, which adds:
//
//   - a local cache of remote field metadata (CachedInput), populated lazily
//     on the first lookup and invalidated on disconnect
//   - a per-call deadline derived from the caller's context, overridable per
//     invocation with WithTimeout
//   - classification of every fault into the result taxonomy
//   - a strict/lenient reporting policy
//
// # Cache gate
//
// A one-slot channel semaphore serializes cache mutation: Refresh holds it
// for the whole remote listing so two refreshes cannot interleave, and
// settings updates take it briefly to write back the entry. Plain remote
// reads and writes that do not touch the cache are not serialized.
//
// # Error policy
//
// Lenient (default): failures are returned as *result.Error.
// Strict: the failure is logged and then raised as a panic carrying the
// *result.Error. Callers opting into strict mode recover it with
//
//	defer gateway.Recover(&err)
//
// Each failure is logged exactly once, at the public method boundary.
package gateway

// Package trace is the structured event log of the stackc toolchain.
//
// # Usage
//
//	stackc emit --trace=- --trace-level=detail units/
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is off
//   - StreamTracer: writes each event immediately (text or NDJSON)
//   - RingTracer: keeps the last N events in memory for crash dumps
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// LevelPhase emits driver events, LevelDetail adds per-unit events and
// LevelDebug adds one span per generated intrinsic call site.
//
// Tracers travel through the pipeline on the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeUnit, "unit:a.toml", 0)
//	defer span.End("")
package trace

// Package memhost is an in-memory host tree implementing host.Adapter.
//
// It backs tests, the headless CLI runner and the live view server. Every
// mutation is recorded as an Op in a journal; ops applied inside a
// transaction are handed to OnFlush when the transaction commits, and
// undone when it rolls back. FailOn injects adapter failures.
//
// A Document is not safe for concurrent use. Drive it from the goroutine
// that owns the runtime (see scheduler.FrameLoop).
package memhost

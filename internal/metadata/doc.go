// Package metadata defines the value types shared by the inference engines,
// the ledger, and the apply pipeline: file records as observed on disk, the
// partial proposals each engine emits, merged proposed changes, and the
// ordered confidence scale that gates every write.
//
// Records are rebuilt from the current on-disk state on every scan and never
// mutated across runs. Proposals flow one way: the time and GPS engines each
// return their own partial keyed by path, Merge combines them, and the gate
// flags anything below threshold without discarding it.
package metadata

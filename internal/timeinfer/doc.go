// Package timeinfer assigns capture timestamps to files that lack them.
//
// It resolves each record's best-known capture time through a fixed priority
// chain (EXIF tags, XMP, filename patterns), classifies directories whose
// filesystem mtimes are bulk-copy artifacts, and infers missing timestamps
// from anchor neighbors in the directory's positional ordering: linear
// interpolation between two anchors, a one-second-per-position copy from a
// single anchor, or filename/mtime fallbacks at reduced confidence. A drift
// guardrail downgrades inferences that diverge implausibly from the file's
// modification time.
package timeinfer

// Package logging assembles the structured slog loggers used across
// exifheal: a colored console handler for interactive runs, a JSON handler
// for machine consumption, shared level/output plumbing, and a no-op logger
// for tests and wiring code that cannot fail.
//
// The inference engines take a *slog.Logger parameter rather than consulting
// any process-wide logger, so their behavior under test does not depend on
// global logging configuration.
package logging

// Package analyze orchestrates the pipeline: collect pending changes,
// redact credentials, pack the payloads into bounded chunks, then
// generate a commit message and optional per-chunk reviews through the
// configured provider.
//
// Generation results are cached by content fingerprint, so an
// unchanged tree never pays for a second provider call. Reviews run on
// a bounded worker pool and are reported in chunk order regardless of
// completion order.
//
// A failed chunk marks its slot in the report and the run continues;
// the report's Outcome distinguishes full success, partial failure,
// and total failure for exit-status mapping.
package analyze

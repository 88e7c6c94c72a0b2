// Package cli wires together the Cobra command tree for the comet binary.
//
// It defines the root command and all subcommands (analyze, watch,
// models, cache, config, hook, version), binds flags, reads
// configuration, invokes the analysis engine, and maps the report
// outcome to deterministic exit codes: 0 for full success, 1 when some
// generation tasks failed, 2 when all of them did.
package cli

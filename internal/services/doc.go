// Package services defines shared utilities consumed by the optimization
// pipeline and the external tools it drives.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, job IDs, stage names, and artifact
//     paths for logging.
//   - Structured error markers plus the Wrap helper that separate run-fatal
//     failures (configuration, unusable temp directory) from per-artifact
//     failures that only ever surface as report rows.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services

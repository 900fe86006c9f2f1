// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, track labels, and stage names
//     for logging correlation.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification consistent across collaborators.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform.
package services

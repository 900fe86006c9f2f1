// Package verify checks downloaded audio against its catalog identity.
//
// The verifier samples the temporal center of the artifact, computes a
// Chromaprint fingerprint, asks AcoustID what the recording is, and compares
// the answer to the expected track with token-set similarity. The stage is
// fail-closed: every internal error is logged and counts as a rejection,
// never a fatal error, and rejected artifacts stay on disk. When
// fingerprinting is unavailable the verifier reports a skipped acceptance
// so downloads are not penalized for a missing optional tool.
package verify

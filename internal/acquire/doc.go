// Package acquire orchestrates artifact acquisition: it derives per-artifact
// install state from the catalog and the filesystem, drives resumable
// transfers with retry and backoff, and verifies content digests before an
// artifact is considered installed.
//
// State is computed fresh on every query because the filesystem is the
// source of truth and may change between calls. Transfer and integrity
// failures are absorbed by the retry loop and surface as a single error (or
// a batch tally); only structural problems like an unknown artifact name or
// an unverifiable digest algorithm short-circuit immediately. Context
// cancellation is propagated as-is and never retried, with the staging file
// left intact for a later resume.
package acquire

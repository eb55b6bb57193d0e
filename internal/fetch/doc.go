// Package fetch moves artifact bytes from a source URL to a destination path
// with resumable, integrity-friendly semantics.
//
// Transfers stream into a ".part" staging file next to the destination. When
// a staging file already exists its length becomes the byte-range offset of
// the next request, so an interrupted multi-gigabyte download continues where
// it stopped instead of starting over. The staging file is promoted to the
// final path with an atomic rename, so no reader ever observes a
// half-written artifact at the canonical location.
//
// The staging file is additionally guarded with an advisory flock: two
// processes appending to the same partial file would corrupt the resume
// offset invariant.
package fetch

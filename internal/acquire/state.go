package acquire

// State is the derived install state of one artifact. Never persisted; the
// filesystem is re-inspected on every query.
type State string

const (
	// StateAbsent means no file exists at the final destination path. A
	// staging file alone still counts as absent.
	StateAbsent State = "absent"
	// StateInstalled means the final file exists and, when the manifest
	// declares a digest, matches it.
	StateInstalled State = "installed"
	// StateCorrupted means the final file exists but fails digest
	// verification, or its digest cannot be computed.
	StateCorrupted State = "corrupted"
)

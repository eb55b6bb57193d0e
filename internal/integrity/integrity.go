// Package integrity computes and checks streaming content digests for
// artifact files.
//
// Artifacts are frequently multi-gigabyte, so digests are always computed in
// fixed-size chunks to bound memory use. Verification is deterministic and
// stateless; the Verifier struct only carries the unknown-algorithm policy
// and a logger.
package integrity

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/zeebo/blake3"

	"quarry/internal/logging"
)

// ErrUnsupportedAlgorithm indicates an artifact declares a digest algorithm
// this build cannot compute.
var ErrUnsupportedAlgorithm = errors.New("integrity: unsupported digest algorithm")

const digestChunkSize = 64 * 1024

// newHasher returns a streaming hasher for the named algorithm.
func newHasher(algorithm string) (hash.Hash, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "md5":
		return md5.New(), nil
	case "sha256":
		return sha256.New(), nil
	case "blake3":
		return blake3.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}
}

// SupportedAlgorithm reports whether algorithm names a digest this build can
// compute.
func SupportedAlgorithm(algorithm string) bool {
	_, err := newHasher(algorithm)
	return err == nil
}

// DigestOf computes the hex digest of the file at path using the named
// algorithm, streaming in fixed-size chunks.
func DigestOf(path, algorithm string) (string, error) {
	hasher, err := newHasher(algorithm)
	if err != nil {
		return "", err
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for digest: %w", err)
	}
	defer file.Close()

	buf := make([]byte, digestChunkSize)
	if _, err := io.CopyBuffer(hasher, file, buf); err != nil {
		return "", fmt.Errorf("digest %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Verifier checks files against expected digests. The zero value fails closed
// on unknown algorithms and logs nowhere; use New to attach a logger and the
// configured policy.
type Verifier struct {
	// AllowUnknown restores the legacy fail-open behavior: an artifact
	// declaring an unrecognized algorithm is treated as unverifiable but
	// valid. Off by default so a typoed checksum_type cannot silently skip
	// verification.
	AllowUnknown bool

	logger *slog.Logger
}

// New constructs a Verifier with the given unknown-algorithm policy.
func New(allowUnknown bool, logger *slog.Logger) *Verifier {
	return &Verifier{
		AllowUnknown: allowUnknown,
		logger:       logging.NewComponentLogger(logger, "integrity"),
	}
}

// Verify reports whether the file at path matches the expected digest. An
// empty expected digest verifies trivially: no-digest artifacts are
// "present = valid". Hex comparison is case-insensitive.
func (v *Verifier) Verify(path, expected, algorithm string) (bool, error) {
	if strings.TrimSpace(expected) == "" {
		return true, nil
	}

	actual, err := DigestOf(path, algorithm)
	if err != nil {
		if errors.Is(err, ErrUnsupportedAlgorithm) && v.AllowUnknown {
			v.log().Warn("unknown digest algorithm, accepting file unverified",
				logging.String(logging.FieldPath, path),
				logging.String("algorithm", algorithm),
				logging.String(logging.FieldEventType, "digest_skipped"),
			)
			return true, nil
		}
		return false, err
	}

	if !strings.EqualFold(actual, expected) {
		v.log().Debug("digest mismatch",
			logging.String(logging.FieldPath, path),
			logging.String("expected", strings.ToLower(expected)),
			logging.String("actual", actual),
		)
		return false, nil
	}
	return true, nil
}

func (v *Verifier) log() *slog.Logger {
	if v.logger == nil {
		return logging.NewNop()
	}
	return v.logger
}

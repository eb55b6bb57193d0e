package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"quarry/internal/logging"
)

// ErrTransfer indicates a recoverable transfer failure: network errors,
// server errors, timeouts, short bodies. Callers drive their retry loop off
// this sentinel. Context cancellation is NOT wrapped in ErrTransfer; it is
// returned as-is so callers can distinguish "stop" from "retry".
var ErrTransfer = errors.New("fetch: transfer failed")

// StagingSuffix is appended to the destination path to form the staging file
// holding an in-progress or interrupted transfer.
const StagingSuffix = ".part"

// StagingPath returns the staging file path for a destination.
func StagingPath(destPath string) string {
	return destPath + StagingSuffix
}

// Progress receives transfer updates after each chunk write. totalBytes is 0
// when the server did not report a length; consumers must then fall back to
// raw byte reporting instead of percentages.
type Progress func(bytesSoFar, totalBytes int64, message string)

// Outcome summarizes a completed transfer.
type Outcome struct {
	// BytesTransferred is the number of bytes moved during this session,
	// excluding any resumed prefix already on disk.
	BytesTransferred int64
	// TotalBytes is the final artifact size, or 0 if the server never
	// reported one.
	TotalBytes int64
	// ResumeOffset is the staging file length the session started from.
	ResumeOffset int64
}

// Resumed reports whether the session continued a prior partial transfer.
func (o Outcome) Resumed() bool {
	return o.ResumeOffset > 0
}

// Options configures a Fetcher.
type Options struct {
	// Client issues the HTTP requests. Defaults to http.DefaultClient.
	Client *http.Client
	// Timeout bounds each request, including the body copy. Zero means no
	// per-request deadline beyond the caller's context.
	Timeout time.Duration
	// ChunkSize is the copy buffer size in bytes. Defaults to 1 MiB.
	ChunkSize int
	// Logger receives transfer diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Fetcher performs resumable HTTP(S) transfers.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	chunkSize int
	logger    *slog.Logger
}

// New constructs a Fetcher from options.
func New(opts Options) *Fetcher {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 1 << 20
	}
	return &Fetcher{
		client:    client,
		timeout:   opts.Timeout,
		chunkSize: chunkSize,
		logger:    logging.NewComponentLogger(opts.Logger, "fetcher"),
	}
}

// Fetch streams sourceURL into destPath via the staging file, resuming a
// prior partial transfer when one exists. On success the staging file has
// been renamed onto destPath. On failure or cancellation the staging file is
// left in place so a future call can resume from its current length.
func (f *Fetcher) Fetch(ctx context.Context, sourceURL, destPath string, sizeHint int64, onProgress Progress) (Outcome, error) {
	sessionID := uuid.NewString()[:8]
	staging := StagingPath(destPath)
	log := f.logger.With(
		logging.String(logging.FieldSessionID, sessionID),
		logging.String(logging.FieldPath, destPath),
	)

	lock := flock.New(staging)
	locked, err := lock.TryLock()
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: lock staging file: %w", ErrTransfer, err)
	}
	if !locked {
		return Outcome{}, fmt.Errorf("%w: staging file %s is locked by another transfer", ErrTransfer, staging)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	offset := stagingSize(staging)

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: build request: %w", ErrTransfer, err)
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
		log.Info("resuming transfer",
			logging.Int64("resume_offset", offset),
			logging.String(logging.FieldEventType, "transfer_resume"),
		)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Outcome{}, f.classify(ctx, "request", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusPartialContent:
		// Server honoured the range; append below.
	case resp.StatusCode == http.StatusOK:
		if offset > 0 {
			// Range ignored: the body is the whole artifact, so the
			// partial prefix must be discarded before writing.
			log.Warn("server ignored range request, restarting transfer",
				logging.Int64("discarded_bytes", offset),
				logging.String(logging.FieldEventType, "transfer_restart"),
			)
			offset = 0
		}
	default:
		return Outcome{}, fmt.Errorf("%w: server returned %s for %s", ErrTransfer, resp.Status, sourceURL)
	}

	totalBytes := int64(0)
	if resp.ContentLength >= 0 {
		totalBytes = resp.ContentLength + offset
	} else if sizeHint > 0 {
		totalBytes = sizeHint
	}

	outcome, err := f.copyBody(ctx, resp.Body, staging, destPath, offset, totalBytes, onProgress, log)
	if err != nil {
		return outcome, err
	}

	log.Info("transfer complete",
		logging.Int64("bytes_transferred", outcome.BytesTransferred),
		logging.Int64("total_bytes", outcome.TotalBytes),
		logging.Bool("resumed", outcome.Resumed()),
		logging.String(logging.FieldEventType, "transfer_complete"),
	)
	return outcome, nil
}

func (f *Fetcher) copyBody(ctx context.Context, body io.Reader, staging, destPath string, offset, totalBytes int64, onProgress Progress, log *slog.Logger) (Outcome, error) {
	outcome := Outcome{ResumeOffset: offset, TotalBytes: totalBytes}

	flags := os.O_CREATE | os.O_WRONLY
	if offset > 0 {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	out, err := os.OpenFile(staging, flags, 0o644)
	if err != nil {
		return outcome, fmt.Errorf("%w: open staging file: %w", ErrTransfer, err)
	}
	defer out.Close()

	name := filepath.Base(destPath)
	written := offset
	sampler := logging.NewProgressSampler(10)
	buf := make([]byte, f.chunkSize)
	for {
		// Cancellation contract: finish writing the chunk in hand, then
		// stop at the boundary with the staging file intact.
		if err := ctx.Err(); err != nil {
			return outcome, f.classify(ctx, "read", err)
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return outcome, fmt.Errorf("%w: write staging file: %w", ErrTransfer, writeErr)
			}
			written += int64(n)
			outcome.BytesTransferred += int64(n)
			if onProgress != nil {
				onProgress(written, totalBytes, progressMessage(name, written, totalBytes))
			}
			percent := float64(-1)
			if totalBytes > 0 {
				percent = float64(written) / float64(totalBytes) * 100
			}
			if sampler.ShouldLog(percent, name) {
				log.Debug("transfer progress",
					logging.Int64("bytes", written),
					logging.Int64("total_bytes", totalBytes),
				)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return outcome, f.classify(ctx, "read", readErr)
		}
	}

	if totalBytes > 0 && written != totalBytes {
		return outcome, fmt.Errorf("%w: short body: got %d of %d bytes", ErrTransfer, written, totalBytes)
	}

	if err := out.Close(); err != nil {
		return outcome, fmt.Errorf("%w: close staging file: %w", ErrTransfer, err)
	}

	// Same filesystem, so the promotion is atomic; readers only ever see
	// the complete artifact at the final path.
	if err := os.Rename(staging, destPath); err != nil {
		return outcome, fmt.Errorf("%w: promote staging file: %w", ErrTransfer, err)
	}

	if totalBytes == 0 {
		outcome.TotalBytes = written
	}
	return outcome, nil
}

// classify maps a low-level failure to the package's error contract:
// caller cancellation propagates untouched, deadline expiry and everything
// else becomes ErrTransfer.
func (f *Fetcher) classify(ctx context.Context, operation string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s timed out after %s", ErrTransfer, operation, f.timeout)
	}
	return fmt.Errorf("%w: %s: %w", ErrTransfer, operation, err)
}

func stagingSize(staging string) int64 {
	info, err := os.Stat(staging)
	if err != nil || info.IsDir() {
		return 0
	}
	return info.Size()
}

func progressMessage(name string, written, totalBytes int64) string {
	if totalBytes > 0 {
		return fmt.Sprintf("downloading %s: %s of %s", name, humanize.Bytes(uint64(written)), humanize.Bytes(uint64(totalBytes)))
	}
	return fmt.Sprintf("downloading %s: %s so far", name, humanize.Bytes(uint64(written)))
}

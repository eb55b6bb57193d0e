package main

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"quarry/internal/acquire"
)

// newProgress returns a transfer progress callback that drives an interactive
// bar on stderr. Off a terminal it returns nil; progress then lives only in
// the structured log. The bar is rebuilt whenever the byte counter rewinds,
// which marks the start of the next artifact in a batch.
func newProgress(description string) acquire.Progress {
	fd := os.Stderr.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return nil
	}

	var bar *progressbar.ProgressBar
	var lastBytes int64
	return func(bytesSoFar, totalBytes int64, _ string) {
		if bar == nil || bytesSoFar < lastBytes {
			total := totalBytes
			if total <= 0 {
				total = -1
			}
			bar = progressbar.NewOptions64(total,
				progressbar.OptionSetDescription(description),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowBytes(true),
				progressbar.OptionSetWidth(30),
				progressbar.OptionThrottle(100*time.Millisecond),
				progressbar.OptionClearOnFinish(),
			)
		}
		lastBytes = bytesSoFar
		_ = bar.Set64(bytesSoFar)
	}
}

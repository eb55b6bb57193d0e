package logging_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quarry/internal/logging"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewWritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "quarry.log")
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hello", logging.String("artifact", "speech"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") || !strings.Contains(string(data), "artifact=speech") {
		t.Fatalf("unexpected log content: %q", data)
	}
}

func TestConsoleHandlerPrefixesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(t, &buf, "console")
	logging.NewComponentLogger(logger, "fetcher").Info("transfer complete",
		logging.Int64("bytes", 42),
	)

	line := buf.String()
	if !strings.Contains(line, "INFO fetcher: transfer complete") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, "bytes=42") {
		t.Fatalf("expected attribute, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be folded into the prefix, got %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(t, &buf, "console")
	logger.Warn("checksum mismatch", logging.String("detail", "expected abc got def"))

	if !strings.Contains(buf.String(), `detail="expected abc got def"`) {
		t.Fatalf("expected quoted attribute, got %q", buf.String())
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(t, &buf, "console")
	logger.Debug("chunk written")
	if buf.Len() != 0 {
		t.Fatalf("debug should be suppressed at info level, got %q", buf.String())
	}
}

func TestJSONHandlerLowercasesLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(t, &buf, "json")
	logger.Error("fetch failed")
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("expected lowercase level, got %q", buf.String())
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(t.Context(), slog.LevelError) {
		t.Fatal("nop logger should report disabled")
	}
}

func newBufferLogger(t *testing.T, buf *bytes.Buffer, format string) *slog.Logger {
	t.Helper()
	logger, err := logging.NewWithWriter(buf, logging.Options{Level: "info", Format: format})
	if err != nil {
		t.Fatalf("NewWithWriter returned error: %v", err)
	}
	return logger
}

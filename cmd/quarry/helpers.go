package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func formatSize(size int64) string {
	if size <= 0 {
		return "-"
	}
	return humanize.Bytes(uint64(size))
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// renderCheckLine formats one preflight result as an aligned, optionally
// colored status line.
func renderCheckLine(name string, passed bool, detail string, colorize bool) string {
	label := "FAIL"
	color := ansiRed
	if passed {
		label = "OK"
		color = ansiGreen
	}
	line := fmt.Sprintf("  %-14s [%s] %s", name+":", label, detail)
	if colorize {
		return color + line + ansiReset
	}
	return line
}

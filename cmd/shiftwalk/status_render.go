package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusOK statusKind = iota
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiRed    = "\x1b[31m"
)

func statusLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "[OK]"
	case statusWarn:
		return "[WARN]"
	default:
		return "[ERROR]"
	}
}

func statusColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	default:
		return ansiRed
	}
}

// renderStatusLine formats one check result. The label is padded before any
// color codes are applied so columns stay aligned on terminals.
func renderStatusLine(name string, kind statusKind, detail string, colorize bool) string {
	label := fmt.Sprintf("%-7s", statusLabel(kind))
	if colorize {
		label = statusColor(kind) + label + ansiReset
	}
	line := fmt.Sprintf("%s  %-22s", label, name)
	if detail != "" {
		line += "  " + detail
	}
	return strings.TrimRight(line, " ")
}

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

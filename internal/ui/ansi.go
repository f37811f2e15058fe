package ui

import (
	"fmt"
	"io"
	"os"
)

var (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	strike = "\033[9m"

	fgGray   = "\033[90m"
	fgGreen  = "\033[32m"
	fgYellow = "\033[33m"
	fgBlue   = "\033[34m"
	fgRed    = "\033[31m"

	symCheck = "✔"
	symCross = "✖"
)

var (
	forceColor   bool
	disableColor bool
	monoTheme    bool // set by SetTheme, independent of the forcing flags
)

// SetColorForcing overrides terminal detection. disable wins over force.
func SetColorForcing(force, disable bool) {
	forceColor = force
	disableColor = disable
}

// isTTY reports whether w is a character device.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// Paint colours s when w is a terminal (or colour is forced).
func Paint(w io.Writer, color, s string) string {
	if disableColor || monoTheme || color == "" {
		return s
	}
	if forceColor || isTTY(w) {
		return color + s + reset
	}
	return s
}

// C colours s for stdout.
func C(color, s string) string { return Paint(os.Stdout, color, s) }

// Dim is the faint color used for ids and hints.
func Dim() string { return dim }

func OK(w io.Writer, msg string)   { fmt.Fprintln(w, Paint(w, current.Success, symCheck+" "+msg)) }
func Fail(w io.Writer, msg string) { fmt.Fprintln(w, Paint(w, current.Error, symCross+" "+msg)) }

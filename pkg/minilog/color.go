// Copyright 2017-2021 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package minilog

// ANSI escapes for colorized log output
const (
	Reset = "\x1b[0000m"

	FgBlack   = "\x1b[0030m"
	FgRed     = "\x1b[0031m"
	FgGreen   = "\x1b[0032m"
	FgYellow  = "\x1b[0033m"
	FgBlue    = "\x1b[0034m"
	FgMagenta = "\x1b[0035m"
	FgCyan    = "\x1b[0036m"
	FgWhite   = "\x1b[0037m"
)

var (
	colorLine  = FgYellow
	colorDebug = FgBlue
	colorInfo  = FgGreen
	colorWarn  = FgYellow
	colorError = FgRed
	colorFatal = FgRed
)

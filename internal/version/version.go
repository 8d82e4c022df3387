// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

// Package version holds build identification, normally stamped in with
// -ldflags at release time.
package version

var (
	Revision = "HEAD"
	Date     = "unknown"

	Copyright = "provdb Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS)"
)

// Full is the one-line form the binaries report.
func Full() string {
	return Revision + " " + Date
}

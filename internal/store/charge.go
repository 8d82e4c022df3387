// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package store

import (
	"github.com/sandia-minimega/provdb/internal/tariff"

	log "github.com/sandia-minimega/provdb/pkg/minilog"
)

// Charge computes the cost of r's traffic under tab for the inclusive date
// range [from, to]. A record dated outside the range costs nothing. A tariff
// lookup failure yields zero and a log line; with hour indices fixed at
// 0..23 that only fires on an internal bug.
func Charge(r Record, tab *tariff.Table, from, to Date) float64 {
	if r.Date.Before(from) || to.Before(r.Date) {
		return 0
	}

	var total float64
	for h := 0; h < HoursPerDay; h++ {
		in, err := tab.In(h)
		if err != nil {
			log.Error("tariff lookup for hour %v: %v", h, err)
			return 0
		}
		out, err := tab.Out(h)
		if err != nil {
			log.Error("tariff lookup for hour %v: %v", h, err)
			return 0
		}

		total += r.In[h]*in + r.Out[h]*out
	}

	return total
}

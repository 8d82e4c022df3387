// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package query

import (
	"github.com/sandia-minimega/provdb/internal/store"
)

// Kind tags a parsed command. The handler dispatches on it.
type Kind int

const (
	Unknown Kind = iota
	Add
	Select
	Delete
	Edit
	CalculateCharges
	PrintAll
	Load
	Save
	Help
	Exit
)

func (k Kind) String() string {
	switch k {
	case Add:
		return "ADD"
	case Select:
		return "SELECT"
	case Delete:
		return "DELETE"
	case Edit:
		return "EDIT"
	case CalculateCharges:
		return "CALCULATE_CHARGES"
	case PrintAll:
		return "PRINT_ALL"
	case Load:
		return "LOAD"
	case Save:
		return "SAVE"
	case Help:
		return "HELP"
	case Exit:
		return "EXIT"
	}

	return "UNKNOWN"
}

// Writes reports whether the command mutates the store and therefore takes
// the writer lock. SAVE counts: it updates the current file and must write a
// consistent snapshot.
func (k Kind) Writes() bool {
	switch k {
	case Add, Delete, Edit, Load, Save:
		return true
	}

	return false
}

// SetClause holds the new field values of an EDIT. Nil fields are left
// unchanged.
type SetClause struct {
	Name *string
	IP   *store.IP
	Date *store.Date
	In   []float64
	Out  []float64
}

// Command is one parsed query. Which fields are populated depends on Kind:
// ADD uses Name/IP/Date/In/Out as the record fields; SELECT, DELETE, EDIT
// and CALCULATE_CHARGES use Name/IP/Date as match criteria; EDIT carries its
// new values in Set; LOAD and SAVE carry Filename (nil for a bare SAVE,
// which targets the current file).
type Command struct {
	Kind     Kind
	Original string

	Name *string
	IP   *store.IP
	Date *store.Date
	In   []float64
	Out  []float64

	Set *SetClause

	StartDate *store.Date
	EndDate   *store.Date

	Filename *string
}

// Criteria converts the command's match fields to a store filter.
func (c *Command) Criteria() store.Criteria {
	return store.Criteria{Name: c.Name, IP: c.IP, Date: c.Date}
}

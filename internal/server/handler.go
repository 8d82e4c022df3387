// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package server

import (
	"fmt"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/pkg/errors"

	"github.com/sandia-minimega/provdb/internal/query"
	"github.com/sandia-minimega/provdb/internal/sandbox"
	"github.com/sandia-minimega/provdb/internal/store"
	log "github.com/sandia-minimega/provdb/pkg/minilog"
	"github.com/sandia-minimega/provdb/pkg/wire"
)

// errNoMatch marks the one failure that maps to 404: an EDIT whose
// criteria matched nothing.
var errNoMatch = errors.New("no record matched the criteria")

const helpText = `ADD FIO <name> IP <a.b.c.d> DATE <dd.mm.yyyy> [TRAFFIC_IN <24 values>] [TRAFFIC_OUT <24 values>] [END]
SELECT <criteria> [END]                  criteria: FIO <name> | IP <addr> | DATE <date>; at least one
DELETE [criteria] [END]                  no criteria deletes every record
EDIT [criteria] SET <assignments> [END]  assignments: FIO | IP | DATE | TRAFFIC_IN | TRAFFIC_OUT
CALCULATE_CHARGES [criteria] START_DATE <date> END_DATE <date> [END]
PRINT_ALL [END]
LOAD <filename> [END]
SAVE [filename] [END]                    no filename saves to the current file
HELP
EXIT
`

// reply is what a handler produces: either a single response frame or a
// record list the serializer may split into chunks.
type reply struct {
	resp    *wire.Response
	records []store.Record
}

// safeHandle runs the handler for one command, converting a panic into a
// single server-error reply so the session survives.
func (s *Server) safeHandle(cmd *query.Command) (r reply) {
	defer func() {
		if p := recover(); p != nil {
			metricPanics.Inc()
			log.Error("handler panic on %q: %v\n%v", cmd.Original, p, string(debug.Stack()))

			err := errors.Errorf("internal error: %v", p)
			r = reply{resp: errorResponse(cmd.Original, wire.StatusServerError, err)}
		}
	}()

	return s.handle(cmd)
}

func (s *Server) handle(cmd *query.Command) reply {
	var resp *wire.Response
	var err error

	switch cmd.Kind {
	case query.Add:
		resp, err = s.handleAdd(cmd)
	case query.Select:
		records, ferr := s.collect(cmd.Criteria())
		if ferr == nil {
			return reply{records: records}
		}
		err = ferr
	case query.PrintAll:
		return reply{records: s.db.All()}
	case query.Delete:
		resp, err = s.handleDelete(cmd)
	case query.Edit:
		resp, err = s.handleEdit(cmd)
	case query.CalculateCharges:
		resp, err = s.handleCalc(cmd)
	case query.Load:
		resp, err = s.handleLoad(cmd)
	case query.Save:
		resp, err = s.handleSave(cmd)
	case query.Help:
		resp = okResponse(0, wire.PayloadMessage, helpText)
	case query.Exit:
		resp = okResponse(0, wire.PayloadMessage, "ending session\n")
	default:
		err = &query.ParseError{Reason: "empty or unrecognized query"}
	}

	if err != nil {
		return reply{resp: errorResponse(cmd.Original, statusFor(err), err)}
	}
	return reply{resp: resp}
}

func (s *Server) handleAdd(cmd *query.Command) (*wire.Response, error) {
	// traffic blocks are optional on the wire and default to silence
	in := cmd.In
	if in == nil {
		in = make([]float64, store.HoursPerDay)
	}
	out := cmd.Out
	if out == nil {
		out = make([]float64, store.HoursPerDay)
	}

	r, err := store.NewRecord(*cmd.Name, *cmd.IP, *cmd.Date, in, out)
	if err != nil {
		return nil, err
	}

	s.db.Add(r)
	log.Debug("added record for %v (%v records)", r.Name, s.db.Len())

	body := fmt.Sprintf("record added (%v records total)\n", s.db.Len())
	return okResponse(1, wire.PayloadMessage, body), nil
}

func (s *Server) handleDelete(cmd *query.Command) (*wire.Response, error) {
	n := s.db.Delete(s.db.Find(cmd.Criteria()))
	if n == 0 {
		return okResponse(0, wire.PayloadMessage, "nothing matched; no records deleted\n"), nil
	}

	log.Debug("deleted %v records (%v remain)", n, s.db.Len())

	body := fmt.Sprintf("deleted %v records (%v remain)\n", n, s.db.Len())
	return okResponse(n, wire.PayloadMessage, body), nil
}

func (s *Server) handleEdit(cmd *query.Command) (*wire.Response, error) {
	idxs := s.db.Find(cmd.Criteria())
	if len(idxs) == 0 {
		return nil, errNoMatch
	}

	i := idxs[0]

	var warning string
	if len(idxs) > 1 {
		warning = fmt.Sprintf("warning: %v records matched; editing only the first (index %v)\n", len(idxs), i)
	}

	old, err := s.db.Get(i)
	if err != nil {
		return nil, err
	}

	edited, err := applySet(old, cmd.Set)
	if err != nil {
		return nil, err
	}

	if edited == old {
		return okResponse(0, wire.PayloadMessage, warning+"applied no effective changes\n"), nil
	}

	if err := s.db.Edit(i, edited); err != nil {
		return nil, err
	}

	log.Debug("edited record %v", i)

	body := warning + fmt.Sprintf("record %v updated\n", i)
	return okResponse(1, wire.PayloadMessage, body), nil
}

func (s *Server) handleCalc(cmd *query.Command) (*wire.Response, error) {
	from, to := *cmd.StartDate, *cmd.EndDate
	if to.Before(from) {
		return nil, &store.ValidationError{
			Field:  "date range",
			Reason: "START_DATE is after END_DATE",
		}
	}

	records, err := s.collect(cmd.Criteria())
	if err != nil {
		return nil, err
	}

	var buf strings.Builder
	var total float64
	count := 0

	for _, r := range records {
		// the report covers only records dated inside the range
		if r.Date.Before(from) || to.Before(r.Date) {
			continue
		}

		c := store.Charge(r, s.tariff, from, to)
		total += c
		count++

		fmt.Fprintf(&buf, "%v (%v, %v): %.2f\n", r.Name, r.IP, r.Date, c)
	}

	fmt.Fprintf(&buf, "TOTAL: %.2f\n", total)

	resp := okResponse(count, wire.PayloadMessage, buf.String())
	resp.RecordsInPayload = count
	return resp, nil
}

func (s *Server) handleLoad(cmd *query.Command) (*wire.Response, error) {
	path, err := s.files.Resolve(*cmd.Filename)
	if err != nil {
		return nil, err
	}

	loaded, skipped, err := s.db.Load(path)
	if err != nil {
		return nil, err
	}

	log.Info("loaded %v records (%v skipped) from %v", loaded, skipped, path)

	body := fmt.Sprintf("loaded %v records (%v skipped) from %v\n", loaded, skipped, filepath.Base(path))
	return okResponse(loaded, wire.PayloadMessage, body), nil
}

func (s *Server) handleSave(cmd *query.Command) (*wire.Response, error) {
	var path string
	if cmd.Filename != nil {
		p, err := s.files.Resolve(*cmd.Filename)
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := s.db.Save(path); err != nil {
		return nil, err
	}

	log.Info("saved %v records to %v", s.db.Len(), s.db.CurrentFile())

	body := fmt.Sprintf("saved %v records to %v\n", s.db.Len(), filepath.Base(s.db.CurrentFile()))
	return okResponse(s.db.Len(), wire.PayloadMessage, body), nil
}

// collect copies out the records matching the criteria, in list order.
func (s *Server) collect(c store.Criteria) ([]store.Record, error) {
	idxs := s.db.Find(c)

	records := make([]store.Record, 0, len(idxs))
	for _, i := range idxs {
		r, err := s.db.Get(i)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, nil
}

// applySet builds the post-edit record, revalidating every field.
func applySet(r store.Record, set *query.SetClause) (store.Record, error) {
	name := r.Name
	if set.Name != nil {
		name = *set.Name
	}

	ip := r.IP
	if set.IP != nil {
		ip = *set.IP
	}

	date := r.Date
	if set.Date != nil {
		date = *set.Date
	}

	in := r.In[:]
	if set.In != nil {
		in = set.In
	}

	out := r.Out[:]
	if set.Out != nil {
		out = set.Out
	}

	return store.NewRecord(name, ip, date, in, out)
}

// okResponse builds a success frame. affected lands in TOTAL_RECORDS:
// the records a write touched, or the records a report covered.
func okResponse(affected int, ptype wire.PayloadType, body string) *wire.Response {
	return &wire.Response{
		Status:       wire.StatusOK,
		Message:      "OK",
		TotalRecords: affected,
		PayloadType:  ptype,
		Body:         body,
	}
}

func errorResponse(original string, status wire.Status, err error) *wire.Response {
	return &wire.Response{
		Status:      status,
		Message:     err.Error(),
		PayloadType: wire.PayloadError,
		Body:        fmt.Sprintf("query: %v\nerror: %v\n", original, err),
	}
}

// statusFor maps the error kinds the collaborators raise onto wire
// statuses. Anything unrecognized is the server's fault.
func statusFor(err error) wire.Status {
	var perr *query.ParseError
	var verr *store.ValidationError
	var serr *sandbox.PathError

	switch {
	case errors.As(err, &perr), errors.As(err, &verr), errors.As(err, &serr):
		return wire.StatusBadRequest
	case errors.Is(err, store.ErrNoCurrentFile):
		return wire.StatusBadRequest
	case errors.Is(err, errNoMatch):
		return wire.StatusNotFound
	default:
		return wire.StatusServerError
	}
}

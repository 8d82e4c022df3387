// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package store

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	log "github.com/sandia-minimega/provdb/pkg/minilog"
)

var (
	// ErrOutOfRange is returned for a record index outside the list. Indices
	// come from Find under the same lock, so hitting this indicates a bug.
	ErrOutOfRange = errors.New("record index out of range")

	// ErrNoCurrentFile is returned by Save("") before any load or save has
	// established a current file.
	ErrNoCurrentFile = errors.New("no current file set")
)

// Database is an ordered list of records plus the current file path last
// used by Load or Save. The zero value is ready to use. Methods are not
// safe for concurrent use; callers hold a lock across each request.
type Database struct {
	records     []Record
	currentFile string
}

// Criteria is a record filter. Nil fields are inactive; all active fields
// must match exactly. The zero value matches every record.
type Criteria struct {
	Name *string
	IP   *IP
	Date *Date
}

// Add appends a record. Invariants were already checked by NewRecord.
func (db *Database) Add(r Record) {
	db.records = append(db.records, r)
}

// Get returns a copy of the record at index i.
func (db *Database) Get(i int) (Record, error) {
	if i < 0 || i >= len(db.records) {
		return Record{}, ErrOutOfRange
	}
	return db.records[i], nil
}

// Edit replaces the record at index i.
func (db *Database) Edit(i int, r Record) error {
	if i < 0 || i >= len(db.records) {
		return ErrOutOfRange
	}
	db.records[i] = r
	return nil
}

// Find returns the indices of records matching all active criteria fields,
// in list order. The indices are valid only while the caller's lock is held.
func (db *Database) Find(c Criteria) []int {
	var matches []int

	for i, r := range db.records {
		if c.Name != nil && r.Name != *c.Name {
			continue
		}
		if c.IP != nil && r.IP != *c.IP {
			continue
		}
		if c.Date != nil && r.Date != *c.Date {
			continue
		}
		matches = append(matches, i)
	}

	return matches
}

// Delete removes the records at the given indices, ignoring duplicates and
// out-of-range values, and returns the number removed.
func (db *Database) Delete(indices []int) int {
	seen := make(map[int]bool)
	var valid []int

	for _, i := range indices {
		if i < 0 || i >= len(db.records) || seen[i] {
			continue
		}
		seen[i] = true
		valid = append(valid, i)
	}

	// remove from the back so earlier indices stay valid
	sort.Sort(sort.Reverse(sort.IntSlice(valid)))
	for _, i := range valid {
		db.records = append(db.records[:i], db.records[i+1:]...)
	}

	return len(valid)
}

// Load replaces the list with the records read from path. Malformed records
// are skipped individually; after a failed parse one line is consumed and
// reading resumes. End of file inside a partial record counts one skip and
// stops. The current file is updated whenever the file was opened, even if
// no record parsed. The returned error is non-nil only for open or
// low-level read failures.
func (db *Database) Load(path string) (loaded, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, errors.Wrap(err, "opening record file")
	}
	defer f.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, 0, errors.Wrap(err, "resolving record file")
	}

	db.records = nil
	db.currentFile = abs

	br := bufio.NewReader(f)
	for {
		r, err := ReadRecord(br)

		var verr *ValidationError
		switch {
		case err == io.EOF:
			return loaded, skipped, nil

		case errors.Is(err, errPartial):
			skipped++
			return loaded, skipped, nil

		case errors.As(err, &verr):
			log.Debug("skipping malformed record in %v: %v", path, verr)
			skipped++
			if _, rerr := br.ReadString('\n'); rerr != nil {
				return loaded, skipped, nil
			}

		case err != nil:
			return loaded, skipped, errors.Wrap(err, "reading record file")

		default:
			db.records = append(db.records, r)
			loaded++
		}
	}
}

// Save writes all records to path, separated by blank lines. An empty path
// means the current file, which must be set. On success the current file is
// updated to the written path.
func (db *Database) Save(path string) error {
	if path == "" {
		if db.currentFile == "" {
			return ErrNoCurrentFile
		}
		path = db.currentFile
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, "resolving record file")
	}

	f, err := os.Create(abs)
	if err != nil {
		return errors.Wrap(err, "creating record file")
	}

	bw := bufio.NewWriter(f)
	for i, r := range db.records {
		if i > 0 {
			if _, err := bw.WriteString("\n"); err != nil {
				f.Close()
				return errors.Wrap(err, "writing record file")
			}
		}
		if err := WriteRecord(bw, r); err != nil {
			f.Close()
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		f.Close()
		return errors.Wrap(err, "writing record file")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "closing record file")
	}

	db.currentFile = abs
	return nil
}

// ClearAll empties the list and clears the current file.
func (db *Database) ClearAll() {
	db.records = nil
	db.currentFile = ""
}

// Len returns the number of records.
func (db *Database) Len() int {
	return len(db.records)
}

// All returns a copy of the record list.
func (db *Database) All() []Record {
	out := make([]Record, len(db.records))
	copy(out, db.records)
	return out
}

// CurrentFile returns the path last used by Load or Save, or "".
func (db *Database) CurrentFile() string {
	return db.currentFile
}

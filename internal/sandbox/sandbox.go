// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

// Package sandbox confines client-supplied filenames to the server's data
// directory. LOAD and SAVE never touch a path that did not come out of
// Resolve.
package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// DefaultSubdir is the directory under the data root where record files
// live when no other name is configured.
const DefaultSubdir = "server_databases"

// reserved characters never allowed in a filename. Rejecting the path
// separators here, before any joining, is what keeps traversal attempts
// like "../etc/passwd" client-visible errors instead of open() failures.
const reserved = `/\:*?"<>|`

const maxNameLen = 250

// PathError reports a client filename that failed validation. It is the
// caller's signal to answer with a client error rather than a server one.
type PathError struct {
	Name   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid filename %q: %v", e.Name, e.Reason)
}

// Resolver maps client filenames into <root>/<sub>. The zero root means
// the process working directory.
type Resolver struct {
	root string
	sub  string
}

func New(root, sub string) *Resolver {
	if sub == "" {
		sub = DefaultSubdir
	}
	return &Resolver{root: root, sub: sub}
}

// Dir resolves the data directory to a canonical absolute path, creating
// it if necessary. Concurrent calls may race on the creation; that is
// fine, MkdirAll treats an existing directory as success.
func (r *Resolver) Dir() (string, error) {
	root := r.root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "resolving working directory")
		}
		root = wd
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Wrapf(err, "resolving data root %q", root)
	}
	if canon, err := filepath.EvalSymlinks(abs); err == nil {
		abs = canon
	}

	dir := filepath.Join(abs, r.sub)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "creating data directory %q", dir)
	}

	return dir, nil
}

// Resolve validates a client filename and returns the absolute path it
// denotes inside the data directory. Validation failures are *PathError;
// anything else is an I/O problem with the directory itself.
func (r *Resolver) Resolve(name string) (string, error) {
	dir, err := r.Dir()
	if err != nil {
		return "", err
	}

	cleaned, err := cleanName(name)
	if err != nil {
		return "", err
	}

	path := filepath.Clean(filepath.Join(dir, cleaned))

	// cleanName already refused every name with a separator in it, so
	// this cannot fire. Keep it anyway; it is the invariant callers
	// rely on.
	if !strings.HasPrefix(path, dir+string(filepath.Separator)) {
		return "", &PathError{Name: name, Reason: "escapes the data directory"}
	}

	return path, nil
}

// cleanName strips control characters and leading dots, then rejects
// anything that could name a path outside the data directory or upset
// the filesystem.
func cleanName(name string) (string, error) {
	s := strings.Map(func(c rune) rune {
		if unicode.IsControl(c) {
			return -1
		}
		return c
	}, name)
	s = strings.TrimLeft(s, ".")

	switch {
	case s == "" || s == "." || s == "..":
		return "", &PathError{Name: name, Reason: "no usable filename"}
	case strings.ContainsAny(s, reserved):
		return "", &PathError{Name: name, Reason: "contains a reserved character"}
	case len(s) > maxNameLen:
		return "", &PathError{Name: name, Reason: "name too long"}
	}

	return s, nil
}

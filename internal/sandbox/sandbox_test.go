// Copyright 2025-2026 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package sandbox

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// canonTemp returns a t.TempDir with symlinks resolved, so results of
// Resolve compare cleanly.
func canonTemp(t *testing.T) string {
	t.Helper()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestResolve(t *testing.T) {
	root := canonTemp(t)
	r := New(root, "")

	path, err := r.Resolve("клиенты.txt")
	if err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(root, DefaultSubdir, "клиенты.txt")
	if path != want {
		t.Errorf("got %v, want %v", path, want)
	}

	fi, err := os.Stat(filepath.Join(root, DefaultSubdir))
	if err != nil {
		t.Fatal(err)
	}
	if !fi.IsDir() {
		t.Error("data directory was not created as a directory")
	}
}

func TestResolveCustomSubdir(t *testing.T) {
	root := canonTemp(t)

	path, err := New(root, "data").Resolve("db.txt")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(root, "data", "db.txt"); path != want {
		t.Errorf("got %v, want %v", path, want)
	}
}

func TestResolveDefaultRoot(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	tmp := canonTemp(t)
	if err := os.Chdir(tmp); err != nil {
		t.Fatal(err)
	}

	path, err := New("", "").Resolve("db.txt")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(tmp, DefaultSubdir, "db.txt"); path != want {
		t.Errorf("got %v, want %v", path, want)
	}
}

func TestResolveCleaning(t *testing.T) {
	root := canonTemp(t)
	r := New(root, "")
	dir := filepath.Join(root, DefaultSubdir)

	tests := []struct {
		name string
		want string
	}{
		// leading dots go away
		{".hidden", "hidden"},
		{"...many.dots.txt", "many.dots.txt"},
		// control characters go away
		{"a\tb\nc.txt", "abc.txt"},
		// spaces and unicode stay
		{"две базы.txt", "две базы.txt"},
		{strings.Repeat("x", 250), strings.Repeat("x", 250)},
	}

	for _, v := range tests {
		path, err := r.Resolve(v.name)
		if err != nil {
			t.Errorf("Resolve(%q): %v", v.name, err)
			continue
		}
		if want := filepath.Join(dir, v.want); path != want {
			t.Errorf("Resolve(%q) got %v, want %v", v.name, path, want)
		}
		if !strings.HasPrefix(path, dir+string(filepath.Separator)) {
			t.Errorf("Resolve(%q) escaped the data directory: %v", v.name, path)
		}
	}
}

func TestResolveRejects(t *testing.T) {
	r := New(canonTemp(t), "")

	names := []string{
		"",
		".",
		"..",
		"...",
		"\x00\x01\x02",
		"../etc/passwd",
		"..\\..\\windows",
		"a/b.txt",
		"sub/",
		`back\slash`,
		"drive:file",
		"glob*",
		"what?",
		`quo"te`,
		"less<than",
		"greater>than",
		"pi|pe",
		strings.Repeat("x", 251),
		strings.Repeat("я", 130), // 260 bytes
	}

	for _, name := range names {
		_, err := r.Resolve(name)
		if err == nil {
			t.Errorf("Resolve(%q) did not error", name)
			continue
		}

		var perr *PathError
		if !errors.As(err, &perr) {
			t.Errorf("Resolve(%q) error type %T, want *PathError", name, err)
		}
	}
}

func TestResolveDirIsFile(t *testing.T) {
	root := canonTemp(t)

	// occupy the data directory's name with a regular file
	if err := os.WriteFile(filepath.Join(root, DefaultSubdir), nil, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := New(root, "").Resolve("db.txt")
	if err == nil {
		t.Fatal("Resolve did not error")
	}

	// an I/O failure, not a bad client name
	var perr *PathError
	if errors.As(err, &perr) {
		t.Errorf("got *PathError %v, want wrapped I/O error", perr)
	}
}

func TestDirIdempotent(t *testing.T) {
	r := New(canonTemp(t), "")

	first, err := r.Dir()
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Dir()
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("got %v then %v", first, second)
	}
}

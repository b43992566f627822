// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jarsmith-cli/internal/topology"
)

func TestNewScratch(t *testing.T) {
	tmpRoot := t.TempDir()
	t.Setenv("TMPDIR", tmpRoot)

	s, err := NewScratch()
	if err != nil {
		t.Fatalf("NewScratch() = %v, want nil", err)
	}
	defer func() {
		if err := s.Remove(); err != nil {
			t.Errorf("Remove() = %v, want nil", err)
		}
	}()

	if filepath.Dir(s.Root()) != tmpRoot {
		t.Errorf("scratch created in %q, want %q", filepath.Dir(s.Root()), tmpRoot)
	}
	if !strings.HasPrefix(filepath.Base(s.Root()), "jarsmith-") {
		t.Errorf("scratch name %q missing jarsmith- prefix", filepath.Base(s.Root()))
	}

	info, err := os.Stat(s.Root())
	if err != nil {
		t.Fatalf("scratch does not exist: %v", err)
	}
	if !info.IsDir() {
		t.Error("scratch is not a directory")
	}
}

func TestScratch_Resources(t *testing.T) {
	s := &Scratch{root: "/tmp/jarsmith-123"}
	want := filepath.Join("/tmp/jarsmith-123", topology.ResourcesDirName)
	if got := s.Resources(); got != want {
		t.Errorf("Resources() = %q, want %q", got, want)
	}
}

func TestScratch_Remove(t *testing.T) {
	s, err := NewScratch()
	if err != nil {
		t.Fatal(err)
	}

	// Removal handles a populated tree.
	if err := os.MkdirAll(filepath.Join(s.Root(), "resources", "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.Root(), "resources", "nested", "f.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.Remove(); err != nil {
		t.Fatalf("Remove() = %v, want nil", err)
	}
	if _, err := os.Stat(s.Root()); !os.IsNotExist(err) {
		t.Errorf("scratch still present after Remove: %v", err)
	}

	// A second removal is a no-op, not an error.
	if err := s.Remove(); err != nil {
		t.Errorf("second Remove() = %v, want nil", err)
	}
}

// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"os"
	"path/filepath"

	"jarsmith-cli/internal/topology"
)

// Scratch is a process-owned temporary directory holding one build's
// intermediate tree. Exactly one component mutates it at a time, and the
// coordinator removes it on every exit path.
type Scratch struct {
	root string
}

// NewScratch creates a uniquely-named scratch directory under the system
// temporary directory.
func NewScratch() (*Scratch, error) {
	root, err := os.MkdirTemp("", "jarsmith-")
	if err != nil {
		return nil, err
	}
	return &Scratch{root: root}, nil
}

// Root returns the scratch directory path.
func (s *Scratch) Root() string {
	return s.root
}

// Resources returns the archive-internal resources directory inside the
// scratch tree.
func (s *Scratch) Resources() string {
	return filepath.Join(s.root, topology.ResourcesDirName)
}

// Remove deletes the scratch tree recursively. It tolerates a partially
// populated or already-removed tree, so it is safe to defer immediately
// after creation.
func (s *Scratch) Remove() error {
	return os.RemoveAll(s.root)
}

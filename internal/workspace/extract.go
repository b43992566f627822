// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"

	"jarsmith-cli/internal/jar"
)

// Extract unpacks every entry of the base jar into dest, preserving the
// archive-internal paths verbatim. The base jar is a controlled build
// artifact, so its entries are trusted as-is. I/O failures propagate
// unclassified.
func Extract(j *jar.Jar, dest string) error {
	for _, f := range j.Entries() {
		target := filepath.Join(dest, filepath.FromSlash(f.Name))

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractEntry(f, target); err != nil {
			return err
		}
	}
	return nil
}

// extractEntry writes a single archive entry to target with the entry's mode.
func extractEntry(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

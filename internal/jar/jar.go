// SPDX-License-Identifier: MPL-2.0

// Package jar handles the zip archives on both ends of a build: opening and
// sanity-checking the base jar, and packing the staged workspace into the
// output jar.
//
// Jars are plain zip archives. The base jar is a controlled build artifact
// (the runtime skeleton), so extraction trusts its internal paths; the
// output jar is written fresh and never overwrites an existing file.
package jar

import (
	"archive/zip"
	"os"

	"jarsmith-cli/internal/issue"
)

// Jar is an open, read-only handle on a base archive.
type Jar struct {
	path string
	zr   *zip.ReadCloser
}

// Open opens the base jar and verifies it is a readable zip archive. Both
// checks happen before the build has any side effect.
func Open(path string) (*Jar, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, issue.New(issue.KindJar, "base jar not found: %s", path)
		}
		return nil, err
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, issue.New(issue.KindJar, "base jar is not a jar file: %s", path)
	}

	return &Jar{path: path, zr: zr}, nil
}

// Path returns the path the jar was opened from.
func (j *Jar) Path() string {
	return j.path
}

// Entries returns the archive's file entries in archive order.
func (j *Jar) Entries() []*zip.File {
	return j.zr.File
}

// Close releases the underlying file handle.
func (j *Jar) Close() error {
	return j.zr.Close()
}

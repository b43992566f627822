// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"jarsmith-cli/internal/jar"
	"jarsmith-cli/internal/topology"

	"golang.org/x/exp/slices"
)

// Stage populates the scratch workspace for one build: the base jar is
// extracted first, then the topology descriptor is copied into the
// resources subtree, then the project directory's contents are merged in.
// includeManifest controls whether the dependency manifest survives the
// merge; it does only when the isolated environment will consume it.
func Stage(j *jar.Jar, scratch *Scratch, layout topology.Layout, includeManifest bool) error {
	if err := Extract(j, scratch.Root()); err != nil {
		return err
	}

	resources := scratch.Resources()
	if err := os.MkdirAll(resources, 0o755); err != nil {
		return err
	}

	if err := copyFile(layout.Descriptor, filepath.Join(resources, topology.DescriptorName)); err != nil {
		return err
	}

	return mergeContents(layout, resources, includeManifest)
}

// mergeContents copies the project directory's contents (not the directory
// itself) into the resources subtree. Exclusion applies at the top level
// only: the descriptor always, the manifest when the isolated environment
// is unused. Nested files with the same names are copied on purpose; a user
// subdirectory may legitimately contain a file named like the descriptor.
func mergeContents(layout topology.Layout, resources string, includeManifest bool) error {
	entries, err := os.ReadDir(layout.Dir)
	if err != nil {
		return err
	}

	excluded := []string{topology.DescriptorName}
	if !includeManifest {
		excluded = append(excluded, topology.ManifestName)
	}

	for _, entry := range entries {
		if slices.Contains(excluded, entry.Name()) {
			continue
		}

		src := filepath.Join(layout.Dir, entry.Name())
		dst := filepath.Join(resources, entry.Name())

		// The directory test follows top-level symlinks, so a link to a
		// directory merges as a tree and a link to a file copies as a file.
		info, err := os.Stat(src)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if err := copyTree(src, dst); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(src, dst); err != nil {
			return err
		}
	}
	return nil
}

// copyTree recursively copies a directory, recreating symlinks as links
// rather than copying their targets.
func copyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(srcPath)
			if err != nil {
				return err
			}
			if err := os.Symlink(target, dstPath); err != nil {
				return err
			}
		case entry.IsDir():
			if err := copyTree(srcPath, dstPath); err != nil {
				return err
			}
		default:
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}
	return nil
}

// copyFile copies a regular file's content and preserves its permissions
// and modification time.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// SPDX-License-Identifier: MPL-2.0

package jar

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"jarsmith-cli/internal/issue"
)

// Pack serializes the workspace contents into a new deflate-compressed jar
// at outPath. Entries are recorded under their paths relative to the
// workspace root, so the archive carries no wrapping top-level directory.
// Directory entries are not stored explicitly; readers infer them from the
// file paths.
//
// An existing file at outPath is a hard error. The output handle is closed
// on every path, including a failed walk; a partially-written file may
// remain on disk as the failure artifact.
func Pack(workspace, outPath string) error {
	if _, err := os.Stat(outPath); err == nil {
		return issue.New(issue.KindJar, "output jar already exists: %s", outPath)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(out)

	walkErr := filepath.WalkDir(workspace, func(path string, d fs.DirEntry, werr error) error {
		if werr != nil {
			return werr
		}
		if d.IsDir() {
			return nil
		}

		info, err := entryInfo(path, d)
		if err != nil {
			return err
		}
		if info == nil {
			return nil
		}

		relPath, err := filepath.Rel(workspace, path)
		if err != nil {
			return err
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(relPath)
		header.Method = zip.Deflate

		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}

		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()

		_, err = io.Copy(w, src)
		return err
	})

	if cerr := zw.Close(); walkErr == nil {
		walkErr = cerr
	}
	if cerr := out.Close(); walkErr == nil {
		walkErr = cerr
	}
	return walkErr
}

// entryInfo resolves the FileInfo to archive for a walk entry. Regular files
// archive as-is; symlinks to regular files archive by target content; links
// to directories are not descended and produce no entry. A broken link
// surfaces its stat error unclassified.
func entryInfo(path string, d fs.DirEntry) (fs.FileInfo, error) {
	if d.Type()&fs.ModeSymlink == 0 {
		return d.Info()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, nil
	}
	return info, nil
}

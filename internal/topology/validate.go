// SPDX-License-Identifier: MPL-2.0

package topology

import (
	"os"

	"jarsmith-cli/internal/issue"
)

// Validate gates a build on the topology directory's layout. Checks run in
// order: the directory itself, then the descriptor, then the manifest and
// the reserved environment path whenever provisioning ends up enabled.
//
// When opts.UseVenv is ToggleUnset it is resolved here from manifest
// presence; that resolution is the only mutation Validate performs. No
// filesystem writes happen in this function.
func Validate(layout Layout, opts *Options) error {
	info, err := os.Stat(layout.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return issue.New(issue.KindTopology, "topology directory not found: %s", layout.Dir)
		}
		return err
	}
	if !info.IsDir() {
		return issue.New(issue.KindTopology, "not a directory: %s", layout.Dir)
	}

	if !isFile(layout.Descriptor) {
		return issue.New(issue.KindInvalidTopology, "topology descriptor not found: %s", layout.Descriptor)
	}

	if opts.UseVenv == ToggleUnset {
		if isFile(layout.Manifest) {
			opts.UseVenv = ToggleEnabled
		} else {
			opts.UseVenv = ToggleDisabled
		}
	}

	if opts.UseVenv == ToggleEnabled {
		if !isFile(layout.Manifest) {
			return issue.New(issue.KindInvalidTopology, "dependency manifest not found: %s", layout.Manifest)
		}
		if _, err := os.Stat(layout.VenvDir); err == nil {
			return issue.New(issue.KindInvalidTopology,
				"topology directory must not contain an entry named %s", VenvDirName)
		}
	}

	return nil
}

// isFile reports whether path exists and is a regular file.
func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

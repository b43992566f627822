// SPDX-License-Identifier: MPL-2.0

package topology

import "path/filepath"

const (
	// DescriptorName is the fixed name of the topology descriptor file that
	// must sit at the top level of every topology directory.
	DescriptorName = "topology.yaml"
	// ManifestName is the fixed name of the optional dependency manifest.
	ManifestName = "requirements.txt"
	// VenvDirName is the reserved name of the isolated environment directory
	// created inside the staged resources tree. A topology directory must not
	// already contain an entry with this name.
	VenvDirName = "jarsmith_venv"
	// ResourcesDirName is the archive-internal directory that receives the
	// descriptor and the project contents. The companion runtime depends on
	// this exact name.
	ResourcesDirName = "resources"
)

const (
	// ToggleUnset defers the decision to manifest presence during validation.
	ToggleUnset Toggle = iota
	// ToggleEnabled turns isolated-environment provisioning on.
	ToggleEnabled
	// ToggleDisabled skips isolated-environment provisioning.
	ToggleDisabled
)

type (
	// Toggle is a three-valued switch for the isolated-environment option.
	// The zero value is ToggleUnset; Validate resolves it to ToggleEnabled or
	// ToggleDisabled exactly once per run.
	Toggle int

	// Layout holds the resolved paths of the fixed topology files for one
	// project directory. It is computed once and shared by reference; nothing
	// mutates it after creation.
	Layout struct {
		// Dir is the absolute path of the topology directory.
		Dir string
		// Descriptor is Dir/topology.yaml.
		Descriptor string
		// Manifest is Dir/requirements.txt.
		Manifest string
		// VenvDir is Dir/jarsmith_venv, the reserved collision path.
		VenvDir string
	}

	// Options is the per-run configuration snapshot resolved from flags,
	// config file, and built-in defaults before the pipeline starts.
	// Validate may flip UseVenv from ToggleUnset to a concrete value; every
	// other field is read-only after creation.
	Options struct {
		// UseVenv controls isolated-environment provisioning.
		UseVenv Toggle
		// SystemSitePackages gives the environment access to packages already
		// installed system-wide.
		SystemSitePackages bool
		// IndexURL overrides the default package index endpoint when set.
		IndexURL string
		// PipLog captures a verbose install log at this path when set.
		PipLog string
		// Verbose passes subprocess output through and enables debug logging.
		Verbose bool
		// BaseJar is the absolute path of the base archive.
		BaseJar string
		// OutputJar is the absolute path of the output archive.
		OutputJar string
	}
)

// NewLayout derives the fixed layout paths from a topology directory path.
func NewLayout(dir string) Layout {
	return Layout{
		Dir:        dir,
		Descriptor: filepath.Join(dir, DescriptorName),
		Manifest:   filepath.Join(dir, ManifestName),
		VenvDir:    filepath.Join(dir, VenvDirName),
	}
}

// String returns the string representation of the Toggle.
func (tg Toggle) String() string {
	switch tg {
	case ToggleEnabled:
		return "enabled"
	case ToggleDisabled:
		return "disabled"
	default:
		return "unset"
	}
}

// Enabled reports whether the toggle has been resolved to enabled.
func (tg Toggle) Enabled() bool {
	return tg == ToggleEnabled
}

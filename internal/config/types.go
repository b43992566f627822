// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidFilesystemPath is the sentinel error wrapped by InvalidFilesystemPathError.
	ErrInvalidFilesystemPath = errors.New("invalid filesystem path")
	// ErrInvalidIndexURL is the sentinel error wrapped by InvalidIndexURLError.
	ErrInvalidIndexURL = errors.New("invalid index URL")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidLoadOptions is the sentinel error wrapped by InvalidLoadOptionsError.
	ErrInvalidLoadOptions = errors.New("invalid load options")
)

type (
	// FilesystemPath represents a filesystem path taken from configuration.
	// The zero value ("") is valid and means "use the built-in default".
	// Non-zero values must not be whitespace-only.
	FilesystemPath string

	// InvalidFilesystemPathError is returned when a FilesystemPath value is
	// non-empty but whitespace-only. It wraps ErrInvalidFilesystemPath for
	// errors.Is() compatibility.
	InvalidFilesystemPathError struct {
		Value FilesystemPath
	}

	// IndexURL represents a package index endpoint.
	// The zero value ("") is valid and means "use the installer's default index".
	// Non-zero values must not be whitespace-only.
	IndexURL string

	// InvalidIndexURLError is returned when an IndexURL value is non-empty but
	// whitespace-only. It wraps ErrInvalidIndexURL for errors.Is() compatibility.
	InvalidIndexURLError struct {
		Value IndexURL
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration. Every field supplies the
	// default for the matching command-line flag; explicit flags win.
	Config struct {
		// BaseJar overrides the default base jar path.
		BaseJar FilesystemPath `json:"base_jar" mapstructure:"base_jar"`
		// IndexURL overrides the package index used when installing dependencies.
		IndexURL IndexURL `json:"index_url" mapstructure:"index_url"`
		// SystemSitePackages gives isolated environments access to packages
		// already installed system-wide.
		SystemSitePackages bool `json:"system_site_packages" mapstructure:"system_site_packages"`
		// Verbose enables verbose output.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// String returns the string representation of the FilesystemPath.
func (p FilesystemPath) String() string { return string(p) }

// IsValid returns whether the FilesystemPath is valid.
// The zero value ("") is valid (means "use the built-in default").
// Non-zero values must not be whitespace-only.
func (p FilesystemPath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidFilesystemPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidFilesystemPathError.
func (e *InvalidFilesystemPathError) Error() string {
	return fmt.Sprintf("invalid filesystem path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidFilesystemPath for errors.Is() compatibility.
func (e *InvalidFilesystemPathError) Unwrap() error { return ErrInvalidFilesystemPath }

// String returns the string representation of the IndexURL.
func (u IndexURL) String() string { return string(u) }

// IsValid returns whether the IndexURL is valid.
// The zero value ("") is valid (means "use the installer's default index").
// Non-zero values must not be whitespace-only.
func (u IndexURL) IsValid() (bool, []error) {
	if u == "" {
		return true, nil
	}
	if strings.TrimSpace(string(u)) == "" {
		return false, []error{&InvalidIndexURLError{Value: u}}
	}
	return true, nil
}

// Error implements the error interface for InvalidIndexURLError.
func (e *InvalidIndexURLError) Error() string {
	return fmt.Sprintf("invalid index URL %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidIndexURL for errors.Is() compatibility.
func (e *InvalidIndexURLError) Unwrap() error { return ErrInvalidIndexURL }

// IsValid returns whether the Config has valid fields.
// It delegates to BaseJar.IsValid() and IndexURL.IsValid(); bool fields
// need no validation.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.BaseJar.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.IndexURL.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		BaseJar:            "minimal.jar",
		IndexURL:           "", // Installer default index if empty
		SystemSitePackages: false,
		Verbose:            false,
	}
}

// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatCUEError(t *testing.T) {
	t.Parallel()

	t.Run("nil error returns nil", func(t *testing.T) {
		t.Parallel()

		err := formatCUEError(nil, "test.cue")
		if err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("non-CUE error is wrapped with filepath", func(t *testing.T) {
		t.Parallel()

		originalErr := errors.New("some error")
		err := formatCUEError(originalErr, "test.cue")
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "test.cue") {
			t.Errorf("error should contain filepath, got: %v", err)
		}
		if !strings.Contains(err.Error(), "some error") {
			t.Errorf("error should contain original message, got: %v", err)
		}
	})
}

func TestFormatCUEPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     []string
		expected string
	}{
		{
			name:     "empty path",
			path:     []string{},
			expected: "",
		},
		{
			name:     "single element",
			path:     []string{"base_jar"},
			expected: "base_jar",
		},
		{
			name:     "nested path",
			path:     []string{"env", "index_url"},
			expected: "env.index_url",
		},
		{
			name:     "array index",
			path:     []string{"mirrors", "0", "url"},
			expected: "mirrors[0].url",
		},
		{
			name:     "nested arrays",
			path:     []string{"items", "0", "values", "1"},
			expected: "items[0].values[1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := formatCUEPath(tt.path)
			if result != tt.expected {
				t.Errorf("formatCUEPath(%v) = %q, want %q", tt.path, result, tt.expected)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	t.Run("data within limit returns nil", func(t *testing.T) {
		t.Parallel()

		data := []byte("hello world")
		err := checkFileSize(data, 100, "test.cue")
		if err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("data at exact limit returns nil", func(t *testing.T) {
		t.Parallel()

		data := make([]byte, 100)
		err := checkFileSize(data, 100, "test.cue")
		if err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("data exceeding limit returns error", func(t *testing.T) {
		t.Parallel()

		data := make([]byte, 101)
		err := checkFileSize(data, 100, "test.cue")
		if err == nil {
			t.Error("expected error")
		}
		if !strings.Contains(err.Error(), "test.cue") {
			t.Errorf("error should contain filename, got: %v", err)
		}
		if !strings.Contains(err.Error(), "101") {
			t.Errorf("error should contain actual size, got: %v", err)
		}
		if !strings.Contains(err.Error(), "100") {
			t.Errorf("error should contain max size, got: %v", err)
		}
	})

	t.Run("empty data returns nil", func(t *testing.T) {
		t.Parallel()

		err := checkFileSize([]byte{}, 100, "test.cue")
		if err != nil {
			t.Errorf("expected nil for empty data, got %v", err)
		}
	})
}

// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
)

const (
	// KindNone marks an unclassified error (the zero value).
	KindNone Kind = iota
	// KindJar covers base jar and output jar failures: the base archive is
	// missing or not a zip, or the output path already exists.
	KindJar
	// KindTopology covers failures of the topology directory itself.
	KindTopology
	// KindInvalidTopology covers layout violations inside an existing
	// topology directory: missing descriptor, missing manifest, reserved
	// name collision.
	KindInvalidTopology
	// KindDependencies covers isolated-environment provisioning failures.
	KindDependencies
)

var (
	// ErrJar anchors errors.Is matching for KindJar errors.
	ErrJar = errors.New("jar error")
	// ErrTopology anchors errors.Is matching for all topology-rooted kinds.
	ErrTopology = errors.New("topology error")
	// ErrInvalidTopology wraps ErrTopology: an invalid topology is still a
	// topology failure.
	ErrInvalidTopology = fmt.Errorf("invalid topology: %w", ErrTopology)
	// ErrDependencies wraps ErrTopology: dependency failures are rooted in
	// the topology's declared requirements.
	ErrDependencies = fmt.Errorf("dependencies: %w", ErrTopology)
)

type (
	// Kind is the discriminant of a classified build error.
	Kind int

	// Error is a classified build failure: a kind plus a human-readable
	// message. Callers match on the kind (via KindOf or the sentinel
	// errors), never on concrete type identity.
	Error struct {
		kind Kind
		msg  string
	}
)

// New creates a classified error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Kind returns the error's discriminant.
func (e *Error) Kind() Kind {
	return e.kind
}

// Error renders the failure as "[KindName] message", the form the CLI
// surfaces to the user.
func (e *Error) Error() string {
	return "[" + e.kind.String() + "] " + e.msg
}

// Unwrap returns the kind's sentinel so that errors.Is reflects the kind
// hierarchy: invalid-topology and dependencies errors both match
// ErrTopology.
func (e *Error) Unwrap() error {
	return e.kind.sentinel()
}

// KindOf returns the kind of the first classified error in err's chain,
// or KindNone when the chain holds no classified error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindNone
}

// String returns the user-facing name of the kind.
func (k Kind) String() string {
	switch k {
	case KindJar:
		return "JarError"
	case KindTopology:
		return "TopologyError"
	case KindInvalidTopology:
		return "InvalidTopologyError"
	case KindDependencies:
		return "DependenciesError"
	default:
		return "UnclassifiedError"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindJar:
		return ErrJar
	case KindTopology:
		return ErrTopology
	case KindInvalidTopology:
		return ErrInvalidTopology
	case KindDependencies:
		return ErrDependencies
	default:
		return nil
	}
}

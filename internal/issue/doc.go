// SPDX-License-Identifier: MPL-2.0

// Package issue defines the classified error taxonomy for jar assembly.
//
// Build failures fall into a small set of kinds (jar, topology, invalid
// topology, dependencies) that the CLI renders as a single line. The kind
// hierarchy is expressed through chained sentinel errors, so errors.Is
// treats invalid-topology and dependencies failures as topology failures.
// Anything else (plain I/O errors, subprocess start failures) stays
// unclassified and propagates untouched.
package issue

// SPDX-License-Identifier: MPL-2.0

// Package workspace owns the scratch directory a build is assembled in.
//
// A Scratch is a uniquely-named temporary directory created at pipeline
// start and removed unconditionally at pipeline end. Staging populates it:
// the base jar is extracted verbatim, then the topology descriptor and the
// project contents are merged into the resources subtree under the
// exclusion rules the companion runtime expects.
package workspace

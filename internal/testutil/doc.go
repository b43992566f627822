// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include directory operations (MustChdir, MustMkdirAll),
// fixture creation (MustWriteFile, MustWriteScript, MustWriteZip, MustSymlink),
// and resource cleanup (MustClose, DeferClose).
package testutil

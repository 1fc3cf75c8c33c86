// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that fail the test
// immediately on setup errors: working directory changes (MustChdir), file
// trees (MustWriteFile, WriteTree) and platform checks.
package testutil

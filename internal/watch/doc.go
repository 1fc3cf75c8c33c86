// SPDX-License-Identifier: MPL-2.0

// Package watch runs a callback after files under a directory change.
//
// Events are filtered with doublestar globs relative to the watched root and
// coalesced over a debounce window, so a burst of saves produces one
// callback with every changed path. Callbacks run one at a time on the
// event loop; events that arrive meanwhile are queued for the next round.
package watch

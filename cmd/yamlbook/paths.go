// SPDX-License-Identifier: MPL-2.0

package cmd

import "path/filepath"

// The project layout is fixed; neither path can be changed by flags or
// configuration.
var (
	// DataDir is the source root, relative to the working directory.
	DataDir = "data"
	// OutputPath is the artifact path, relative to the working directory.
	OutputPath = filepath.Join("json", "book.json")
)

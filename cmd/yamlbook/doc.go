// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the yamlbook command line.
//
// Every command works on the fixed project layout relative to the working
// directory: YAML sources under data/ and the combined artifact at
// json/book.json. Handlers never call os.Exit; they return an *ExitError
// that Execute turns into the process status.
package cmd

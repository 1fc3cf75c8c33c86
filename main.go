// SPDX-License-Identifier: MPL-2.0

// Command yamlbook combines the YAML files under data/ into json/book.json.
package main

import cmd "github.com/yamlbook/yamlbook/cmd/yamlbook"

func main() {
	cmd.Execute()
}

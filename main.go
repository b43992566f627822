// SPDX-License-Identifier: MPL-2.0

package main

import cmd "jarsmith-cli/cmd/jarsmith"

func main() {
	cmd.Execute()
}

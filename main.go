// SPDX-License-Identifier: MPL-2.0

// Command cybermorph provisions the cybermorph Python environment on first
// run and forwards every argument to cybermorph-auto inside it.
package main

import cmd "cybermorph-cli/cmd/cybermorph"

func main() {
	cmd.Execute()
}

// SPDX-License-Identifier: MPL-2.0

// Command cybermorph-env inspects, provisions and resets the environment
// used by the cybermorph launcher.
package main

import cmd "cybermorph-cli/cmd/cybermorph"

func main() {
	cmd.ExecuteEnv()
}

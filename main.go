// SPDX-License-Identifier: MPL-2.0

package main

import cmd "envsync-cli/cmd/envsync"

func main() {
	cmd.Execute()
}

// SPDX-License-Identifier: MPL-2.0

package main

import cmd "ragkit/cmd/ragkit"

func main() {
	cmd.Execute()
}

// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/selfdiscovery/selfdiscovery/cmd/selfdiscovery"

func main() {
	cmd.Execute()
}

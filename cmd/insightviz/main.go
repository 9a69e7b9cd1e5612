// SPDX-License-Identifier: Apache-2.0

// Command insightviz classifies pre-computed analytics documents and reshapes
// them into chart-ready view models, from the shell or as an MCP server.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

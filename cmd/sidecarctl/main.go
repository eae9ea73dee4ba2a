// Command sidecarctl hosts a sidecar process from the terminal or over MCP.
package main

import "github.com/wagiedev/sidecar-go/cmd/sidecarctl/cmd"

func main() {
	cmd.Execute()
}

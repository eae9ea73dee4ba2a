// Package mcp exposes the host's sidecar commands as Model Context Protocol tools.
//
// ToolServer keeps its own thread-safe tool registry so tools can be invoked
// in-process through CallTool, and builds an SDK server from the same registry
// when the commands are served over a transport such as stdio.
package mcp

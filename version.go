package framegraph

// Version is the release version reported by the CLI, HTTP and MCP adapters.
var Version = "0.3.0"

// Package mcp exposes annotation, term extraction and filter building as
// Model Context Protocol tools, so agents can preview how a paragraph would
// be routed without touching any broker.
package mcp

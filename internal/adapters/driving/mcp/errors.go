// Package mcp provides an MCP (Model Context Protocol) server adapter for macrorun.
// It lets AI assistants run the two workflow steps and inspect their history.
package mcp

import "errors"

// ErrMissingPipeline is returned when the pipeline is not provided.
var ErrMissingPipeline = errors.New("mcp: pipeline is required")

// Package mcp exposes calculator sessions to AI agents over the Model Context Protocol.
package mcp

// SPDX-License-Identifier: Apache-2.0

package server

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/noahsarkproj/shopmanual/internal/tool"
)

const (
	Name    = "shopmanual"
	Version = "0.1.0"
)

// New creates an MCP server with every Shop Manual tool registered.
func New(tools *tool.Tools) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    Name,
		Version: Version,
	}, nil)

	mcp.AddTool(srv, tool.MetadataParseStructure, tool.ParseStructure)

	// Catalogue tools
	mcp.AddTool(srv, tool.MetadataAuditStructure, tools.AuditStructure)
	mcp.AddTool(srv, tool.MetadataAuditQuantumCandidate, tools.AuditQuantumCandidate)
	mcp.AddTool(srv, tool.MetadataLookupEntry, tools.LookupEntry)

	return srv
}

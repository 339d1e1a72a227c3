// Package mcp exposes loaded sessions to MCP clients over stdio.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/okian/ringlens/internal/domain/chart"
	"github.com/okian/ringlens/internal/domain/session"
	"github.com/okian/ringlens/internal/domain/table"
)

// Source answers the queries behind the tools. An empty id means the latest
// session.
type Source interface {
	Session(ctx context.Context, id string) (*session.Session, error)
	Rows(ctx context.Context, id, file string, derived bool) ([]table.Row, error)
	Charts(ctx context.Context, id, file string, days int) ([]chart.Spec, error)
}

// Server wraps the MCP server with a session source.
type Server struct {
	mcpServer *mcp.Server
	src       Source
}

// NewServer creates an MCP server over src.
func NewServer(src Source, version string) *Server {
	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{Name: "ringlens", Version: version}, nil),
		src:       src,
	}
	s.registerTools()
	return s
}

// Serve runs the server on stdio until ctx is done or the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

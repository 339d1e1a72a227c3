package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/okian/ringlens/internal/domain/catalog"
	"github.com/okian/ringlens/internal/domain/chart"
	"github.com/okian/ringlens/internal/domain/table"
)

const defaultRowLimit = 100

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_files",
		Description: "List the uploaded export files with their kind and row count",
	}, s.handleListFiles)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_overview",
		Description: "Get averages, ranges, latest values and deltas for every tracked metric",
	}, s.handleGetOverview)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_rows",
		Description: "Get the most recent rows of one export file",
	}, s.handleGetRows)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_charts",
		Description: "Get the chart series for one export file over its last N days",
	}, s.handleGetCharts)
}

type sessionInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session to read, defaults to the latest upload"`
}

type fileInfo struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind,omitempty"`
	Title   string   `json:"title,omitempty"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}

type listFilesOutput struct {
	SessionID string     `json:"session_id"`
	Files     []fileInfo `json:"files"`
}

type overviewOutput struct {
	SessionID string `json:"session_id"`
	catalog.Overview
}

type getRowsInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session to read, defaults to the latest upload"`
	File      string `json:"file" jsonschema:"File name as uploaded, e.g. dailysleep.csv"`
	Derived   bool   `json:"derived,omitempty" jsonschema:"Include flattened and derived columns"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of rows from the end of the file (default 100)"`
}

type getRowsOutput struct {
	File  string      `json:"file"`
	Total int         `json:"total"`
	Rows  []table.Row `json:"rows"`
}

type getChartsInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Session to read, defaults to the latest upload"`
	File      string `json:"file" jsonschema:"File name as uploaded, e.g. dailysleep.csv"`
	Days      int    `json:"days,omitempty" jsonschema:"Only chart the last N days (0 for everything)"`
}

type getChartsOutput struct {
	File   string       `json:"file"`
	Charts []chart.Spec `json:"charts"`
}

func (s *Server) handleListFiles(ctx context.Context, _ *mcp.CallToolRequest, input sessionInput) (*mcp.CallToolResult, listFilesOutput, error) {
	sess, err := s.src.Session(ctx, input.SessionID)
	if err != nil {
		return nil, listFilesOutput{}, err
	}
	out := listFilesOutput{SessionID: sess.ID(), Files: []fileInfo{}}
	for _, name := range sess.Files() {
		t, _ := sess.Table(name)
		info := fileInfo{Name: name, Rows: t.Len(), Columns: t.Columns}
		if k, ok := catalog.Lookup(name); ok {
			info.Kind, info.Title = k.Name, k.Title
		}
		out.Files = append(out.Files, info)
	}
	return nil, out, nil
}

func (s *Server) handleGetOverview(ctx context.Context, _ *mcp.CallToolRequest, input sessionInput) (*mcp.CallToolResult, overviewOutput, error) {
	sess, err := s.src.Session(ctx, input.SessionID)
	if err != nil {
		return nil, overviewOutput{}, err
	}
	return nil, overviewOutput{SessionID: sess.ID(), Overview: sess.Overview()}, nil
}

func (s *Server) handleGetRows(ctx context.Context, _ *mcp.CallToolRequest, input getRowsInput) (*mcp.CallToolResult, getRowsOutput, error) {
	if input.File == "" {
		return nil, getRowsOutput{}, fmt.Errorf("file is required")
	}
	rows, err := s.src.Rows(ctx, input.SessionID, input.File, input.Derived)
	if err != nil {
		return nil, getRowsOutput{}, err
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultRowLimit
	}
	out := getRowsOutput{File: input.File, Total: len(rows), Rows: rows}
	if len(rows) > limit {
		out.Rows = rows[len(rows)-limit:]
	}
	return nil, out, nil
}

func (s *Server) handleGetCharts(ctx context.Context, _ *mcp.CallToolRequest, input getChartsInput) (*mcp.CallToolResult, getChartsOutput, error) {
	if input.File == "" {
		return nil, getChartsOutput{}, fmt.Errorf("file is required")
	}
	specs, err := s.src.Charts(ctx, input.SessionID, input.File, input.Days)
	if err != nil {
		return nil, getChartsOutput{}, err
	}
	return nil, getChartsOutput{File: input.File, Charts: specs}, nil
}

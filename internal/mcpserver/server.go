// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes food-tracking tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mjashby/forage/internal/tracker"
)

// Server wraps the MCP server with forage tools.
type Server struct {
	mcp *server.MCPServer
	svc *tracker.Service
}

// New creates a new MCP server with all forage tools registered.
func New(svc *tracker.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Forage",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("match_text",
		mcp.WithDescription("Recognize known foods in free-form text, e.g. a meal description. "+
			"Returns candidate matches without logging anything."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Free text describing what was eaten")),
	), s.matchText)

	s.mcp.AddTool(mcp.NewTool("log_foods",
		mcp.WithDescription("Log confirmed foods as eaten now. Aliases must come from match_text "+
			"or list_foods; unknown aliases reject the whole call."),
		mcp.WithString("aliases", mcp.Required(), mcp.Description("Comma-separated food aliases to log")),
	), s.logFoods)

	s.mcp.AddTool(mcp.NewTool("weekly_progress",
		mcp.WithDescription("Distinct-food counts per week, most recent first, against the weekly goal."),
	), s.weeklyProgress)

	s.mcp.AddTool(mcp.NewTool("list_foods",
		mcp.WithDescription("List every recognizable food alias alphabetically."),
	), s.listFoods)

	s.mcp.AddTool(mcp.NewTool("clear_history",
		mcp.WithDescription("Delete the entire consumption history. Irreversible."),
	), s.clearHistory)

	// Resource: catalog CSV contract.
	s.mcp.AddResource(
		mcp.NewResource("forage://catalog-format", "Catalog Format Contract",
			mcp.WithResourceDescription("CSV format the food catalog is imported from."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCatalogFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) matchText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	matches := s.svc.ProcessText(ctx, text)
	if len(matches) == 0 {
		return mcp.NewToolResultText("no known foods recognized"), nil
	}
	out, _ := json.MarshalIndent(matches, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) logFoods(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("aliases")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var aliases []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			aliases = append(aliases, trimmed)
		}
	}
	if len(aliases) == 0 {
		return mcp.NewToolResultError("no aliases given"), nil
	}

	created, err := s.svc.LogFoods(ctx, aliases)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	wk := s.svc.CurrentWeek(ctx)
	return mcp.NewToolResultText(fmt.Sprintf("logged %d foods; this week: %d/%d distinct",
		len(created), wk.Count(), s.svc.Goal())), nil
}

func (s *Server) weeklyProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weeks := s.svc.Weeks(ctx)
	if len(weeks) == 0 {
		return mcp.NewToolResultText("no history yet"), nil
	}

	type weekOut struct {
		Start string   `json:"start"`
		End   string   `json:"end"`
		Foods []string `json:"foods"`
		Count int      `json:"count"`
		Goal  int      `json:"goal"`
	}
	out := make([]weekOut, len(weeks))
	for i, w := range weeks {
		names := make([]string, len(w.Foods))
		for j, f := range w.Foods {
			names[j] = f.Name
		}
		out[i] = weekOut{
			Start: w.Start.Format("2006-01-02"),
			End:   w.End.Format("2006-01-02"),
			Foods: names,
			Count: w.Count(),
			Goal:  s.svc.Goal(),
		}
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listFoods(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	aliases := s.svc.Aliases(ctx)
	var lines []string
	for _, a := range aliases {
		lines = append(lines, fmt.Sprintf("%s -> %s (%s)", a.Original, a.Food.Name, a.Food.Category))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("catalog is empty"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) clearHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.svc.ClearHistory(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("history cleared"), nil
}

func (s *Server) readCatalogFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "forage://catalog-format",
			MIMEType: "text/markdown",
			Text:     CatalogFormatContract,
		},
	}, nil
}

// Package mcpserver exposes ripdoc's core operations - search, render, and
// skelebuild status - as MCP tools over stdio. Adapted from the teacher's
// internal/mcp/server.go: same server.NewMCPServer/mcp.NewTool registration
// shape, but every handler here calls straight into internal/index,
// internal/render, and internal/skelebuild rather than proxying to a
// daemon client, since ripdoc has no daemon process (§5: single-binary
// CLI invocations, no background server architecture).
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Alb-O/ripdoc/internal/index"
	"github.com/Alb-O/ripdoc/internal/render"
	"github.com/Alb-O/ripdoc/internal/resolve"
	"github.com/Alb-O/ripdoc/internal/rustdoc"
	"github.com/Alb-O/ripdoc/internal/selection"
	"github.com/Alb-O/ripdoc/internal/skelebuild"
)

const instructions = `ripdoc exposes three tools over a local Rust workspace:
search finds items by name, doc text, path, or signature; render produces a
Rust or Markdown skeleton for one target path; skelebuild_status reports
the entries currently queued in the skelebuild state file.`

// Server wraps the registered MCP tool set.
type Server struct {
	mcpServer *server.MCPServer
	loader    skelebuild.CrateLoader
}

// NewServer builds a Server whose search/render tools resolve crates
// through loader - the same out-of-scope collaborator seam skelebuild
// uses (§6), so this package never owns crate acquisition itself.
func NewServer(loader skelebuild.CrateLoader) *Server {
	s := &Server{loader: loader}

	mcpServer := server.NewMCPServer(
		"ripdoc",
		"0.1.0",
		server.WithInstructions(instructions),
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)
	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("search",
			mcp.WithDescription("Search a Rust crate's public API by name, doc text, path, or signature."),
			mcp.WithString("pkg_root", mcp.Description("Path to the crate's package root (directory containing Cargo.toml)"), mcp.Required()),
			mcp.WithString("query", mcp.Description("Search query; `a|b` matches either term, a bare substring matches anywhere"), mcp.Required()),
			mcp.WithBoolean("include_private", mcp.Description("Include non-public items (default false)")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
		),
		s.handleSearch,
	)

	mcpServer.AddTool(
		mcp.NewTool("render",
			mcp.WithDescription("Render a Rust or Markdown skeleton for one target path within a crate."),
			mcp.WithString("pkg_root", mcp.Description("Path to the crate's package root"), mcp.Required()),
			mcp.WithString("target", mcp.Description("Target path, e.g. crate::module::Type"), mcp.Required()),
			mcp.WithBoolean("implementation", mcp.Description("Pull in full method bodies for this target (default false)")),
			mcp.WithString("format", mcp.Description("\"rust\" or \"markdown\" (default \"markdown\")")),
		),
		s.handleRender,
	)

	mcpServer.AddTool(
		mcp.NewTool("skelebuild_status",
			mcp.WithDescription("Report the entries currently queued in the skelebuild state file."),
		),
		s.handleSkelebuildStatus,
	)
}

func (s *Server) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pkgRoot, _ := args["pkg_root"].(string)
	query, _ := args["query"].(string)
	if pkgRoot == "" || query == "" {
		return mcp.NewToolResultError("missing required parameter: pkg_root and query are both required"), nil
	}
	includePrivate, _ := args["include_private"].(bool)
	limit := 20
	if l, ok := args["limit"].(float64); ok && l > 0 {
		limit = int(l)
	}

	crate, err := s.loader.Load(pkgRoot)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading crate: %v", err)), nil
	}

	results := index.Search(crate.Index, index.SearchOptions{
		Query:          query,
		IncludePrivate: includePrivate,
	})
	if len(results) > limit {
		results = results[:limit]
	}

	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleRender(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pkgRoot, _ := args["pkg_root"].(string)
	target, _ := args["target"].(string)
	if pkgRoot == "" || target == "" {
		return mcp.NewToolResultError("missing required parameter: pkg_root and target are both required"), nil
	}
	implementation, _ := args["implementation"].(bool)
	format := render.FormatMarkdown
	if f, _ := args["format"].(string); f == "rust" {
		format = render.FormatRust
	}

	crate, err := s.loader.Load(pkgRoot)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading crate: %v", err)), nil
	}

	m, err := resolve.ValidateAddTarget(crate.Index, crate.Data, crate.CrateName, crate.PkgRoot, target, crate.IsLocal, false, false)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("resolving target: %v", err)), nil
	}

	id := m.Result.ItemID
	fullSource := selection.IDSet{}
	if m.HasImpl {
		id = m.ImplID
		fullSource.Add(m.ImplID)
	}
	if implementation {
		switch m.Result.Kind {
		case rustdoc.KindFunction, rustdoc.KindMethod:
			fullSource.Add(m.Result.ItemID)
		}
	}

	sel := selection.Build(crate.Data, crate.Index, []rustdoc.ItemID{id}, true, fullSource)
	text, err := render.Render(crate.Data, render.Options{
		Format:             format,
		RenderPrivateItems: false,
		RenderSourceLabels: true,
		SourceRoot:         crate.PkgRoot,
		Selection:          sel,
		Visited:            render.NewVisitedSet(),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rendering: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleSkelebuildStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := skelebuild.Load()
	out, _ := json.MarshalIndent(st, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

// Run serves the MCP protocol over stdio until the client disconnects.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

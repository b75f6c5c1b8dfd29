package mcp

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jcdickinson/rsdoc/internal/docs"
	"github.com/jcdickinson/rsdoc/internal/registry"
	"github.com/jcdickinson/rsdoc/internal/rpc"
)

//go:embed instructions.md
var instructions string

const docsURIPrefix = "crates://"

// Backend answers documentation queries. *daemon.Client satisfies it.
type Backend interface {
	CrateDocs(ctx context.Context, req rpc.CrateDocsRequest) (string, error)
	DocItem(ctx context.Context, req rpc.DocItemRequest) (string, error)
	SearchDocs(ctx context.Context, req rpc.SearchDocsRequest) (string, error)
	SearchCrates(ctx context.Context, req rpc.SearchCratesRequest) ([]registry.Crate, error)
}

type Server struct {
	mcpServer *server.MCPServer
	backend   Backend
}

func NewServer(backend Backend, version string) *Server {
	s := &Server{backend: backend}

	mcpServer := server.NewMCPServer(
		"rsdoc",
		version,
		server.WithInstructions(instructions),
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerTools(mcpServer)
	s.registerResources(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("get_crate_docs",
			mcp.WithDescription("List the public items of a crate module from docs.rs, grouped by kind with one-line summaries. Omit module_path for the crate root."),
			mcp.WithString("name",
				mcp.Description("Crate name (e.g. \"serde\")"),
				mcp.Required(),
			),
			versionParam(),
			mcp.WithString("module_path",
				mcp.Description("Module path inside the crate, e.g. \"de\" or \"de::value\""),
			),
		),
		s.handleCrateDocs,
	)

	mcpServer.AddTool(
		mcp.NewTool("get_doc_item",
			mcp.WithDescription("Show the full documentation of one item: signature, docs, fields, variants and inherent methods."),
			mcp.WithString("name",
				mcp.Description("Crate name"),
				mcp.Required(),
			),
			versionParam(),
			mcp.WithString("item_path",
				mcp.Description("Item path, e.g. \"Serialize\", \"de::Deserializer\" or \"Mode::Fast\""),
				mcp.Required(),
			),
			mcp.WithBoolean("resolve_links",
				mcp.Description("Rewrite intra-doc links to docs.rs URLs"),
			),
		),
		s.handleDocItem,
	)

	mcpServer.AddTool(
		mcp.NewTool("search_docs",
			mcp.WithDescription("Find items in a crate whose name contains the query (case-insensitive). Exact matches rank first, then prefixes."),
			mcp.WithString("name",
				mcp.Description("Crate name"),
				mcp.Required(),
			),
			versionParam(),
			mcp.WithString("query",
				mcp.Description("Part of an item name"),
				mcp.Required(),
			),
			mcp.WithNumber("limit",
				mcp.Description(fmt.Sprintf("Maximum number of results (default %d, max %d)", docs.DefaultSearchLimit, docs.MaxSearchLimit)),
			),
		),
		s.handleSearchDocs,
	)

	mcpServer.AddTool(
		mcp.NewTool("search_crates",
			mcp.WithDescription("Search crates.io for Rust crates by name or keyword."),
			mcp.WithString("query",
				mcp.Description("Search query (crate name or keyword)"),
				mcp.Required(),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of results (default 20)"),
			),
		),
		s.handleSearchCrates,
	)
}

func versionParam() mcp.ToolOption {
	return mcp.WithString("version",
		mcp.Description("Crate version; defaults to the newest stable release, \"latest\" asks docs.rs for its newest build"),
	)
}

func (s *Server) registerResources(mcpServer *server.MCPServer) {
	mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			docsURIPrefix+"{name}/docs",
			"Rust crate documentation",
			mcp.WithTemplateDescription("Root module listing of the newest docs.rs build of a crate."),
			mcp.WithTemplateMIMEType("text/markdown"),
		),
		s.handleReadResource,
	)
}

func (s *Server) handleCrateDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, _ := args["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}
	version, _ := args["version"].(string)
	modulePath, _ := args["module_path"].(string)

	text, err := s.backend.CrateDocs(ctx, rpc.CrateDocsRequest{Name: name, Version: version, ModulePath: modulePath})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleDocItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, _ := args["name"].(string)
	itemPath, _ := args["item_path"].(string)
	if name == "" || itemPath == "" {
		return mcp.NewToolResultError("missing required parameters: name and item_path"), nil
	}
	version, _ := args["version"].(string)
	resolveLinks, _ := args["resolve_links"].(bool)

	text, err := s.backend.DocItem(ctx, rpc.DocItemRequest{
		Name:         name,
		Version:      version,
		ItemPath:     itemPath,
		ResolveLinks: resolveLinks,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleSearchDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, _ := args["name"].(string)
	query, _ := args["query"].(string)
	if name == "" || query == "" {
		return mcp.NewToolResultError("missing required parameters: name and query"), nil
	}
	version, _ := args["version"].(string)

	searchReq := rpc.SearchDocsRequest{Name: name, Version: version, Query: query}
	if limit, ok := args["limit"].(float64); ok {
		searchReq.Limit = int(limit)
	}

	text, err := s.backend.SearchDocs(ctx, searchReq)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleSearchCrates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	query, _ := args["query"].(string)
	if query == "" {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	searchReq := rpc.SearchCratesRequest{Query: query}
	if limit, ok := args["limit"].(float64); ok {
		searchReq.Limit = int(limit)
	}

	results, err := s.backend.SearchCrates(ctx, searchReq)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if results == nil {
		results = []registry.Crate{}
	}

	resultJSON, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func (s *Server) handleReadResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	name, ok := strings.CutSuffix(strings.TrimPrefix(uri, docsURIPrefix), "/docs")
	if !ok || name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("invalid resource URI: %s", uri)
	}

	text, err := s.backend.CrateDocs(ctx, rpc.CrateDocsRequest{Name: name, Version: docs.LatestVersion})
	if err != nil {
		return nil, fmt.Errorf("getting docs for %s: %w", name, err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     text,
		},
	}, nil
}

func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) Shutdown(_ context.Context) error {
	return nil
}

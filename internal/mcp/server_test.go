package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcdickinson/rsdoc/internal/registry"
	"github.com/jcdickinson/rsdoc/internal/rpc"
)

type fakeBackend struct {
	crateDocs    []rpc.CrateDocsRequest
	docItems     []rpc.DocItemRequest
	searchDocs   []rpc.SearchDocsRequest
	searchCrates []rpc.SearchCratesRequest
	crates       []registry.Crate
	err          error
}

func (b *fakeBackend) CrateDocs(_ context.Context, req rpc.CrateDocsRequest) (string, error) {
	b.crateDocs = append(b.crateDocs, req)
	return "# Module `" + req.Name + "`\n", b.err
}

func (b *fakeBackend) DocItem(_ context.Context, req rpc.DocItemRequest) (string, error) {
	b.docItems = append(b.docItems, req)
	return "# Struct `" + req.ItemPath + "`\n", b.err
}

func (b *fakeBackend) SearchDocs(_ context.Context, req rpc.SearchDocsRequest) (string, error) {
	b.searchDocs = append(b.searchDocs, req)
	return "Found 0 items", b.err
}

func (b *fakeBackend) SearchCrates(_ context.Context, req rpc.SearchCratesRequest) ([]registry.Crate, error) {
	b.searchCrates = append(b.searchCrates, req)
	return b.crates, b.err
}

func callTool(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return text.Text
}

func TestHandleCrateDocs(t *testing.T) {
	t.Parallel()
	b := &fakeBackend{}
	s := NewServer(b, "test")

	res, err := s.handleCrateDocs(context.Background(), callTool("get_crate_docs", map[string]any{
		"name":        "serde",
		"version":     "1.0.210",
		"module_path": "de",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "# Module `serde`\n", resultText(t, res))
	assert.Equal(t, []rpc.CrateDocsRequest{{Name: "serde", Version: "1.0.210", ModulePath: "de"}}, b.crateDocs)
}

func TestHandleDocItem(t *testing.T) {
	t.Parallel()
	b := &fakeBackend{}
	s := NewServer(b, "test")

	res, err := s.handleDocItem(context.Background(), callTool("get_doc_item", map[string]any{
		"name":          "serde",
		"item_path":     "Serialize",
		"resolve_links": true,
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, []rpc.DocItemRequest{{Name: "serde", ItemPath: "Serialize", ResolveLinks: true}}, b.docItems)
}

func TestHandleSearchDocs(t *testing.T) {
	t.Parallel()
	b := &fakeBackend{}
	s := NewServer(b, "test")

	res, err := s.handleSearchDocs(context.Background(), callTool("search_docs", map[string]any{
		"name":  "serde",
		"query": "ser",
		"limit": float64(5),
	}))
	require.NoError(t, err)
	assert.Equal(t, "Found 0 items", resultText(t, res))
	assert.Equal(t, []rpc.SearchDocsRequest{{Name: "serde", Query: "ser", Limit: 5}}, b.searchDocs)
}

func TestHandleSearchCrates(t *testing.T) {
	t.Parallel()
	b := &fakeBackend{crates: []registry.Crate{{Name: "serde", MaxVersion: "1.0.210", Downloads: 7}}}
	s := NewServer(b, "test")

	res, err := s.handleSearchCrates(context.Background(), callTool("search_crates", map[string]any{"query": "serde"}))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"serde","description":"","max_version":"1.0.210","downloads":7}]`, resultText(t, res))

	b.crates = nil
	res, err = s.handleSearchCrates(context.Background(), callTool("search_crates", map[string]any{"query": "zzz"}))
	require.NoError(t, err)
	assert.Equal(t, "[]", resultText(t, res))
}

func TestToolList(t *testing.T) {
	t.Parallel()
	s := NewServer(&fakeBackend{}, "test")

	resp := s.mcpServer.HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	out, err := json.Marshal(resp)
	require.NoError(t, err)

	for _, name := range []string{"get_crate_docs", "get_doc_item", "search_docs", "search_crates"} {
		assert.Contains(t, string(out), `"name":"`+name+`"`)
	}
	// Item detail renders inherent methods only.
	assert.Contains(t, string(out), "fields, variants and inherent methods.")
	assert.NotContains(t, string(out), "trait implementations")
}

func TestToolsMissingArguments(t *testing.T) {
	t.Parallel()
	b := &fakeBackend{}
	s := NewServer(b, "test")
	ctx := context.Background()

	tests := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args    map[string]any
	}{
		{"get_crate_docs", s.handleCrateDocs, map[string]any{}},
		{"get_doc_item", s.handleDocItem, map[string]any{"name": "serde"}},
		{"search_docs", s.handleSearchDocs, map[string]any{"name": "serde"}},
		{"search_crates", s.handleSearchCrates, map[string]any{"limit": float64(3)}},
	}
	for _, tt := range tests {
		res, err := tt.handler(ctx, callTool(tt.name, tt.args))
		require.NoError(t, err, tt.name)
		assert.True(t, res.IsError, tt.name)
	}
	assert.Empty(t, b.crateDocs)
	assert.Empty(t, b.docItems)
	assert.Empty(t, b.searchDocs)
	assert.Empty(t, b.searchCrates)
}

func TestBackendErrorBecomesToolError(t *testing.T) {
	t.Parallel()
	b := &fakeBackend{err: &rpc.RemoteError{Status: 404, Message: "Item 'Nope' not found in serde v1.0.210"}}
	s := NewServer(b, "test")

	res, err := s.handleDocItem(context.Background(), callTool("get_doc_item", map[string]any{
		"name":      "serde",
		"item_path": "Nope",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "Item 'Nope' not found in serde v1.0.210", resultText(t, res))
}

func TestHandleReadResource(t *testing.T) {
	t.Parallel()
	b := &fakeBackend{}
	s := NewServer(b, "test")

	var req mcp.ReadResourceRequest
	req.Params.URI = "crates://tokio/docs"
	contents, err := s.handleReadResource(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "crates://tokio/docs", text.URI)
	assert.Equal(t, "text/markdown", text.MIMEType)
	assert.Equal(t, "# Module `tokio`\n", text.Text)
	assert.Equal(t, []rpc.CrateDocsRequest{{Name: "tokio", Version: "latest"}}, b.crateDocs)

	for _, uri := range []string{"crates://tokio", "crates:///docs", "crates://a/b/docs", "rsdoc://tokio/docs/x"} {
		req.Params.URI = uri
		_, err := s.handleReadResource(context.Background(), req)
		assert.Error(t, err, uri)
	}

	b.err = errors.New("boom")
	req.Params.URI = "crates://tokio/docs"
	_, err = s.handleReadResource(context.Background(), req)
	assert.ErrorContains(t, err, "boom")
}

package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/promptdrafter/internal/logging"
	"github.com/aretw0/promptdrafter/pkg/adapters/memory"
	"github.com/aretw0/promptdrafter/pkg/domain"
	"github.com/aretw0/promptdrafter/pkg/library"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*client.Client, *library.Service) {
	t.Helper()
	lib := library.NewService(memory.NewStore())
	srv := NewServer(lib, logging.NewNop())

	c, err := client.NewInProcessClient(srv.MCPServer())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	init := mcp.InitializeRequest{}
	init.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	init.Params.ClientInfo = mcp.Implementation{Name: "test", Version: "0.0.0"}
	_, err = c.Initialize(ctx, init)
	require.NoError(t, err)
	return c, lib
}

func call(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := c.CallTool(context.Background(), req)
	require.NoError(t, err)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestServer_ListTools(t *testing.T) {
	c, _ := newClient(t)
	res, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"extract_wildcards", "reconcile_ports", "next_placeholder", "combine_strings",
		"fill_prompt", "list_library", "load_record", "save_record", "delete_record",
	}, names)
}

func TestServer_TextTools(t *testing.T) {
	c, _ := newClient(t)

	res := call(t, c, "extract_wildcards", map[string]any{
		"texts": []any{"{wildcard_b} {wildcard_a}", "{wildcard_b} {c}"},
	})
	require.False(t, res.IsError, text(t, res))
	var wc WildcardsResponse
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &wc))
	assert.Equal(t, []string{"wildcard_b", "wildcard_a"}, wc.Wildcards)

	res = call(t, c, "reconcile_ports", map[string]any{
		"current": []any{"prefix", "wildcard_old", "wildcard_keep"},
		"texts":   []any{"{wildcard_keep} {wildcard_new}"},
	})
	require.False(t, res.IsError, text(t, res))
	var edit ReconcileResponse
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &edit))
	assert.Equal(t, []string{"wildcard_new"}, edit.ToAdd)
	assert.Equal(t, []string{"wildcard_old"}, edit.ToRemove)

	res = call(t, c, "next_placeholder", map[string]any{"text": "{wildcard_02} {wildcard_09}"})
	assert.Equal(t, "{wildcard_10}", text(t, res))

	res = call(t, c, "combine_strings", map[string]any{"strings": []any{"a, ", "", ", b"}})
	assert.Equal(t, "a, b", text(t, res))

	res = call(t, c, "fill_prompt", map[string]any{
		"text":   "a {wildcard_animal}  in {wildcard_place}",
		"prefix": "masterpiece",
		"values": map[string]any{"animal": "fox"},
	})
	assert.Equal(t, "masterpiece, a fox in", text(t, res))
}

func TestServer_LibraryTools(t *testing.T) {
	c, lib := newClient(t)

	res := call(t, c, "save_record", map[string]any{
		"category": "wildcard",
		"name":     "colors",
		"raw_text": "red, green",
	})
	require.False(t, res.IsError, text(t, res))

	rec, err := lib.Load(context.Background(), domain.CategoryWildcard, "colors")
	require.NoError(t, err)
	assert.Equal(t, []string{"red", "green"}, rec.Values)

	res = call(t, c, "list_library", map[string]any{"category": "wildcard"})
	require.False(t, res.IsError, text(t, res))
	var list ListResponse
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &list))
	assert.Equal(t, domain.CategoryWildcard, list.Category)
	assert.Equal(t, []string{"colors"}, list.Names)

	res = call(t, c, "load_record", map[string]any{"category": "wildcard", "name": "colors"})
	require.False(t, res.IsError, text(t, res))
	var loaded domain.Record
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &loaded))
	assert.Equal(t, "red, green", loaded.RawText)

	res = call(t, c, "delete_record", map[string]any{"category": "wildcard", "name": "colors"})
	assert.False(t, res.IsError)

	res = call(t, c, "load_record", map[string]any{"category": "wildcard", "name": "colors"})
	assert.True(t, res.IsError)

	res = call(t, c, "save_record", map[string]any{"category": "dual", "name": "x", "bogus": "y"})
	assert.True(t, res.IsError, "unknown fields are rejected")

	res = call(t, c, "list_library", map[string]any{"category": "quad"})
	assert.True(t, res.IsError)
}

func TestServer_Resources(t *testing.T) {
	c, lib := newClient(t)
	ctx := context.Background()
	_, err := lib.SaveSingle(ctx, "hero", "a knight")
	require.NoError(t, err)

	read := func(uri string) string {
		req := mcp.ReadResourceRequest{}
		req.Params.URI = uri
		res, err := c.ReadResource(ctx, req)
		require.NoError(t, err)
		require.Len(t, res.Contents, 1)
		tc, ok := res.Contents[0].(mcp.TextResourceContents)
		require.True(t, ok)
		return tc.Text
	}

	assert.Contains(t, read(kindsURI), string(domain.KindDualPrompt))
	assert.JSONEq(t, `["hero"]`, read("promptdrafter://library/single"))
	assert.Contains(t, read("promptdrafter://library/single/hero"), `"prompt":"a knight"`)
}

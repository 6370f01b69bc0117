package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/dynoinc/sprykersearch/internal/config"
	"github.com/dynoinc/sprykersearch/internal/results"
	"github.com/dynoinc/sprykersearch/internal/search"
)

type fakeGitHub struct {
	lastQuery string
	err       error
}

func (f *fakeGitHub) SearchRepositories(_ context.Context, q string) (results.RepositoryPage, error) {
	f.lastQuery = q
	if f.err != nil {
		return results.RepositoryPage{}, f.err
	}
	return results.RepositoryPage{
		Items: []results.Repository{
			{Name: "repo1", Description: "Test repo 1", URL: "https://github.com/spryker/repo1"},
			{Name: "repo2", Description: "Test repo 2", URL: "https://github.com/spryker/repo2"},
		},
		TotalCount: 2,
	}, nil
}

func (f *fakeGitHub) SearchCode(_ context.Context, q string) (results.CodePage, error) {
	f.lastQuery = q
	return results.CodePage{}, f.err
}

func (f *fakeGitHub) FetchDoc(context.Context, string) (string, error) {
	return "# Checkout", nil
}

func (f *fakeGitHub) SearchDocs(context.Context, string) ([]results.DocHit, error) {
	return []results.DocHit{{URL: "https://docs.spryker.com/docs/checkout.html"}}, nil
}

func newClient(t *testing.T, gh *fakeGitHub) *client.Client {
	t.Helper()

	svc := search.New(config.Default(), search.Backends{
		Repositories: gh,
		Code:         gh,
		Docs:         gh,
		Index:        gh,
	})

	c, err := Client(t.Context(), svc)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c
}

func callText(t *testing.T, c *client.Client, name string, args map[string]any) string {
	t.Helper()

	result, err := c.CallTool(t.Context(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Len(t, result.Content, 1)

	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	require.Equal(t, "text", text.Type)

	return text.Text
}

func TestClient_ListTools(t *testing.T) {
	c := newClient(t, &fakeGitHub{})

	toolsResult, err := c.ListTools(t.Context(), mcp.ListToolsRequest{})
	require.NoError(t, err)
	require.Len(t, toolsResult.Tools, 3)

	byName := make(map[string]mcp.Tool)
	for _, tool := range toolsResult.Tools {
		byName[tool.Name] = tool
	}

	for _, name := range []string{PackagesTool, CodeTool} {
		tool, ok := byName[name]
		require.True(t, ok, name)
		require.Equal(t, "object", tool.InputSchema.Type)
		require.Contains(t, tool.InputSchema.Properties, "query")
		require.Contains(t, tool.InputSchema.Properties, "organisations")
		require.Equal(t, []string{"query"}, tool.InputSchema.Required)
	}

	docs, ok := byName[DocsTool]
	require.True(t, ok)
	require.Contains(t, docs.InputSchema.Properties, "query")
	require.NotContains(t, docs.InputSchema.Properties, "organisations")
}

func TestCallPackages(t *testing.T) {
	gh := &fakeGitHub{}
	c := newClient(t, gh)

	text := callText(t, c, PackagesTool, map[string]any{
		"query":         "test-query",
		"organisations": []string{"spryker"},
	})

	require.Equal(t, "test-query org:spryker", gh.lastQuery)
	require.Contains(t, text, "Found 2 repositories:")
	require.Contains(t, text, "Search performed across organizations: spryker")
}

func TestCallPackagesBackendError(t *testing.T) {
	c := newClient(t, &fakeGitHub{err: errors.New("API error")})

	text := callText(t, c, PackagesTool, map[string]any{"query": "test-query", "organisations": []string{"spryker"}})
	require.Equal(t, "Error performing search: API error", text)
}

func TestCallCodeUsesLanguageQualifier(t *testing.T) {
	gh := &fakeGitHub{}
	c := newClient(t, gh)

	text := callText(t, c, CodeTool, map[string]any{"query": "facade method"})
	require.Contains(t, gh.lastQuery, " in:file language:php")
	require.Equal(t, "No code matches found for your search criteria.", text)
}

func TestCallDocs(t *testing.T) {
	c := newClient(t, &fakeGitHub{})

	text := callText(t, c, DocsTool, map[string]any{"query": "checkout flow"})
	require.Contains(t, text, "Found 1 documentation pages:")
	require.Contains(t, text, "# Checkout")
}

func TestCallRejectsQueryLength(t *testing.T) {
	c := newClient(t, &fakeGitHub{})

	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{"too short", PackagesTool, map[string]any{"query": "abc"}, "Error performing search: query must be between 5 and 120 characters"},
		{"missing", CodeTool, map[string]any{}, "Error performing code search: query must be between 5 and 120 characters"},
		{"too long", DocsTool, map[string]any{"query": strings.Repeat("a", 121)}, "Error performing docs search: query must be between 5 and 120 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, callText(t, c, tt.tool, tt.args))
		})
	}
}

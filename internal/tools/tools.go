// Package tools exposes the search flows as MCP tools.
package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/earthboundkid/versioninfo/v2"
	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dynoinc/sprykersearch/internal/search"
)

const ServerName = "SprykerPackageSearch"

const (
	PackagesTool = "search_spryker_packages"
	CodeTool     = "search_spryker_package_code"
	DocsTool     = "search_spryker_documentation_path"
)

const (
	minQueryLength = 5
	maxQueryLength = 120
)

const organisationsDescription = "Optional array of organisations to filter by [`spryker`, `spryker-eco`, `spryker-sdk`, `spryker-shop`, `spryker-community`]"

type input struct {
	Query         string   `json:"query" validate:"min=5,max=120"`
	Organisations []string `json:"organisations"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var errQueryLength = fmt.Errorf("query must be between %d and %d characters", minQueryLength, maxQueryLength)

func queryProperty(description string) map[string]any {
	return map[string]any{
		"type":        "string",
		"description": description,
		"minLength":   minQueryLength,
		"maxLength":   maxQueryLength,
	}
}

func organisationsProperty() map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": organisationsDescription,
	}
}

func PackagesToolDef(svc *search.Service) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.Tool{
		Name:        PackagesTool,
		Description: "To search the Spryker package repository in Github",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"query":         queryProperty("The natural language query to search in Github"),
				"organisations": organisationsProperty(),
			},
			Required: []string{"query"},
		},
	}

	return tool, handler(search.KindPackages, svc.Packages)
}

func CodeToolDef(svc *search.Service) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.Tool{
		Name:        CodeTool,
		Description: "To search code in Spryker GitHub repositories",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"query":         queryProperty("The natural language query to search in code of Spryker packages"),
				"organisations": organisationsProperty(),
			},
			Required: []string{"query"},
		},
	}

	return tool, handler(search.KindCode, svc.Code)
}

func DocsToolDef(svc *search.Service) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.Tool{
		Name:        DocsTool,
		Description: "To search Spryker documentation path urls by query",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"query": queryProperty("The natural language query to search Spryker documentation path url"),
			},
			Required: []string{"query"},
		},
	}

	return tool, handler(search.KindDocs, svc.Docs)
}

// handler adapts a search flow to an MCP handler. The result is always a
// single text content, errors included.
func handler(kind search.Kind, flow func(context.Context, search.Request) string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in input
		if err := request.BindArguments(&in); err != nil {
			return mcp.NewToolResultText(kind.Failure(fmt.Errorf("invalid arguments: %w", err))), nil
		}

		if err := validate.Struct(in); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				err = errQueryLength
			}
			return mcp.NewToolResultText(kind.Failure(err)), nil
		}

		text := flow(ctx, search.Request{Query: in.Query, Organisations: in.Organisations})
		return mcp.NewToolResultText(text), nil
	}
}

func Server(svc *search.Service) *server.MCPServer {
	srv := server.NewMCPServer(ServerName, versioninfo.Short(), server.WithToolCapabilities(true))
	srv.AddTool(PackagesToolDef(svc))
	srv.AddTool(CodeToolDef(svc))
	srv.AddTool(DocsToolDef(svc))

	return srv
}

// Client returns an initialized in-process client for the tool server.
func Client(ctx context.Context, svc *search.Service) (*client.Client, error) {
	c, err := client.NewInProcessClient(Server(svc))
	if err != nil {
		return nil, err
	}

	if err := c.Start(ctx); err != nil {
		return nil, err
	}

	_, err = c.Initialize(ctx, mcp.InitializeRequest{})
	if err != nil {
		return nil, err
	}

	return c, nil
}

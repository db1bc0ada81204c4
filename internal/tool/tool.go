// Package tool exposes the pharmacy lookup as a callable tool for the
// Gemini function-calling API and for MCP clients.
package tool

import (
	"context"
	"log/slog"

	"github.com/invopop/jsonschema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"google.golang.org/genai"
)

const (
	Name        = "find_nearby_pharmacies"
	Description = "Finds nearby pharmacies for a given address."
)

// Finder is the lookup the tool delegates to.
type Finder interface {
	FindNearbyPharmacies(ctx context.Context, address string) []string
}

// Args are the tool parameters.
type Args struct {
	Address string `json:"address" jsonschema:"description=Free-form street address to search around"`
}

// PharmacyTool wraps a Finder so a model or an MCP client can call it.
type PharmacyTool struct {
	finder Finder
	log    *slog.Logger
}

func New(finder Finder, log *slog.Logger) *PharmacyTool {
	return &PharmacyTool{finder: finder, log: log}
}

// Name returns the name the tool is registered under.
func (t *PharmacyTool) Name() string {
	return Name
}

// Invoke runs the lookup with raw call arguments. A missing or non-string
// address is passed through as an empty string.
func (t *PharmacyTool) Invoke(ctx context.Context, args map[string]any) []string {
	address, _ := args["address"].(string)

	t.log.DebugContext(ctx, "Tool invoked", "tool", Name, "address", address)

	return t.finder.FindNearbyPharmacies(ctx, address)
}

// ParametersSchema reflects the JSON schema of Args.
func ParametersSchema() *jsonschema.Schema {
	r := new(jsonschema.Reflector)
	r.ExpandedStruct = true
	r.DoNotReference = true

	return r.Reflect(&Args{})
}

// Declaration returns the function declaration handed to the model.
func (t *PharmacyTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        Name,
		Description: Description,
		Parameters:  toGenaiSchema(ParametersSchema()),
	}
}

// MCPTool returns the MCP definition of the tool.
func (t *PharmacyTool) MCPTool() mcp.Tool {
	return mcp.NewTool(Name,
		mcp.WithDescription(Description),
		mcp.WithString("address",
			mcp.Required(),
			mcp.Description("Free-form street address to search around"),
		),
	)
}

// MCPHandler returns one text content per result line. Lookup failures are
// already folded into the lines, so the handler never returns an error.
func (t *PharmacyTool) MCPHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		lines := t.Invoke(ctx, request.GetArguments())

		content := make([]mcp.Content, 0, len(lines))
		for _, line := range lines {
			content = append(content, mcp.NewTextContent(line))
		}

		return &mcp.CallToolResult{Content: content}, nil
	}
}

func toGenaiSchema(s *jsonschema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        toGenaiType(s.Type),
		Description: s.Description,
		Required:    s.Required,
		Properties:  toGenaiProperties(s.Properties),
	}
	if s.Items != nil {
		out.Items = toGenaiSchema(s.Items)
	}

	return out
}

func toGenaiProperties(props *orderedmap.OrderedMap[string, *jsonschema.Schema]) map[string]*genai.Schema {
	if props == nil || props.Len() == 0 {
		return nil
	}

	out := make(map[string]*genai.Schema, props.Len())
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = toGenaiSchema(pair.Value)
	}

	return out
}

func toGenaiType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	default:
		return genai.TypeUnspecified
	}
}

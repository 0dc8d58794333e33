package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/jadenj13/whippy-mcp/internals/tool"
)

// Invoker runs one decoded whippy_api call. *tool.Dispatcher satisfies it.
type Invoker interface {
	InvokeArguments(ctx context.Context, args map[string]any) tool.Response
}

// Tool declares whippy_api with the same schema the MCP server advertises.
var Tool = anthropic.ToolParam{
	Name:        tool.Name,
	Description: anthropic.String(tool.Description),
	InputSchema: anthropic.ToolInputSchemaParam{
		Properties: tool.Properties(),
		Required:   tool.Required,
	},
}

// Tools returns the tool list to pass in MessageNewParams.Tools.
func Tools() []anthropic.ToolUnionParam {
	t := Tool
	return []anthropic.ToolUnionParam{{OfTool: &t}}
}

type toolCall struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// ExecuteToolUse runs a single tool_use block.
func ExecuteToolUse(ctx context.Context, inv Invoker, block anthropic.ContentBlockUnion) anthropic.ContentBlockParamUnion {
	return execute(ctx, inv, toolCall{ID: block.ID, Name: block.Name, Input: block.Input})
}

// ExecuteToolUses runs every tool_use block in resp, in order, and returns
// the matching tool_result blocks for the next user turn.
func ExecuteToolUses(ctx context.Context, inv Invoker, resp *anthropic.Message) []anthropic.ContentBlockParamUnion {
	calls := extractToolCalls(resp)
	out := make([]anthropic.ContentBlockParamUnion, 0, len(calls))
	for _, tc := range calls {
		out = append(out, execute(ctx, inv, tc))
	}
	return out
}

// ToolResultMessage wraps results as the user message that answers a
// tool_use turn.
func ToolResultMessage(results []anthropic.ContentBlockParamUnion) anthropic.MessageParam {
	return anthropic.NewUserMessage(results...)
}

func execute(ctx context.Context, inv Invoker, tc toolCall) anthropic.ContentBlockParamUnion {
	if tc.Name != tool.Name {
		return anthropic.NewToolResultBlock(tc.ID, fmt.Sprintf("error: unknown tool: %s", tc.Name), true)
	}
	var args map[string]any
	if err := json.Unmarshal(tc.Input, &args); err != nil {
		return anthropic.NewToolResultBlock(tc.ID, fmt.Sprintf("❌ Error: invalid tool input: %s", err), true)
	}
	resp := inv.InvokeArguments(ctx, args)
	return anthropic.NewToolResultBlock(tc.ID, resp.Text(), resp.IsError)
}

func extractToolCalls(resp *anthropic.Message) []toolCall {
	if resp == nil {
		return nil
	}
	var out []toolCall
	for _, b := range resp.Content {
		if b.Type == "tool_use" {
			out = append(out, toolCall{ID: b.ID, Name: b.Name, Input: b.Input})
		}
	}
	return out
}

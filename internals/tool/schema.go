package tool

import "github.com/jadenj13/whippy-mcp/internals/whippy"

const Name = "whippy_api"

const Description = `Universal Whippy AI API tool for all operations.

Resources and actions:
- contacts: create, list, get (resource_id)
- messages: send, list
- conversations: list, get (resource_id)
- campaigns: create, list, get (resource_id)
- sequences: list, get (resource_id), add_contacts (resource_id)
- health: check

Examples:
- resource="contacts", action="create", data={"phone": "+1234567890", "first_name": "John"}
- resource="messages", action="send", data={"phone": "+1234567890", "body": "Hello!"}
- resource="conversations", action="list", params={"limit": 5}
- resource="sequences", action="add_contacts", resource_id="seq_123", data={"contacts": [{"phone": "+1234567890"}]}

params.limit is capped at 100 and params.messages_limit at 500.
Every call must carry api_key; the server holds no key of its own.`

// Required lists the arguments every call must carry.
var Required = []string{"resource", "action"}

func Properties() map[string]any {
	objectOrString := func(desc string) map[string]any {
		return map[string]any{
			"anyOf": []any{
				map[string]any{"type": "object", "additionalProperties": true},
				map[string]any{"type": "string"},
			},
			"description": desc,
		}
	}
	return map[string]any{
		"resource": map[string]any{
			"type":        "string",
			"enum":        enumOf(whippy.Resources),
			"description": "The API resource type",
		},
		"action": map[string]any{
			"type":        "string",
			"enum":        enumOf(whippy.Actions),
			"description": "The action to perform",
		},
		"data":   objectOrString("Request body data for POST/PUT operations (object or JSON string)"),
		"params": objectOrString("URL parameters for filtering/pagination (object or JSON string)"),
		"resource_id": map[string]any{
			"type":        "string",
			"description": "ID of specific resource for operations like get and add_contacts",
		},
		"api_key": map[string]any{
			"type":        "string",
			"description": "Your Whippy API key. Required on every call.",
		},
	}
}

// InputSchema is the JSON schema for the tool's arguments.
func InputSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": Properties(),
		"required":   Required,
	}
}

func enumOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

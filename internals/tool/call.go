package tool

import (
	"encoding/json"

	"github.com/jadenj13/whippy-mcp/internals/whippy"
)

// ToolCall is one invocation of the whippy_api tool.
type ToolCall struct {
	Resource   whippy.Resource
	Action     whippy.Action
	Data       Argument // request body, may be nil
	Params     Argument // query parameters, may be nil
	ResourceID string
	APIKey     string
}

// Argument is a data or params value as the client sent it: either JSON
// text or an object that was already decoded.
type Argument interface {
	resolve(name string) (map[string]any, error)
}

type RawJSON string

type Object map[string]any

func (r RawJSON) resolve(name string) (map[string]any, error) {
	var v any
	if err := json.Unmarshal([]byte(r), &v); err != nil {
		return nil, whippy.InvalidArgument("Invalid JSON in %s parameter: %v", name, err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, whippy.InvalidArgument("%s parameter must be an object or JSON string, got %s", name, jsonType(v))
	}
	return obj, nil
}

func (o Object) resolve(string) (map[string]any, error) {
	return map[string]any(o), nil
}

func resolve(arg Argument, name string) (map[string]any, error) {
	if arg == nil {
		return nil, nil
	}
	return arg.resolve(name)
}

// ArgumentOf wraps a decoded protocol value. Nil and the empty string mean
// the argument was not supplied.
func ArgumentOf(name string, v any) (Argument, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if t == "" {
			return nil, nil
		}
		return RawJSON(t), nil
	case map[string]any:
		return Object(t), nil
	default:
		return nil, whippy.InvalidArgument("%s parameter must be an object or JSON string, got %s", name, jsonType(v))
	}
}

// CallFromArguments builds a ToolCall from a protocol argument map.
func CallFromArguments(args map[string]any) (ToolCall, error) {
	var call ToolCall

	resource, err := stringArg(args, "resource")
	if err != nil {
		return call, err
	}
	if resource == "" {
		return call, whippy.InvalidArgument("resource is required")
	}
	action, err := stringArg(args, "action")
	if err != nil {
		return call, err
	}
	if action == "" {
		return call, whippy.InvalidArgument("action is required")
	}
	call.Resource = whippy.Resource(resource)
	call.Action = whippy.Action(action)

	if call.ResourceID, err = stringArg(args, "resource_id"); err != nil {
		return call, err
	}
	if call.APIKey, err = stringArg(args, "api_key"); err != nil {
		return call, err
	}
	if call.Data, err = ArgumentOf("data", args["data"]); err != nil {
		return call, err
	}
	if call.Params, err = ArgumentOf("params", args["params"]); err != nil {
		return call, err
	}
	return call, nil
}

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", whippy.InvalidArgument("%s must be a string, got %s", key, jsonType(v))
	}
	return s, nil
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case float64, float32, int, int64, int32, json.Number:
		return "number"
	default:
		return "unknown"
	}
}

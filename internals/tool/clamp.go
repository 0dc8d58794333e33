package tool

import (
	"errors"
	"math"

	"github.com/spf13/cast"

	"github.com/jadenj13/whippy-mcp/internals/whippy"
)

// Only these two keys are capped. Other pagination-like keys pass through.
var paramCeilings = []struct {
	key string
	max int
}{
	{"limit", 100},
	{"messages_limit", 500},
}

var errNotNumber = errors.New("not a number")

// clampParams returns a copy of params with the capped keys lowered to
// their ceiling. Values at or below the ceiling, negatives included, are
// left as sent. A capped key holding anything but a number or numeric
// string is rejected.
func clampParams(params map[string]any) (map[string]any, error) {
	if params == nil {
		return nil, nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}

	for _, c := range paramCeilings {
		v, ok := out[c.key]
		if !ok || v == nil {
			continue
		}
		n, err := toNumber(v)
		if err != nil {
			return nil, whippy.InvalidArgument("params.%s must be a number, got %s", c.key, jsonType(v))
		}
		if n > float64(c.max) {
			out[c.key] = c.max
		}
	}
	return out, nil
}

func toNumber(v any) (float64, error) {
	switch v.(type) {
	case bool, []any, map[string]any:
		return 0, errNotNumber
	}
	n, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) {
		return 0, errNotNumber
	}
	return n, nil
}

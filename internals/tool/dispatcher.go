package tool

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jadenj13/whippy-mcp/internals/whippy"
)

type Upstream interface {
	Do(ctx context.Context, req whippy.Request) (json.RawMessage, error)
	BaseURL() string
}

// Dispatcher serves whippy_api calls. It keeps no state between calls, so
// one instance can serve any number of concurrent invocations.
type Dispatcher struct {
	upstream Upstream
	log      *slog.Logger
}

func NewDispatcher(upstream Upstream, log *slog.Logger) *Dispatcher {
	return &Dispatcher{upstream: upstream, log: log}
}

// InvokeArguments decodes a protocol argument map and invokes it.
func (d *Dispatcher) InvokeArguments(ctx context.Context, args map[string]any) Response {
	call, err := CallFromArguments(args)
	if err != nil {
		d.log.Warn("tool call rejected", "err", err)
		return failure(err)
	}
	return d.Invoke(ctx, call)
}

// Invoke runs one call: at most one upstream request, never an error
// return. Every failure is rendered into the Response.
func (d *Dispatcher) Invoke(ctx context.Context, call ToolCall) Response {
	log := d.log.With(
		"call_id", uuid.NewString(),
		"resource", call.Resource,
		"action", call.Action,
	)

	data, err := resolve(call.Data, "data")
	if err != nil {
		return d.reject(log, err)
	}
	params, err := resolve(call.Params, "params")
	if err != nil {
		return d.reject(log, err)
	}

	if call.Resource == whippy.ResourceHealth && call.Action == whippy.ActionCheck {
		return d.healthCheck(ctx, log, call.APIKey)
	}

	route, err := whippy.Translate(call.Resource, call.Action, call.ResourceID)
	if err != nil {
		return d.reject(log, err)
	}

	params, err = clampParams(params)
	if err != nil {
		return d.reject(log, err)
	}

	body, err := d.upstream.Do(ctx, whippy.Request{
		Method: route.Method,
		Path:   route.Path,
		Query:  whippy.EncodeParams(params),
		Body:   data,
		APIKey: call.APIKey,
	})
	if err != nil {
		log.Warn("tool call failed", "kind", whippy.KindOf(err), "status", whippy.StatusCode(err), "err", err)
		return failure(err)
	}

	log.Info("tool call succeeded", "method", route.Method, "path", route.Path)
	return success(body)
}

func (d *Dispatcher) healthCheck(ctx context.Context, log *slog.Logger, apiKey string) Response {
	if _, err := d.upstream.Do(ctx, whippy.HealthProbe(apiKey)); err != nil {
		log.Warn("health check failed", "kind", whippy.KindOf(err), "err", err)
		return unhealthy(err)
	}
	log.Info("health check passed")
	return healthy(d.upstream.BaseURL())
}

func (d *Dispatcher) reject(log *slog.Logger, err error) Response {
	log.Warn("tool call rejected", "err", err)
	return failure(err)
}

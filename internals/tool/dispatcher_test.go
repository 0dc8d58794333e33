package tool

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jadenj13/whippy-mcp/internals/whippy"
)

type fakeUpstream struct {
	calls []whippy.Request
	body  json.RawMessage
	err   error
}

func (f *fakeUpstream) Do(_ context.Context, req whippy.Request) (json.RawMessage, error) {
	f.calls = append(f.calls, req)
	return f.body, f.err
}

func (f *fakeUpstream) BaseURL() string { return "https://api.test/v1" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFake(body string) (*Dispatcher, *fakeUpstream) {
	up := &fakeUpstream{body: json.RawMessage(body)}
	return NewDispatcher(up, discardLogger()), up
}

func TestInvokeSuccess(t *testing.T) {
	d, up := newFake(`{"id":"m_1","status":"queued"}`)

	resp := d.Invoke(context.Background(), ToolCall{
		Resource: whippy.ResourceMessages,
		Action:   whippy.ActionSend,
		Data:     Object{"phone": "+1234567890", "body": "Hello!"},
		APIKey:   "k",
	})

	assert.False(t, resp.IsError)
	require.Len(t, resp.Content, 1)
	assert.Equal(t, "text", resp.Content[0].Type)
	assert.Equal(t, "✅ Success!\n```json\n{\n  \"id\": \"m_1\",\n  \"status\": \"queued\"\n}\n```", resp.Text())

	require.Len(t, up.calls, 1)
	assert.Equal(t, http.MethodPost, up.calls[0].Method)
	assert.Equal(t, "/messages", up.calls[0].Path)
	assert.Equal(t, map[string]any{"phone": "+1234567890", "body": "Hello!"}, up.calls[0].Body)
	assert.Equal(t, "k", up.calls[0].APIKey)
}

func TestInvokeRendersArraysOnePerLine(t *testing.T) {
	d, _ := newFake(`{"data":[1,2]}`)

	resp := d.Invoke(context.Background(), ToolCall{
		Resource: whippy.ResourceContacts,
		Action:   whippy.ActionList,
		APIKey:   "k",
	})
	assert.Equal(t, "✅ Success!\n```json\n{\n  \"data\": [\n    1,\n    2\n  ]\n}\n```", resp.Text())
}

func TestInvokeAddContactsExample(t *testing.T) {
	d, up := newFake(`{"ok":true}`)

	resp := d.Invoke(context.Background(), ToolCall{
		Resource:   whippy.ResourceSequences,
		Action:     whippy.ActionAddContacts,
		ResourceID: "abc123",
		Data:       Object{"contact_ids": []any{"1", "2"}},
		APIKey:     "k",
	})
	assert.False(t, resp.IsError)
	require.Len(t, up.calls, 1)
	assert.Equal(t, http.MethodPost, up.calls[0].Method)
	assert.Equal(t, "/sequences/abc123/contacts", up.calls[0].Path)
	assert.Equal(t, map[string]any{"contact_ids": []any{"1", "2"}}, up.calls[0].Body)
}

func TestInvokeMissingResourceID(t *testing.T) {
	d, up := newFake(`{}`)

	resp := d.Invoke(context.Background(), ToolCall{
		Resource: whippy.ResourceContacts,
		Action:   whippy.ActionGet,
		APIKey:   "k",
	})
	assert.True(t, resp.IsError)
	assert.Contains(t, resp.Text(), "❌ Error: ")
	assert.Contains(t, resp.Text(), "'get'")
	assert.Contains(t, resp.Text(), "'contacts'")
	assert.Empty(t, up.calls)
}

func TestInvokeUnknownResource(t *testing.T) {
	d, up := newFake(`{}`)

	resp := d.Invoke(context.Background(), ToolCall{Resource: "widgets", Action: whippy.ActionList, APIKey: "k"})
	assert.True(t, resp.IsError)
	assert.Contains(t, resp.Text(), "Unknown resource: widgets")
	assert.Empty(t, up.calls)
}

func TestInvokeInvalidJSON(t *testing.T) {
	tests := []struct {
		name string
		call ToolCall
		want string
	}{
		{
			name: "data",
			call: ToolCall{Resource: whippy.ResourceContacts, Action: whippy.ActionCreate, Data: RawJSON(`{"phone":`), APIKey: "k"},
			want: "❌ Error: Invalid JSON in data parameter: ",
		},
		{
			name: "params",
			call: ToolCall{Resource: whippy.ResourceContacts, Action: whippy.ActionList, Params: RawJSON(`{limit: 5}`), APIKey: "k"},
			want: "❌ Error: Invalid JSON in params parameter: ",
		},
		{
			name: "health still parses first",
			call: ToolCall{Resource: whippy.ResourceHealth, Action: whippy.ActionCheck, Params: RawJSON(`nope`), APIKey: "k"},
			want: "❌ Error: Invalid JSON in params parameter: ",
		},
		{
			name: "data not an object",
			call: ToolCall{Resource: whippy.ResourceContacts, Action: whippy.ActionCreate, Data: RawJSON(`[1,2]`), APIKey: "k"},
			want: "❌ Error: data parameter must be an object or JSON string, got array",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, up := newFake(`{}`)
			resp := d.Invoke(context.Background(), tt.call)
			assert.True(t, resp.IsError)
			assert.Contains(t, resp.Text(), tt.want)
			assert.Empty(t, up.calls)
		})
	}
}

func TestInvokeStringAndObjectArgumentsMatch(t *testing.T) {
	asObject, upObject := newFake(`{"id":"c_1"}`)
	asString, upString := newFake(`{"id":"c_1"}`)

	objResp := asObject.Invoke(context.Background(), ToolCall{
		Resource: whippy.ResourceContacts,
		Action:   whippy.ActionCreate,
		Data:     Object{"phone": "+1234567890", "tags": []any{"vip"}},
		Params:   Object{"limit": float64(500), "search": "john"},
		APIKey:   "k",
	})
	strResp := asString.Invoke(context.Background(), ToolCall{
		Resource: whippy.ResourceContacts,
		Action:   whippy.ActionCreate,
		Data:     RawJSON(`{"phone":"+1234567890","tags":["vip"]}`),
		Params:   RawJSON(`{"limit":500,"search":"john"}`),
		APIKey:   "k",
	})

	assert.Equal(t, objResp, strResp)
	require.Len(t, upObject.calls, 1)
	require.Len(t, upString.calls, 1)
	assert.Equal(t, upObject.calls[0], upString.calls[0])
	assert.Equal(t, "limit=100&search=john", upString.calls[0].Query.Encode())
}

func TestInvokeClampsParams(t *testing.T) {
	tests := []struct {
		name   string
		params Object
		want   string
	}{
		{"limit above ceiling", Object{"limit": float64(1000)}, "limit=100"},
		{"limit at ceiling", Object{"limit": float64(100)}, "limit=100"},
		{"limit below ceiling", Object{"limit": float64(5)}, "limit=5"},
		{"negative limit passes", Object{"limit": float64(-3)}, "limit=-3"},
		{"numeric string", Object{"limit": "250"}, "limit=100"},
		{"messages_limit", Object{"messages_limit": float64(10000)}, "messages_limit=500"},
		{"messages_limit below", Object{"messages_limit": float64(200)}, "messages_limit=200"},
		{"other keys untouched", Object{"page_size": float64(9999)}, "page_size=9999"},
		{"null limit omitted", Object{"limit": nil, "search": "x"}, "search=x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, up := newFake(`{}`)
			resp := d.Invoke(context.Background(), ToolCall{
				Resource: whippy.ResourceConversations,
				Action:   whippy.ActionList,
				Params:   tt.params,
				APIKey:   "k",
			})
			require.False(t, resp.IsError, resp.Text())
			require.Len(t, up.calls, 1)
			assert.Equal(t, tt.want, up.calls[0].Query.Encode())
		})
	}
}

func TestInvokeRejectsNonNumericLimit(t *testing.T) {
	for _, v := range []any{"abc", true, []any{1}, map[string]any{"n": 1}, "NaN"} {
		d, up := newFake(`{}`)
		resp := d.Invoke(context.Background(), ToolCall{
			Resource: whippy.ResourceMessages,
			Action:   whippy.ActionList,
			Params:   Object{"limit": v},
			APIKey:   "k",
		})
		assert.True(t, resp.IsError)
		assert.Contains(t, resp.Text(), "❌ Error: params.limit must be a number")
		assert.Empty(t, up.calls)
	}
}

func TestInvokeDoesNotMutateParams(t *testing.T) {
	d, _ := newFake(`{}`)
	params := Object{"limit": float64(1000)}

	d.Invoke(context.Background(), ToolCall{
		Resource: whippy.ResourceContacts,
		Action:   whippy.ActionList,
		Params:   params,
		APIKey:   "k",
	})
	assert.Equal(t, float64(1000), params["limit"])
}

func TestInvokeIsRepeatable(t *testing.T) {
	d, up := newFake(`{"data":[{"id":"c_1","name":"John"}]}`)
	call := ToolCall{
		Resource: whippy.ResourceContacts,
		Action:   whippy.ActionList,
		Params:   RawJSON(`{"limit":1000}`),
		APIKey:   "k",
	}

	first := d.Invoke(context.Background(), call)
	second := d.Invoke(context.Background(), call)
	assert.Equal(t, first.Text(), second.Text())
	require.Len(t, up.calls, 2)
	assert.Equal(t, up.calls[0], up.calls[1])
}

func TestInvokeFailureMarkers(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"upstream", whippy.Upstream(http.StatusNotFound, "Not Found"), "❌ API Error: HTTP 404: Not Found"},
		{"transport", whippy.Transport(errors.New("dial tcp: connection refused")), "❌ Connection Error: dial tcp: connection refused"},
		{"invalid argument", whippy.InvalidArgument(whippy.MissingKeyMessage), "❌ Error: " + whippy.MissingKeyMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &fakeUpstream{err: tt.err}
			d := NewDispatcher(up, discardLogger())
			resp := d.Invoke(context.Background(), ToolCall{Resource: whippy.ResourceCampaigns, Action: whippy.ActionList, APIKey: "k"})
			assert.True(t, resp.IsError)
			assert.Equal(t, tt.want, resp.Text())
		})
	}
}

func TestHealthCheck(t *testing.T) {
	d, up := newFake(`{"data":[]}`)

	resp := d.Invoke(context.Background(), ToolCall{Resource: whippy.ResourceHealth, Action: whippy.ActionCheck, APIKey: "k"})
	assert.False(t, resp.IsError)
	assert.Equal(t, "✅ Whippy API connection healthy!\n🔗 API Base: https://api.test/v1\n🔑 Key source: Tool parameter", resp.Text())

	require.Len(t, up.calls, 1)
	assert.Equal(t, http.MethodGet, up.calls[0].Method)
	assert.Equal(t, "/contacts", up.calls[0].Path)
	assert.Equal(t, "limit=1", up.calls[0].Query.Encode())
}

func TestHealthCheckFailure(t *testing.T) {
	up := &fakeUpstream{err: whippy.Upstream(http.StatusUnauthorized, "Unauthorized")}
	d := NewDispatcher(up, discardLogger())

	resp := d.Invoke(context.Background(), ToolCall{Resource: whippy.ResourceHealth, Action: whippy.ActionCheck, APIKey: "bad"})
	assert.True(t, resp.IsError)
	assert.Equal(t, "❌ Health check failed (status 401): HTTP 401: Unauthorized", resp.Text())
	assert.Len(t, up.calls, 1)
}

func TestHealthOtherActionsRejected(t *testing.T) {
	d, up := newFake(`{}`)
	resp := d.Invoke(context.Background(), ToolCall{Resource: whippy.ResourceHealth, Action: whippy.ActionList, APIKey: "k"})
	assert.True(t, resp.IsError)
	assert.Contains(t, resp.Text(), "Invalid action 'list' for resource 'health'")
	assert.Empty(t, up.calls)
}

// The tests below run against a real client and an httptest upstream.

func newHTTPDispatcher(t *testing.T, status int, reply string) (*Dispatcher, *atomic.Int32, *atomic.Value) {
	t.Helper()
	var calls atomic.Int32
	var lastURL atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		lastURL.Store(r.Method + " " + r.URL.RequestURI())
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return NewDispatcher(whippy.NewClient(srv.URL), discardLogger()), &calls, &lastURL
}

func TestInvokeOverHTTPNotFound(t *testing.T) {
	d, calls, last := newHTTPDispatcher(t, http.StatusNotFound, "Not Found")

	resp := d.Invoke(context.Background(), ToolCall{
		Resource:   whippy.ResourceCampaigns,
		Action:     whippy.ActionGet,
		ResourceID: "camp_1",
		APIKey:     "k",
	})
	assert.True(t, resp.IsError)
	assert.Contains(t, resp.Text(), "HTTP 404: Not Found")
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, "GET /campaigns/camp_1", last.Load())
}

func TestInvokeOverHTTPMissingKey(t *testing.T) {
	d, calls, _ := newHTTPDispatcher(t, http.StatusOK, `{}`)

	for _, call := range []ToolCall{
		{Resource: whippy.ResourceContacts, Action: whippy.ActionList},
		{Resource: whippy.ResourceMessages, Action: whippy.ActionSend, Data: Object{"body": "hi"}},
		{Resource: whippy.ResourceSequences, Action: whippy.ActionAddContacts, ResourceID: "s", Data: Object{}},
	} {
		resp := d.Invoke(context.Background(), call)
		assert.True(t, resp.IsError)
		assert.Equal(t, "❌ Error: "+whippy.MissingKeyMessage, resp.Text())
	}
	assert.Zero(t, calls.Load())
}

func TestHealthCheckOverHTTP(t *testing.T) {
	d, calls, last := newHTTPDispatcher(t, http.StatusOK, `{"data":[]}`)

	resp := d.Invoke(context.Background(), ToolCall{Resource: whippy.ResourceHealth, Action: whippy.ActionCheck, APIKey: "k"})
	assert.False(t, resp.IsError)
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, "GET /contacts?limit=1", last.Load())
}

func TestHealthCheckWithoutKey(t *testing.T) {
	d, calls, _ := newHTTPDispatcher(t, http.StatusOK, `{}`)

	resp := d.Invoke(context.Background(), ToolCall{Resource: whippy.ResourceHealth, Action: whippy.ActionCheck})
	assert.True(t, resp.IsError)
	assert.Equal(t, "❌ Health check failed: "+whippy.MissingKeyMessage, resp.Text())
	assert.Zero(t, calls.Load())
}

func TestInvokeArguments(t *testing.T) {
	d, up := newFake(`{"id":"conv_123"}`)

	resp := d.InvokeArguments(context.Background(), map[string]any{
		"resource":    "conversations",
		"action":      "get",
		"resource_id": "conv_123",
		"params":      `{"messages_limit": 9000}`,
		"api_key":     "k",
	})
	assert.False(t, resp.IsError, resp.Text())
	require.Len(t, up.calls, 1)
	assert.Equal(t, "/conversations/conv_123", up.calls[0].Path)
	assert.Equal(t, "messages_limit=500", up.calls[0].Query.Encode())
}

func TestInvokeArgumentsRejectsBadShapes(t *testing.T) {
	d, up := newFake(`{}`)

	resp := d.InvokeArguments(context.Background(), map[string]any{"resource": "contacts"})
	assert.Equal(t, "❌ Error: action is required", resp.Text())

	resp = d.InvokeArguments(context.Background(), map[string]any{"resource": "contacts", "action": "list", "params": float64(3)})
	assert.Equal(t, "❌ Error: params parameter must be an object or JSON string, got number", resp.Text())

	assert.Empty(t, up.calls)
}

package tool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/pretty"

	"github.com/jadenj13/whippy-mcp/internals/whippy"
)

type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Response is what a tool call hands back to the protocol layer. It always
// holds exactly one text block.
type Response struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

func (r Response) Text() string {
	var sb strings.Builder
	for _, c := range r.Content {
		sb.WriteString(c.Text)
	}
	return sb.String()
}

// Width 0 keeps every array element on its own line.
var prettyOptions = &pretty.Options{Indent: "  "}

func textResponse(text string, isError bool) Response {
	return Response{
		Content: []ContentBlock{{Type: "text", Text: text}},
		IsError: isError,
	}
}

func success(body json.RawMessage) Response {
	formatted := bytes.TrimRight(pretty.PrettyOptions(body, prettyOptions), "\n")
	return textResponse("✅ Success!\n```json\n"+string(formatted)+"\n```", false)
}

func failure(err error) Response {
	switch whippy.KindOf(err) {
	case whippy.KindInvalidArgument:
		return textResponse("❌ Error: "+err.Error(), true)
	case whippy.KindUpstream:
		return textResponse("❌ API Error: "+err.Error(), true)
	default:
		return textResponse("❌ Connection Error: "+err.Error(), true)
	}
}

func healthy(baseURL string) Response {
	return textResponse(fmt.Sprintf(
		"✅ Whippy API connection healthy!\n🔗 API Base: %s\n🔑 Key source: Tool parameter", baseURL), false)
}

func unhealthy(err error) Response {
	if code := whippy.StatusCode(err); code != 0 {
		return textResponse(fmt.Sprintf("❌ Health check failed (status %d): %s", code, err.Error()), true)
	}
	return textResponse("❌ Health check failed: "+err.Error(), true)
}

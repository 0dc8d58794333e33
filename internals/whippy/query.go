package whippy

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
	"github.com/spf13/cast"
)

// EncodeParams turns free-form tool params into a query string. Nil values
// are dropped; everything else is stringified without further validation.
func EncodeParams(params map[string]any) url.Values {
	q := url.Values{}
	for key, v := range params {
		if v == nil {
			continue
		}
		q.Add(key, stringify(v))
	}
	return q
}

func stringify(v any) string {
	switch t := v.(type) {
	case []any:
		parts := make([]string, len(t))
		for i, el := range t {
			if el != nil {
				parts[i] = stringify(el)
			}
		}
		return strings.Join(parts, ",")
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}

type probeQuery struct {
	Limit int `url:"limit"`
}

// HealthProbe is the single request used to check that the API is
// reachable and that apiKey is accepted.
func HealthProbe(apiKey string) Request {
	q, err := query.Values(probeQuery{Limit: 1})
	if err != nil {
		q = url.Values{"limit": {"1"}}
	}
	return Request{
		Method: http.MethodGet,
		Path:   "/contacts",
		Query:  q,
		APIKey: apiKey,
	}
}

package whippy

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
)

type Resource string

const (
	ResourceContacts      Resource = "contacts"
	ResourceMessages      Resource = "messages"
	ResourceConversations Resource = "conversations"
	ResourceCampaigns     Resource = "campaigns"
	ResourceSequences     Resource = "sequences"
	ResourceHealth        Resource = "health"
)

// Resources lists every accepted resource, in the order they are reported to callers.
var Resources = []Resource{
	ResourceContacts,
	ResourceMessages,
	ResourceConversations,
	ResourceCampaigns,
	ResourceSequences,
	ResourceHealth,
}

type Action string

const (
	ActionCreate      Action = "create"
	ActionList        Action = "list"
	ActionGet         Action = "get"
	ActionSend        Action = "send"
	ActionAddContacts Action = "add_contacts"
	ActionCheck       Action = "check"
)

var Actions = []Action{
	ActionCreate,
	ActionList,
	ActionGet,
	ActionSend,
	ActionAddContacts,
	ActionCheck,
}

// Route is the HTTP method and path a tool call resolves to.
type Route struct {
	Method string
	Path   string
}

type routeKey struct {
	resource Resource
	action   Action
}

// routeDef describes one row of the routing table. prefix and suffix
// surround the resource id when needsID is set.
type routeDef struct {
	method  string
	prefix  string
	suffix  string
	needsID bool
}

var routes = map[routeKey]routeDef{
	{ResourceContacts, ActionCreate}:       {method: http.MethodPost, prefix: "/contacts"},
	{ResourceContacts, ActionList}:         {method: http.MethodGet, prefix: "/contacts"},
	{ResourceContacts, ActionGet}:          {method: http.MethodGet, prefix: "/contacts/", needsID: true},
	{ResourceMessages, ActionSend}:         {method: http.MethodPost, prefix: "/messages"},
	{ResourceMessages, ActionList}:         {method: http.MethodGet, prefix: "/messages"},
	{ResourceConversations, ActionList}:    {method: http.MethodGet, prefix: "/conversations"},
	{ResourceConversations, ActionGet}:     {method: http.MethodGet, prefix: "/conversations/", needsID: true},
	{ResourceCampaigns, ActionCreate}:      {method: http.MethodPost, prefix: "/campaigns"},
	{ResourceCampaigns, ActionList}:        {method: http.MethodGet, prefix: "/campaigns"},
	{ResourceCampaigns, ActionGet}:         {method: http.MethodGet, prefix: "/campaigns/", needsID: true},
	{ResourceSequences, ActionList}:        {method: http.MethodGet, prefix: "/sequences"},
	{ResourceSequences, ActionGet}:         {method: http.MethodGet, prefix: "/sequences/", needsID: true},
	{ResourceSequences, ActionAddContacts}: {method: http.MethodPost, prefix: "/sequences/", suffix: "/contacts", needsID: true},
}

// Translate maps a resource/action pair to its route. The health resource
// never has a route of its own; callers handle health/check before
// translating.
func Translate(resource Resource, action Action, resourceID string) (Route, error) {
	if !knownResource(resource) {
		return Route{}, InvalidArgument("Unknown resource: %s. Available resources: %s", resource, joinResources())
	}
	rs, ok := routes[routeKey{resource, action}]
	if !ok {
		return Route{}, InvalidArgument("Invalid action '%s' for resource '%s'", action, resource)
	}
	if !rs.needsID {
		return Route{Method: rs.method, Path: rs.prefix}, nil
	}
	if resourceID == "" {
		return Route{}, InvalidArgument("Invalid action '%s' for resource '%s': resource_id is required", action, resource)
	}
	return Route{
		Method: rs.method,
		Path:   rs.prefix + url.PathEscape(resourceID) + rs.suffix,
	}, nil
}

// TableEntry is one row of the routing table, with the id placeholder
// rendered as "{id}".
type TableEntry struct {
	Resource  Resource
	Action    Action
	RequireID bool
	Method    string
	Path      string
}

// Table enumerates the routing table sorted by resource then action.
func Table() []TableEntry {
	out := make([]TableEntry, 0, len(routes))
	for k, rs := range routes {
		path := rs.prefix
		if rs.needsID {
			path += "{id}" + rs.suffix
		}
		out = append(out, TableEntry{
			Resource:  k.resource,
			Action:    k.action,
			RequireID: rs.needsID,
			Method:    rs.method,
			Path:      path,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Resource != out[j].Resource {
			return out[i].Resource < out[j].Resource
		}
		return out[i].Action < out[j].Action
	})
	return out
}

func knownResource(r Resource) bool {
	for _, known := range Resources {
		if r == known {
			return true
		}
	}
	return false
}

func joinResources() string {
	names := make([]string, len(Resources))
	for i, r := range Resources {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

package client

import (
	"fmt"
	"sort"
	"strings"
)

// Params is a bag of query parameters with scalar values
type Params map[string]any

// Clone returns a shallow copy; a nil receiver yields an empty bag
func (p Params) Clone() Params {
	out := make(Params, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Query renders the bag as string query values. Nil values are skipped.
func (p Params) Query() map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		if v == nil {
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}

// Key is a stable textual form of the bag, used for cache keys
func (p Params) Key() string {
	query := p.Query()
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+query[k])
	}
	return strings.Join(parts, "&")
}

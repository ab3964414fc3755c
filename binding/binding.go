// Package binding matches caller parameters against a template's placeholders.
package binding

import (
	"net/url"
	"sort"
)

// Params maps a parameter name to a single value.
type Params map[string]string

// FromValues collapses decoded query-string values into Params, keeping the
// first value of every key. Keys listed in skip are left out.
func FromValues(values url.Values, skip ...string) Params {
	params := make(Params, len(values))
NEXT:
	for k, v := range values {
		for _, s := range skip {
			if k == s {
				continue NEXT
			}
		}
		if len(v) == 0 {
			params[k] = ""
			continue
		}
		params[k] = v[0]
	}
	return params
}

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bind returns the arguments for placeholders, in placeholder order, when
// every placeholder has a parameter. Only key presence counts; an empty value
// is a value. ok is false if any placeholder is missing, and no partial
// arguments are returned.
func Bind(placeholders []string, params Params) (args []any, ok bool) {
	args = make([]any, len(placeholders))
	for i, name := range placeholders {
		v, has := params[name]
		if !has {
			return nil, false
		}
		args[i] = v
	}
	return args, true
}

// Missing returns the distinct placeholder names with no parameter, in
// placeholder order.
func Missing(placeholders []string, params Params) []string {
	var missing []string
	seen := make(map[string]struct{})
	for _, name := range placeholders {
		if _, has := params[name]; has {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		missing = append(missing, name)
	}
	return missing
}

// Package queryspec implements the canonical HH vacancy-search query string:
// a strict key whitelist, sorted for a stable serialized form. Any future
// search field must be added here or it is silently dropped on purpose.
package queryspec

import (
	"net/url"
	"sort"
	"strings"
)

// AllowedKeys is the fixed search vocabulary. page and per_page are
// deliberately absent: the HH client controls pagination, never the caller.
var AllowedKeys = map[string]bool{
	"text":             true,
	"area":             true,
	"professional_role": true,
	"specialization":   true,
	"experience":       true,
	"employment":       true,
	"schedule":         true,
	"work_format":      true,
	"only_with_salary": true,
	"salary":           true,
	"currency":         true,
	"search_field":     true,
	"label":            true,
	"order_by":         true,
}

// Normalize strips unknown keys and empty values, then serializes the
// remainder with alphabetically sorted keys and sorted multi-values.
// normalize(normalize(qs)) == normalize(qs) for any input.
func Normalize(qs string) string {
	values, err := url.ParseQuery(qs)
	if err != nil {
		values = url.Values{}
	}
	return NormalizeValues(values)
}

// NormalizeValues is the url.Values counterpart of Normalize, used when the
// caller already has structured fields rather than a raw query string.
func NormalizeValues(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if !AllowedKeys[k] {
			continue
		}
		filtered := filterEmpty(values[k])
		if len(filtered) == 0 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := url.Values{}
	for _, k := range keys {
		vals := filterEmpty(values[k])
		sort.Strings(vals)
		for _, v := range vals {
			out.Add(k, v)
		}
	}
	return out.Encode()
}

// WithCursor appends date_from and order_by=publication_time to a canonical
// query string, overriding any prior order_by. date_from is RFC3339.
func WithCursor(canonical, dateFromRFC3339 string) string {
	values, _ := url.ParseQuery(canonical)
	if values == nil {
		values = url.Values{}
	}
	values.Set("date_from", dateFromRFC3339)
	values.Set("order_by", "publication_time")
	return values.Encode()
}

func filterEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

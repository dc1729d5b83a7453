package codec

import (
	"net/url"
	"strings"
)

// Fields holds decoded key/value pairs from a query string or a form body.
//
// Values are either a string, a []string (array fields) or, for multipart
// file parts, a *Blob or []any.
type Fields map[string]any

// Get returns the scalar value stored for key. For array fields the last
// element is returned, so repeated query keys read as "last wins".
// Returns an empty string when the key is missing or not textual.
func (f Fields) Get(key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[len(v)-1]
		}
	case []any:
		if len(v) > 0 {
			if s, ok := v[len(v)-1].(string); ok {
				return s
			}
		}
	}

	return ""
}

// Values returns every textual value stored for key, in arrival order.
func (f Fields) Values(key string) []string {
	switch v := f[key].(type) {
	case string:
		return []string{v}
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}

	return nil
}

// Has reports whether key is present.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// add applies the accumulation rules shared by query strings and forms:
// a name containing "[]" is an explicit array with "[]" stripped, a name
// repeated without "[]" is promoted to an array on its second occurrence,
// anything else is a scalar.
func (f Fields) add(name string, value any) {
	isArray := strings.Contains(name, "[]")
	key := name
	if isArray {
		key = strings.Replace(name, "[]", "", 1)
	}

	existing, has := f[key]

	switch {
	case isArray && !has:
		f[key] = appendValue(nil, value)
	case isArray, has:
		f[key] = appendValue(existing, value)
	default:
		f[key] = value
	}
}

// appendValue appends value to the array held in existing, promoting a
// scalar to an array first. String-only arrays stay []string.
func appendValue(existing, value any) any {
	s, isString := value.(string)

	switch cur := existing.(type) {
	case nil:
		if isString {
			return []string{s}
		}
		return []any{value}
	case []string:
		if isString {
			return append(cur, s)
		}
		out := make([]any, 0, len(cur)+1)
		for _, v := range cur {
			out = append(out, v)
		}
		return append(out, value)
	case []any:
		return append(cur, value)
	case string:
		if isString {
			return []string{cur, s}
		}
		return []any{cur, value}
	default:
		return []any{cur, value}
	}
}

// ParseQuery decodes a raw query string into Fields. A leading "?" is
// ignored. Pairs that fail to unescape are kept verbatim.
func ParseQuery(raw string) Fields {
	fields := make(Fields)
	raw = strings.TrimPrefix(raw, "?")

	for _, pair := range splitPairs(raw) {
		name, value := decodePair(pair)
		fields.add(name, value)
	}

	return fields
}

// splitPairs splits a urlencoded payload on '&', dropping empty pairs.
func splitPairs(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, "&")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

func decodePair(pair string) (string, string) {
	name, value, _ := strings.Cut(pair, "=")

	if n, err := url.QueryUnescape(name); err == nil {
		name = n
	}

	if v, err := url.QueryUnescape(value); err == nil {
		value = v
	}

	return name, value
}

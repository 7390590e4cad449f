package payments

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Envelope is a loosely typed processor response. IntaSend does not keep a
// stable shape between the checkout and status endpoints, or between sandbox
// and live, so responses are kept as decoded JSON objects.
type Envelope map[string]any

func DecodeEnvelope(body []byte) (Envelope, error) {
	env := Envelope{}
	if len(strings.TrimSpace(string(body))) == 0 {
		return env, nil
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode processor response: %w", err)
	}
	return env, nil
}

// String returns the value under key rendered as a string. Numbers are
// formatted without exponent; objects, arrays and nulls yield "".
func (e Envelope) String(key string) string {
	v, ok := e[key]
	if !ok {
		return ""
	}
	return scalarString(v)
}

// Nested returns the object stored under key, or nil.
func (e Envelope) Nested(key string) Envelope {
	switch v := e[key].(type) {
	case map[string]any:
		return Envelope(v)
	case Envelope:
		return v
	}
	return nil
}

func (e Envelope) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// Lookup returns the first non-empty value for key, checking the top level
// before the nested invoice object.
func (e Envelope) Lookup(key string) string {
	if s := strings.TrimSpace(e.String(key)); s != "" {
		return s
	}
	if inv := e.Nested("invoice"); inv != nil {
		return strings.TrimSpace(inv.String(key))
	}
	return ""
}

// StringValues lists every string-typed value at the top level and in the
// nested invoice object, in key order, top level first.
func (e Envelope) StringValues() []string {
	values := stringValues(e)
	if inv := e.Nested("invoice"); inv != nil {
		values = append(values, stringValues(inv)...)
	}
	return values
}

func stringValues(e Envelope) []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []string
	for _, k := range keys {
		if s, ok := e[k].(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// ErrorMessage extracts the processor's own error text, if any.
func (e Envelope) ErrorMessage() string {
	if errs, ok := e["errors"]; ok && errs != nil {
		b, err := json.Marshal(errs)
		if err == nil {
			return string(b)
		}
	}
	for _, key := range []string{"message", "detail", "error"} {
		if s := e.String(key); s != "" {
			return s
		}
	}
	return ""
}

package api

import (
	"bytes"
	"encoding/json"
)

// unwrapData mirrors "body.data || body": a truthy "data" member replaces
// the body.
func unwrapData(raw json.RawMessage) json.RawMessage {
	if v, ok := member(raw, "data"); ok && truthy(v) {
		return v
	}
	return raw
}

// member returns the named member of a JSON object.
func member(raw json.RawMessage, key string) (json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	v, ok := obj[key]
	return v, ok
}

// path walks nested object members.
func path(raw json.RawMessage, keys ...string) (json.RawMessage, bool) {
	cur := raw
	for _, k := range keys {
		v, ok := member(cur, k)
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// firstArray returns the first of paths that resolves to a non-empty JSON
// array, mirroring "a?.b || c?.d || e" over list members.
func firstArray(raw json.RawMessage, paths ...[]string) (json.RawMessage, bool) {
	for _, p := range paths {
		v, ok := path(raw, p...)
		if ok && isArray(v) && truthy(v) {
			return v, true
		}
	}
	return nil, false
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// truthy reports whether a JSON value is truthy in the legacy client's
// sense. Empty arrays and objects count as truthy there, but an empty list
// never carries data so it is treated as absent.
func truthy(raw json.RawMessage) bool {
	switch s := string(bytes.TrimSpace(raw)); s {
	case "", "null", "false", "0", `""`, "[]":
		return false
	default:
		return true
	}
}

// Package envelope strips the callback-style text framing the upstream feed
// hosts wrap around JSON bodies. The same provider family uses different
// callback names per endpoint (angular.callbacks._N on one feed,
// jsonp_<timestamp>_<n> on another), so the decoder stays provider-agnostic
// and tries every known shape in order.
package envelope

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoPayload is returned when no wrapper convention matches and the body
// itself is not valid JSON.
var ErrNoPayload = errors.New("envelope: no recognized JSON payload")

var (
	// angular.callbacks._4({...})
	angularRe = regexp.MustCompile(`(?s)^\s*angular\.callbacks\._\d+\s*\((.*)\)\s*;?\s*$`)
	// jsonp_1769465924711_51167({...}), loadData({...}), any identifier call
	identRe = regexp.MustCompile(`(?s)^\s*[A-Za-z_$][A-Za-z0-9_$.]*\s*\((.*)\)\s*;?\s*$`)
)

// Decode extracts the JSON body from a raw feed response. Candidates are
// tried in order — angular callback, generic identifier call, bare
// parentheses, then the body as-is — and the first syntactically valid JSON
// wins.
func Decode(raw []byte) (json.RawMessage, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, ErrNoPayload
	}

	for _, candidate := range candidates(text) {
		if json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), nil
		}
	}

	return nil, ErrNoPayload
}

// DecodeValue decodes the payload into an untyped structure, the form the
// league parsers navigate.
func DecodeValue(raw []byte) (interface{}, error) {
	body, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeObject decodes the payload and requires a JSON object at the top
// level, the shape every game-summary feed returns.
func DecodeObject(raw []byte) (map[string]interface{}, error) {
	v, err := DecodeValue(raw)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, ErrNoPayload
	}
	return obj, nil
}

func candidates(text string) []string {
	var out []string

	if m := angularRe.FindStringSubmatch(text); m != nil {
		out = append(out, m[1])
	}
	if m := identRe.FindStringSubmatch(text); m != nil {
		out = append(out, m[1])
	}
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		out = append(out, text[1:len(text)-1])
	}
	return append(out, text)
}

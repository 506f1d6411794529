package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// AttrJSON decodes a JSON object carried in an element attribute. Some
// boards embed the full listing payload in a data attribute instead of
// rendering it into markup.
func AttrJSON(sel *goquery.Selection, attr string) (map[string]any, error) {
	raw, ok := sel.Attr(attr)
	if !ok || raw == "" {
		return nil, fmt.Errorf("attribute %q missing or empty", attr)
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("decoding %q: %w", attr, err)
	}
	return obj, nil
}

// NestedJSON decodes a JSON object held as a string value inside another
// decoded object, the two-layer embedding pattern.
func NestedJSON(outer map[string]any, key string) (map[string]any, error) {
	raw, ok := outer[key].(string)
	if !ok {
		return nil, fmt.Errorf("key %q is not an embedded JSON string", key)
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("decoding nested %q: %w", key, err)
	}
	return obj, nil
}

// JSONString walks a decoded JSON object along path and returns the value
// as a string. Numbers are formatted without an exponent; missing keys and
// non-scalar leaves yield "".
func JSONString(obj map[string]any, path ...string) string {
	var cur any = obj
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur, ok = m[key]
		if !ok {
			return ""
		}
	}
	switch v := cur.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return ""
	}
}

// ScriptJSON extracts a JSON object assigned inline in a script, given the
// assignment prefix (e.g. `window.appData["jobs"]=`). It balances braces
// from the first "{" after the marker, skipping over string literals.
func ScriptJSON(body, marker string) ([]byte, error) {
	idx := strings.Index(body, marker)
	if idx < 0 {
		return nil, fmt.Errorf("marker %q not found", marker)
	}
	rest := body[idx+len(marker):]
	start := strings.IndexByte(rest, '{')
	if start < 0 {
		return nil, fmt.Errorf("no object after marker %q", marker)
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(rest); i++ {
		c := rest[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return []byte(rest[start : i+1]), nil
			}
		}
	}
	return nil, fmt.Errorf("unbalanced object after marker %q", marker)
}

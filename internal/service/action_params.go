// internal/service/action_params.go
package service

import "strconv"

// Rule action params come out of jsonb as []any with wildly inconsistent
// shapes across rule versions: bare numbers, numeric strings, or objects
// like {"id": 3} and {"blob_id": 7}. These helpers normalize them.

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

func firstStringParam(params []any) string {
	if len(params) == 0 {
		return ""
	}
	s, _ := params[0].(string)
	return s
}

// firstIDParam reads the leading param as an id, accepting both the bare
// form and the {"id": n} object form.
func firstIDParam(params []any) (int, bool) {
	if len(params) == 0 {
		return 0, false
	}
	if obj, ok := params[0].(map[string]any); ok {
		return asInt(obj["id"])
	}
	return asInt(params[0])
}

func stringParams(params []any) []string {
	out := []string{}
	for _, p := range params {
		if s, ok := p.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// blobIDParams collects attachment blob ids, deduplicated, from the mixed
// shapes send_attachment params arrive in.
func blobIDParams(params []any) []int {
	seen := map[int]bool{}
	out := []int{}
	for _, p := range params {
		var id int
		var ok bool
		if obj, isObj := p.(map[string]any); isObj {
			id, ok = asInt(obj["blob_id"])
		} else {
			id, ok = asInt(p)
		}
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

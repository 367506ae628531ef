package device

import "encoding/json"

// Parameter maps come straight from decoded model JSON, so numbers may arrive
// as float64, json.Number, or int depending on the decoder. Extra parameters
// a device does not know are ignored.

func stringParam(params map[string]any, key string) string {
	v, _ := params[key].(string)
	return v
}

func numberParam(params map[string]any, key string) (float64, bool) {
	switch v := params[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package pipeline

import "fmt"

// setGenerationDefault applies one pipeline-option key onto params. It returns
// false when the key is not a generation parameter, leaving runtime-specific
// keys to the caller.
func setGenerationDefault(p *CallParams, key string, v any) (bool, error) {
	switch key {
	case "max_new_tokens":
		n, ok := asInt(v)
		if !ok {
			return true, badOption(key, "integer")
		}
		p.MaxNewTokens = n
	case "temperature":
		f, ok := asFloat32(v)
		if !ok {
			return true, badOption(key, "number")
		}
		p.Temperature = f
	case "top_p":
		f, ok := asFloat32(v)
		if !ok {
			return true, badOption(key, "number")
		}
		p.TopP = f
	case "top_k":
		n, ok := asInt(v)
		if !ok {
			return true, badOption(key, "integer")
		}
		p.TopK = n
	case "seed":
		n, ok := asInt(v)
		if !ok {
			return true, badOption(key, "integer")
		}
		p.Seed = n
	case "repeat_penalty":
		f, ok := asFloat32(v)
		if !ok {
			return true, badOption(key, "number")
		}
		p.RepeatPenalty = f
	case "stop":
		ss, ok := asStringSlice(v)
		if !ok {
			return true, badOption(key, "string list")
		}
		p.Stop = ss
	case "echo":
		b, ok := v.(bool)
		if !ok {
			return true, badOption(key, "boolean")
		}
		p.Echo = b
	default:
		return false, nil
	}
	return true, nil
}

func badOption(key, want string) error {
	return fmt.Errorf("pipeline option %q must be a %s", key, want)
}

// asInt tolerates the numeric types JSON and config decoders produce.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

func asFloat32(v any) (float32, bool) {
	switch n := v.(type) {
	case float32:
		return n, true
	case float64:
		return float32(n), true
	case int:
		return float32(n), true
	case int64:
		return float32(n), true
	}
	return 0, false
}

func asStringSlice(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return append([]string(nil), s...), true
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			str, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	}
	return nil, false
}

// helpers
func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func zn(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func zf(v, def float32) float32 {
	if v > 0 {
		return v
	}
	return def
}

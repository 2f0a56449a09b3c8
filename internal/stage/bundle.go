package stage

import (
	"encoding/json"
	"math"
)

// Bundle is a key→value map used for scene arguments and snapshots.
// Getters tolerate the numeric types produced by JSON decoding, so a bundle
// read back from storage answers the same as the one that was saved.
type Bundle map[string]any

// Int64 returns the integer at key, or def when absent or not an integer.
func (b Bundle) Int64(key string, def int64) int64 {
	switch v := b[key].(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float64:
		if v == math.Trunc(v) {
			return int64(v)
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
	}
	return def
}

// Int is Int64 narrowed to int.
func (b Bundle) Int(key string, def int) int {
	return int(b.Int64(key, int64(def)))
}

// String returns the string at key; ok is false when absent or nil.
func (b Bundle) String(key string) (s string, ok bool) {
	s, ok = b[key].(string)
	return s, ok
}

// Bool returns the bool at key, or def.
func (b Bundle) Bool(key string, def bool) bool {
	if v, ok := b[key].(bool); ok {
		return v
	}
	return def
}

// Clone returns a shallow copy.
func (b Bundle) Clone() Bundle {
	out := make(Bundle, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

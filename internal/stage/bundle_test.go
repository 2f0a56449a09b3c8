package stage

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleGetters(t *testing.T) {
	b := Bundle{
		"int":    7,
		"int64":  int64(1 << 40),
		"float":  float64(3),
		"frac":   2.5,
		"str":    "x",
		"nilstr": nil,
		"bool":   true,
	}

	assert.EqualValues(t, 7, b.Int64("int", -1))
	assert.EqualValues(t, 1<<40, b.Int64("int64", -1))
	assert.Equal(t, 3, b.Int("float", -1))
	assert.Equal(t, -1, b.Int("frac", -1))
	assert.Equal(t, -1, b.Int("missing", -1))
	assert.Equal(t, -1, b.Int("str", -1))

	s, ok := b.String("str")
	assert.True(t, ok)
	assert.Equal(t, "x", s)
	_, ok = b.String("nilstr")
	assert.False(t, ok)
	_, ok = b.String("missing")
	assert.False(t, ok)

	assert.True(t, b.Bool("bool", false))
	assert.True(t, b.Bool("missing", true))
}

func TestBundleSurvivesJSON(t *testing.T) {
	orig := Bundle{"gid": int64(9007199254740993), "page": 2, "valid": false, "error": "Timeout"}

	raw, err := json.Marshal(orig)
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var back Bundle
	require.NoError(t, dec.Decode(&back))

	assert.Equal(t, orig.Int64("gid", -1), back.Int64("gid", -1))
	assert.Equal(t, 2, back.Int("page", -1))
	assert.False(t, back.Bool("valid", true))
	e, _ := back.String("error")
	assert.Equal(t, "Timeout", e)
}

func TestBundleClone(t *testing.T) {
	a := Bundle{"k": 1}
	b := a.Clone()
	b["k"] = 2
	assert.Equal(t, 1, a.Int("k", 0))
}

package apistub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGTokenKnownPage(t *testing.T) {
	s := New()
	s.Add(Page{Gid: 5, PToken: "abc", Page: 3}, "tok123")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, Path,
		strings.NewReader(`{"method":"gtoken","pagelist":[[5,"abc",3]]}`))
	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tokenlist":[{"gid":5,"token":"tok123"}]}`, rec.Body.String())
	assert.Equal(t, 1, s.Calls())
}

func TestGTokenUnknownPage(t *testing.T) {
	s := New()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, Path,
		strings.NewReader(`{"method":"gtoken","pagelist":[[5,"abc",3]]}`))
	s.Router().ServeHTTP(rec, req)

	assert.JSONEq(t, `{"error":"Key mismatch"}`, rec.Body.String())
}

func TestFailWith(t *testing.T) {
	s := New()
	s.FailWith(http.StatusServiceUnavailable)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, Path, strings.NewReader(`{}`))
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRejectsGet(t *testing.T) {
	rec := httptest.NewRecorder()
	New().Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, Path, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestParseEntry(t *testing.T) {
	p, token, err := ParseEntry("618395/0439fa3666/1=abc123")
	require.NoError(t, err)
	assert.Equal(t, Page{Gid: 618395, PToken: "0439fa3666", Page: 1}, p)
	assert.Equal(t, "abc123", token)

	for _, bad := range []string{"", "1/a/1", "1/a/1=", "x/a/1=t", "1//1=t", "1/a/x=t", "1/a=t"} {
		_, _, err := ParseEntry(bad)
		assert.Error(t, err, bad)
	}
}

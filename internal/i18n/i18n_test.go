package i18n

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Dark-debug/gtoken/internal/ehclient"
)

func TestTextEnglish(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)
	assert.Equal(t, "Something went wrong", tr.Text(ErrorSomethingWrongHappened))
}

func TestTextChineseWithFallback(t *testing.T) {
	tr := MustNew("zh-Hans")
	assert.Equal(t, "出错了", tr.Text(ErrorSomethingWrongHappened))
	assert.Equal(t, "no_such_message", tr.Text("no_such_message"))
}

func TestUnknownLocaleFallsBackToEnglish(t *testing.T) {
	tr := MustNew("not a locale")
	assert.Equal(t, "Timeout", tr.Text(ErrorTimeout))
}

func TestErrorString(t *testing.T) {
	tr := MustNew("en")

	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"api", &ehclient.APIError{Method: "gtoken", Message: "Key mismatch"}, "Key mismatch"},
		{"status", fmt.Errorf("wrapped: %w", &ehclient.StatusError{Code: 503}), "Server returned HTTP 503"},
		{"parse", fmt.Errorf("x: %w", ehclient.ErrParse), "Parse error"},
		{"deadline", &url.Error{Op: "Post", URL: "u", Err: context.DeadlineExceeded}, "Timeout"},
		{"dns", &url.Error{Op: "Post", URL: "u", Err: &net.DNSError{Err: "no such host", Name: "x"}}, "Can't resolve host"},
		{"refused", &url.Error{Op: "Post", URL: "u", Err: &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}}, "Connection refused"},
		{"other url", &url.Error{Op: "Post", URL: "u", Err: errors.New("eof")}, "Network error"},
		{"other", errors.New("boom"), "Unknown error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tr.ErrorString(tc.err))
		})
	}
}

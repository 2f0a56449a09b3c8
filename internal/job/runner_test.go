package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Mr-Dark-debug/gtoken/internal/logging"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeResolver struct {
	mu    sync.Mutex
	calls []Request
	token string
	err   error
	block bool
}

func (f *fakeResolver) GalleryToken(ctx context.Context, gid int64, ptoken string, page int) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Request{Method: MethodGalleryToken, Gid: gid, PToken: ptoken, Page: page})
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.token, f.err
}

func TestSubmitSuccess(t *testing.T) {
	api := &fakeResolver{token: "tok123"}
	r := NewRunner(context.Background(), api, time.Second, logging.Discard())

	req := Request{Method: MethodGalleryToken, Gid: 5, PToken: "abc", Page: 2}
	owner := Owner{StageID: 1, SceneID: "scene-a"}
	cmd := r.Submit(req, owner)

	assert.EqualValues(t, 1, r.Submitted())
	msg, ok := cmd().(ResultMsg)
	require.True(t, ok)

	assert.Equal(t, owner, msg.Owner)
	assert.Equal(t, req, msg.Request)
	assert.Equal(t, Success("tok123"), msg.Result)
	assert.Equal(t, []Request{req}, api.calls)
	assert.EqualValues(t, 0, r.InFlight())
}

func TestSubmitFailure(t *testing.T) {
	boom := errors.New("boom")
	r := NewRunner(context.Background(), &fakeResolver{err: boom}, time.Second, logging.Discard())

	msg := r.Submit(Request{Method: MethodGalleryToken, Gid: 1, PToken: "x"}, Owner{})().(ResultMsg)

	assert.Equal(t, OutcomeFailure, msg.Result.Outcome)
	assert.ErrorIs(t, msg.Result.Err, boom)
}

func TestSubmitTimeoutIsFailure(t *testing.T) {
	r := NewRunner(context.Background(), &fakeResolver{block: true}, 20*time.Millisecond, logging.Discard())

	msg := r.Submit(Request{Method: MethodGalleryToken, Gid: 1, PToken: "x"}, Owner{})().(ResultMsg)

	assert.Equal(t, OutcomeFailure, msg.Result.Outcome)
	assert.ErrorIs(t, msg.Result.Err, context.DeadlineExceeded)
}

func TestSubmitAfterShutdownIsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	api := &fakeResolver{token: "tok"}
	r := NewRunner(ctx, api, time.Second, logging.Discard())
	cancel()

	msg := r.Submit(Request{Method: MethodGalleryToken, Gid: 1, PToken: "x"}, Owner{})().(ResultMsg)

	assert.Equal(t, Cancelled(), msg.Result)
	assert.Empty(t, api.calls)
}

func TestShutdownDuringRequestIsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(ctx, &fakeResolver{block: true}, 0, logging.Discard())

	done := make(chan ResultMsg)
	cmd := r.Submit(Request{Method: MethodGalleryToken, Gid: 1, PToken: "x"}, Owner{})
	go func() { done <- cmd().(ResultMsg) }()

	require.Eventually(t, func() bool { return r.InFlight() == 1 }, time.Second, time.Millisecond)
	cancel()

	msg := <-done
	assert.Equal(t, OutcomeCancelled, msg.Result.Outcome)
}

func TestUnsupportedMethod(t *testing.T) {
	r := NewRunner(context.Background(), &fakeResolver{}, 0, logging.Discard())

	msg := r.Submit(Request{Method: Method(99)}, Owner{})().(ResultMsg)

	assert.ErrorIs(t, msg.Result.Err, ErrUnsupported)
}

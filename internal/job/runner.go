package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/atomic"
)

// TokenResolver is the API surface the runner needs.
type TokenResolver interface {
	GalleryToken(ctx context.Context, gid int64, ptoken string, page int) (string, error)
}

// ErrUnsupported is returned for methods the runner cannot execute.
var ErrUnsupported = errors.New("job: unsupported method")

// Runner executes requests against a TokenResolver. Cancelling the context
// passed to NewRunner abandons every pending request.
type Runner struct {
	ctx      context.Context
	api      TokenResolver
	timeout  time.Duration
	logger   *slog.Logger
	inflight atomic.Int64
	total    atomic.Int64
}

// NewRunner creates a runner. A zero timeout means no per-request limit.
func NewRunner(ctx context.Context, api TokenResolver, timeout time.Duration, logger *slog.Logger) *Runner {
	return &Runner{
		ctx:     ctx,
		api:     api,
		timeout: timeout,
		logger:  logger,
	}
}

// InFlight returns the number of requests currently executing.
func (r *Runner) InFlight() int64 {
	return r.inflight.Load()
}

// Submitted returns how many requests were ever submitted.
func (r *Runner) Submitted() int64 {
	return r.total.Load()
}

// Submit records the request and returns the command that executes it.
func (r *Runner) Submit(req Request, owner Owner) tea.Cmd {
	r.total.Inc()
	r.logger.Info("job submitted",
		"method", req.Method.String(),
		"gid", req.Gid,
		"page", req.Page,
		"scene", owner.SceneID)

	return func() tea.Msg {
		return ResultMsg{Owner: owner, Request: req, Result: r.run(req)}
	}
}

func (r *Runner) run(req Request) Result {
	r.inflight.Inc()
	defer r.inflight.Dec()

	if err := r.ctx.Err(); err != nil {
		return Cancelled()
	}

	ctx := r.ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	var (
		value string
		err   error
	)
	switch req.Method {
	case MethodGalleryToken:
		value, err = r.api.GalleryToken(ctx, req.Gid, req.PToken, req.Page)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupported, req.Method)
	}

	switch {
	case err == nil:
		r.logger.Info("job succeeded", "method", req.Method.String(), "elapsed_ms", time.Since(start).Milliseconds())
		return Success(value)
	case errors.Is(r.ctx.Err(), context.Canceled):
		r.logger.Debug("job cancelled", "method", req.Method.String())
		return Cancelled()
	default:
		r.logger.Warn("job failed", "method", req.Method.String(), "error", err)
		return Failure(err)
	}
}

// Package job runs the asynchronous requests scenes depend on.
//
// A scene never receives a callback directly. Submit returns a tea.Cmd;
// bubbletea runs it off the UI goroutine and feeds the resulting ResultMsg
// back through the program's update loop, where the stage looks up the
// owning scene by identity. A scene that is gone by then simply never sees
// the result.
package job

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Method names a request kind.
type Method int

const (
	MethodGalleryToken Method = iota + 1
)

func (m Method) String() string {
	switch m {
	case MethodGalleryToken:
		return "gallery_token"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// Request describes one asynchronous request.
type Request struct {
	Method Method
	Gid    int64
	PToken string
	Page   int
}

// Owner identifies the scene a result belongs to.
type Owner struct {
	StageID uint32
	SceneID string
}

// Outcome discriminates a Result.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result is the outcome of a request: exactly one of a value, an error,
// or cancellation.
type Result struct {
	Outcome Outcome
	Value   string
	Err     error
}

// Success wraps a successful value.
func Success(v string) Result { return Result{Outcome: OutcomeSuccess, Value: v} }

// Failure wraps a request error.
func Failure(err error) Result { return Result{Outcome: OutcomeFailure, Err: err} }

// Cancelled reports a request that was abandoned.
func Cancelled() Result { return Result{Outcome: OutcomeCancelled} }

// ResultMsg carries a Result back into the bubbletea loop.
type ResultMsg struct {
	Owner   Owner
	Request Request
	Result  Result
}

// Client submits requests on behalf of a scene.
type Client interface {
	Submit(req Request, owner Owner) tea.Cmd
}

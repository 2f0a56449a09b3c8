package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/gtoken/internal/i18n"
	"github.com/Mr-Dark-debug/gtoken/internal/job"
	"github.com/Mr-Dark-debug/gtoken/internal/stage"
	"github.com/Mr-Dark-debug/gtoken/pkg/timeutil"
)

// Scene kinds.
const (
	KindProgress      = "progress"
	KindGalleryDetail = "gallery_detail"
)

// Argument and snapshot keys.
const (
	KeyAction = "action"
	KeyGid    = "gid"
	KeyPToken = "ptoken"
	KeyToken  = "token"
	KeyPage   = "page"
	KeyValid  = "valid"
	KeyError  = "error"
)

// Actions.
const (
	// ActionGalleryToken resolves (gid, ptoken, page) into a gallery token.
	ActionGalleryToken = "gallery_token"
	// ActionGidToken opens a gallery by gid and token.
	ActionGidToken = "gid_token"
)

// Views owned by the progress scene.
const (
	viewProgress = iota
	viewTip
)

// ProgressState is everything the progress scene persists.
// Gid and Page are -1 when absent; PToken is empty when absent.
type ProgressState struct {
	Action string
	Valid  bool
	Error  string
	Gid    int64
	PToken string
	Page   int
}

// ProgressScene shows a spinner while a redirect token is resolved, then
// forwards to the gallery detail scene. On failure it shows a tip that
// retries when activated.
type ProgressScene struct {
	env   stage.Env
	state ProgressState

	attached   bool
	finished   bool
	started    time.Time
	now        func() time.Time
	spinner    spinner.Model
	transition viewTransition
}

// NewProgressScene is the stage factory for KindProgress.
func NewProgressScene(env stage.Env) stage.Scene {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return &ProgressScene{
		env:        env,
		state:      ProgressState{Gid: -1, Page: -1},
		now:        time.Now,
		spinner:    sp,
		transition: newViewTransition(env.Owner.SceneID, env.Animate),
	}
}

func (s *ProgressScene) ID() string   { return s.env.Owner.SceneID }
func (s *ProgressScene) Kind() string { return KindProgress }

// State returns a copy of the scene state.
func (s *ProgressScene) State() ProgressState { return s.state }

// ShowingTip reports whether the error tip is the visible view.
func (s *ProgressScene) ShowingTip() bool { return s.transition.Shown() == viewTip }

// Finished reports whether the scene has handed off to the detail scene.
func (s *ProgressScene) Finished() bool { return s.finished }

// ────────────────────────────────────────────────────────────
// Lifecycle
// ────────────────────────────────────────────────────────────

// OnCreate initializes from args, or restores from saved. A restored scene
// that was still loading resubmits its request, since the one it was
// waiting on died with the previous process.
func (s *ProgressScene) OnCreate(args, saved stage.Bundle) tea.Cmd {
	if saved != nil {
		s.Restore(saved)
		if !s.state.Valid {
			return nil
		}
		cmd, _ := s.startJob()
		return cmd
	}

	s.state.Valid = s.Initialize(args)
	var cmd tea.Cmd
	if s.state.Valid {
		cmd, s.state.Valid = s.startJob()
	}
	if !s.state.Valid {
		s.state.Error = s.env.Tr.Text(i18n.ErrorSomethingWrongHappened)
	}
	return cmd
}

// Initialize reads the action and its parameters from args and reports
// whether they are complete.
func (s *ProgressScene) Initialize(args stage.Bundle) bool {
	if args == nil {
		return false
	}
	s.state.Action, _ = args.String(KeyAction)

	switch s.state.Action {
	case ActionGalleryToken:
		s.state.Gid = args.Int64(KeyGid, -1)
		s.state.PToken, _ = args.String(KeyPToken)
		s.state.Page = args.Int(KeyPage, -1)
		return s.paramsComplete()
	default:
		return false
	}
}

// Restore copies every field from a snapshot. Nothing is re-validated.
func (s *ProgressScene) Restore(saved stage.Bundle) {
	s.state.Valid = saved.Bool(KeyValid, false)
	s.state.Error, _ = saved.String(KeyError)
	s.state.Action, _ = saved.String(KeyAction)
	s.state.Gid = saved.Int64(KeyGid, -1)
	s.state.PToken, _ = saved.String(KeyPToken)
	s.state.Page = saved.Int(KeyPage, -1)
}

// Persist serializes every field. Absent strings are left out.
func (s *ProgressScene) Persist() stage.Bundle {
	b := stage.Bundle{
		KeyValid: s.state.Valid,
		KeyGid:   s.state.Gid,
		KeyPage:  s.state.Page,
	}
	if s.state.Error != "" {
		b[KeyError] = s.state.Error
	}
	if s.state.Action != "" {
		b[KeyAction] = s.state.Action
	}
	if s.state.PToken != "" {
		b[KeyPToken] = s.state.PToken
	}
	return b
}

func (s *ProgressScene) paramsComplete() bool {
	return s.state.Gid != -1 && s.state.PToken != "" && s.state.Page != -1
}

// startJob submits the request for the current action. It reports false,
// submitting nothing, when the action is unknown or parameters are missing.
func (s *ProgressScene) startJob() (tea.Cmd, bool) {
	switch s.state.Action {
	case ActionGalleryToken:
		if !s.paramsComplete() {
			return nil, false
		}
		req := job.Request{
			Method: job.MethodGalleryToken,
			Gid:    s.state.Gid,
			PToken: s.state.PToken,
			Page:   s.state.Page,
		}
		s.started = s.now()
		return s.env.Jobs.Submit(req, s.env.Owner), true
	default:
		return nil, false
	}
}

// OnViewReady shows the view matching the current validity, without
// animation.
func (s *ProgressScene) OnViewReady() tea.Cmd {
	s.attached = true
	if s.state.Valid {
		s.transition.Show(viewProgress, false)
	} else {
		s.transition.Show(viewTip, false)
	}
	return s.spinner.Tick
}

// OnViewDestroyed detaches the views.
func (s *ProgressScene) OnViewDestroyed() {
	s.attached = false
}

// ────────────────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────────────────

func (s *ProgressScene) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", " ", "r":
			if s.ShowingTip() {
				return s.onTipTapped()
			}
		case "esc", "backspace":
			return s.env.Nav.FinishScene(s.ID())
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft && s.ShowingTip() {
			return s.onTipTapped()
		}

	case spinner.TickMsg:
		if !s.attached {
			return nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return cmd

	case transitionTickMsg:
		return s.transition.Update(msg)
	}
	return nil
}

func (s *ProgressScene) onTipTapped() tea.Cmd {
	cmd, ok := s.startJob()
	if !ok {
		return nil
	}
	s.state.Valid = true
	return tea.Batch(cmd, s.transition.Show(viewProgress, true))
}

// OnJobResult dispatches the single result of the submitted request.
func (s *ProgressScene) OnJobResult(res job.Result) tea.Cmd {
	if s.finished {
		return nil
	}
	switch res.Outcome {
	case job.OutcomeSuccess:
		return s.onJobSuccess(res.Value)
	case job.OutcomeFailure:
		return s.onJobFailure(res.Err)
	default:
		return nil
	}
}

func (s *ProgressScene) onJobSuccess(token string) tea.Cmd {
	s.finished = true
	s.env.Logger.Info("gallery token resolved", "gid", s.state.Gid, "page", s.state.Page)

	args := stage.Bundle{
		KeyAction: ActionGidToken,
		KeyGid:    s.state.Gid,
		KeyToken:  token,
		KeyPage:   s.state.Page,
	}
	return tea.Batch(
		s.env.Nav.StartScene(KindGalleryDetail, args),
		s.env.Nav.FinishScene(s.ID()),
	)
}

func (s *ProgressScene) onJobFailure(err error) tea.Cmd {
	s.state.Valid = false
	s.state.Error = s.env.Tr.ErrorString(err)
	s.env.Logger.Warn("gallery token failed", "gid", s.state.Gid, "error", err)

	if !s.attached {
		return nil
	}
	return s.transition.Show(viewTip, true)
}

// ────────────────────────────────────────────────────────────
// View
// ────────────────────────────────────────────────────────────

func (s *ProgressScene) View(width, height int) string {
	tr := s.env.Tr

	var meta string
	if s.state.Gid != -1 {
		meta = fmt.Sprintf("gid %d", s.state.Gid)
		if s.state.Page != -1 {
			meta += fmt.Sprintf(" · page %d", s.state.Page+1)
		}
	}

	body := s.transition.Render(s.renderProgress(), s.renderTip(width))

	var hints []stage.Hint
	if s.ShowingTip() {
		hints = append(hints, stage.Hint{Key: "enter", Desc: tr.Text(i18n.HintRetry)})
	}
	hints = append(hints,
		stage.Hint{Key: "esc", Desc: tr.Text(i18n.HintBack)},
		stage.Hint{Key: "q", Desc: tr.Text(i18n.HintQuit)},
	)

	return renderFrame(tr.Text(i18n.AppName), tr.Text(i18n.ProgressTitle), meta, body, "", hints, width, height)
}

func (s *ProgressScene) renderProgress() string {
	line := s.spinner.View() + " " + progressTextStyle.Render(s.env.Tr.Text(i18n.ProgressLoading))
	if s.started.IsZero() {
		return line
	}
	elapsed := s.now().Sub(s.started).Milliseconds()
	return lipgloss.JoinVertical(lipgloss.Center,
		line,
		elapsedStyle.Render(timeutil.FormatDuration(elapsed)))
}

func (s *ProgressScene) renderTip(width int) string {
	text := truncate(s.state.Error, maxInt(width-4, 8))
	return lipgloss.JoinVertical(lipgloss.Center,
		tipIconStyle.Render(tipIcon),
		"",
		tipTextStyle.Render(text),
		tipRetryStyle.Render(s.env.Tr.Text(i18n.TipRetry)),
	)
}

const tipIcon = "╭─────╮\n│ ×_× │\n╰─────╯"

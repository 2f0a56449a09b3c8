// Package stage hosts a stack of scenes inside one bubbletea program.
//
// The stage is the root tea.Model. It owns every scene, forwards keys to the
// top one, and routes job results to the scene that submitted them by
// identity. Results addressed to a scene that has been finished are dropped.
package stage

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Mr-Dark-debug/gtoken/internal/i18n"
	"github.com/Mr-Dark-debug/gtoken/internal/job"
)

// Hint is one key hint shown in a scene's footer.
type Hint struct {
	Key  string
	Desc string
}

// Scene is one navigable unit of UI with its own lifecycle.
type Scene interface {
	ID() string
	Kind() string

	// OnCreate sets the scene up from fresh args, or from saved when the
	// scene is being rebuilt from a snapshot. The returned command runs once.
	OnCreate(args, saved Bundle) tea.Cmd
	// OnViewReady is called when the scene becomes visible.
	OnViewReady() tea.Cmd
	// OnViewDestroyed is called when another scene covers this one.
	OnViewDestroyed()

	Update(msg tea.Msg) tea.Cmd
	OnJobResult(res job.Result) tea.Cmd
	View(width, height int) string

	// Persist returns everything needed to rebuild the scene with OnCreate.
	Persist() Bundle
}

// Navigator lets a scene open other scenes and finish itself.
type Navigator interface {
	StartScene(kind string, args Bundle) tea.Cmd
	FinishScene(id string) tea.Cmd
}

// Env is what a scene factory gets from the stage.
type Env struct {
	Owner   job.Owner
	Nav     Navigator
	Jobs    job.Client
	Tr      *i18n.Translator
	Logger  *slog.Logger
	Animate bool
}

// Factory builds an empty scene; OnCreate fills it in.
type Factory func(env Env) Scene

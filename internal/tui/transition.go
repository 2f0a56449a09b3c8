package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	transitionFrames   = 4
	transitionInterval = 60 * time.Millisecond
)

// transitionTickMsg advances a running view transition.
type transitionTickMsg struct {
	sceneID string
	seq     int
}

func (m transitionTickMsg) SceneID() string { return m.sceneID }

// viewTransition shows exactly one of a fixed set of views. Switching with
// animation fades the incoming view in over a few frames.
type viewTransition struct {
	sceneID string
	enabled bool
	shown   int
	frames  int
	seq     int
}

func newViewTransition(sceneID string, enabled bool) viewTransition {
	return viewTransition{sceneID: sceneID, enabled: enabled}
}

// Shown returns the index of the visible view.
func (t *viewTransition) Shown() int { return t.shown }

// Animating reports whether a fade is in progress.
func (t *viewTransition) Animating() bool { return t.frames > 0 }

// Show makes view index visible. It returns the tick command driving the
// animation, or nil when nothing animates.
func (t *viewTransition) Show(index int, animate bool) tea.Cmd {
	if index == t.shown && t.frames == 0 {
		return nil
	}
	t.shown = index
	t.seq++
	if !animate || !t.enabled {
		t.frames = 0
		return nil
	}
	t.frames = transitionFrames
	return t.tick()
}

// Update consumes one animation tick.
func (t *viewTransition) Update(msg transitionTickMsg) tea.Cmd {
	if msg.seq != t.seq || t.frames == 0 {
		return nil
	}
	t.frames--
	if t.frames == 0 {
		return nil
	}
	return t.tick()
}

// Render returns the visible view, faint while fading in.
func (t *viewTransition) Render(views ...string) string {
	if t.shown < 0 || t.shown >= len(views) {
		return ""
	}
	v := views[t.shown]
	if t.frames > 0 {
		return fadingStyle.Render(v)
	}
	return v
}

func (t *viewTransition) tick() tea.Cmd {
	msg := transitionTickMsg{sceneID: t.sceneID, seq: t.seq}
	return tea.Tick(transitionInterval, func(time.Time) tea.Msg { return msg })
}

package stage

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/Mr-Dark-debug/gtoken/internal/database"
	"github.com/Mr-Dark-debug/gtoken/internal/i18n"
	"github.com/Mr-Dark-debug/gtoken/internal/job"
	"github.com/Mr-Dark-debug/gtoken/internal/logging"
)

var stageSeq atomic.Uint32

// ────────────────────────────────────────────────────────────
// Messages
// ────────────────────────────────────────────────────────────

// SceneMsg is implemented by messages addressed to one scene, such as
// animation ticks. The stage delivers them only to that scene.
type SceneMsg interface {
	SceneID() string
}

// ────────────────────────────────────────────────────────────
// Stage
// ────────────────────────────────────────────────────────────

// Deps are the collaborators handed to every scene.
type Deps struct {
	Jobs    job.Client
	Tr      *i18n.Translator
	Logger  *slog.Logger
	Animate bool
}

// Stage is the root bubbletea model.
type Stage struct {
	id       uint32
	registry *Registry
	deps     Deps
	store    database.Store

	scenes   []Scene
	attached string
	pending  []tea.Cmd

	width  int
	height int

	savedStageID int64
	err          error
}

// New creates an empty stage. store may be nil, in which case nothing is
// persisted on quit.
func New(reg *Registry, deps Deps, store database.Store) *Stage {
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	return &Stage{
		id:       stageSeq.Inc(),
		registry: reg,
		deps:     deps,
		store:    store,
	}
}

// ID returns the stage identity used in job owners.
func (s *Stage) ID() uint32 { return s.id }

// Len returns the number of scenes on the stack.
func (s *Stage) Len() int { return len(s.scenes) }

// Top returns the visible scene, or nil.
func (s *Stage) Top() Scene {
	if len(s.scenes) == 0 {
		return nil
	}
	return s.scenes[len(s.scenes)-1]
}

// Scene looks a scene up by id.
func (s *Stage) Scene(id string) (Scene, bool) {
	for _, sc := range s.scenes {
		if sc.ID() == id {
			return sc, true
		}
	}
	return nil, false
}

// SavedStageID returns the id written by the last persist, or zero.
func (s *Stage) SavedStageID() int64 { return s.savedStageID }

// Err returns the last persistence error, if any.
func (s *Stage) Err() error { return s.err }

// Start pushes the first scene before the program runs.
func (s *Stage) Start(kind string, args Bundle) error {
	sc, cmd, err := s.create(kind, uuid.NewString(), args, nil)
	if err != nil {
		return err
	}
	s.scenes = append(s.scenes, sc)
	s.pending = append(s.pending, cmd)
	return nil
}

// Restore rebuilds the stack from a saved stage, bottom first.
func (s *Stage) Restore(snap *database.StageSnapshot) error {
	for _, saved := range snap.Scenes {
		sc, cmd, err := s.create(saved.Kind, saved.SceneID, nil, Bundle(saved.Bundle))
		if err != nil {
			return fmt.Errorf("restoring scene %s: %w", saved.SceneID, err)
		}
		s.scenes = append(s.scenes, sc)
		s.pending = append(s.pending, cmd)
	}
	return nil
}

func (s *Stage) create(kind, id string, args, saved Bundle) (Scene, tea.Cmd, error) {
	fn, err := s.registry.lookup(kind)
	if err != nil {
		return nil, nil, err
	}
	sc := fn(Env{
		Owner:   job.Owner{StageID: s.id, SceneID: id},
		Nav:     s,
		Jobs:    s.deps.Jobs,
		Tr:      s.deps.Tr,
		Logger:  s.deps.Logger.With("scene", id, "kind", kind),
		Animate: s.deps.Animate,
	})
	cmd := sc.OnCreate(args, saved)
	s.deps.Logger.Debug("scene created", "scene", id, "kind", kind, "restored", saved != nil)
	return sc, cmd, nil
}

// ────────────────────────────────────────────────────────────
// Init / Update
// ────────────────────────────────────────────────────────────

func (s *Stage) Init() tea.Cmd {
	cmds := s.pending
	s.pending = nil
	return tea.Batch(cmds...)
}

func (s *Stage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		return s, s.attachTop()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			s.persist()
			return s, tea.Quit
		}
		if top := s.Top(); top != nil {
			return s, top.Update(msg)
		}
		return s, nil

	case job.ResultMsg:
		return s, s.deliver(msg)

	case SceneMsg:
		if sc, ok := s.Scene(msg.SceneID()); ok {
			return s, sc.Update(msg)
		}
		return s, nil
	}

	// Anything else (spinner ticks and the like) goes to every scene;
	// scenes ignore what is not theirs.
	var cmds []tea.Cmd
	for _, sc := range append([]Scene(nil), s.scenes...) {
		cmds = append(cmds, sc.Update(msg))
	}
	return s, tea.Batch(cmds...)
}

// deliver hands a job result to its owner. Results for another stage or
// for a scene that is gone are dropped.
func (s *Stage) deliver(msg job.ResultMsg) tea.Cmd {
	if msg.Owner.StageID != s.id {
		s.deps.Logger.Debug("dropping result for foreign stage", "stage", msg.Owner.StageID)
		return nil
	}
	sc, ok := s.Scene(msg.Owner.SceneID)
	if !ok {
		s.deps.Logger.Debug("dropping result for finished scene",
			"scene", msg.Owner.SceneID, "outcome", msg.Result.Outcome.String())
		return nil
	}
	return sc.OnJobResult(msg.Result)
}

// StartScene creates a scene of kind and pushes it on top. Scenes call it
// from their own Update, which runs on the program's goroutine.
func (s *Stage) StartScene(kind string, args Bundle) tea.Cmd {
	sc, cmd, err := s.create(kind, uuid.NewString(), args, nil)
	if err != nil {
		s.deps.Logger.Error("start scene failed", "kind", kind, "error", err)
		return nil
	}
	s.detachTop()
	s.scenes = append(s.scenes, sc)
	return tea.Batch(cmd, s.attachTop())
}

// FinishScene removes the scene with id. Finishing the last scene quits.
func (s *Stage) FinishScene(id string) tea.Cmd {
	idx := -1
	for i, sc := range s.scenes {
		if sc.ID() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	wasTop := idx == len(s.scenes)-1
	if wasTop {
		s.detachTop()
	}
	s.scenes = append(s.scenes[:idx], s.scenes[idx+1:]...)
	s.deps.Logger.Debug("scene finished", "scene", id)

	if len(s.scenes) == 0 {
		return tea.Quit
	}
	if wasTop {
		return s.attachTop()
	}
	return nil
}

// attachTop tells the top scene its view is ready, once the terminal size
// is known and only if it is not attached already.
func (s *Stage) attachTop() tea.Cmd {
	top := s.Top()
	if top == nil || s.width == 0 || s.attached == top.ID() {
		return nil
	}
	s.attached = top.ID()
	return top.OnViewReady()
}

func (s *Stage) detachTop() {
	top := s.Top()
	if top == nil || s.attached != top.ID() {
		return
	}
	s.attached = ""
	top.OnViewDestroyed()
}

// persist saves every scene's snapshot, bottom first.
func (s *Stage) persist() {
	if s.store == nil || len(s.scenes) == 0 {
		return
	}
	snaps := make([]database.SceneSnapshot, 0, len(s.scenes))
	for _, sc := range s.scenes {
		snaps = append(snaps, database.SceneSnapshot{
			SceneID: sc.ID(),
			Kind:    sc.Kind(),
			Bundle:  sc.Persist(),
		})
	}
	id, err := s.store.SaveStage(snaps)
	if err != nil {
		s.err = err
		s.deps.Logger.Error("saving stage failed", "error", err)
		return
	}
	s.savedStageID = id
	s.deps.Logger.Info("stage saved", "stage_id", id, "scenes", len(snaps))
}

// ────────────────────────────────────────────────────────────
// View
// ────────────────────────────────────────────────────────────

func (s *Stage) View() string {
	if s.width == 0 {
		return "Initializing..."
	}
	top := s.Top()
	if top == nil {
		return ""
	}
	return top.View(s.width, s.height)
}

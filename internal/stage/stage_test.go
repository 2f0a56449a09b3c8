package stage

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Dark-debug/gtoken/internal/database"
	"github.com/Mr-Dark-debug/gtoken/internal/job"
)

type fakeScene struct {
	env      Env
	args     Bundle
	saved    Bundle
	ready    int
	detached int
	keys     []string
	results  []job.Result
	other    []tea.Msg
}

func (f *fakeScene) ID() string   { return f.env.Owner.SceneID }
func (f *fakeScene) Kind() string { return "fake" }
func (f *fakeScene) OnCreate(args, saved Bundle) tea.Cmd {
	f.args, f.saved = args, saved
	return nil
}
func (f *fakeScene) OnViewReady() tea.Cmd { f.ready++; return nil }
func (f *fakeScene) OnViewDestroyed()     { f.detached++ }
func (f *fakeScene) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case tea.KeyMsg:
		f.keys = append(f.keys, m.String())
		if m.String() == "esc" {
			return f.env.Nav.FinishScene(f.ID())
		}
		if m.String() == "n" {
			return f.env.Nav.StartScene("fake", Bundle{"n": len(f.keys)})
		}
	default:
		f.other = append(f.other, msg)
	}
	return nil
}
func (f *fakeScene) OnJobResult(res job.Result) tea.Cmd {
	f.results = append(f.results, res)
	return nil
}
func (f *fakeScene) View(w, h int) string { return "fake:" + f.ID() }
func (f *fakeScene) Persist() Bundle      { return Bundle{"keys": len(f.keys)} }

type fakeStore struct {
	saved [][]database.SceneSnapshot
	err   error
}

func (s *fakeStore) SaveStage(sc []database.SceneSnapshot) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.saved = append(s.saved, sc)
	return int64(len(s.saved)), nil
}
func (s *fakeStore) LatestStage() (*database.StageSnapshot, error) {
	return nil, database.ErrNoSnapshot
}
func (s *fakeStore) GetStage(int64) (*database.StageSnapshot, error) {
	return nil, database.ErrNoSnapshot
}
func (s *fakeStore) ListStages(int) ([]*database.StageSnapshot, error) { return nil, nil }
func (s *fakeStore) DeleteStage(int64) error                           { return nil }
func (s *fakeStore) Close() error                                      { return nil }

func newTestStage(t *testing.T, store database.Store) *Stage {
	t.Helper()
	reg := NewRegistry().Register("fake", func(env Env) Scene { return &fakeScene{env: env} })
	return New(reg, Deps{}, store)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func top(t *testing.T, s *Stage) *fakeScene {
	t.Helper()
	f, ok := s.Top().(*fakeScene)
	require.True(t, ok)
	return f
}

func TestStartAttachesOnceSizeKnown(t *testing.T) {
	s := newTestStage(t, nil)
	require.NoError(t, s.Start("fake", Bundle{"a": 1}))

	f := top(t, s)
	assert.Equal(t, Bundle{"a": 1}, f.args)
	assert.Nil(t, f.saved)
	assert.Equal(t, 0, f.ready)
	assert.Equal(t, "Initializing...", s.View())

	s.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	s.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Equal(t, 1, f.ready, "resizing must not re-attach")
	assert.Equal(t, "fake:"+f.ID(), s.View())
}

func TestStartUnknownKind(t *testing.T) {
	s := newTestStage(t, nil)
	err := s.Start("nope", nil)
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestKeysGoToTopOnly(t *testing.T) {
	s := newTestStage(t, nil)
	require.NoError(t, s.Start("fake", nil))
	s.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	bottom := top(t, s)

	s.Update(key("n"))
	require.Equal(t, 2, s.Len())
	upper := top(t, s)

	assert.Equal(t, 1, bottom.detached)
	assert.Equal(t, 1, upper.ready)

	s.Update(key("x"))
	assert.Equal(t, []string{"n"}, bottom.keys)
	assert.Equal(t, []string{"x"}, upper.keys)
}

func TestFinishTopReattachesBelow(t *testing.T) {
	s := newTestStage(t, nil)
	require.NoError(t, s.Start("fake", nil))
	s.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	bottom := top(t, s)
	s.Update(key("n"))

	s.Update(key("esc"))
	require.Equal(t, 1, s.Len())
	assert.Same(t, bottom, top(t, s))
	assert.Equal(t, 2, bottom.ready)
}

func TestFinishLastSceneQuits(t *testing.T) {
	s := newTestStage(t, nil)
	require.NoError(t, s.Start("fake", nil))

	_, cmd := s.Update(key("esc"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, 0, s.Len())
}

func TestResultRoutedByOwner(t *testing.T) {
	s := newTestStage(t, nil)
	require.NoError(t, s.Start("fake", nil))
	s.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	bottom := top(t, s)
	s.Update(key("n"))
	upper := top(t, s)

	s.Update(job.ResultMsg{
		Owner:  job.Owner{StageID: s.ID(), SceneID: bottom.ID()},
		Result: job.Success("tok"),
	})

	assert.Equal(t, []job.Result{job.Success("tok")}, bottom.results)
	assert.Empty(t, upper.results)
}

func TestResultForFinishedSceneDropped(t *testing.T) {
	s := newTestStage(t, nil)
	require.NoError(t, s.Start("fake", nil))
	s.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	bottom := top(t, s)
	s.Update(key("n"))
	gone := top(t, s)
	s.Update(key("esc"))

	_, cmd := s.Update(job.ResultMsg{
		Owner:  job.Owner{StageID: s.ID(), SceneID: gone.ID()},
		Result: job.Failure(errors.New("late")),
	})

	assert.Nil(t, cmd)
	assert.Empty(t, gone.results)
	assert.Empty(t, bottom.results)
}

func TestResultForForeignStageDropped(t *testing.T) {
	s := newTestStage(t, nil)
	other := newTestStage(t, nil)
	require.NoError(t, s.Start("fake", nil))
	f := top(t, s)

	s.Update(job.ResultMsg{
		Owner:  job.Owner{StageID: other.ID(), SceneID: f.ID()},
		Result: job.Success("tok"),
	})

	assert.NotEqual(t, s.ID(), other.ID())
	assert.Empty(t, f.results)
}

type addressed struct{ id string }

func (a addressed) SceneID() string { return a.id }

func TestSceneMsgRouting(t *testing.T) {
	s := newTestStage(t, nil)
	require.NoError(t, s.Start("fake", nil))
	s.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	bottom := top(t, s)
	s.Update(key("n"))
	upper := top(t, s)

	s.Update(addressed{id: bottom.ID()})
	assert.Len(t, bottom.other, 1)
	assert.Empty(t, upper.other)
}

func TestQuitPersistsBottomFirst(t *testing.T) {
	store := &fakeStore{}
	s := newTestStage(t, store)
	require.NoError(t, s.Start("fake", nil))
	s.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	bottom := top(t, s)
	s.Update(key("n"))
	upper := top(t, s)

	_, cmd := s.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	require.Len(t, store.saved, 1)
	saved := store.saved[0]
	require.Len(t, saved, 2)
	assert.Equal(t, bottom.ID(), saved[0].SceneID)
	assert.Equal(t, upper.ID(), saved[1].SceneID)
	assert.Equal(t, "fake", saved[1].Kind)
	assert.EqualValues(t, 1, s.SavedStageID())
}

func TestQuitPersistErrorStillQuits(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	s := newTestStage(t, store)
	require.NoError(t, s.Start("fake", nil))

	_, cmd := s.Update(key("ctrl+c"))
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.EqualError(t, s.Err(), "disk full")
}

func TestRestoreKeepsIDsAndOrder(t *testing.T) {
	s := newTestStage(t, nil)
	snap := &database.StageSnapshot{Scenes: []database.SceneSnapshot{
		{SceneID: "a", Kind: "fake", Bundle: map[string]any{"keys": json.Number("3")}},
		{SceneID: "b", Kind: "fake", Bundle: map[string]any{}},
	}}
	require.NoError(t, s.Restore(snap))

	require.Equal(t, 2, s.Len())
	assert.Equal(t, "b", s.Top().ID())
	a, ok := s.Scene("a")
	require.True(t, ok)
	assert.Equal(t, 3, a.(*fakeScene).saved.Int("keys", 0))
	assert.Nil(t, a.(*fakeScene).args)
}

func TestRestoreUnknownKind(t *testing.T) {
	s := newTestStage(t, nil)
	err := s.Restore(&database.StageSnapshot{Scenes: []database.SceneSnapshot{{SceneID: "a", Kind: "gone"}}})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "a"))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestRegistryKinds(t *testing.T) {
	reg := NewRegistry().
		Register("b", func(Env) Scene { return nil }).
		Register("a", func(Env) Scene { return nil })
	assert.Equal(t, []string{"a", "b"}, reg.Kinds())
}

package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/gtoken/internal/i18n"
	"github.com/Mr-Dark-debug/gtoken/internal/job"
	"github.com/Mr-Dark-debug/gtoken/internal/stage"
)

// GalleryURLFormat builds a gallery page URL from gid and token.
const GalleryURLFormat = "https://e-hentai.org/g/%d/%s/"

// DetailScene is the destination of a resolved token. It shows the
// gallery identity and link.
type DetailScene struct {
	env    stage.Env
	action string
	gid    int64
	token  string
	page   int
}

// NewDetailScene is the stage factory for KindGalleryDetail.
func NewDetailScene(env stage.Env) stage.Scene {
	return &DetailScene{env: env, gid: -1, page: -1}
}

func (s *DetailScene) ID() string   { return s.env.Owner.SceneID }
func (s *DetailScene) Kind() string { return KindGalleryDetail }

// Gallery returns the gallery the scene was opened for.
func (s *DetailScene) Gallery() (gid int64, token string, page int) {
	return s.gid, s.token, s.page
}

func (s *DetailScene) OnCreate(args, saved stage.Bundle) tea.Cmd {
	b := args
	if saved != nil {
		b = saved
	}
	s.action, _ = b.String(KeyAction)
	s.gid = b.Int64(KeyGid, -1)
	s.token, _ = b.String(KeyToken)
	s.page = b.Int(KeyPage, -1)
	return nil
}

func (s *DetailScene) OnViewReady() tea.Cmd { return nil }
func (s *DetailScene) OnViewDestroyed()     {}

func (s *DetailScene) Update(msg tea.Msg) tea.Cmd {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "esc", "backspace":
			return s.env.Nav.FinishScene(s.ID())
		}
	}
	return nil
}

// OnJobResult is a no-op; the detail scene submits nothing.
func (s *DetailScene) OnJobResult(job.Result) tea.Cmd { return nil }

func (s *DetailScene) Persist() stage.Bundle {
	return stage.Bundle{
		KeyAction: s.action,
		KeyGid:    s.gid,
		KeyToken:  s.token,
		KeyPage:   s.page,
	}
}

func (s *DetailScene) View(width, height int) string {
	tr := s.env.Tr

	valueWidth := maxInt(width-20, 10)
	rows := []string{
		detailRow("Gid", fmt.Sprintf("%d", s.gid)),
		detailRow("Token", truncate(s.token, valueWidth)),
		detailRow("Page", fmt.Sprintf("%d", s.page+1)),
		"",
		detailLinkStyle.Render(truncate(fmt.Sprintf(GalleryURLFormat, s.gid, s.token), valueWidth+8)),
	}
	body := detailPanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))

	hints := []stage.Hint{
		{Key: "esc", Desc: tr.Text(i18n.HintBack)},
		{Key: "q", Desc: tr.Text(i18n.HintQuit)},
	}
	return renderFrame(tr.Text(i18n.AppName), tr.Text(i18n.DetailTitle), "", body, "", hints, width, height)
}

func detailRow(label, value string) string {
	return detailLabelStyle.Render(label) + "  " + detailValueStyle.Render(value)
}

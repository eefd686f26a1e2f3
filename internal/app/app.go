package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/router"
	"github.com/abhisek/lingo/internal/screen"
	"github.com/abhisek/lingo/internal/screens/home"
	"github.com/abhisek/lingo/internal/screens/lesson"
	"github.com/abhisek/lingo/internal/screens/welcome"
	"github.com/abhisek/lingo/internal/selfupdate"
	"github.com/abhisek/lingo/internal/ui/layout"
)

// Options configures the TUI.
type Options struct {
	Deps screen.Deps

	// Version is the running build; with a Checker set, a newer release
	// is announced in the footer.
	Version string
	Checker *selfupdate.Checker

	// SkipWelcome starts directly on the home screen.
	SkipWelcome bool

	// Play opens LessonID over the home screen at startup; 0 plays the
	// active lesson. Play implies SkipWelcome.
	Play     bool
	LessonID int
}

type updateCheckedMsg struct {
	Result *selfupdate.CheckResult
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	opts   Options
	router *router.Router
	width  int
	height int
	notice string
}

// newAppModel creates a new AppModel starting on the welcome splash.
func newAppModel(opts Options) AppModel {
	homeFactory := func() screen.Screen { return home.New(opts.Deps) }

	var first screen.Screen = welcome.New(homeFactory)
	if opts.SkipWelcome || opts.Play {
		first = homeFactory()
	}
	return AppModel{
		opts:   opts,
		router: router.New(first),
	}
}

func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.router.Active().Init(), m.checkForUpdate()}
	if m.opts.Play {
		l := lesson.New(m.opts.Deps, m.opts.LessonID)
		cmds = append(cmds, func() tea.Msg { return router.PushScreenMsg{Screen: l} })
	}
	return tea.Batch(cmds...)
}

func (m AppModel) checkForUpdate() tea.Cmd {
	checker, version := m.opts.Checker, m.opts.Version
	if checker == nil {
		return nil
	}
	logger := m.opts.Deps.Logger
	return func() tea.Msg {
		res, err := checker.Check(context.Background(), &selfupdate.CheckInput{Version: version})
		if err != nil {
			if logger != nil {
				logger.Debug("update check failed", "error", err)
			}
			return nil
		}
		return updateCheckedMsg{Result: res}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case updateCheckedMsg:
		if msg.Result != nil && msg.Result.UpdateAvailable {
			m.notice = msg.Result.LatestVersion
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	var status *layout.Status
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}

	header := layout.RenderHeader(title, status, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	var hints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		hints = kp.KeyHints()
	} else if m.router.Depth() > 1 {
		hints = []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	hints = append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	if m.notice != "" {
		hints = append(hints, layout.KeyHint{Key: m.notice, Description: "available, run `lingo update`"})
	}
	return hints
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}

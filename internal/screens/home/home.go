package home

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/router"
	"github.com/abhisek/lingo/internal/screen"
	"github.com/abhisek/lingo/internal/screens/courses"
	"github.com/abhisek/lingo/internal/screens/history"
	"github.com/abhisek/lingo/internal/screens/lesson"
	"github.com/abhisek/lingo/internal/store"
	"github.com/abhisek/lingo/internal/ui/components"
	"github.com/abhisek/lingo/internal/ui/layout"
	"github.com/abhisek/lingo/internal/ui/theme"
)

const toastDuration = 3 * time.Second

type loadedMsg struct {
	User   *store.UserProgress
	Course *store.Course
	Units  []store.Unit
	Active int
	Err    error
}

type refilledMsg struct {
	User *store.UserProgress
	Err  error
}

type toastExpiredMsg struct{ ID int }

// lessonRow is one lesson on the course map.
type lessonRow struct {
	unit   int
	info   store.LessonInfo
	active bool
	locked bool
}

// HomeScreen shows the learner's course map and is the root of the
// screen stack.
type HomeScreen struct {
	deps screen.Deps
	keys components.KeyMap

	loaded bool
	user   *store.UserProgress
	course *store.Course
	units  []store.Unit
	rows   []lessonRow
	cursor int

	toast   string
	toastID int
	errMsg  string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.StatusProvider = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates the home screen.
func New(deps screen.Deps) *HomeScreen {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &HomeScreen{
		deps: deps,
		keys: components.DefaultKeys(),
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

// Resume reloads progress after a lesson or the course picker closes.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) Title() string {
	return "Learn"
}

func (h *HomeScreen) Status() *layout.Status {
	if h.user == nil {
		return nil
	}
	return &layout.Status{
		Hearts:    h.user.Hearts,
		Unlimited: h.user.SubscriptionActive,
		Points:    h.user.Points,
	}
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	if h.course == nil {
		return layout.HintsFor(h.keys.Courses, h.keys.Quit)
	}
	start := key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Start"))
	return layout.HintsFor(start, h.keys.Courses, h.keys.Refill, h.keys.History, h.keys.Quit)
}

func (h *HomeScreen) load() tea.Cmd {
	st, userID := h.deps.Store, h.deps.UserID
	return func() tea.Msg {
		ctx := context.Background()
		msg := loadedMsg{}
		user, err := st.UserProgress(ctx, userID)
		if err != nil {
			return loadedMsg{Err: err}
		}
		msg.User = user
		if user.ActiveCourseID == 0 {
			return msg
		}

		if msg.Course, err = st.Course(ctx, user.ActiveCourseID); err != nil {
			return loadedMsg{Err: err}
		}
		if msg.Units, err = st.Units(ctx, userID, user.ActiveCourseID); err != nil {
			return loadedMsg{Err: err}
		}
		msg.Active, err = st.ActiveLesson(ctx, userID, user.ActiveCourseID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return loadedMsg{Err: err}
		}
		return msg
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		h.handleLoaded(msg)
		return h, nil

	case refilledMsg:
		return h.handleRefilled(msg)

	case toastExpiredMsg:
		if msg.ID == h.toastID {
			h.toast = ""
		}
		return h, nil

	case tea.KeyMsg:
		return h.handleKey(msg)
	}
	return h, nil
}

func (h *HomeScreen) handleLoaded(msg loadedMsg) {
	h.loaded = true
	if msg.Err != nil {
		h.deps.Logger.Error("load home", "error", msg.Err)
		h.errMsg = "Could not load your progress."
		return
	}
	h.errMsg = ""
	h.user = msg.User
	h.course = msg.Course
	h.units = msg.Units
	h.rows = buildRows(msg.Units, msg.Active)

	// Park the cursor on the active lesson, or the last one when the
	// whole course is done.
	h.cursor = len(h.rows) - 1
	for i, r := range h.rows {
		if r.active {
			h.cursor = i
			break
		}
	}
	if h.cursor < 0 {
		h.cursor = 0
	}
}

// buildRows flattens the course map. Lessons after the active one are
// locked; with no active lesson everything is open for practice.
func buildRows(units []store.Unit, active int) []lessonRow {
	var rows []lessonRow
	locked := false
	for i, u := range units {
		for _, l := range u.Lessons {
			row := lessonRow{unit: i, info: l, locked: locked}
			if l.ID == active {
				row.active = true
				locked = true
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func (h *HomeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch {
	case key.Matches(msg, h.keys.Quit):
		return h, tea.Quit
	case key.Matches(msg, h.keys.Courses):
		return h, push(courses.New(h.deps))
	}

	if h.course == nil {
		if key.Matches(msg, h.keys.Confirm) {
			return h, push(courses.New(h.deps))
		}
		return h, nil
	}

	switch {
	case key.Matches(msg, h.keys.Up):
		for i := h.cursor - 1; i >= 0; i-- {
			if !h.rows[i].locked {
				h.cursor = i
				break
			}
		}
	case key.Matches(msg, h.keys.Down):
		if h.cursor+1 < len(h.rows) && !h.rows[h.cursor+1].locked {
			h.cursor++
		}
	case key.Matches(msg, h.keys.Confirm):
		if h.cursor < len(h.rows) && !h.rows[h.cursor].locked {
			return h, push(lesson.New(h.deps, h.rows[h.cursor].info.ID))
		}
	case key.Matches(msg, h.keys.Refill):
		return h, h.refill()
	case key.Matches(msg, h.keys.History):
		return h, push(history.New(h.deps))
	}
	return h, nil
}

func (h *HomeScreen) refill() tea.Cmd {
	st, userID := h.deps.Store, h.deps.UserID
	return func() tea.Msg {
		user, err := st.RefillHearts(context.Background(), userID)
		return refilledMsg{User: user, Err: err}
	}
}

func (h *HomeScreen) handleRefilled(msg refilledMsg) (screen.Screen, tea.Cmd) {
	switch {
	case errors.Is(msg.Err, store.ErrHeartsFull):
		return h, h.showToast("Hearts are already full.")
	case errors.Is(msg.Err, store.ErrNotEnoughPoints):
		return h, h.showToast(fmt.Sprintf("Not enough points. A refill costs %d.", store.RefillCost))
	case msg.Err != nil:
		h.deps.Logger.Error("refill hearts", "error", msg.Err)
		return h, h.showToast("Something went wrong.")
	}
	h.user = msg.User
	return h, h.showToast("Hearts refilled!")
}

func (h *HomeScreen) showToast(text string) tea.Cmd {
	h.toastID++
	h.toast = text
	id := h.toastID
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{ID: id}
	})
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func (h *HomeScreen) View(width, height int) string {
	if !h.loaded {
		return theme.Hint.Width(width).Align(lipgloss.Center).Render("\n\nLoading...")
	}
	if h.errMsg != "" {
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
			Foreground(theme.Error).Render("\n\n" + h.errMsg)
	}

	var b strings.Builder
	if h.course == nil {
		b.WriteString(theme.Title.Width(width).Render("Welcome to Lingo!"))
		b.WriteString("\n\n")
		b.WriteString(theme.Subtitle.Width(width).Render("Pick a language to start learning."))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			components.NewButton("Choose a course", components.ButtonPrimary).View()))
	} else {
		b.WriteString(theme.Title.Width(width).Render(h.course.Title))
		b.WriteString("\n\n")
		b.WriteString(h.renderMap(width))
	}

	if h.toast != "" {
		b.WriteString("\n\n")
		b.WriteString(components.Toast(h.toast, width))
	}
	return lipgloss.PlaceVertical(height, lipgloss.Top, b.String())
}

// renderMap lists every unit with its lessons.
func (h *HomeScreen) renderMap(width int) string {
	cw := components.ContentWidth(width)
	var b strings.Builder
	unit := -1
	for i, r := range h.rows {
		if r.unit != unit {
			unit = r.unit
			u := h.units[unit]
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(theme.Header.Render(u.Title))
			if u.Description != "" && !layout.IsCompactWidth(width) {
				b.WriteString("  " + theme.Hint.Render(u.Description))
			}
			b.WriteString("\n")
		}
		b.WriteString(renderRow(r, i == h.cursor))
		b.WriteString("\n")
	}
	box := theme.Card.Width(cw).Render(strings.TrimRight(b.String(), "\n"))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
}

func renderRow(r lessonRow, selected bool) string {
	progress := fmt.Sprintf("%d/%d", r.info.Completed, r.info.Total)
	var line string
	switch {
	case r.locked:
		return theme.Locked.Render("    🔒 " + r.info.Title)
	case r.info.Done():
		line = theme.Correct.Render("✓ ") + r.info.Title
	case r.active:
		line = lipgloss.NewStyle().Foreground(theme.Accent).Render("★ ") + r.info.Title
	default:
		line = "  " + r.info.Title
	}
	line += "  " + theme.Hint.Render(progress)
	if selected {
		return theme.Selected.Render("  ▸ ") + line
	}
	return "    " + line
}

// Package courses implements the course picker.
package courses

import (
	"context"
	"log/slog"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lingo/internal/router"
	"github.com/abhisek/lingo/internal/screen"
	"github.com/abhisek/lingo/internal/store"
	"github.com/abhisek/lingo/internal/ui/components"
	"github.com/abhisek/lingo/internal/ui/layout"
	"github.com/abhisek/lingo/internal/ui/theme"
)

const toastDuration = 3 * time.Second

type loadedMsg struct {
	Courses []store.Course
	Active  int
	Err     error
}

type selectedMsg struct {
	CourseID int
	Err      error
}

type toastExpiredMsg struct{ ID int }

// CoursesScreen lists the available courses and switches the learner's
// active course.
type CoursesScreen struct {
	deps    screen.Deps
	keys    components.KeyMap
	courses []store.Course
	active  int
	menu    components.Menu
	loaded  bool
	pending bool

	toast   string
	toastID int
}

var _ screen.Screen = (*CoursesScreen)(nil)
var _ screen.KeyHintProvider = (*CoursesScreen)(nil)

// New creates the course picker.
func New(deps screen.Deps) *CoursesScreen {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &CoursesScreen{deps: deps, keys: components.DefaultKeys()}
}

func (c *CoursesScreen) Init() tea.Cmd {
	st, userID := c.deps.Store, c.deps.UserID
	return func() tea.Msg {
		ctx := context.Background()
		list, err := st.Courses(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		user, err := st.UserProgress(ctx, userID)
		if err != nil {
			return loadedMsg{Err: err}
		}
		return loadedMsg{Courses: list, Active: user.ActiveCourseID}
	}
}

func (c *CoursesScreen) Title() string {
	return "Courses"
}

func (c *CoursesScreen) KeyHints() []layout.KeyHint {
	choose := key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Choose"), key.WithDisabled())
	if !c.pending && len(c.courses) > 0 {
		choose.SetEnabled(true)
	}
	return layout.HintsFor(c.keys.Up, c.keys.Down, choose, c.keys.Back)
}

func (c *CoursesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		c.loaded = true
		if msg.Err != nil {
			c.deps.Logger.Error("load courses", "error", msg.Err)
			return c, c.showToast("Something went wrong.")
		}
		c.courses, c.active = msg.Courses, msg.Active
		c.menu = components.NewMenu(c.menuItems())
		return c, nil

	case selectedMsg:
		c.pending = false
		if msg.Err != nil {
			c.deps.Logger.Error("select course", "course_id", msg.CourseID, "error", msg.Err)
			return c, c.showToast("Something went wrong.")
		}
		c.deps.Logger.Info("course selected", "course_id", msg.CourseID)
		return c, pop

	case toastExpiredMsg:
		if msg.ID == c.toastID {
			c.toast = ""
		}
		return c, nil

	case tea.KeyMsg:
		if c.pending {
			return c, nil
		}
		if key.Matches(msg, c.keys.Back) {
			return c, pop
		}
		var cmd tea.Cmd
		c.menu, cmd = c.menu.Update(msg)
		return c, cmd
	}
	return c, nil
}

func (c *CoursesScreen) menuItems() []components.MenuItem {
	items := make([]components.MenuItem, 0, len(c.courses))
	for _, course := range c.courses {
		item := components.MenuItem{Label: course.Title, Action: c.choose(course.ID)}
		if course.ID == c.active {
			item.Note = "active"
		}
		items = append(items, item)
	}
	return items
}

// choose returns the menu action for courseID. Picking the active course
// just closes the picker.
func (c *CoursesScreen) choose(courseID int) func() tea.Cmd {
	return func() tea.Cmd {
		if courseID == c.active {
			return pop
		}
		c.pending = true
		st, userID := c.deps.Store, c.deps.UserID
		return func() tea.Msg {
			err := st.SelectCourse(context.Background(), userID, courseID)
			return selectedMsg{CourseID: courseID, Err: err}
		}
	}
}

func (c *CoursesScreen) showToast(text string) tea.Cmd {
	c.toastID++
	c.toast = text
	id := c.toastID
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{ID: id}
	})
}

func pop() tea.Msg { return router.PopScreenMsg{} }

func (c *CoursesScreen) View(width, height int) string {
	body := theme.Title.Width(width).Render("Language Courses") + "\n\n"
	switch {
	case !c.loaded:
		body += theme.Hint.Width(width).Align(lipgloss.Center).Render("Loading...")
	case len(c.courses) == 0:
		body += theme.Hint.Width(width).Align(lipgloss.Center).Render("No courses yet. Import one with `lingo import`.")
	default:
		box := theme.Card.Width(components.ContentWidth(width)).Render(c.menu.View())
		body += lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
	}
	if c.pending {
		body += "\n\n" + theme.Hint.Width(width).Align(lipgloss.Center).Render("Switching course...")
	}
	if c.toast != "" {
		body += "\n\n" + components.Toast(c.toast, width)
	}
	return lipgloss.PlaceVertical(height, lipgloss.Top, body)
}

package tui

import (
	"fmt"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/petquest/internal/gamify"
	"github.com/sadopc/petquest/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewTodos
	viewFocus
	viewPet
	viewInsights
	viewSettings
)

var viewNames = []string{"Dashboard", "Todos", "Focus", "Pet", "Insights", "Settings"}

// --- Messages ---

type timerStartedMsg struct{}

type focusLoggedMsg struct {
	session store.FocusSession
	result  gamify.ActionResult
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type petTickMsg time.Time

type notificationMsg gamify.Notification

// dataChangedMsg asks every view to reload after a write. A non-empty note
// is shown in the status bar.
type dataChangedMsg struct {
	note string
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHours(secs int64) string {
	h := float64(secs) / 3600
	return fmt.Sprintf("%.1fh", h)
}

func errStatus(err error) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true} }
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

// subjectsOf lists the distinct subjects seen in todos and sessions, with
// the default subject first.
func subjectsOf(todos []store.Todo, sessions []store.FocusSession) []string {
	seen := map[string]bool{store.DefaultFavoriteSubject: true}
	var out []string
	add := func(s *string) {
		if s != nil && *s != "" && !seen[*s] {
			seen[*s] = true
			out = append(out, *s)
		}
	}
	for _, t := range todos {
		add(t.Subject)
	}
	for _, s := range sessions {
		add(s.Subject)
	}
	sort.Strings(out)
	return append([]string{store.DefaultFavoriteSubject}, out...)
}

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/petquest/internal/service"
	"github.com/sadopc/petquest/internal/store"
)

type pomodoroPhase int

const (
	pomodoroIdle pomodoroPhase = iota
	pomodoroWork
	pomodoroShortBreak
	pomodoroLongBreak
	pomodoroCompleted
)

var phaseNames = map[pomodoroPhase]string{
	pomodoroIdle:       "IDLE",
	pomodoroWork:       "WORK",
	pomodoroShortBreak: "SHORT BREAK",
	pomodoroLongBreak:  "LONG BREAK",
	pomodoroCompleted:  "COMPLETED",
}

// focusModel runs pomodoro cycles. Every finished work phase is logged as a
// focus session and every break taken is recorded on the profile.
type focusModel struct {
	svc    *service.Service
	now    func() time.Time
	width  int
	height int

	phase          pomodoroPhase
	completedCount int
	targetCount    int

	remaining  time.Duration
	phaseStart time.Time
	phaseEnd   time.Time

	// Durations from settings
	workDuration      time.Duration
	breakDuration     time.Duration
	longBreakDuration time.Duration

	subjects      []string
	subjectCursor int
}

func newFocusModel(svc *service.Service) focusModel {
	m := focusModel{
		svc:         svc,
		now:         svc.Now,
		phase:       pomodoroIdle,
		targetCount: 4,
		subjects:    []string{store.DefaultFavoriteSubject},
	}
	m.loadSettings()
	return m
}

func (p *focusModel) loadSettings() {
	s := p.svc.Settings
	p.workDuration = time.Duration(s.GetIntSetting("pomodoro_work", 1500)) * time.Second
	p.breakDuration = time.Duration(s.GetIntSetting("pomodoro_break", 300)) * time.Second
	p.longBreakDuration = time.Duration(s.GetIntSetting("pomodoro_long_break", 900)) * time.Second
	p.targetCount = max(1, s.GetIntSetting("pomodoro_count", 4))
}

func (p *focusModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p focusModel) subject() string {
	return p.subjects[p.subjectCursor]
}

type focusDataMsg struct {
	subjects []string
}

func (p focusModel) refresh() tea.Cmd {
	records := p.svc.Records
	return func() tea.Msg {
		return focusDataMsg{subjects: subjectsOf(records.Todos(), records.FocusSessions())}
	}
}

func (p focusModel) running() bool {
	return p.phase == pomodoroWork || p.phase == pomodoroShortBreak || p.phase == pomodoroLongBreak
}

func (p focusModel) update(msg tea.Msg) (focusModel, tea.Cmd) {
	switch msg := msg.(type) {
	case focusDataMsg:
		current := p.subject()
		p.subjects = msg.subjects
		p.subjectCursor = 0
		for i, s := range p.subjects {
			if s == current {
				p.subjectCursor = i
			}
		}
		return p, nil

	case tickMsg:
		if p.running() {
			p.remaining = p.phaseEnd.Sub(p.now())
			if p.remaining <= 0 {
				return p.advancePhase()
			}
		}
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			if p.phase == pomodoroIdle || p.phase == pomodoroCompleted {
				return p.startSession()
			}
		case key.Matches(msg, keys.Stop):
			if p.phase != pomodoroIdle {
				return p.cancelSession()
			}
		case key.Matches(msg, keys.Pause):
			// Skip break
			if p.phase == pomodoroShortBreak || p.phase == pomodoroLongBreak {
				return p.advancePhase()
			}
		case key.Matches(msg, keys.Left):
			if !p.running() && p.subjectCursor > 0 {
				p.subjectCursor--
			}
		case key.Matches(msg, keys.Right):
			if !p.running() && p.subjectCursor < len(p.subjects)-1 {
				p.subjectCursor++
			}
		}
	}
	return p, nil
}

func (p focusModel) startSession() (focusModel, tea.Cmd) {
	p.completedCount = 0
	p.loadSettings()
	return p.startWorkPhase()
}

func (p focusModel) startWorkPhase() (focusModel, tea.Cmd) {
	p.phase = pomodoroWork
	p.remaining = p.workDuration
	p.phaseStart = p.now()
	p.phaseEnd = p.phaseStart.Add(p.workDuration)
	return p, nil
}

func (p focusModel) startBreak(phase pomodoroPhase, d time.Duration) focusModel {
	p.phase = phase
	p.remaining = d
	p.phaseStart = p.now()
	p.phaseEnd = p.phaseStart.Add(d)
	return p
}

func (p focusModel) advancePhase() (focusModel, tea.Cmd) {
	switch p.phase {
	case pomodoroWork:
		p.completedCount++
		subject := p.subject()
		sess := store.FocusSession{
			StartTime: p.phaseStart,
			EndTime:   p.phaseEnd,
			Duration:  int64(p.workDuration / time.Second),
			Subject:   &subject,
		}
		saved, res, err := p.svc.LogFocusSession(sess)
		if err != nil {
			return p, errStatus(err)
		}
		logged := func() tea.Msg { return focusLoggedMsg{session: saved, result: res} }

		if err := p.svc.Engine.RecordBreak(); err != nil {
			return p, errStatus(err)
		}
		// The last pomodoro of the set earns the long break.
		if p.completedCount >= p.targetCount {
			p = p.startBreak(pomodoroLongBreak, p.longBreakDuration)
			return p, tea.Batch(logged, status("Set done, take a long break! \a"))
		}
		p = p.startBreak(pomodoroShortBreak, p.breakDuration)
		return p, tea.Batch(logged, status("Break time! \a"))

	case pomodoroLongBreak:
		p.phase = pomodoroCompleted
		p.remaining = 0
		return p, status("Pomodoro session complete! \a")

	case pomodoroShortBreak:
		return p.startWorkPhase()
	}
	return p, nil
}

// cancelSession drops the running phase; a partial work phase is not
// logged.
func (p focusModel) cancelSession() (focusModel, tea.Cmd) {
	p.phase = pomodoroIdle
	p.remaining = 0
	return p, status("Pomodoro cancelled")
}

func (p focusModel) view() string {
	w := p.width - 4

	title := titleStyle.Render("Pomodoro Timer")

	var timeDisplay, phaseLabel, indicator string
	switch p.phase {
	case pomodoroIdle:
		timeDisplay = timerStyle.Width(w - 6).Render(formatPomodoroTime(p.workDuration))
		phaseLabel = mutedStyle.Render("Ready to start")
		indicator = mutedStyle.Render("Press s to begin")
	case pomodoroWork:
		timeDisplay = accentStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(formatPomodoroTime(p.remaining))
		phaseLabel = accentStyle.Bold(true).Render(phaseNames[p.phase])
		indicator = p.renderProgress()
	case pomodoroShortBreak:
		timeDisplay = successStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(formatPomodoroTime(p.remaining))
		phaseLabel = successStyle.Bold(true).Render(phaseNames[p.phase])
		indicator = p.renderProgress()
	case pomodoroLongBreak:
		timeDisplay = highlightStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(formatPomodoroTime(p.remaining))
		phaseLabel = highlightStyle.Bold(true).Render(phaseNames[p.phase])
		indicator = p.renderProgress()
	case pomodoroCompleted:
		timeDisplay = successStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render("Done!")
		phaseLabel = successStyle.Bold(true).Render("SESSION COMPLETE")
		indicator = p.renderProgress()
	}

	subject := highlightStyle.Render(p.subject())
	if !p.running() && len(p.subjects) > 1 {
		subject = mutedStyle.Render("← ") + subject + mutedStyle.Render(" →")
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		timeDisplay,
		phaseLabel,
		subject,
		"",
		indicator,
	)

	var controls string
	switch p.phase {
	case pomodoroIdle, pomodoroCompleted:
		controls = mutedStyle.Render("s: start  ←/→: subject  q: quit")
	case pomodoroWork:
		controls = mutedStyle.Render("x: cancel")
	case pomodoroShortBreak, pomodoroLongBreak:
		controls = mutedStyle.Render("space: skip break  x: cancel")
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, content, "", controls),
	)
}

func (p focusModel) renderProgress() string {
	var parts []string
	for i := 0; i < p.targetCount; i++ {
		switch {
		case i < p.completedCount:
			parts = append(parts, successStyle.Render("●"))
		case i == p.completedCount && p.phase == pomodoroWork:
			parts = append(parts, accentStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	progress := strings.Join(parts, " ")
	counter := mutedStyle.Render(fmt.Sprintf("  %d/%d", p.completedCount, p.targetCount))
	return progress + counter
}

func formatPomodoroTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}

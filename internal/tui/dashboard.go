package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/petquest/internal/gamify"
	"github.com/sadopc/petquest/internal/service"
	"github.com/sadopc/petquest/internal/stats"
	"github.com/sadopc/petquest/internal/store"
	"github.com/sadopc/petquest/internal/suggest"
)

const maxRecentNotifications = 5

type dashboardModel struct {
	svc    *service.Service
	timer  timerModel
	width  int
	height int

	stats       stats.UserStats
	pet         store.Pet
	suggestions []suggest.Suggestion
	subjects    []string
	todayFocus  int64
	dailyGoal   int64
	recent      []gamify.Notification

	// Subject picker state
	picking      bool
	pickerCursor int
}

func newDashboardModel(svc *service.Service) dashboardModel {
	return dashboardModel{
		svc:   svc,
		timer: newTimerModel(svc),
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) isRunning() bool { return d.timer.running() }
func (d dashboardModel) isPaused() bool  { return d.timer.paused() }
func (d dashboardModel) elapsed() time.Duration {
	return d.timer.currentElapsed()
}

type dashboardDataMsg struct {
	stats       stats.UserStats
	pet         store.Pet
	suggestions []suggest.Suggestion
	subjects    []string
	todayFocus  int64
	dailyGoal   int64
}

func (d dashboardModel) loadData() tea.Cmd {
	svc := d.svc
	return func() tea.Msg {
		now := svc.Now()
		st := svc.Stats()
		sessions := svc.Records.FocusSessions()

		today := stats.DayKey(now)
		var todayFocus int64
		for _, s := range sessions {
			if stats.DayKey(s.StartTime.In(now.Location())) == today {
				todayFocus += s.Duration
			}
		}

		sugg := suggest.Generate(st, svc.Engine.Catalog())
		if len(sugg) > 3 {
			sugg = sugg[:3]
		}
		return dashboardDataMsg{
			stats:       st,
			pet:         svc.Engine.Profile().Pet,
			suggestions: sugg,
			subjects:    subjectsOf(svc.Records.Todos(), sessions),
			todayFocus:  todayFocus,
			dailyGoal:   int64(svc.Settings.GetIntSetting("daily_goal", 7200)),
		}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.stats = msg.stats
		d.pet = msg.pet
		d.suggestions = msg.suggestions
		d.subjects = msg.subjects
		d.todayFocus = msg.todayFocus
		d.dailyGoal = msg.dailyGoal
		return d, nil

	case notificationMsg:
		d.recent = append([]gamify.Notification{gamify.Notification(msg)}, d.recent...)
		if len(d.recent) > maxRecentNotifications {
			d.recent = d.recent[:maxRecentNotifications]
		}
		return d, nil

	case tickMsg:
		d.timer.tick()
		return d, nil

	case tea.KeyMsg:
		d.timer.recordActivity()

		if d.picking {
			return d.updatePicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Start):
			if d.timer.running() {
				return d, nil
			}
			if len(d.subjects) <= 1 {
				return d.startTimer(store.DefaultFavoriteSubject)
			}
			d.picking = true
			d.pickerCursor = 0
			return d, nil

		case key.Matches(msg, keys.Stop):
			return d.stopTimer()

		case key.Matches(msg, keys.Pause):
			d.timer.toggle()
			return d, nil
		}
	}
	return d, nil
}

func (d dashboardModel) updatePicker(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if d.pickerCursor > 0 {
			d.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.pickerCursor < len(d.subjects)-1 {
			d.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		d.picking = false
		return d.startTimer(d.subjects[d.pickerCursor])
	case key.Matches(msg, keys.Back):
		d.picking = false
	}
	return d, nil
}

func (d dashboardModel) startTimer(subject string) (dashboardModel, tea.Cmd) {
	d.timer.start(subject)
	return d, func() tea.Msg { return timerStartedMsg{} }
}

func (d dashboardModel) stopTimer() (dashboardModel, tea.Cmd) {
	if !d.timer.running() {
		return d, nil
	}
	sess, res, logged, err := d.timer.stop()
	if err != nil {
		return d, errStatus(err)
	}
	if !logged {
		return d, status(fmt.Sprintf("Under %d min, not logged", int(minFocusSession.Minutes())))
	}
	return d, func() tea.Msg { return focusLoggedMsg{session: sess, result: res} }
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	timerPanel := d.renderTimerPanel(contentWidth)
	progressPanel := d.renderProgressPanel(contentWidth)

	var bottomPanel string
	if d.picking {
		bottomPanel = d.renderSubjectPicker(contentWidth)
	} else {
		bottomPanel = d.renderFeedPanel(contentWidth)
	}

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, progressPanel, bottomPanel)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	if d.timer.running() {
		timeStr := formatDuration(d.timer.currentElapsed())

		var timeDisplay, indicator string
		if d.timer.paused() {
			timeDisplay = timerPausedStyle.Width(w - 6).Render(timeStr)
			if d.timer.isIdle {
				indicator = warningStyle.Render("⏸  IDLE")
			} else {
				indicator = warningStyle.Render(fmt.Sprintf("⏸  ON A BREAK (%d)", d.timer.breaks))
			}
		} else {
			timeDisplay = timerRunningStyle.Width(w - 6).Render(timeStr)
			indicator = successStyle.Render("●  FOCUSING")
		}

		content := lipgloss.JoinVertical(lipgloss.Center,
			timeDisplay,
			indicator,
			highlightStyle.Render(d.timer.subject),
		)
		return activePanelStyle.Width(w).Render(content)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		timerStyle.Width(w-6).Render("00:00:00"),
		mutedStyle.Render("■  STOPPED"),
		mutedStyle.Render("Press s to start a focus session"),
	)
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderProgressPanel(w int) string {
	st := d.stats
	info := gamify.LevelForXP(st.XP)

	level := goldStyle.Render(fmt.Sprintf("Level %d", st.Level))
	xp := fmt.Sprintf("%s %s", meter(int(info.Progress), 24, lipgloss.NewStyle().Foreground(colorPrimary)),
		mutedStyle.Render(fmt.Sprintf("%d/%d XP  (%d total)", info.XPIntoLevel, info.XPForNextLevel, st.XP)))
	streak := fmt.Sprintf("🔥 %d day streak   🏆 %d achievements", st.Streak, len(st.Achievements))

	goalPct := 0
	if d.dailyGoal > 0 {
		goalPct = int(d.todayFocus * 100 / d.dailyGoal)
	}
	today := fmt.Sprintf("%s %s %s", titleStyle.Render("Today"),
		meter(goalPct, 24, successStyle),
		mutedStyle.Render(fmt.Sprintf("%s of %s", formatHours(d.todayFocus), formatHours(d.dailyGoal))))

	pet := petLine(d.pet)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		level+"  "+xp, streak, today, pet))
}

func (d dashboardModel) renderFeedPanel(w int) string {
	var rows []string
	rows = append(rows, titleStyle.Render("Suggestions"))
	if len(d.suggestions) == 0 {
		rows = append(rows, mutedStyle.Render("  Nothing to suggest right now"))
	}
	for _, s := range d.suggestions {
		rows = append(rows, "  "+priorityDot(s.Priority)+" "+s.Message)
	}

	if len(d.recent) > 0 {
		rows = append(rows, "", titleStyle.Render("Recent"))
		for _, n := range d.recent {
			rows = append(rows, "  "+notificationLine(n))
		}
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderSubjectPicker(w int) string {
	var rows []string
	rows = append(rows, titleStyle.Render("Select Subject"))
	for i, s := range d.subjects {
		cursor := "  "
		style := normalItemStyle
		if i == d.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+s))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: select  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func priorityDot(p suggest.Priority) string {
	switch p {
	case suggest.PriorityHigh:
		return errorStyle.Render("●")
	case suggest.PriorityMedium:
		return warningStyle.Render("●")
	}
	return mutedStyle.Render("●")
}

func notificationLine(n gamify.Notification) string {
	style := successStyle
	switch n.Kind {
	case gamify.KindLevelUp, gamify.KindAchievementUnlocked:
		style = goldStyle
	case gamify.KindPetDied,
		gamify.KindRejectedPetDead,
		gamify.KindRejectedInsufficient,
		gamify.KindRejectedPetAlive,
		gamify.KindRejectedUnknownItem,
		gamify.KindRejectedInvalidInput:
		style = warningStyle
	}
	return style.Render(n.Title) + " " + mutedStyle.Render(n.Body)
}

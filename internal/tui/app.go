// Package tui is the interactive terminal front end.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/petquest/internal/config"
	"github.com/sadopc/petquest/internal/export"
	"github.com/sadopc/petquest/internal/service"
)

// App is the root Bubble Tea model.
type App struct {
	svc    *service.Service
	sink   *NotificationSink
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	todos     todosModel
	focus     focusModel
	pet       petModel
	insights  insightsModel
	settings  settingsModel

	help   help.Model
	status string
}

// NewApp builds the UI over svc. sink may be nil; when set it must also be
// registered as a notifier on the service.
func NewApp(svc *service.Service, sink *NotificationSink) App {
	h := help.New()
	h.ShowAll = false

	return App{
		svc:        svc,
		sink:       sink,
		activeView: viewDashboard,
		dashboard:  newDashboardModel(svc),
		todos:      newTodosModel(svc),
		focus:      newFocusModel(svc),
		pet:        newPetModel(svc),
		insights:   newInsightsModel(svc),
		settings:   newSettingsModel(svc.Settings),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		a.dashboard.Init(),
		a.focus.refresh(),
		a.pet.refresh(),
		tickCmd(),
		petTickCmd(a.petTickInterval()),
	}
	if a.sink != nil {
		cmds = append(cmds, a.sink.listen())
	}
	return tea.Batch(cmds...)
}

func (a App) petTickInterval() time.Duration {
	if d := a.svc.Config.Pet.TickInterval; d > 0 {
		return d
	}
	return config.DefaultPetTick
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.todos.setSize(a.width, contentHeight)
		a.focus.setSize(a.width, contentHeight)
		a.pet.setSize(a.width, contentHeight)
		a.insights.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, a.quit()
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewDashboard)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewTodos)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewFocus)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewPet)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewInsights)
		case key.Matches(msg, keys.Tab6):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// Timers run whichever view is active.
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		cmds = append(cmds, cmd)
		a.focus, cmd = a.focus.update(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	case petTickMsg:
		return a, tea.Batch(petTickCmd(a.petTickInterval()), a.pet.tick(a.svc.Now()))

	case petDataMsg:
		var cmd tea.Cmd
		a.pet, cmd = a.pet.update(msg)
		return a, tea.Batch(cmd, a.dashboard.loadData())

	case notificationMsg:
		a.status = msg.Title
		a.dashboard, _ = a.dashboard.update(msg)
		var next tea.Cmd
		if a.sink != nil {
			next = a.sink.listen()
		}
		return a, next

	case focusLoggedMsg:
		a.status = fmt.Sprintf("Logged %s, +%d XP", formatSeconds(msg.session.Duration), msg.result.XPAwarded)
		return a, a.refreshAll()

	case dataChangedMsg:
		if msg.note != "" {
			a.status = msg.note
		}
		return a, a.refreshAll()

	case statusMsg:
		a.status = msg.text
		return a, nil

	case timerStartedMsg:
		a.status = "Focus started"
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil

	// Data messages go to their owner whichever view is active.
	case dashboardDataMsg:
		a.dashboard, _ = a.dashboard.update(msg)
		return a, nil
	case todosDataMsg:
		a.todos, _ = a.todos.update(msg)
		return a, nil
	case focusDataMsg:
		a.focus, _ = a.focus.update(msg)
		return a, nil
	case insightsDataMsg:
		a.insights, _ = a.insights.update(msg)
		return a, nil
	case settingsDataMsg:
		a.settings, _ = a.settings.update(msg)
		return a, nil
	}

	return a.updateActiveView(msg)
}

// quit stops the stopwatch first so a running focus session is logged.
func (a App) quit() tea.Cmd {
	if !a.dashboard.isRunning() {
		return tea.Quit
	}
	timer := a.dashboard.timer
	return tea.Sequence(func() tea.Msg {
		if _, _, _, err := timer.stop(); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return nil
	}, tea.Quit)
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewTodos:
		a.todos, cmd = a.todos.update(msg)
	case viewFocus:
		a.focus, cmd = a.focus.update(msg)
	case viewPet:
		a.pet, cmd = a.pet.update(msg)
	case viewInsights:
		a.insights, cmd = a.insights.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.picking
	case viewTodos:
		return a.todos.formActive
	case viewPet:
		return a.pet.formActive || a.pet.shopping
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewTodos:
		return a.todos.refresh()
	case viewFocus:
		return a.focus.refresh()
	case viewPet:
		return a.pet.refresh()
	case viewInsights:
		return a.insights.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) refreshAll() tea.Cmd {
	return tea.Batch(
		a.dashboard.loadData(),
		a.todos.refresh(),
		a.focus.refresh(),
		a.pet.refresh(),
		a.insights.refresh(),
	)
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewTodos:
		content = a.todos.view()
	case viewFocus:
		content = a.focus.view()
	case viewPet:
		content = a.pet.view()
	case viewInsights:
		content = a.insights.view()
	case viewSettings:
		content = a.settings.view()
	}

	contentHeight := max(a.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("petquest")
	level := goldStyle.Render(fmt.Sprintf(" Lv %d", a.dashboard.stats.Level))
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(level)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, level, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	timerInfo := ""
	if a.dashboard.isRunning() {
		elapsed := a.dashboard.elapsed()
		timerInfo = successStyle.Render(" ● " + formatDuration(elapsed))
		if a.dashboard.isPaused() {
			timerInfo = warningStyle.Render(" ⏸ " + formatDuration(elapsed))
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV", "JSON"}

func (a App) renderExportPicker() string {
	var rows []string
	rows = append(rows, titleStyle.Render("Export Format"))
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	svc := a.svc
	return func() tea.Msg {
		snap := svc.Snapshot()
		home, _ := os.UserHomeDir()
		dateStr := svc.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("petquest-sessions-%s.csv", dateStr))
			if err := export.ToCSV(snap.FocusSessions, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("petquest-export-%s.json", dateStr))
			if err := export.ToJSON(snap, svc.Now(), path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}
		return exportDoneMsg{path: path}
	}
}

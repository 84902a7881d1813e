package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/petquest/internal/gamify"
	"github.com/sadopc/petquest/internal/service"
	"github.com/sadopc/petquest/internal/stats"
	"github.com/sadopc/petquest/internal/suggest"
)

type insightsMode int

const (
	insightsHours insightsMode = iota
	insightsSubjects
	insightsAchievements
)

var insightsModeNames = []string{"Hours", "Subjects", "Achievements"}

type insightsModel struct {
	svc    *service.Service
	width  int
	height int

	mode        insightsMode
	stats       stats.UserStats
	suggestions []suggest.Suggestion
	catalog     *gamify.Catalog

	chart barchart.Model
}

func newInsightsModel(svc *service.Service) insightsModel {
	return insightsModel{
		svc:     svc,
		catalog: svc.Engine.Catalog(),
		chart:   barchart.New(60, 12),
	}
}

func (r *insightsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type insightsDataMsg struct {
	stats       stats.UserStats
	suggestions []suggest.Suggestion
}

func (r insightsModel) refresh() tea.Cmd {
	svc := r.svc
	return func() tea.Msg {
		st := svc.Stats()
		return insightsDataMsg{stats: st, suggestions: suggest.Generate(st, svc.Engine.Catalog())}
	}
}

func (r insightsModel) update(msg tea.Msg) (insightsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case insightsDataMsg:
		r.stats = msg.stats
		r.suggestions = msg.suggestions
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.mode = (r.mode + insightsMode(len(insightsModeNames)) - 1) % insightsMode(len(insightsModeNames))
			r.buildChart()
		case key.Matches(msg, keys.Right):
			r.mode = (r.mode + 1) % insightsMode(len(insightsModeNames))
			r.buildChart()
		}
	}
	return r, nil
}

func (r *insightsModel) buildChart() {
	chartWidth := max(r.width-8, 20)
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}
	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	switch r.mode {
	case insightsHours:
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		for h, secs := range r.stats.ProductiveHours {
			label := ""
			if h%3 == 0 {
				label = fmt.Sprintf("%02d", h)
			}
			bars = append(bars, barchart.BarData{
				Label:  label,
				Values: []barchart.BarValue{{Name: fmt.Sprintf("%02d:00", h), Value: secs / 3600, Style: style}},
			})
		}
	case insightsSubjects:
		for i, name := range r.subjectNames() {
			ss := r.stats.SubjectStats[name]
			style := lipgloss.NewStyle().Foreground(subjectColors[i%len(subjectColors)])
			bars = append(bars, barchart.BarData{
				Label:  truncate(name, 8),
				Values: []barchart.BarValue{{Name: name, Value: float64(ss.TotalTime) / 3600, Style: style}},
			})
		}
	default:
		return
	}

	if len(bars) == 0 {
		bars = []barchart.BarData{{Values: []barchart.BarValue{{Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}}}
	}
	r.chart.PushAll(bars)
	r.chart.Draw()
}

// subjectNames orders subjects by total time, largest first.
func (r insightsModel) subjectNames() []string {
	names := make([]string, 0, len(r.stats.SubjectStats))
	for name := range r.stats.SubjectStats {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := r.stats.SubjectStats[names[i]], r.stats.SubjectStats[names[j]]
		if a.TotalTime != b.TotalTime {
			return a.TotalTime > b.TotalTime
		}
		return names[i] < names[j]
	})
	return names
}

func (r insightsModel) view() string {
	w := r.width - 4

	var tabs []string
	for i, name := range insightsModeNames {
		if insightsMode(i) == r.mode {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		append([]string{titleStyle.Render("Insights"), "  "}, tabs...)...,
	)

	var body string
	switch r.mode {
	case insightsHours:
		body = lipgloss.JoinVertical(lipgloss.Left, r.chart.View(), "", r.renderHoursSummary())
	case insightsSubjects:
		body = lipgloss.JoinVertical(lipgloss.Left, r.chart.View(), "", r.renderSubjectTable(w))
	case insightsAchievements:
		body = r.renderAchievements()
	}

	nav := mutedStyle.Render("  ←/→: switch view")
	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", r.renderSuggestions(), "", nav),
	)
}

func (r insightsModel) renderHoursSummary() string {
	st := r.stats
	line := fmt.Sprintf("  %d sessions, %.1fh total, %.1fh this week (avg %.1fh/week)",
		st.FocusSessions, st.TotalFocusTime, st.WeeklyFocusTime, st.AverageWeeklyFocusTime)
	if h, ok := st.MostProductiveHour(); ok {
		line += highlightStyle.Render(fmt.Sprintf("  best hour %02d:00", h))
	}
	return mutedStyle.Render(line)
}

func (r insightsModel) renderSubjectTable(w int) string {
	names := r.subjectNames()
	if len(names) == 0 {
		return mutedStyle.Render("  No focus sessions yet")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-20s %10s %8s %8s", "Subject", "Time", "Sessions", "Score")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 50))))
	for i, name := range names {
		ss := r.stats.SubjectStats[name]
		dot := lipgloss.NewStyle().Foreground(subjectColors[i%len(subjectColors)]).Render("●")
		rows = append(rows, fmt.Sprintf("  %s %-18s %10s %8d %8.2f",
			dot, truncate(name, 18), formatSeconds(ss.TotalTime), ss.SessionsCount, ss.AverageScore))
	}
	return strings.Join(rows, "\n")
}

func (r insightsModel) renderAchievements() string {
	unlocked := make(map[string]bool, len(r.stats.Achievements))
	for _, id := range r.stats.Achievements {
		unlocked[id] = true
	}

	var rows []string
	rows = append(rows, goldStyle.Render(fmt.Sprintf("%d/%d unlocked", len(r.stats.Achievements), r.catalog.Len())))
	for _, a := range r.catalog.All() {
		switch {
		case unlocked[a.ID]:
			rows = append(rows, "  "+goldStyle.Render("★ "+a.Name)+" "+mutedStyle.Render(a.Description))
		case a.Secret:
			rows = append(rows, mutedStyle.Render("  ? ???"))
		default:
			pct := int(a.Condition.Progress(r.stats) * 100)
			rows = append(rows, fmt.Sprintf("  %s %s %s", mutedStyle.Render("☆ "+a.Name),
				meter(pct, 10, highlightStyle), mutedStyle.Render(a.Description)))
		}
	}
	return strings.Join(rows, "\n")
}

func (r insightsModel) renderSuggestions() string {
	if len(r.suggestions) == 0 {
		return ""
	}
	rows := []string{titleStyle.Render("Suggestions")}
	for _, s := range r.suggestions {
		rows = append(rows, "  "+priorityDot(s.Priority)+" "+s.Message)
	}
	return strings.Join(rows, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

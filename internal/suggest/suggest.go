// Package suggest produces ranked, human-readable nudges from a stats
// snapshot. Every rule is independent and side-effect free.
package suggest

import (
	"fmt"
	"math"
	"sort"

	"github.com/sadopc/petquest/internal/gamify"
	"github.com/sadopc/petquest/internal/stats"
)

// MaxSuggestions bounds the result of Generate.
const MaxSuggestions = 5

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

type Type string

const (
	TypeFocus       Type = "focus"
	TypeWellbeing   Type = "wellbeing"
	TypeTasks       Type = "tasks"
	TypePlanning    Type = "planning"
	TypeAchievement Type = "achievement"
	TypeStreak      Type = "streak"
	TypePattern     Type = "pattern"
	TypeLevel       Type = "level"
)

type Suggestion struct {
	ID       string   `json:"id"`
	Message  string   `json:"message"`
	Type     Type     `json:"type"`
	Priority Priority `json:"priority"`
	Action   string   `json:"action,omitempty"`
}

type rule func(st stats.UserStats, catalog *gamify.Catalog) (Suggestion, bool)

var rules = []rule{
	optimalFocusHour,
	breakBalance,
	completionRate,
	planningAhead,
	nextAchievement,
	streakStatus,
	timeOfDay,
	levelProximity,
	weeklyFocus,
}

// Generate runs every rule, orders the results high > medium > low keeping
// rule order within a priority, and returns at most MaxSuggestions.
func Generate(st stats.UserStats, catalog *gamify.Catalog) []Suggestion {
	var out []Suggestion
	for _, r := range rules {
		if s, ok := r(st, catalog); ok {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.rank() > out[j].Priority.rank()
	})
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

func ratio(num, den float64) (float64, bool) {
	if den <= 0 {
		return 0, false
	}
	return num / den, true
}

func optimalFocusHour(st stats.UserStats, _ *gamify.Catalog) (Suggestion, bool) {
	hour, ok := st.MostProductiveHour()
	if !ok {
		return Suggestion{
			ID:       "first-focus",
			Message:  "Start a 25-minute focus session to see when you work best.",
			Type:     TypeFocus,
			Priority: PriorityMedium,
			Action:   "start_focus",
		}, true
	}
	return Suggestion{
		ID:       "optimal-focus-hour",
		Message:  fmt.Sprintf("You focus best around %02d:00. Schedule demanding work then.", hour),
		Type:     TypeFocus,
		Priority: PriorityLow,
		Action:   "schedule_focus",
	}, true
}

func breakBalance(st stats.UserStats, _ *gamify.Catalog) (Suggestion, bool) {
	if st.FocusSessions < 3 {
		return Suggestion{}, false
	}
	perSession, ok := ratio(float64(st.TotalBreaks), float64(st.FocusSessions))
	if !ok || perSession >= 0.5 {
		return Suggestion{}, false
	}
	return Suggestion{
		ID:       "break-balance",
		Message:  "You rarely take breaks. A short pause every session keeps focus sharp.",
		Type:     TypeWellbeing,
		Priority: PriorityHigh,
		Action:   "take_break",
	}, true
}

func completionRate(st stats.UserStats, _ *gamify.Catalog) (Suggestion, bool) {
	rate, ok := ratio(float64(st.CompletedTodos), float64(st.TotalTodos))
	if !ok {
		return Suggestion{}, false
	}
	pct := int(math.Round(rate * 100))
	switch {
	case rate < 0.5:
		return Suggestion{
			ID:       "completion-low",
			Message:  fmt.Sprintf("Only %d%% of your todos are done. Try splitting big tasks into smaller steps.", pct),
			Type:     TypeTasks,
			Priority: PriorityHigh,
			Action:   "review_todos",
		}, true
	case rate < 0.8:
		return Suggestion{
			ID:       "completion-medium",
			Message:  fmt.Sprintf("%d%% of your todos are done. Pick one open task and finish it today.", pct),
			Type:     TypeTasks,
			Priority: PriorityMedium,
			Action:   "review_todos",
		}, true
	default:
		return Suggestion{
			ID:       "completion-high",
			Message:  fmt.Sprintf("%d%% of your todos are done. Great follow-through!", pct),
			Type:     TypeTasks,
			Priority: PriorityLow,
		}, true
	}
}

func planningAhead(st stats.UserStats, _ *gamify.Catalog) (Suggestion, bool) {
	if st.PlanBoardItems == 0 {
		return Suggestion{
			ID:       "plan-start",
			Message:  "Your plan board is empty. Add a goal or an upcoming event.",
			Type:     TypePlanning,
			Priority: PriorityMedium,
			Action:   "open_plan_board",
		}, true
	}
	ahead, ok := ratio(float64(st.PlansCreatedInAdvance), float64(st.PlanBoardItems))
	if !ok || ahead >= 0.3 {
		return Suggestion{}, false
	}
	return Suggestion{
		ID:       "plan-ahead",
		Message:  "Most of your plans are for today or tomorrow. Try planning a few days ahead.",
		Type:     TypePlanning,
		Priority: PriorityLow,
		Action:   "open_plan_board",
	}, true
}

// nextAchievement points at the cheapest visible locked achievement, the
// one with the smallest XP reward. Ties go to the one closest to
// completion, then catalog order.
func nextAchievement(st stats.UserStats, catalog *gamify.Catalog) (Suggestion, bool) {
	if catalog == nil {
		return Suggestion{}, false
	}
	unlocked := make(map[string]bool, len(st.Achievements))
	for _, id := range st.Achievements {
		unlocked[id] = true
	}

	var best gamify.Achievement
	bestProgress := -1.0
	for _, a := range catalog.All() {
		if a.Secret || unlocked[a.ID] || a.Condition.Met(st) {
			continue
		}
		p := a.Condition.Progress(st)
		switch {
		case bestProgress < 0,
			a.Reward.XP < best.Reward.XP,
			a.Reward.XP == best.Reward.XP && p > bestProgress:
			best, bestProgress = a, p
		}
	}
	if bestProgress < 0 {
		return Suggestion{}, false
	}

	prio := PriorityLow
	if bestProgress >= 0.75 {
		prio = PriorityMedium
	}
	return Suggestion{
		ID: "next-achievement",
		Message: fmt.Sprintf("You're %d%% of the way to %q: %s (+%d XP).",
			int(bestProgress*100), best.Name, best.Description, best.Reward.XP),
		Type:     TypeAchievement,
		Priority: prio,
		Action:   "view_achievements",
	}, true
}

func streakStatus(st stats.UserStats, _ *gamify.Catalog) (Suggestion, bool) {
	switch {
	case st.Streak >= 7:
		return Suggestion{
			ID:       "streak-strong",
			Message:  fmt.Sprintf("%d days in a row. Keep the streak alive!", st.Streak),
			Type:     TypeStreak,
			Priority: PriorityLow,
		}, true
	case st.Streak > 0 && st.Streak < 3:
		return Suggestion{
			ID:       "streak-build",
			Message:  "Come back tomorrow to grow your streak.",
			Type:     TypeStreak,
			Priority: PriorityMedium,
		}, true
	}
	return Suggestion{}, false
}

func timeOfDay(st stats.UserStats, _ *gamify.Catalog) (Suggestion, bool) {
	switch {
	case st.NightOwlSessions >= 3 && st.NightOwlSessions > st.EarlyBirdSessions:
		return Suggestion{
			ID:       "pattern-night",
			Message:  "You do a lot of late-night sessions. Protect your sleep and try moving one earlier.",
			Type:     TypePattern,
			Priority: PriorityMedium,
		}, true
	case st.EarlyBirdSessions >= 3 && st.EarlyBirdSessions > st.NightOwlSessions:
		return Suggestion{
			ID:       "pattern-morning",
			Message:  "You're a morning person. Tackle your hardest todo before 8 AM.",
			Type:     TypePattern,
			Priority: PriorityLow,
		}, true
	}
	return Suggestion{}, false
}

func levelProximity(st stats.UserStats, _ *gamify.Catalog) (Suggestion, bool) {
	needed := gamify.TotalXPForLevel(st.Level+1) - st.XP
	if needed <= 0 || needed > 50 {
		return Suggestion{}, false
	}
	todos := int(math.Ceil(float64(needed) / float64(gamify.XPFor(gamify.ActionCompleteTodo))))
	return Suggestion{
		ID:       "level-close",
		Message:  fmt.Sprintf("Only %d XP to level %d. That's %d completed todo(s).", needed, st.Level+1, todos),
		Type:     TypeLevel,
		Priority: PriorityMedium,
		Action:   "review_todos",
	}, true
}

func weeklyFocus(st stats.UserStats, _ *gamify.Catalog) (Suggestion, bool) {
	r, ok := ratio(st.WeeklyFocusTime, st.AverageWeeklyFocusTime)
	if !ok {
		return Suggestion{}, false
	}
	switch {
	case r < 0.5:
		return Suggestion{
			ID:       "weekly-below",
			Message:  fmt.Sprintf("%.1fh of focus this week, below your %.1fh average.", st.WeeklyFocusTime, st.AverageWeeklyFocusTime),
			Type:     TypeFocus,
			Priority: PriorityHigh,
			Action:   "start_focus",
		}, true
	case r > 1.2:
		return Suggestion{
			ID:       "weekly-above",
			Message:  fmt.Sprintf("%.1fh of focus this week, above your %.1fh average. Nice!", st.WeeklyFocusTime, st.AverageWeeklyFocusTime),
			Type:     TypeFocus,
			Priority: PriorityLow,
		}, true
	}
	return Suggestion{}, false
}

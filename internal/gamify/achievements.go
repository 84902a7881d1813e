package gamify

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/petquest/internal/stats"
	"github.com/sadopc/petquest/internal/store"
)

//go:embed catalog.json
var defaultCatalogJSON []byte

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// Metric names one numeric field of stats.UserStats. Conditions compare a
// metric with ">= threshold", so every condition is monotonic in its field.
type Metric string

const (
	MetricTotalTodos                 Metric = "total_todos"
	MetricCompletedTodos             Metric = "completed_todos"
	MetricTotalFocusTime             Metric = "total_focus_time"
	MetricPlanBoardItems             Metric = "plan_board_items"
	MetricStreak                     Metric = "streak"
	MetricLevel                      Metric = "level"
	MetricXP                         Metric = "xp"
	MetricFocusSessions              Metric = "focus_sessions"
	MetricEarlyBirdSessions          Metric = "early_bird_sessions"
	MetricNightOwlSessions           Metric = "night_owl_sessions"
	MetricPerfectDays                Metric = "perfect_days"
	MetricLongestSession             Metric = "longest_session"
	MetricWeekendSessions            Metric = "weekend_sessions"
	MetricTotalBreaks                Metric = "total_breaks"
	MetricCompletedHighPriorityTodos Metric = "completed_high_priority_todos"
	MetricPlansCreatedInAdvance      Metric = "plans_created_in_advance"
	MetricCompletedOnTimeTodos       Metric = "completed_on_time_todos"
	MetricWeeklyFocusTime            Metric = "weekly_focus_time"
	MetricSubjects                   Metric = "subjects"
)

// Value reads the metric from st. The second result is false for unknown
// metrics.
func (m Metric) Value(st stats.UserStats) (float64, bool) {
	switch m {
	case MetricTotalTodos:
		return float64(st.TotalTodos), true
	case MetricCompletedTodos:
		return float64(st.CompletedTodos), true
	case MetricTotalFocusTime:
		return st.TotalFocusTime, true
	case MetricPlanBoardItems:
		return float64(st.PlanBoardItems), true
	case MetricStreak:
		return float64(st.Streak), true
	case MetricLevel:
		return float64(st.Level), true
	case MetricXP:
		return float64(st.XP), true
	case MetricFocusSessions:
		return float64(st.FocusSessions), true
	case MetricEarlyBirdSessions:
		return float64(st.EarlyBirdSessions), true
	case MetricNightOwlSessions:
		return float64(st.NightOwlSessions), true
	case MetricPerfectDays:
		return float64(st.PerfectDays), true
	case MetricLongestSession:
		return st.LongestSession, true
	case MetricWeekendSessions:
		return float64(st.WeekendSessions), true
	case MetricTotalBreaks:
		return float64(st.TotalBreaks), true
	case MetricCompletedHighPriorityTodos:
		return float64(st.CompletedHighPriorityTodos), true
	case MetricPlansCreatedInAdvance:
		return float64(st.PlansCreatedInAdvance), true
	case MetricCompletedOnTimeTodos:
		return float64(st.CompletedOnTimeTodos), true
	case MetricWeeklyFocusTime:
		return st.WeeklyFocusTime, true
	case MetricSubjects:
		return float64(len(st.SubjectStats)), true
	default:
		return 0, false
	}
}

type Condition struct {
	Metric    Metric  `json:"metric"`
	Threshold float64 `json:"threshold"`
}

func (c Condition) Met(st stats.UserStats) bool {
	v, ok := c.Metric.Value(st)
	return ok && v >= c.Threshold
}

// Progress is how far st is towards the threshold, in [0,1].
func (c Condition) Progress(st stats.UserStats) float64 {
	if c.Threshold <= 0 {
		return 1
	}
	v, _ := c.Metric.Value(st)
	return min(max(v/c.Threshold, 0), 1)
}

type Reward struct {
	XP    int    `json:"xp"`
	Title string `json:"title,omitempty"`
	Badge string `json:"badge,omitempty"`
}

type Achievement struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Condition   Condition `json:"condition"`
	Reward      Reward    `json:"reward"`
	Tier        Tier      `json:"tier,omitempty"`
	Secret      bool      `json:"secret,omitempty"`
}

// Catalog is the ordered, read-only set of achievements.
type Catalog struct {
	items []Achievement
	byID  map[string]int
}

// ParseCatalog decodes and validates a JSON catalog: ids must be unique
// and non-empty, metrics known, rewards non-negative.
func ParseCatalog(data []byte) (*Catalog, error) {
	var items []Achievement
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	c := &Catalog{items: items, byID: make(map[string]int, len(items))}
	for i, a := range items {
		if strings.TrimSpace(a.ID) == "" {
			return nil, fmt.Errorf("catalog entry %d: empty id", i)
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i, a.ID)
		}
		if _, ok := a.Condition.Metric.Value(stats.UserStats{}); !ok {
			return nil, fmt.Errorf("achievement %q: unknown metric %q", a.ID, a.Condition.Metric)
		}
		if a.Reward.XP < 0 {
			return nil, fmt.Errorf("achievement %q: negative reward", a.ID)
		}
		c.byID[a.ID] = i
	}
	return c, nil
}

// DefaultCatalog returns the embedded catalog. It panics if the embedded
// file is invalid, which catalog tests guard against.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogJSON)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns the achievements in catalog order.
func (c *Catalog) All() []Achievement {
	return append([]Achievement(nil), c.items...)
}

func (c *Catalog) Len() int { return len(c.items) }

func (c *Catalog) Lookup(id string) (Achievement, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Achievement{}, false
	}
	return c.items[i], true
}

// CheckAndUnlock unlocks every achievement whose condition holds at now and
// awards its XP. The unlocked set is saved once, and only when it changed.
func (e *Engine) CheckAndUnlock(now time.Time) ([]Achievement, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.profiles.LoadProfile()
	unlocked := e.unlockLocked(now, &p)
	if len(unlocked) == 0 {
		return nil, nil
	}
	if err := e.saveLocked(p); err != nil {
		return unlocked, err
	}
	return unlocked, nil
}

// unlockLocked evaluates the catalog in order against p. Rewards can raise
// the level or XP enough to satisfy further conditions, so passes repeat
// until one unlocks nothing.
func (e *Engine) unlockLocked(now time.Time, p *store.Profile) []Achievement {
	var unlocked []Achievement
	for {
		st := e.statsLocked(now, *p)
		n := len(unlocked)
		for _, a := range e.catalog.items {
			if p.HasAchievement(a.ID) || !a.Condition.Met(st) {
				continue
			}
			p.Achievements = append(p.Achievements, a.ID)
			unlocked = append(unlocked, a)

			e.log.Info("achievement unlocked", zap.String("id", a.ID), zap.Int("xp", a.Reward.XP))
			e.notify(newNotification(KindAchievementUnlocked, ChannelAchievements,
				"Achievement unlocked: "+a.Name,
				fmt.Sprintf("%s (+%d XP)", a.Description, a.Reward.XP)))
			e.awardLocked(p, a.Reward.XP)
		}
		if len(unlocked) == n {
			return unlocked
		}
	}
}

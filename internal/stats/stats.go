// Package stats derives the UserStats snapshot from raw activity records.
// Compute is pure: identical records and the same now give identical output.
package stats

import (
	"math"
	"time"

	"github.com/sadopc/petquest/internal/store"
)

const (
	earlyBirdHour = 8
	nightOwlHour  = 22
	planAhead     = 24 * time.Hour
	week          = 7 * 24 * time.Hour
)

type SubjectStats struct {
	TotalTime     int64     `json:"totalTime"` // seconds
	AverageScore  float64   `json:"averageScore"`
	SessionsCount int       `json:"sessionsCount"`
	LastStudied   time.Time `json:"lastStudied"`
}

type UserStats struct {
	TotalTodos                 int                      `json:"totalTodos"`
	CompletedTodos             int                      `json:"completedTodos"`
	TotalFocusTime             float64                  `json:"totalFocusTime"` // hours, 1 decimal
	PlanBoardItems             int                      `json:"planBoardItems"`
	Streak                     int                      `json:"streak"`
	Level                      int                      `json:"level"`
	XP                         int                      `json:"xp"`
	FocusSessions              int                      `json:"focusSessions"`
	EarlyBirdSessions          int                      `json:"earlyBirdSessions"`
	NightOwlSessions           int                      `json:"nightOwlSessions"`
	PerfectDays                int                      `json:"perfectDays"`
	LongestSession             float64                  `json:"longestSession"` // minutes
	WeekendSessions            int                      `json:"weekendSessions"`
	TotalBreaks                int                      `json:"totalBreaks"`
	CompletedHighPriorityTodos int                      `json:"completedHighPriorityTodos"`
	PlansCreatedInAdvance      int                      `json:"plansCreatedInAdvance"`
	CompletedOnTimeTodos       int                      `json:"completedOnTimeTodos"`
	ProductiveHours            [24]float64              `json:"productiveHours"` // seconds per start hour
	SubjectStats               map[string]*SubjectStats `json:"subjectStats"`
	Achievements               []string                 `json:"achievements"`
	WeeklyFocusTime            float64                  `json:"weeklyFocusTime"`        // hours in the last 7 days
	AverageWeeklyFocusTime     float64                  `json:"averageWeeklyFocusTime"` // hours per week since first session
}

// Input is everything Compute reads.
type Input struct {
	Todos    []store.Todo
	Sessions []store.FocusSession
	Plans    []store.PlanBoardItem
	Profile  store.Profile
}

// Compute builds the stats snapshot. Hour-of-day and calendar-day
// classification happen in now's location.
func Compute(now time.Time, in Input) UserStats {
	loc := now.Location()
	st := UserStats{
		TotalTodos:     len(in.Todos),
		PlanBoardItems: len(in.Plans),
		Streak:         in.Profile.Streak,
		Level:          in.Profile.Level,
		XP:             in.Profile.XP,
		FocusSessions:  len(in.Sessions),
		SubjectStats:   map[string]*SubjectStats{},
		Achievements:   append([]string{}, in.Profile.Achievements...),
		TotalBreaks:    in.Profile.TotalBreaks,
	}

	for _, t := range in.Todos {
		if !t.Completed {
			continue
		}
		st.CompletedTodos++
		if t.Priority == store.PriorityHigh {
			st.CompletedHighPriorityTodos++
		}
		if completedOnTime(t) {
			st.CompletedOnTimeTodos++
		}
	}

	var totalSecs, longest, weeklySecs int64
	var first time.Time
	scoreSums := map[string]float64{}
	scoreCounts := map[string]int{}

	for _, s := range in.Sessions {
		dur := max(s.Duration, 0)
		start := s.StartTime.In(loc)
		totalSecs += dur
		longest = max(longest, dur)

		hour := start.Hour()
		st.ProductiveHours[hour] += float64(dur)
		if hour < earlyBirdHour {
			st.EarlyBirdSessions++
		}
		if hour >= nightOwlHour {
			st.NightOwlSessions++
		}
		if wd := start.Weekday(); wd == time.Sunday || wd == time.Saturday {
			st.WeekendSessions++
		}
		if s.Breaks != nil {
			st.TotalBreaks += max(*s.Breaks, 0)
		}
		if !s.StartTime.After(now) && now.Sub(s.StartTime) < week {
			weeklySecs += dur
		}
		if first.IsZero() || s.StartTime.Before(first) {
			first = s.StartTime
		}

		if s.Subject != nil && *s.Subject != "" {
			subj := *s.Subject
			ss, ok := st.SubjectStats[subj]
			if !ok {
				ss = &SubjectStats{}
				st.SubjectStats[subj] = ss
			}
			ss.TotalTime += dur
			ss.SessionsCount++
			if s.StartTime.After(ss.LastStudied) {
				ss.LastStudied = s.StartTime
			}
			if s.FocusScore != nil {
				scoreSums[subj] += *s.FocusScore
				scoreCounts[subj]++
			}
		}
	}
	for subj, n := range scoreCounts {
		st.SubjectStats[subj].AverageScore = scoreSums[subj] / float64(n)
	}

	st.TotalFocusTime = round1(float64(totalSecs) / 3600)
	st.LongestSession = float64(longest) / 60
	st.WeeklyFocusTime = round1(float64(weeklySecs) / 3600)
	if !first.IsZero() {
		weeks := math.Max(1, math.Ceil(float64(now.Sub(first))/float64(week)))
		st.AverageWeeklyFocusTime = round1(float64(totalSecs) / 3600 / weeks)
	}

	for _, p := range in.Plans {
		if p.Date.Sub(now) > planAhead {
			st.PlansCreatedInAdvance++
		}
	}

	st.PerfectDays = perfectDays(now, in.Todos)
	return st
}

func completedOnTime(t store.Todo) bool {
	return t.Completed && t.CompletedAt != nil && t.DueDate != nil && !t.CompletedAt.After(*t.DueDate)
}

// perfectDays counts calendar days up to today on which at least one todo
// was due and every todo due that day was completed on time.
func perfectDays(now time.Time, todos []store.Todo) int {
	loc := now.Location()
	today := DayKey(now)
	perfect := map[string]bool{}
	for _, t := range todos {
		if t.DueDate == nil {
			continue
		}
		day := DayKey(t.DueDate.In(loc))
		if day > today {
			continue
		}
		ok, seen := perfect[day]
		if !seen {
			ok = true
		}
		perfect[day] = ok && completedOnTime(t)
	}

	n := 0
	for _, ok := range perfect {
		if ok {
			n++
		}
	}
	return n
}

// DayKey formats t's calendar day as YYYY-MM-DD in t's own location.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// FavoriteSubject returns the subject with the largest total focus time.
// Ties go to the lexicographically smallest name; fallback when there are
// no subjects.
func (s UserStats) FavoriteSubject(fallback string) (name string, seconds int64) {
	name = fallback
	for subj, ss := range s.SubjectStats {
		if ss.TotalTime > seconds || (ss.TotalTime == seconds && seconds > 0 && subj < name) {
			name, seconds = subj, ss.TotalTime
		}
	}
	return name, seconds
}

// CompletionRate is completed/total todos, 0 when there are none.
func (s UserStats) CompletionRate() float64 {
	if s.TotalTodos == 0 {
		return 0
	}
	return float64(s.CompletedTodos) / float64(s.TotalTodos)
}

// MostProductiveHour returns the start hour with the most focus time, and
// false when no focus time was recorded.
func (s UserStats) MostProductiveHour() (int, bool) {
	best, bestSecs := 0, 0.0
	for h, secs := range s.ProductiveHours {
		if secs > bestSecs {
			best, bestSecs = h, secs
		}
	}
	return best, bestSecs > 0
}

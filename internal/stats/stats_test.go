package stats

import (
	"math"
	"testing"
	"time"

	"github.com/sadopc/petquest/internal/store"
)

// Wednesday
var now = time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func at(day, hour, min int) time.Time {
	return time.Date(2025, 3, day, hour, min, 0, 0, time.UTC)
}

func TestComputeEmpty(t *testing.T) {
	st := Compute(now, Input{Profile: store.DefaultProfile(now)})

	if st.TotalTodos != 0 || st.CompletedTodos != 0 || st.TotalFocusTime != 0 {
		t.Fatalf("expected zero totals, got %+v", st)
	}
	if st.ProductiveHours != [24]float64{} {
		t.Fatal("expected 24 zero productive hours")
	}
	if st.LongestSession != 0 || st.PerfectDays != 0 || st.TotalBreaks != 0 {
		t.Fatal("expected zero derived counters")
	}
	if st.Level != 1 {
		t.Fatalf("level should come from profile, got %d", st.Level)
	}
	if st.SubjectStats == nil {
		t.Fatal("subject stats map should be initialized")
	}
}

func TestComputeEndToEndScenario(t *testing.T) {
	in := Input{
		Todos: []store.Todo{
			{ID: "t1", Title: "x", Completed: true, Priority: store.PriorityHigh, CompletedAt: ptr(at(11, 9, 0))},
		},
		Sessions: []store.FocusSession{
			{ID: "s1", StartTime: at(11, 7, 30), Duration: 3661},
		},
		Profile: store.DefaultProfile(now),
	}
	st := Compute(now, in)

	if st.CompletedHighPriorityTodos != 1 {
		t.Errorf("completedHighPriorityTodos = %d, want 1", st.CompletedHighPriorityTodos)
	}
	if st.EarlyBirdSessions != 1 {
		t.Errorf("earlyBirdSessions = %d, want 1", st.EarlyBirdSessions)
	}
	if math.Abs(st.LongestSession-61.0) > 0.05 {
		t.Errorf("longestSession = %v, want ~61.0", st.LongestSession)
	}
	if st.TotalFocusTime != 1.0 {
		t.Errorf("totalFocusTime = %v, want 1.0", st.TotalFocusTime)
	}
	if st.ProductiveHours[7] != 3661 {
		t.Errorf("productiveHours[7] = %v, want 3661", st.ProductiveHours[7])
	}
}

func TestComputeSessionClassification(t *testing.T) {
	in := Input{
		Sessions: []store.FocusSession{
			{StartTime: at(8, 10, 0), Duration: 600},   // Saturday
			{StartTime: at(9, 22, 0), Duration: 1200},  // Sunday night
			{StartTime: at(10, 8, 0), Duration: 300},   // Monday 08:00, not early
			{StartTime: at(10, 21, 59), Duration: -50}, // clamped
			{StartTime: at(11, 23, 30), Duration: 60, Breaks: ptr(2)},
		},
		Profile: store.Profile{Level: 3, TotalBreaks: 4},
	}
	st := Compute(now, in)

	if st.WeekendSessions != 2 {
		t.Errorf("weekendSessions = %d, want 2", st.WeekendSessions)
	}
	if st.NightOwlSessions != 2 {
		t.Errorf("nightOwlSessions = %d, want 2", st.NightOwlSessions)
	}
	if st.EarlyBirdSessions != 0 {
		t.Errorf("earlyBirdSessions = %d, want 0", st.EarlyBirdSessions)
	}
	if st.LongestSession != 20 {
		t.Errorf("longestSession = %v, want 20", st.LongestSession)
	}
	if st.TotalBreaks != 6 {
		t.Errorf("totalBreaks = %d, want profile 4 + session 2", st.TotalBreaks)
	}
	if st.ProductiveHours[21] != 0 {
		t.Error("negative duration should contribute 0")
	}
}

func TestComputeTodoCounters(t *testing.T) {
	due := at(10, 17, 0)
	in := Input{
		Todos: []store.Todo{
			{Completed: true, DueDate: ptr(due), CompletedAt: ptr(at(10, 12, 0))}, // on time
			{Completed: true, DueDate: ptr(due), CompletedAt: ptr(at(10, 18, 0))}, // late
			{Completed: true, CompletedAt: ptr(at(10, 12, 0))},                    // no due date
			{Completed: false, DueDate: ptr(due)},
			{Completed: true, Priority: store.PriorityHigh, CompletedAt: ptr(at(9, 1, 0))},
		},
	}
	st := Compute(now, in)
	if st.TotalTodos != 5 || st.CompletedTodos != 4 {
		t.Fatalf("totals = %d/%d, want 4/5", st.CompletedTodos, st.TotalTodos)
	}
	if st.CompletedOnTimeTodos != 1 {
		t.Errorf("completedOnTimeTodos = %d, want 1", st.CompletedOnTimeTodos)
	}
	if st.CompletedHighPriorityTodos != 1 {
		t.Errorf("completedHighPriorityTodos = %d, want 1", st.CompletedHighPriorityTodos)
	}
}

func TestPlansCreatedInAdvance(t *testing.T) {
	in := Input{
		Plans: []store.PlanBoardItem{
			{Date: now.Add(25 * time.Hour)},
			{Date: now.Add(24 * time.Hour)}, // exactly 24h is not "more than"
			{Date: now.Add(-48 * time.Hour)},
		},
	}
	st := Compute(now, in)
	if st.PlanBoardItems != 3 {
		t.Fatalf("planBoardItems = %d, want 3", st.PlanBoardItems)
	}
	if st.PlansCreatedInAdvance != 1 {
		t.Fatalf("plansCreatedInAdvance = %d, want 1", st.PlansCreatedInAdvance)
	}
}

func TestPerfectDays(t *testing.T) {
	in := Input{
		Todos: []store.Todo{
			// Mar 10: both done on time -> perfect
			{Completed: true, DueDate: ptr(at(10, 17, 0)), CompletedAt: ptr(at(10, 9, 0))},
			{Completed: true, DueDate: ptr(at(10, 20, 0)), CompletedAt: ptr(at(10, 19, 0))},
			// Mar 11: one missed -> not perfect
			{Completed: true, DueDate: ptr(at(11, 17, 0)), CompletedAt: ptr(at(11, 9, 0))},
			{Completed: false, DueDate: ptr(at(11, 17, 0))},
			// Mar 14: in the future -> ignored
			{Completed: true, DueDate: ptr(at(14, 17, 0)), CompletedAt: ptr(at(12, 9, 0))},
		},
	}
	if got := Compute(now, in).PerfectDays; got != 1 {
		t.Fatalf("perfectDays = %d, want 1", got)
	}
}

func TestSubjectStats(t *testing.T) {
	in := Input{
		Sessions: []store.FocusSession{
			{StartTime: at(10, 9, 0), Duration: 1800, Subject: ptr("Math"), FocusScore: ptr(0.8)},
			{StartTime: at(11, 9, 0), Duration: 1200, Subject: ptr("Math"), FocusScore: ptr(0.6)},
			{StartTime: at(11, 10, 0), Duration: 600, Subject: ptr("Art")},
			{StartTime: at(11, 11, 0), Duration: 900},
		},
	}
	st := Compute(now, in)

	ms := st.SubjectStats["Math"]
	if ms == nil || ms.TotalTime != 3000 || ms.SessionsCount != 2 {
		t.Fatalf("unexpected Math stats: %+v", ms)
	}
	if got := ms.AverageScore; got < 0.699 || got > 0.701 {
		t.Errorf("average score = %v, want 0.7", got)
	}
	if !ms.LastStudied.Equal(at(11, 9, 0)) {
		t.Errorf("lastStudied = %v", ms.LastStudied)
	}
	if st.SubjectStats["Art"].AverageScore != 0 {
		t.Error("subject without scores should average 0")
	}
	if len(st.SubjectStats) != 2 {
		t.Errorf("sessions without subject should not create entries, got %d", len(st.SubjectStats))
	}

	name, secs := st.FavoriteSubject("General")
	if name != "Math" || secs != 3000 {
		t.Errorf("favorite = %s/%d, want Math/3000", name, secs)
	}
}

func TestFavoriteSubjectTiesAndFallback(t *testing.T) {
	st := UserStats{SubjectStats: map[string]*SubjectStats{
		"Physics": {TotalTime: 100},
		"Biology": {TotalTime: 100},
	}}
	if name, _ := st.FavoriteSubject("General"); name != "Biology" {
		t.Fatalf("tie should go to lexicographically smallest, got %s", name)
	}

	empty := UserStats{}
	if name, secs := empty.FavoriteSubject("General"); name != "General" || secs != 0 {
		t.Fatalf("expected fallback, got %s/%d", name, secs)
	}
}

func TestWeeklyFocus(t *testing.T) {
	in := Input{
		Sessions: []store.FocusSession{
			{StartTime: now.Add(-2 * 24 * time.Hour), Duration: 7200},
			{StartTime: now.Add(-20 * 24 * time.Hour), Duration: 7200},
		},
	}
	st := Compute(now, in)
	if st.WeeklyFocusTime != 2 {
		t.Errorf("weeklyFocusTime = %v, want 2", st.WeeklyFocusTime)
	}
	// 4h over ceil(20/7)=3 weeks
	if st.AverageWeeklyFocusTime != 1.3 {
		t.Errorf("averageWeeklyFocusTime = %v, want 1.3", st.AverageWeeklyFocusTime)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	in := Input{
		Sessions: []store.FocusSession{{StartTime: at(10, 9, 0), Duration: 100, Subject: ptr("A")}},
		Todos:    []store.Todo{{Completed: true}},
	}
	a := Compute(now, in)
	b := Compute(now, in)
	if a.TotalFocusTime != b.TotalFocusTime || a.ProductiveHours != b.ProductiveHours || a.SubjectStats["A"].TotalTime != b.SubjectStats["A"].TotalTime {
		t.Fatal("Compute should be deterministic")
	}
}

func TestHelpers(t *testing.T) {
	var st UserStats
	if st.CompletionRate() != 0 {
		t.Fatal("completion rate with no todos should be 0")
	}
	if _, ok := st.MostProductiveHour(); ok {
		t.Fatal("no productive hour without focus time")
	}
	st.ProductiveHours[14] = 10
	st.ProductiveHours[9] = 5
	if h, ok := st.MostProductiveHour(); !ok || h != 14 {
		t.Fatalf("most productive hour = %d, want 14", h)
	}
}

func TestNextStreak(t *testing.T) {
	tests := []struct {
		name   string
		last   time.Time
		streak int
		want   int
	}{
		{"first run", time.Time{}, 0, 1},
		{"same day", at(12, 7, 0), 4, 4},
		{"yesterday late", at(11, 23, 59), 4, 5},
		{"yesterday early", at(11, 0, 1), 1, 2},
		{"two days ago", at(10, 18, 0), 9, 1},
		{"future", at(14, 9, 0), 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextStreak(tt.last, now, tt.streak); got != tt.want {
				t.Fatalf("NextStreak = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNextStreakAcrossMonth(t *testing.T) {
	last := time.Date(2025, 2, 28, 22, 0, 0, 0, time.UTC)
	today := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	if got := NextStreak(last, today, 2); got != 3 {
		t.Fatalf("month boundary should extend streak, got %d", got)
	}
}

package gamify

import (
	"strings"
	"testing"
	"time"

	"github.com/sadopc/petquest/internal/stats"
	"github.com/sadopc/petquest/internal/store"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	if c.Len() == 0 {
		t.Fatal("embedded catalog is empty")
	}
	for _, a := range c.All() {
		if a.Name == "" || a.Description == "" || a.Category == "" {
			t.Errorf("achievement %q is missing display fields", a.ID)
		}
		if a.Condition.Threshold <= 0 {
			t.Errorf("achievement %q unlocks without any activity", a.ID)
		}
		if got, ok := c.Lookup(a.ID); !ok || got.ID != a.ID {
			t.Errorf("Lookup(%q) failed", a.ID)
		}
	}
	if _, ok := c.Lookup("nope"); ok {
		t.Fatal("unexpected lookup hit")
	}
}

func TestParseCatalogRejectsBadData(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"syntax", `[{`, "decode"},
		{"empty id", `[{"id":" ","condition":{"metric":"streak","threshold":1}}]`, "empty id"},
		{"duplicate", `[{"id":"a","condition":{"metric":"streak","threshold":1}},{"id":"a","condition":{"metric":"level","threshold":1}}]`, "duplicate"},
		{"metric", `[{"id":"a","condition":{"metric":"vibes","threshold":1}}]`, "unknown metric"},
		{"reward", `[{"id":"a","condition":{"metric":"streak","threshold":1},"reward":{"xp":-5}}]`, "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.json))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestConditionMetAndProgress(t *testing.T) {
	st := stats.UserStats{
		Streak:       5,
		SubjectStats: map[string]*stats.SubjectStats{"a": {}, "b": {}},
	}
	c := Condition{Metric: MetricStreak, Threshold: 7}
	if c.Met(st) {
		t.Fatal("streak 5 should not meet 7")
	}
	if p := c.Progress(st); p < 0.71 || p > 0.72 {
		t.Fatalf("progress = %v", p)
	}
	st.Streak = 9
	if !c.Met(st) || c.Progress(st) != 1 {
		t.Fatal("streak 9 should meet 7 with full progress")
	}

	subjects := Condition{Metric: MetricSubjects, Threshold: 2}
	if !subjects.Met(st) {
		t.Fatal("two subjects should meet threshold 2")
	}
	if (Condition{Metric: "vibes", Threshold: 0}).Met(st) {
		t.Fatal("unknown metric must never be met")
	}
}

func TestCheckAndUnlock(t *testing.T) {
	env := newTestEnv(t)
	completed := fixedNow
	if _, err := env.rec.AddTodo(store.Todo{Title: "a", Completed: true, CompletedAt: &completed}); err != nil {
		t.Fatal(err)
	}

	unlocked, err := env.eng.CheckAndUnlock(fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	if len(unlocked) != 1 || unlocked[0].ID != "first_task" {
		t.Fatalf("expected first_task, got %+v", unlocked)
	}

	p := env.eng.Profile()
	if !p.HasAchievement("first_task") {
		t.Fatal("unlock not persisted")
	}
	if p.XP != unlocked[0].Reward.XP {
		t.Fatalf("xp = %d, want reward %d", p.XP, unlocked[0].Reward.XP)
	}
	if !hasKind(env.notes.Kinds(), KindAchievementUnlocked) {
		t.Fatal("expected achievement notification")
	}

	// Re-running with the condition still true unlocks nothing and keeps X.
	again, err := env.eng.CheckAndUnlock(fixedNow.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no new unlocks, got %+v", again)
	}
	if !env.eng.Profile().HasAchievement("first_task") {
		t.Fatal("achievement must never be removed")
	}
}

func TestUnlocksSurviveStatsDropping(t *testing.T) {
	env := newTestEnv(t)
	todo, err := env.rec.AddTodo(store.Todo{Title: "a", Completed: true, CompletedAt: &fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	env.eng.CheckAndUnlock(fixedNow)

	if err := env.rec.DeleteTodo(todo.ID); err != nil {
		t.Fatal(err)
	}
	env.eng.CheckAndUnlock(fixedNow)
	if !env.eng.Profile().HasAchievement("first_task") {
		t.Fatal("deleting activity must not revoke achievements")
	}
}

func TestCheckAndUnlockSavesOnce(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		env.rec.AppendFocusSession(store.FocusSession{
			StartTime: time.Date(2025, 3, 8, 6, 0, 0, 0, time.UTC), // Saturday, early
			Duration:  7200,
			Subject:   ptr([]string{"math", "art", "music"}[i]),
		})
	}
	profiles := &countingProfiles{ProfileStore: env.rec}
	env.rec.LoadProfile()
	eng := New(env.rec, profiles)

	unlocked, err := eng.CheckAndUnlock(fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	if len(unlocked) < 3 {
		t.Fatalf("expected several unlocks, got %d", len(unlocked))
	}
	if profiles.saves != 1 {
		t.Fatalf("profile saved %d times, want 1", profiles.saves)
	}

	profiles.saves = 0
	if _, err := eng.CheckAndUnlock(fixedNow); err != nil {
		t.Fatal(err)
	}
	if profiles.saves != 0 {
		t.Fatal("nothing new unlocked, nothing should be saved")
	}
}

func TestCheckAndUnlockFollowsRewardChain(t *testing.T) {
	env := newTestEnv(t)
	env.rec.AddTodo(store.Todo{Title: "a", Completed: true, CompletedAt: &fixedNow})

	// The level achievement only becomes reachable through the first reward.
	catalog, err := ParseCatalog([]byte(`[
		{"id":"lvl2","name":"L2","condition":{"metric":"level","threshold":2},"reward":{"xp":5}},
		{"id":"todo","name":"T","condition":{"metric":"completed_todos","threshold":1},"reward":{"xp":100}}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	eng := New(env.rec, env.rec, WithCatalog(catalog))

	unlocked, err := eng.CheckAndUnlock(fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	if len(unlocked) != 2 || unlocked[0].ID != "todo" || unlocked[1].ID != "lvl2" {
		t.Fatalf("unexpected unlock order %+v", unlocked)
	}
	if p := eng.Profile(); p.XP != 105 || p.Level != 2 {
		t.Fatalf("xp %d level %d, want 105/2", p.XP, p.Level)
	}
}

func TestPerfectDayAchievementReachable(t *testing.T) {
	env := newTestEnv(t)
	due := fixedNow.Add(-2 * time.Hour)
	done := fixedNow.Add(-3 * time.Hour)
	env.rec.AddTodo(store.Todo{Title: "a", Completed: true, DueDate: &due, CompletedAt: &done})

	unlocked, err := env.eng.CheckAndUnlock(fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, a := range unlocked {
		if a.ID == "perfect_day" {
			found = true
		}
	}
	if !found {
		t.Fatalf("perfect_day should unlock, got %+v", unlocked)
	}
}

func ptr[T any](v T) *T { return &v }

package store

import (
	"errors"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

func newTestRecords(t *testing.T) (*Records, *Store, *observer.ObservedLogs) {
	t.Helper()
	s := newTestStore(t)
	core, logs := observer.New(zap.WarnLevel)
	r := NewRecords(s, zap.New(core)).WithClock(func() time.Time { return fixedNow })
	return r, s, logs
}

// ============================================================
// Fallbacks
// ============================================================

func TestEmptyStoreReturnsEmptyCollections(t *testing.T) {
	r, _, logs := newTestRecords(t)

	if got := r.Todos(); got == nil || len(got) != 0 {
		t.Fatalf("expected empty todos, got %v", got)
	}
	if got := r.FocusSessions(); len(got) != 0 {
		t.Fatal("expected no sessions")
	}
	if got := r.PlanItems(); len(got) != 0 {
		t.Fatal("expected no plan items")
	}
	if got := r.TimeSlots(); len(got) != 0 {
		t.Fatal("expected no time slots")
	}
	if logs.Len() != 0 {
		t.Fatalf("missing keys should not warn, got %d warnings", logs.Len())
	}
}

func TestMalformedJSONFallsBackAndWarns(t *testing.T) {
	r, s, logs := newTestRecords(t)
	for _, key := range []string{KeyTodos, KeyFocusSessions, KeyPlanBoard, KeyTimeSlots, KeyProfile} {
		s.Set(key, []byte("{not json"))
	}

	if len(r.Todos()) != 0 || len(r.FocusSessions()) != 0 || len(r.PlanItems()) != 0 || len(r.TimeSlots()) != 0 {
		t.Fatal("malformed collections should read as empty")
	}
	p := r.LoadProfile()
	if p.Level != 1 || p.XP != 0 || !p.Pet.IsAlive {
		t.Fatalf("malformed profile should read as default, got %+v", p)
	}
	if logs.FilterMessage("malformed record, using default").Len() != 5 {
		t.Fatalf("expected 5 warnings, got %d", logs.Len())
	}
}

func TestSanitizeOnLoad(t *testing.T) {
	r, s, _ := newTestRecords(t)
	s.Set(KeyFocusSessions, []byte(`[{"duration":-30,"focusScore":1.7,"breaks":-2}]`))
	s.Set(KeyTodos, []byte(`[{"title":"x","priority":"urgent"}]`))

	sessions := r.FocusSessions()
	if sessions[0].Duration != 0 {
		t.Fatalf("negative duration should clamp to 0, got %d", sessions[0].Duration)
	}
	if *sessions[0].FocusScore != 1 {
		t.Fatalf("focus score should clamp to 1, got %v", *sessions[0].FocusScore)
	}
	if *sessions[0].Breaks != 0 {
		t.Fatal("negative breaks should clamp to 0")
	}
	if sessions[0].ID == "" {
		t.Fatal("missing id should be generated")
	}

	todos := r.Todos()
	if todos[0].Priority != PriorityMedium {
		t.Fatalf("unknown priority should become medium, got %q", todos[0].Priority)
	}
}

// ============================================================
// Todos
// ============================================================

func TestAddAndCompleteTodo(t *testing.T) {
	r, _, _ := newTestRecords(t)

	todo, err := r.AddTodo(Todo{Title: "  Read chapter 3 ", Priority: PriorityHigh})
	if err != nil {
		t.Fatal(err)
	}
	if todo.ID == "" || todo.Title != "Read chapter 3" {
		t.Fatalf("unexpected todo: %+v", todo)
	}
	if !todo.CreatedAt.Equal(fixedNow) {
		t.Fatal("CreatedAt should use the clock")
	}

	done, changed, err := r.SetTodoCompleted(todo.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if !changed || !done.Completed || done.CompletedAt == nil {
		t.Fatalf("expected completed todo, got %+v", done)
	}

	_, changed, _ = r.SetTodoCompleted(todo.ID, true)
	if changed {
		t.Fatal("completing twice should report no change")
	}

	undone, _, _ := r.SetTodoCompleted(todo.ID, false)
	if undone.Completed || undone.CompletedAt != nil {
		t.Fatal("uncompleting should clear CompletedAt")
	}
}

func TestAddTodoRequiresTitle(t *testing.T) {
	r, _, _ := newTestRecords(t)
	if _, err := r.AddTodo(Todo{Title: "   "}); err == nil {
		t.Fatal("expected error for blank title")
	}
}

func TestTodoNotFound(t *testing.T) {
	r, _, _ := newTestRecords(t)
	if _, _, err := r.SetTodoCompleted("missing", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := r.DeleteTodo("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTodo(t *testing.T) {
	r, _, _ := newTestRecords(t)
	a, _ := r.AddTodo(Todo{Title: "a"})
	r.AddTodo(Todo{Title: "b"})

	if err := r.DeleteTodo(a.ID); err != nil {
		t.Fatal(err)
	}
	todos := r.Todos()
	if len(todos) != 1 || todos[0].Title != "b" {
		t.Fatalf("expected only b left, got %+v", todos)
	}
}

// ============================================================
// Focus sessions
// ============================================================

func TestAppendFocusSessionDerivesDuration(t *testing.T) {
	r, _, _ := newTestRecords(t)
	start := fixedNow.Add(-90 * time.Minute)

	s, err := r.AppendFocusSession(FocusSession{StartTime: start, EndTime: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	if s.Duration != 5400 {
		t.Fatalf("expected 5400s, got %d", s.Duration)
	}

	s2, _ := r.AppendFocusSession(FocusSession{StartTime: start, Duration: 600})
	if !s2.EndTime.Equal(start.Add(10 * time.Minute)) {
		t.Fatal("EndTime should be derived from duration")
	}

	if got := len(r.FocusSessions()); got != 2 {
		t.Fatalf("expected 2 sessions, got %d", got)
	}
}

// ============================================================
// Plan board
// ============================================================

func TestUpsertPlanItem(t *testing.T) {
	r, _, _ := newTestRecords(t)

	item, created, err := r.UpsertPlanItem(PlanBoardItem{Title: "Exam", Date: fixedNow, Type: PlanSpecialDay})
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Fatal("first upsert should create")
	}

	item.Title = "Final exam"
	_, created, _ = r.UpsertPlanItem(item)
	if created {
		t.Fatal("second upsert with same id should replace")
	}

	items := r.PlanItems()
	if len(items) != 1 || items[0].Title != "Final exam" {
		t.Fatalf("expected replaced item, got %+v", items)
	}

	if err := r.DeletePlanItem(item.ID); err != nil {
		t.Fatal(err)
	}
	if len(r.PlanItems()) != 0 {
		t.Fatal("plan item should be deleted")
	}
}

func TestUpsertPlanItemDefaultsType(t *testing.T) {
	r, _, _ := newTestRecords(t)
	item, _, _ := r.UpsertPlanItem(PlanBoardItem{Title: "x", Type: "party"})
	if item.Type != PlanActivity {
		t.Fatalf("unknown type should default to activity, got %q", item.Type)
	}
}

// ============================================================
// Time slots
// ============================================================

func TestTimeSlots(t *testing.T) {
	r, _, _ := newTestRecords(t)

	if _, err := r.AddTimeSlot(TimeSlot{Title: "Math", DayOfWeek: 7, StartTime: "09:00", EndTime: "10:00"}); err == nil {
		t.Fatal("expected error for day 7")
	}
	if _, err := r.AddTimeSlot(TimeSlot{Title: "Math", DayOfWeek: 1, StartTime: "9am", EndTime: "10:00"}); err == nil {
		t.Fatal("expected error for bad time")
	}

	slot, err := r.AddTimeSlot(TimeSlot{Title: "Math", DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"})
	if err != nil {
		t.Fatal(err)
	}
	if len(r.TimeSlots()) != 1 {
		t.Fatal("expected 1 slot")
	}
	if err := r.DeleteTimeSlot(slot.ID); err != nil {
		t.Fatal(err)
	}
}

// ============================================================
// Profile
// ============================================================

func TestLoadProfileCreatesDefault(t *testing.T) {
	r, s, _ := newTestRecords(t)

	p := r.LoadProfile()
	if p.Level != 1 || p.XP != 0 || p.Streak != 0 {
		t.Fatalf("unexpected default profile: %+v", p)
	}
	if p.Pet.Name != DefaultPetName || p.Pet.Hunger != 50 || p.Pet.Happiness != 50 || !p.Pet.IsAlive {
		t.Fatalf("unexpected default pet: %+v", p.Pet)
	}
	if !p.Pet.LastFed.Equal(fixedNow) {
		t.Fatal("default pet timestamps should use the clock")
	}

	raw, _ := s.Get(KeyProfile)
	if raw == nil {
		t.Fatal("default profile should be persisted on first read")
	}
}

func TestLoadProfileSanitizes(t *testing.T) {
	r, s, _ := newTestRecords(t)
	s.Set(KeyProfile, []byte(`{"level":0,"xp":-5,"streak":-1,"achievements":["a","a",""],
		"pet":{"name":"","hunger":140,"happiness":-3,"isAlive":true,"head":"dragon","lastFed":"2025-03-01T00:00:00Z"}}`))

	p := r.LoadProfile()
	if p.Level != 1 || p.XP != 0 || p.Streak != 0 {
		t.Fatalf("numbers not clamped: %+v", p)
	}
	if len(p.Achievements) != 1 {
		t.Fatalf("achievements should be deduplicated, got %v", p.Achievements)
	}
	if p.Pet.Hunger != 100 || p.Pet.Happiness != 0 {
		t.Fatalf("pet stats not clamped: %+v", p.Pet)
	}
	if p.Pet.Head != HeadDefault || p.Pet.Name != DefaultPetName {
		t.Fatalf("pet fields not defaulted: %+v", p.Pet)
	}
}

func TestLoadProfileResetsMissingPetClocks(t *testing.T) {
	r, s, _ := newTestRecords(t)
	s.Set(KeyProfile, []byte(`{"level":3,"xp":400,"pet":{"name":"Rex","hunger":50,"happiness":50,"isAlive":true,"head":"cat"}}`))

	p := r.LoadProfile()
	if p.Pet.Name != "Rex" || p.Pet.Head != HeadCat || p.XP != 400 {
		t.Fatalf("stored pet should be kept: %+v", p)
	}
	if !p.Pet.LastFed.Equal(fixedNow) || !p.Pet.LastPlayed.Equal(fixedNow) {
		t.Fatalf("missing clocks should become now, got %v / %v", p.Pet.LastFed, p.Pet.LastPlayed)
	}

	r.WithClock(func() time.Time { return fixedNow.Add(5 * time.Hour) })
	if again := r.LoadProfile(); !again.Pet.LastFed.Equal(fixedNow) {
		t.Fatalf("repaired clocks should be persisted, got %v", again.Pet.LastFed)
	}
}

func TestMissingIDsAreStableAcrossReads(t *testing.T) {
	r, s, _ := newTestRecords(t)
	s.Set(KeyTodos, []byte(`[{"title":"x"}]`))
	s.Set(KeyFocusSessions, []byte(`[{"duration":60}]`))
	s.Set(KeyPlanBoard, []byte(`[{"title":"p","type":"goal"}]`))
	s.Set(KeyTimeSlots, []byte(`[{"title":"t","dayOfWeek":1,"startTime":"09:00","endTime":"10:00"}]`))

	todoID := r.Todos()[0].ID
	sessionID := r.FocusSessions()[0].ID
	planID := r.PlanItems()[0].ID
	slotID := r.TimeSlots()[0].ID
	for _, id := range []string{todoID, sessionID, planID, slotID} {
		if id == "" {
			t.Fatal("missing id should be generated")
		}
	}

	if r.Todos()[0].ID != todoID || r.FocusSessions()[0].ID != sessionID ||
		r.PlanItems()[0].ID != planID || r.TimeSlots()[0].ID != slotID {
		t.Fatal("generated ids must not change between reads")
	}
	if _, _, err := r.SetTodoCompleted(todoID, true); err != nil {
		t.Fatalf("todo should resolve by its generated id: %v", err)
	}
	if err := r.DeletePlanItem(planID); err != nil {
		t.Fatalf("plan item should resolve by its generated id: %v", err)
	}
}

func TestSaveProfileRoundTrip(t *testing.T) {
	r, _, _ := newTestRecords(t)
	p := r.LoadProfile()
	p.XP = 321
	p.Achievements = append(p.Achievements, "first_task")
	if err := r.SaveProfile(p); err != nil {
		t.Fatal(err)
	}

	got := r.LoadProfile()
	if got.XP != 321 || !got.HasAchievement("first_task") {
		t.Fatalf("profile not persisted: %+v", got)
	}
}

// ============================================================
// Snapshot / reset
// ============================================================

func TestSnapshotRestoreAndReset(t *testing.T) {
	r, _, _ := newTestRecords(t)
	r.AddTodo(Todo{Title: "a"})
	r.AppendFocusSession(FocusSession{StartTime: fixedNow, Duration: 60})
	p := r.LoadProfile()
	p.XP = 500
	r.SaveProfile(p)

	snap := r.Snapshot()

	if err := r.Reset(); err != nil {
		t.Fatal(err)
	}
	if len(r.Todos()) != 0 || r.LoadProfile().XP != 0 {
		t.Fatal("reset should wipe data")
	}

	if err := r.Restore(snap); err != nil {
		t.Fatal(err)
	}
	if len(r.Todos()) != 1 || len(r.FocusSessions()) != 1 || r.LoadProfile().XP != 500 {
		t.Fatal("restore should bring data back")
	}
}

func TestClampStat(t *testing.T) {
	tests := []struct{ in, want int }{{-10, 0}, {0, 0}, {55, 55}, {100, 100}, {250, 100}}
	for _, tt := range tests {
		if got := ClampStat(tt.in); got != tt.want {
			t.Errorf("ClampStat(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// ============================================================
// Redis backend (needs a live server)
// ============================================================

func TestRedisKV(t *testing.T) {
	addr := os.Getenv("PETQUEST_TEST_REDIS")
	if addr == "" {
		t.Skip("PETQUEST_TEST_REDIS not set")
	}
	kv, err := DialRedis(addr, 0, "petquest-test:")
	if err != nil {
		t.Fatal(err)
	}
	defer kv.Close()
	defer kv.Delete(KeyTodos)

	r := NewRecords(kv, zap.NewNop()).WithClock(func() time.Time { return fixedNow })
	if _, err := r.AddTodo(Todo{Title: "redis"}); err != nil {
		t.Fatal(err)
	}
	if len(r.Todos()) != 1 {
		t.Fatal("expected todo stored in redis")
	}
	v, err := kv.Get("missing-key")
	if err != nil || v != nil {
		t.Fatalf("missing key should be (nil, nil), got %q, %v", v, err)
	}
}

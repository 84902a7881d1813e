package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a record id does not exist in its collection.
var ErrNotFound = errors.New("record not found")

// Records is the typed layer over a KV substrate. Reads never fail: a
// missing key yields the empty/default value and a malformed blob is logged
// and replaced by the default.
type Records struct {
	kv  KV
	log *zap.Logger
	now func() time.Time
}

func NewRecords(kv KV, log *zap.Logger) *Records {
	if log == nil {
		log = zap.NewNop()
	}
	return &Records{kv: kv, log: log, now: time.Now}
}

// WithClock replaces the clock used for defaults and generated timestamps.
func (r *Records) WithClock(now func() time.Time) *Records {
	r.now = now
	return r
}

func newID() string {
	return uuid.NewString()
}

// loadJSON decodes key into dst. It reports false when the key is missing,
// unreadable or malformed; dst is left untouched in that case.
func (r *Records) loadJSON(key string, dst any) bool {
	raw, err := r.kv.Get(key)
	if err != nil {
		r.log.Warn("read failed, using default", zap.String("key", key), zap.Error(err))
		return false
	}
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		r.log.Warn("malformed record, using default", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// persistRepaired writes back a collection whose records were given IDs on
// load, so the IDs stay stable across reads.
func (r *Records) persistRepaired(key string, v any) {
	if err := r.saveJSON(key, v); err != nil {
		r.log.Warn("persist repaired records", zap.String("key", key), zap.Error(err))
	}
}

func (r *Records) saveJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.kv.Set(key, data); err != nil {
		return err
	}
	return nil
}

// --- Todos ---

func (r *Records) Todos() []Todo {
	var todos []Todo
	if !r.loadJSON(KeyTodos, &todos) {
		return []Todo{}
	}
	repaired := false
	for i := range todos {
		if sanitizeTodo(&todos[i]) {
			repaired = true
		}
	}
	if repaired {
		r.persistRepaired(KeyTodos, todos)
	}
	return todos
}

// sanitizeTodo fixes t in place and reports whether it needed a new ID.
func sanitizeTodo(t *Todo) (newIDAssigned bool) {
	if t.ID == "" {
		t.ID = newID()
		newIDAssigned = true
	}
	if !t.Priority.IsValid() {
		t.Priority = PriorityMedium
	}
	if !t.Completed {
		t.CompletedAt = nil
	}
	return newIDAssigned
}

func (r *Records) SaveTodos(todos []Todo) error {
	return r.saveJSON(KeyTodos, todos)
}

// AddTodo appends t, filling in id, creation time and priority when unset.
func (r *Records) AddTodo(t Todo) (Todo, error) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return Todo{}, errors.New("todo title is required")
	}
	if t.ID == "" {
		t.ID = newID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.now()
	}
	sanitizeTodo(&t)

	todos := append(r.Todos(), t)
	if err := r.SaveTodos(todos); err != nil {
		return Todo{}, err
	}
	return t, nil
}

// SetTodoCompleted toggles a todo's completion state. changed is false when
// the todo was already in the requested state.
func (r *Records) SetTodoCompleted(id string, completed bool) (todo Todo, changed bool, err error) {
	todos := r.Todos()
	for i := range todos {
		if todos[i].ID != id {
			continue
		}
		if todos[i].Completed == completed {
			return todos[i], false, nil
		}
		todos[i].Completed = completed
		if completed {
			at := r.now()
			todos[i].CompletedAt = &at
		} else {
			todos[i].CompletedAt = nil
		}
		if err := r.SaveTodos(todos); err != nil {
			return Todo{}, false, err
		}
		return todos[i], true, nil
	}
	return Todo{}, false, fmt.Errorf("todo %s: %w", id, ErrNotFound)
}

func (r *Records) DeleteTodo(id string) error {
	todos := r.Todos()
	for i := range todos {
		if todos[i].ID == id {
			return r.SaveTodos(append(todos[:i], todos[i+1:]...))
		}
	}
	return fmt.Errorf("todo %s: %w", id, ErrNotFound)
}

// --- Focus sessions ---

func (r *Records) FocusSessions() []FocusSession {
	var sessions []FocusSession
	if !r.loadJSON(KeyFocusSessions, &sessions) {
		return []FocusSession{}
	}
	repaired := false
	for i := range sessions {
		if sanitizeSession(&sessions[i]) {
			repaired = true
		}
	}
	if repaired {
		r.persistRepaired(KeyFocusSessions, sessions)
	}
	return sessions
}

func sanitizeSession(s *FocusSession) (newIDAssigned bool) {
	if s.ID == "" {
		s.ID = newID()
		newIDAssigned = true
	}
	if s.Duration < 0 {
		s.Duration = 0
	}
	if s.FocusScore != nil {
		score := min(max(*s.FocusScore, 0), 1)
		s.FocusScore = &score
	}
	if s.Breaks != nil && *s.Breaks < 0 {
		zero := 0
		s.Breaks = &zero
	}
	return newIDAssigned
}

// AppendFocusSession adds a finished session to the log. A zero duration is
// derived from the start/end times.
func (r *Records) AppendFocusSession(s FocusSession) (FocusSession, error) {
	if s.ID == "" {
		s.ID = newID()
	}
	if s.Duration == 0 && s.EndTime.After(s.StartTime) {
		s.Duration = int64(s.EndTime.Sub(s.StartTime).Seconds())
	}
	if s.EndTime.IsZero() {
		s.EndTime = s.StartTime.Add(time.Duration(s.Duration) * time.Second)
	}
	sanitizeSession(&s)

	sessions := append(r.FocusSessions(), s)
	if err := r.saveJSON(KeyFocusSessions, sessions); err != nil {
		return FocusSession{}, err
	}
	return s, nil
}

// --- Plan board ---

func (r *Records) PlanItems() []PlanBoardItem {
	var items []PlanBoardItem
	if !r.loadJSON(KeyPlanBoard, &items) {
		return []PlanBoardItem{}
	}
	repaired := false
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = newID()
			repaired = true
		}
		if !items[i].Type.IsValid() {
			items[i].Type = PlanActivity
		}
	}
	if repaired {
		r.persistRepaired(KeyPlanBoard, items)
	}
	return items
}

// UpsertPlanItem replaces the item with the same id, or appends it.
// created reports whether a new item was added.
func (r *Records) UpsertPlanItem(item PlanBoardItem) (saved PlanBoardItem, created bool, err error) {
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return PlanBoardItem{}, false, errors.New("plan title is required")
	}
	if !item.Type.IsValid() {
		item.Type = PlanActivity
	}

	items := r.PlanItems()
	created = true
	if item.ID == "" {
		item.ID = newID()
	} else {
		for i := range items {
			if items[i].ID == item.ID {
				items[i] = item
				created = false
				break
			}
		}
	}
	if created {
		items = append(items, item)
	}
	if err := r.saveJSON(KeyPlanBoard, items); err != nil {
		return PlanBoardItem{}, false, err
	}
	return item, created, nil
}

func (r *Records) DeletePlanItem(id string) error {
	items := r.PlanItems()
	for i := range items {
		if items[i].ID == id {
			return r.saveJSON(KeyPlanBoard, append(items[:i], items[i+1:]...))
		}
	}
	return fmt.Errorf("plan item %s: %w", id, ErrNotFound)
}

// --- Time slots ---

func (r *Records) TimeSlots() []TimeSlot {
	var slots []TimeSlot
	if !r.loadJSON(KeyTimeSlots, &slots) {
		return []TimeSlot{}
	}
	valid := slots[:0]
	repaired := false
	for _, s := range slots {
		if s.DayOfWeek < 0 || s.DayOfWeek > 6 {
			r.log.Warn("dropping time slot with invalid day", zap.String("id", s.ID), zap.Int("day", s.DayOfWeek))
			continue
		}
		if s.ID == "" {
			s.ID = newID()
			repaired = true
		}
		valid = append(valid, s)
	}
	if repaired {
		r.persistRepaired(KeyTimeSlots, valid)
	}
	return valid
}

func (r *Records) AddTimeSlot(s TimeSlot) (TimeSlot, error) {
	if s.DayOfWeek < 0 || s.DayOfWeek > 6 {
		return TimeSlot{}, fmt.Errorf("day of week %d out of range", s.DayOfWeek)
	}
	for _, hm := range []string{s.StartTime, s.EndTime} {
		if _, err := time.Parse("15:04", hm); err != nil {
			return TimeSlot{}, fmt.Errorf("time %q: want HH:MM", hm)
		}
	}
	if s.ID == "" {
		s.ID = newID()
	}
	slots := append(r.TimeSlots(), s)
	if err := r.saveJSON(KeyTimeSlots, slots); err != nil {
		return TimeSlot{}, err
	}
	return s, nil
}

func (r *Records) DeleteTimeSlot(id string) error {
	slots := r.TimeSlots()
	for i := range slots {
		if slots[i].ID == id {
			return r.saveJSON(KeyTimeSlots, append(slots[:i], slots[i+1:]...))
		}
	}
	return fmt.Errorf("time slot %s: %w", id, ErrNotFound)
}

// --- Profile ---

// LoadProfile returns the stored profile, creating and persisting the
// default profile on first read.
func (r *Records) LoadProfile() Profile {
	raw, err := r.kv.Get(KeyProfile)
	if err != nil {
		r.log.Warn("read failed, using default", zap.String("key", KeyProfile), zap.Error(err))
		return DefaultProfile(r.now())
	}
	if raw == nil {
		p := DefaultProfile(r.now())
		if err := r.SaveProfile(p); err != nil {
			r.log.Warn("persist default profile", zap.Error(err))
		}
		return p
	}

	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		r.log.Warn("malformed record, using default", zap.String("key", KeyProfile), zap.Error(err))
		return DefaultProfile(r.now())
	}
	if r.sanitizeProfile(&p) {
		if err := r.SaveProfile(p); err != nil {
			r.log.Warn("persist repaired profile", zap.Error(err))
		}
	}
	return p
}

// sanitizeProfile clamps p in place. It reports whether the pet's clocks
// were missing and had to be reset to now.
func (r *Records) sanitizeProfile(p *Profile) (clocksReset bool) {
	p.Level = max(p.Level, 1)
	p.XP = max(p.XP, 0)
	p.Streak = max(p.Streak, 0)
	p.TotalBreaks = max(p.TotalBreaks, 0)

	seen := make(map[string]bool, len(p.Achievements))
	unique := make([]string, 0, len(p.Achievements))
	for _, id := range p.Achievements {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	p.Achievements = unique

	if p.Pet.Name == "" && p.Pet.LastFed.IsZero() && p.Pet.LastPlayed.IsZero() {
		p.Pet = DefaultPet(r.now())
		return true
	}
	// A pet without clocks would age from the zero time on its next tick.
	if p.Pet.LastFed.IsZero() {
		p.Pet.LastFed = r.now()
		clocksReset = true
	}
	if p.Pet.LastPlayed.IsZero() {
		p.Pet.LastPlayed = r.now()
		clocksReset = true
	}
	p.Pet.Hunger = ClampStat(p.Pet.Hunger)
	p.Pet.Happiness = ClampStat(p.Pet.Happiness)
	if strings.TrimSpace(p.Pet.Name) == "" {
		p.Pet.Name = DefaultPetName
	}
	if !p.Pet.Head.IsValid() {
		p.Pet.Head = HeadDefault
	}
	if p.Pet.FavoriteSubject == "" {
		p.Pet.FavoriteSubject = DefaultFavoriteSubject
	}
	return clocksReset
}

func (r *Records) SaveProfile(p Profile) error {
	if p.Achievements == nil {
		p.Achievements = []string{}
	}
	return r.saveJSON(KeyProfile, p)
}

// ClampStat bounds a pet stat to [0,100].
func ClampStat(v int) int {
	return min(max(v, 0), 100)
}

// --- Snapshot / reset ---

// Snapshot is every persisted collection at one point in time.
type Snapshot struct {
	Profile       Profile         `json:"profile"`
	Todos         []Todo          `json:"todos"`
	FocusSessions []FocusSession  `json:"focusSessions"`
	PlanBoard     []PlanBoardItem `json:"planBoard"`
	TimeSlots     []TimeSlot      `json:"timeSlots"`
}

func (r *Records) Snapshot() Snapshot {
	return Snapshot{
		Profile:       r.LoadProfile(),
		Todos:         r.Todos(),
		FocusSessions: r.FocusSessions(),
		PlanBoard:     r.PlanItems(),
		TimeSlots:     r.TimeSlots(),
	}
}

// Restore overwrites every key with the snapshot's contents.
func (r *Records) Restore(s Snapshot) error {
	r.sanitizeProfile(&s.Profile)
	values := map[string]any{
		KeyProfile:       s.Profile,
		KeyTodos:         nonNil(s.Todos),
		KeyFocusSessions: nonNil(s.FocusSessions),
		KeyPlanBoard:     nonNil(s.PlanBoard),
		KeyTimeSlots:     nonNil(s.TimeSlots),
	}
	for _, key := range AllKeys {
		if err := r.saveJSON(key, values[key]); err != nil {
			return fmt.Errorf("restore %s: %w", key, err)
		}
	}
	return nil
}

// Reset wipes all user data, leaving a fresh default profile.
func (r *Records) Reset() error {
	return r.Restore(Snapshot{Profile: DefaultProfile(r.now())})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

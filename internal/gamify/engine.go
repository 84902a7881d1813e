// Package gamify turns activity into progress: XP and levels, achievements,
// the daily login streak and the virtual pet. Every profile mutation goes
// through Engine, which holds a single-writer lock around each
// load-modify-save cycle.
package gamify

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/petquest/internal/stats"
	"github.com/sadopc/petquest/internal/store"
)

// ActivitySource provides the raw records stats are derived from.
type ActivitySource interface {
	Todos() []store.Todo
	FocusSessions() []store.FocusSession
	PlanItems() []store.PlanBoardItem
}

// ProfileStore loads and saves the singleton profile. LoadProfile never
// fails; it returns a default profile when nothing usable is stored.
type ProfileStore interface {
	LoadProfile() store.Profile
	SaveProfile(p store.Profile) error
}

type Engine struct {
	mu       sync.Mutex
	activity ActivitySource
	profiles ProfileStore
	catalog  *Catalog
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

type Option func(*Engine)

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithClock sets the clock used by operations that do not take a time.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithCatalog(c *Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

func New(activity ActivitySource, profiles ProfileStore, opts ...Option) *Engine {
	e := &Engine{
		activity: activity,
		profiles: profiles,
		catalog:  DefaultCatalog(),
		notifier: Fanout(nil),
		log:      zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.notifier == nil {
		e.notifier = Fanout(nil)
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	e.log = e.log.Named("gamify")
	return e
}

func (e *Engine) Catalog() *Catalog { return e.catalog }

// Profile returns the current profile.
func (e *Engine) Profile() store.Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profiles.LoadProfile()
}

// ComputeStats derives the stats snapshot at now. It has no side effects.
func (e *Engine) ComputeStats(now time.Time) stats.UserStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statsLocked(now, e.profiles.LoadProfile())
}

func (e *Engine) statsLocked(now time.Time, p store.Profile) stats.UserStats {
	return stats.Compute(now, stats.Input{
		Todos:    e.activity.Todos(),
		Sessions: e.activity.FocusSessions(),
		Plans:    e.activity.PlanItems(),
		Profile:  p,
	})
}

// AdvanceDailyLogin applies today's login to the streak and records now as
// the last login. Callers run it once per app session.
func (e *Engine) AdvanceDailyLogin(now time.Time) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.profiles.LoadProfile()
	before := p.Streak
	p.Streak = stats.NextStreak(p.LastLoginDate, now, p.Streak)
	p.LastLoginDate = now
	if err := e.saveLocked(p); err != nil {
		return before, err
	}
	e.log.Debug("daily login", zap.Int("streak_before", before), zap.Int("streak", p.Streak))
	return p.Streak, nil
}

// RecordBreak counts one standalone break.
func (e *Engine) RecordBreak() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.profiles.LoadProfile()
	p.TotalBreaks++
	return e.saveLocked(p)
}

func (e *Engine) saveLocked(p store.Profile) error {
	if err := e.profiles.SaveProfile(p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (e *Engine) notify(n Notification) {
	e.notifier.Notify(n)
}

type AwardResult struct {
	LevelUp  bool
	OldLevel int
	NewLevel int
	XP       int
}

// AwardXP adds amount to the profile. Non-positive amounts change nothing.
func (e *Engine) AwardXP(amount int) (AwardResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.profiles.LoadProfile()
	res := e.awardLocked(&p, amount)
	if amount <= 0 {
		return res, nil
	}
	if err := e.saveLocked(p); err != nil {
		return res, err
	}
	return res, nil
}

// awardLocked applies amount to p in memory and emits a level-up
// notification when the level rises.
func (e *Engine) awardLocked(p *store.Profile, amount int) AwardResult {
	res := AwardResult{OldLevel: p.Level, NewLevel: p.Level, XP: p.XP}
	if amount <= 0 {
		return res
	}
	p.XP += amount
	syncLevel(p)
	res.NewLevel, res.XP = p.Level, p.XP
	if res.NewLevel > res.OldLevel {
		res.LevelUp = true
		e.log.Info("level up", zap.Int("from", res.OldLevel), zap.Int("to", res.NewLevel))
		e.notify(newNotification(KindLevelUp, ChannelProgress,
			"Level up!",
			fmt.Sprintf("You reached level %d.", res.NewLevel)))
	}
	return res
}

// syncLevel raises the stored level to what the XP total supports. Spending
// XP never lowers it.
func syncLevel(p *store.Profile) {
	p.Level = max(p.Level, LevelForXP(p.XP).Level, 1)
}

// Exclusive runs fn while holding the profile lock. Bulk rewrites such as
// import and reset use it so they cannot interleave with a tick.
func (e *Engine) Exclusive(fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn()
}

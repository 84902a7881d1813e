// Package service wires the store, the gamification engine and the
// configured logger together for the CLI and the TUI.
package service

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/petquest/internal/config"
	"github.com/sadopc/petquest/internal/gamify"
	"github.com/sadopc/petquest/internal/stats"
	"github.com/sadopc/petquest/internal/store"
	"github.com/sadopc/petquest/internal/suggest"
)

type Service struct {
	Config   config.Config
	Settings *store.Store
	Records  *store.Records
	Engine   *gamify.Engine

	log     *zap.Logger
	now     func() time.Time
	extra   []gamify.Notifier
	closers []func() error
}

type Option func(*Service)

// WithClock overrides time.Now for the records layer and the engine.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithNotifiers adds sinks next to the log notifier.
func WithNotifiers(n ...gamify.Notifier) Option {
	return func(s *Service) { s.extra = append(s.extra, n...) }
}

// Open builds a service from cfg. The SQLite store always backs settings;
// records live in SQLite or Redis depending on store.driver.
func Open(cfg config.Config, log *zap.Logger, opts ...Option) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{Config: cfg, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	settings, err := store.New(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s.Settings = settings
	s.closers = append(s.closers, settings.Close)

	var kv store.KV
	switch cfg.Store.Driver {
	case config.DriverSQLite, "":
		kv = settings
	case config.DriverRedis:
		rkv, err := store.DialRedis(cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Prefix)
		if err != nil {
			s.Close()
			return nil, err
		}
		kv = rkv
		s.closers = append(s.closers, rkv.Close)
	default:
		s.Close()
		return nil, fmt.Errorf("store.driver %q: %w", cfg.Store.Driver, store.ErrUnknownDriver)
	}
	log.Debug("store opened", zap.String("driver", cfg.Store.Driver), zap.String("path", cfg.Store.Path))

	s.Records = store.NewRecords(kv, log.Named("store")).WithClock(s.now)
	notifiers := append(gamify.Fanout{gamify.NewLogNotifier(log)}, s.extra...)
	s.Engine = gamify.New(s.Records, s.Records,
		gamify.WithLogger(log),
		gamify.WithClock(s.now),
		gamify.WithNotifier(notifiers),
	)
	return s, nil
}

func (s *Service) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

func (s *Service) Now() time.Time { return s.now() }

// StartSession records today's login and unlocks anything the new streak
// earns. Call it once per process.
func (s *Service) StartSession() (streak int, unlocked []gamify.Achievement, err error) {
	now := s.now()
	streak, err = s.Engine.AdvanceDailyLogin(now)
	if err != nil {
		return streak, nil, err
	}
	unlocked, err = s.Engine.CheckAndUnlock(now)
	return streak, unlocked, err
}

func (s *Service) Stats() stats.UserStats {
	return s.Engine.ComputeStats(s.now())
}

func (s *Service) Suggestions() []suggest.Suggestion {
	return suggest.Generate(s.Stats(), s.Engine.Catalog())
}

// CompleteTodo marks a todo done and processes the action. Completing an
// already completed todo awards nothing.
func (s *Service) CompleteTodo(id string) (store.Todo, *gamify.ActionResult, error) {
	todo, changed, err := s.Records.SetTodoCompleted(id, true)
	if err != nil || !changed {
		return todo, nil, err
	}
	res, err := s.Engine.ProcessAction(gamify.ActionCompleteTodo)
	if err != nil {
		return todo, nil, err
	}
	return todo, &res, nil
}

// ReopenTodo clears completion. XP already earned is kept.
func (s *Service) ReopenTodo(id string) (store.Todo, error) {
	todo, _, err := s.Records.SetTodoCompleted(id, false)
	return todo, err
}

func (s *Service) LogFocusSession(sess store.FocusSession) (store.FocusSession, gamify.ActionResult, error) {
	saved, err := s.Records.AppendFocusSession(sess)
	if err != nil {
		return store.FocusSession{}, gamify.ActionResult{}, err
	}
	res, err := s.Engine.ProcessAction(gamify.ActionCompleteFocusSession)
	return saved, res, err
}

// SavePlan upserts a plan item. Only newly created items award XP.
func (s *Service) SavePlan(item store.PlanBoardItem) (store.PlanBoardItem, *gamify.ActionResult, error) {
	saved, created, err := s.Records.UpsertPlanItem(item)
	if err != nil || !created {
		return saved, nil, err
	}
	res, err := s.Engine.ProcessAction(gamify.ActionCreatePlan)
	if err != nil {
		return saved, nil, err
	}
	return saved, &res, nil
}

func (s *Service) Snapshot() store.Snapshot {
	var snap store.Snapshot
	s.Engine.Exclusive(func() error {
		snap = s.Records.Snapshot()
		return nil
	})
	return snap
}

func (s *Service) Import(snap store.Snapshot) error {
	return s.Engine.Exclusive(func() error {
		return s.Records.Restore(snap)
	})
}

func (s *Service) Reset() error {
	return s.Engine.Exclusive(s.Records.Reset)
}

package gamify

import (
	"fmt"

	"go.uber.org/zap"
)

type Action string

const (
	ActionCompleteTodo         Action = "complete-todo"
	ActionCompleteFocusSession Action = "complete-focus-session"
	ActionCreatePlan           Action = "create-plan"
)

var actionXP = map[Action]int{
	ActionCompleteTodo:         25,
	ActionCompleteFocusSession: 50,
	ActionCreatePlan:           10,
}

// XPFor returns the fixed award for an action, 0 for unknown actions.
func XPFor(a Action) int {
	return actionXP[a]
}

type ActionResult struct {
	XPAwarded       int
	LevelUp         bool
	NewLevel        int
	NewAchievements []Achievement
}

// ProcessAction awards the action's XP, then runs the achievement check.
// LevelUp compares the level after both steps with the level before the
// action, so a level gained from achievement rewards is reported too.
func (e *Engine) ProcessAction(a Action) (ActionResult, error) {
	xp, ok := actionXP[a]
	if !ok {
		return ActionResult{}, fmt.Errorf("unknown action %q", a)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.profiles.LoadProfile()
	before := p.Level

	e.awardLocked(&p, xp)
	if err := e.saveLocked(p); err != nil {
		return ActionResult{}, err
	}

	unlocked := e.unlockLocked(e.now(), &p)
	if len(unlocked) > 0 {
		if err := e.saveLocked(p); err != nil {
			return ActionResult{}, err
		}
	}

	res := ActionResult{
		XPAwarded:       xp,
		LevelUp:         p.Level > before,
		NewLevel:        p.Level,
		NewAchievements: unlocked,
	}
	e.log.Debug("action processed",
		zap.String("action", string(a)),
		zap.Int("xp", p.XP),
		zap.Int("level", p.Level),
		zap.Int("unlocked", len(unlocked)),
	)
	return res, nil
}

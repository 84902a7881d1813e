package tui

import (
	"time"

	"github.com/sadopc/petquest/internal/gamify"
	"github.com/sadopc/petquest/internal/service"
	"github.com/sadopc/petquest/internal/store"
)

// minFocusSession is the shortest stopwatch run that is logged as a focus
// session.
const minFocusSession = time.Minute

type timerState int

const (
	timerStopped timerState = iota
	timerRunning
	timerPaused
)

// timerModel is the free-running focus stopwatch. Manual pauses count as
// breaks; idle pauses do not.
type timerModel struct {
	svc *service.Service
	now func() time.Time

	state     timerState
	startTime time.Time
	elapsed   time.Duration
	pausedAt  time.Time
	pauseGap  time.Duration

	subject string
	breaks  int

	// Idle detection
	lastActivity time.Time
	idleTimeout  time.Duration
	isIdle       bool
}

func newTimerModel(svc *service.Service) timerModel {
	t := timerModel{
		svc:         svc,
		now:         time.Now,
		state:       timerStopped,
		idleTimeout: 5 * time.Minute,
	}
	if svc != nil {
		t.now = svc.Now
	}
	t.lastActivity = t.now()
	return t
}

func (t *timerModel) start(subject string) {
	if t.svc != nil {
		t.idleTimeout = time.Duration(t.svc.Settings.GetIntSetting("idle_timeout", 300)) * time.Second
	}
	now := t.now()
	t.state = timerRunning
	t.startTime = now
	t.elapsed = 0
	t.pauseGap = 0
	t.subject = subject
	t.breaks = 0
	t.lastActivity = now
	t.isIdle = false
}

// stop ends the run. Runs shorter than minFocusSession are discarded and
// logged reports false.
func (t *timerModel) stop() (sess store.FocusSession, res gamify.ActionResult, logged bool, err error) {
	if t.state == timerStopped {
		return sess, res, false, nil
	}
	elapsed := t.currentElapsed()
	end := t.now()
	t.state = timerStopped
	t.elapsed = 0
	if elapsed < minFocusSession {
		return sess, res, false, nil
	}

	breaks := t.breaks
	sess = store.FocusSession{
		StartTime: t.startTime,
		EndTime:   end,
		Duration:  int64(elapsed / time.Second),
		Breaks:    &breaks,
	}
	if t.subject != "" {
		subject := t.subject
		sess.Subject = &subject
	}
	sess, res, err = t.svc.LogFocusSession(sess)
	if err != nil {
		return sess, res, false, err
	}
	return sess, res, true, nil
}

func (t *timerModel) pause() {
	if t.state != timerRunning {
		return
	}
	t.state = timerPaused
	t.pausedAt = t.now()
}

func (t *timerModel) resume() {
	if t.state != timerPaused {
		return
	}
	t.pauseGap += t.now().Sub(t.pausedAt)
	t.state = timerRunning
	t.isIdle = false
	t.lastActivity = t.now()
}

// toggle pauses or resumes. A manual pause is a break.
func (t *timerModel) toggle() {
	switch t.state {
	case timerRunning:
		t.pause()
		t.breaks++
	case timerPaused:
		t.resume()
	}
}

func (t *timerModel) tick() {
	if t.state == timerRunning {
		t.elapsed = t.now().Sub(t.startTime) - t.pauseGap

		if t.now().Sub(t.lastActivity) > t.idleTimeout && !t.isIdle {
			t.isIdle = true
			t.pause()
		}
	}
}

func (t *timerModel) recordActivity() {
	t.lastActivity = t.now()
	if t.isIdle && t.state == timerPaused {
		t.resume()
		t.isIdle = false
	}
}

func (t timerModel) running() bool {
	return t.state != timerStopped
}

func (t timerModel) paused() bool {
	return t.state == timerPaused
}

func (t timerModel) currentElapsed() time.Duration {
	switch t.state {
	case timerStopped:
		return 0
	case timerPaused:
		return t.pausedAt.Sub(t.startTime) - t.pauseGap
	}
	return t.now().Sub(t.startTime) - t.pauseGap
}

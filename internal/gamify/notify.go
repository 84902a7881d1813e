package gamify

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind identifies what happened. Kinds are stable strings so sinks can
// filter on them.
type Kind string

const (
	KindLevelUp             Kind = "level_up"
	KindAchievementUnlocked Kind = "achievement_unlocked"
	KindPetDied             Kind = "pet_died"
	KindPetFed              Kind = "pet_fed"
	KindPetPlayed           Kind = "pet_played"
	KindPetRenamed          Kind = "pet_renamed"
	KindPetHeadChanged      Kind = "pet_head_changed"
	KindPetAdopted          Kind = "pet_adopted"
	KindPetItemBought       Kind = "pet_item_bought"

	KindRejectedPetDead      Kind = "rejected_pet_dead"
	KindRejectedInsufficient Kind = "rejected_insufficient_xp"
	KindRejectedPetAlive     Kind = "rejected_pet_alive"
	KindRejectedUnknownItem  Kind = "rejected_unknown_item"
	KindRejectedInvalidInput Kind = "rejected_invalid_input"
)

// Channels group notifications for delivery.
const (
	ChannelProgress     = "progress"
	ChannelAchievements = "achievements"
	ChannelPet          = "pet"
)

type Notification struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Channel string `json:"channel"`
}

func newNotification(kind Kind, channel, title, body string) Notification {
	return Notification{
		ID:      uuid.NewString(),
		Kind:    kind,
		Title:   title,
		Body:    body,
		Channel: channel,
	}
}

// Notifier receives fire-and-forget notifications. Implementations must
// not call back into the Engine.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// LogNotifier writes every notification as a structured log line.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log.Named("notify")}
}

func (l *LogNotifier) Notify(n Notification) {
	l.log.Info(n.Title,
		zap.String("id", n.ID),
		zap.String("kind", string(n.Kind)),
		zap.String("channel", n.Channel),
		zap.String("body", n.Body),
	)
}

// Fanout delivers to every wrapped notifier in order. Nil entries are skipped.
type Fanout []Notifier

func (f Fanout) Notify(n Notification) {
	for _, sink := range f {
		if sink != nil {
			sink.Notify(n)
		}
	}
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu   sync.Mutex
	sent []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

// Sent returns a copy of everything recorded so far.
func (r *Recorder) Sent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.sent...)
}

// Kinds returns the recorded kinds in delivery order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]Kind, len(r.sent))
	for i, n := range r.sent {
		kinds[i] = n.Kind
	}
	return kinds
}

// Reset drops everything recorded.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}

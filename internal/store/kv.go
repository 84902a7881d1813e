package store

import "errors"

// Keys under which each record collection is persisted.
const (
	KeyProfile       = "user_profile"
	KeyTodos         = "todos"
	KeyFocusSessions = "focus_sessions"
	KeyPlanBoard     = "plan_board"
	KeyTimeSlots     = "time_slots"
)

// AllKeys lists every key owned by the application, in export order.
var AllKeys = []string{KeyProfile, KeyTodos, KeyFocusSessions, KeyPlanBoard, KeyTimeSlots}

// ErrUnknownDriver is returned by Open for an unsupported store.driver value.
var ErrUnknownDriver = errors.New("unknown store driver")

// KV is the key/value substrate the records layer is built on. Get returns
// (nil, nil) for a missing key.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

var (
	_ KV = (*Store)(nil)
	_ KV = (*RedisKV)(nil)
)

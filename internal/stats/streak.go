package stats

import "time"

// NextStreak applies one login at now to a streak last recorded at
// lastLogin. Same calendar day keeps the streak, the previous calendar day
// extends it, anything else (including a zero lastLogin) restarts it at 1.
func NextStreak(lastLogin, now time.Time, streak int) int {
	if lastLogin.IsZero() {
		return 1
	}
	last := lastLogin.In(now.Location())
	switch {
	case sameDay(last, now):
		return streak
	case sameDay(last, now.AddDate(0, 0, -1)):
		return streak + 1
	default:
		return 1
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

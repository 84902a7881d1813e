package gamify

const (
	// BaseLevelXP is the XP needed to go from level 1 to level 2.
	BaseLevelXP = 100
)

// LevelInfo describes where a total XP amount sits on the level curve.
type LevelInfo struct {
	Level          int
	XPIntoLevel    int // XP earned since reaching Level
	XPForNextLevel int // XP span of the current level
	Progress       float64
}

// XPRequired returns the XP span of the given level: 100 for level 1, then
// floor(previous * 1.2).
func XPRequired(level int) int {
	req := BaseLevelXP
	for l := 1; l < level; l++ {
		req = nextRequirement(req)
	}
	return req
}

// TotalXPForLevel returns the cumulative XP at which level is reached.
// Level 1 starts at 0.
func TotalXPForLevel(level int) int {
	total, req := 0, BaseLevelXP
	for l := 1; l < level; l++ {
		total += req
		req = nextRequirement(req)
	}
	return total
}

func nextRequirement(req int) int {
	return req * 12 / 10
}

// LevelForXP walks the curve until the remaining XP no longer covers the
// next requirement. Negative XP is treated as 0.
func LevelForXP(xp int) LevelInfo {
	xp = max(xp, 0)
	level, req := 1, BaseLevelXP
	for xp >= req {
		xp -= req
		level++
		req = nextRequirement(req)
	}
	return LevelInfo{
		Level:          level,
		XPIntoLevel:    xp,
		XPForNextLevel: req,
		Progress:       float64(xp) / float64(req) * 100,
	}
}

package store

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

type PlanType string

const (
	PlanActivity   PlanType = "activity"
	PlanSpecialDay PlanType = "special-day"
	PlanGoal       PlanType = "goal"
)

func (p PlanType) IsValid() bool {
	switch p {
	case PlanActivity, PlanSpecialDay, PlanGoal:
		return true
	default:
		return false
	}
}

type PetHead string

const (
	HeadDefault PetHead = "default"
	HeadCat     PetHead = "cat"
	HeadRabbit  PetHead = "rabbit"
	HeadFox     PetHead = "fox"
	HeadLion    PetHead = "lion"
	HeadPanda   PetHead = "panda"
)

// PetHeads lists the heads in shop order.
var PetHeads = []PetHead{HeadDefault, HeadCat, HeadRabbit, HeadFox, HeadLion, HeadPanda}

func (h PetHead) IsValid() bool {
	for _, known := range PetHeads {
		if h == known {
			return true
		}
	}
	return false
}

const (
	DefaultPetName         = "Buddy"
	DefaultFavoriteSubject = "General"
	defaultPetStat         = 50
)

type Todo struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      *string    `json:"description,omitempty"`
	Completed        bool       `json:"completed"`
	Priority         Priority   `json:"priority"`
	DueDate          *time.Time `json:"dueDate,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	NotificationTime *time.Time `json:"notificationTime,omitempty"`
	Subject          *string    `json:"subject,omitempty"`
}

type FocusSession struct {
	ID         string    `json:"id"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	Duration   int64     `json:"duration"` // seconds
	Subject    *string   `json:"subject,omitempty"`
	FocusScore *float64  `json:"focusScore,omitempty"`
	Breaks     *int      `json:"breaks,omitempty"`
}

type PlanBoardItem struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Date    time.Time  `json:"date"`
	Type    PlanType   `json:"type"`
	DueDate *time.Time `json:"dueDate,omitempty"`
	Subject *string    `json:"subject,omitempty"`
}

// TimeSlot is a recurring timetable entry. Start and end are "HH:MM" in the
// user's local time.
type TimeSlot struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	DayOfWeek        int     `json:"dayOfWeek"` // 0 = Sunday
	StartTime        string  `json:"startTime"`
	EndTime          string  `json:"endTime"`
	Subject          *string `json:"subject,omitempty"`
	Location         *string `json:"location,omitempty"`
	NotificationTime *int    `json:"notificationTime,omitempty"` // minutes before start
}

type Pet struct {
	Name            string    `json:"name"`
	Hunger          int       `json:"hunger"`
	Happiness       int       `json:"happiness"`
	IsAlive         bool      `json:"isAlive"`
	Head            PetHead   `json:"head"`
	FavoriteSubject string    `json:"favoriteSubject"`
	LastFed         time.Time `json:"lastFed"`
	LastPlayed      time.Time `json:"lastPlayed"`
}

// DefaultPet returns a freshly adopted pet.
func DefaultPet(now time.Time) Pet {
	return Pet{
		Name:            DefaultPetName,
		Hunger:          defaultPetStat,
		Happiness:       defaultPetStat,
		IsAlive:         true,
		Head:            HeadDefault,
		FavoriteSubject: DefaultFavoriteSubject,
		LastFed:         now,
		LastPlayed:      now,
	}
}

type Profile struct {
	Level         int       `json:"level"`
	XP            int       `json:"xp"`
	Achievements  []string  `json:"achievements"`
	LastLoginDate time.Time `json:"lastLoginDate"`
	Streak        int       `json:"streak"`
	Pet           Pet       `json:"pet"`
	TotalBreaks   int       `json:"totalBreaks"`
}

// DefaultProfile is the profile created on first read.
func DefaultProfile(now time.Time) Profile {
	return Profile{
		Level:        1,
		Achievements: []string{},
		Pet:          DefaultPet(now),
	}
}

// HasAchievement reports whether id is in the unlocked set.
func (p Profile) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

type Setting struct {
	Key   string
	Value string
}

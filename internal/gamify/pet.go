package gamify

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sadopc/petquest/internal/store"
)

// Pet interaction prices in XP.
const (
	FeedCost       = 50
	PlayCost       = 30
	RenameCost     = 200
	ChangeHeadCost = 500
	NewPetCost     = 10000

	MaxPetNameLen = 24
)

const (
	deathHunger    = 90
	deathHappiness = 10
	sadHunger      = 50
)

// RejectReason explains why a pet interaction did nothing.
type RejectReason string

const (
	ReasonPetDead        RejectReason = "pet_dead"
	ReasonInsufficientXP RejectReason = "insufficient_xp"
	ReasonPetAlive       RejectReason = "pet_alive"
	ReasonUnknownItem    RejectReason = "unknown_item"
	ReasonInvalidInput   RejectReason = "invalid_input"
)

var rejectKinds = map[RejectReason]Kind{
	ReasonPetDead:        KindRejectedPetDead,
	ReasonInsufficientXP: KindRejectedInsufficient,
	ReasonPetAlive:       KindRejectedPetAlive,
	ReasonUnknownItem:    KindRejectedUnknownItem,
	ReasonInvalidInput:   KindRejectedInvalidInput,
}

// Outcome reports a pet interaction. A rejected interaction leaves the
// profile untouched.
type Outcome struct {
	OK           bool
	Reason       RejectReason
	Notification Notification
	Pet          store.Pet
	XP           int
}

// TickPet advances the pet to now. It is correct for any gap since the
// previous tick; sub-hour gaps only apply the activity bonuses.
func (e *Engine) TickPet(now time.Time) (store.Pet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.profiles.LoadProfile()
	if !p.Pet.IsAlive {
		return p.Pet, nil
	}
	st := e.statsLocked(now, p)
	pet := &p.Pet

	hoursFed := wholeHours(now.Sub(pet.LastFed))
	hoursPlayed := wholeHours(now.Sub(pet.LastPlayed))

	favorite, favSecs := st.FavoriteSubject(store.DefaultFavoriteSubject)
	pet.FavoriteSubject = favorite

	focusHours := st.TotalFocusTime
	done := float64(st.CompletedTodos)

	hunger := float64(pet.Hunger) + float64(hoursFed)
	hunger -= focusHours*5 + done
	if favSecs > 0 {
		hunger -= 5
	}
	pet.Hunger = store.ClampStat(int(math.Round(hunger)))

	happiness := float64(pet.Happiness)
	if pet.Hunger >= sadHunger {
		happiness -= float64(hoursPlayed) * 2
	}
	happiness += focusHours*10 + done*2
	if favSecs > 0 {
		happiness += 10
	}
	pet.Happiness = store.ClampStat(int(math.Round(happiness)))

	if hoursFed > 0 {
		pet.LastFed = now
	}
	if hoursPlayed > 0 {
		pet.LastPlayed = now
	}

	died := pet.Hunger >= deathHunger && pet.Happiness <= deathHappiness
	if died {
		pet.IsAlive = false
	}
	if err := e.saveLocked(p); err != nil {
		return p.Pet, err
	}

	e.log.Debug("pet tick",
		zap.Int("hunger", pet.Hunger),
		zap.Int("happiness", pet.Happiness),
		zap.Int64("hours_fed", hoursFed),
		zap.Int64("hours_played", hoursPlayed),
	)
	if died {
		e.log.Info("pet died", zap.String("name", pet.Name))
		e.notify(newNotification(KindPetDied, ChannelPet,
			pet.Name+" has passed away",
			"Your pet was too hungry and sad. Adopt a new one in the pet shop."))
	}
	return p.Pet, nil
}

func wholeHours(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(d / time.Hour)
}

type interaction struct {
	cost     int
	needDead bool
	// check validates the request against the loaded profile before any
	// XP is spent.
	check func(p *store.Profile) RejectReason
	apply func(p *store.Profile, now time.Time)
	done  func(p store.Profile) Notification
}

func (e *Engine) interact(name string, in interaction) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.profiles.LoadProfile()
	reject := func(r RejectReason) Outcome {
		n := rejection(r, p, in.cost)
		e.log.Debug("pet interaction rejected", zap.String("op", name), zap.String("reason", string(r)))
		e.notify(n)
		return Outcome{Reason: r, Notification: n, Pet: p.Pet, XP: p.XP}
	}

	switch {
	case in.needDead && p.Pet.IsAlive:
		return reject(ReasonPetAlive), nil
	case !in.needDead && !p.Pet.IsAlive:
		return reject(ReasonPetDead), nil
	}
	if in.check != nil {
		if r := in.check(&p); r != "" {
			return reject(r), nil
		}
	}
	if p.XP < in.cost {
		return reject(ReasonInsufficientXP), nil
	}

	p.XP -= in.cost
	in.apply(&p, e.now())
	syncLevel(&p)
	if err := e.saveLocked(p); err != nil {
		return Outcome{}, err
	}

	n := in.done(p)
	e.log.Info("pet interaction", zap.String("op", name), zap.Int("cost", in.cost), zap.Int("xp_left", p.XP))
	e.notify(n)
	return Outcome{OK: true, Notification: n, Pet: p.Pet, XP: p.XP}, nil
}

func rejection(r RejectReason, p store.Profile, cost int) Notification {
	var title, body string
	switch r {
	case ReasonPetDead:
		title, body = "Your pet is gone", p.Pet.Name+" can't do that anymore. Adopt a new pet first."
	case ReasonInsufficientXP:
		title, body = "Not enough XP", fmt.Sprintf("This costs %d XP, you have %d.", cost, p.XP)
	case ReasonPetAlive:
		title, body = "Your pet is still alive", p.Pet.Name+" is doing fine, no need for a new one."
	case ReasonUnknownItem:
		title, body = "Unknown item", "The pet shop doesn't sell that."
	case ReasonInvalidInput:
		title, body = "Invalid input", "That request can't be applied to your pet."
	}
	return newNotification(rejectKinds[r], ChannelPet, title, body)
}

func (e *Engine) Feed() (Outcome, error) {
	return e.interact("feed", interaction{
		cost: FeedCost,
		apply: func(p *store.Profile, now time.Time) {
			p.Pet.Hunger = store.ClampStat(p.Pet.Hunger - 30)
			p.Pet.Happiness = store.ClampStat(p.Pet.Happiness + 10)
			p.Pet.LastFed = now
		},
		done: func(p store.Profile) Notification {
			return newNotification(KindPetFed, ChannelPet, "Yum!", p.Pet.Name+" enjoyed the meal.")
		},
	})
}

func (e *Engine) Play() (Outcome, error) {
	return e.interact("play", interaction{
		cost: PlayCost,
		apply: func(p *store.Profile, now time.Time) {
			p.Pet.Happiness = store.ClampStat(p.Pet.Happiness + 20)
			p.Pet.Hunger = store.ClampStat(p.Pet.Hunger + 5)
			p.Pet.LastPlayed = now
		},
		done: func(p store.Profile) Notification {
			return newNotification(KindPetPlayed, ChannelPet, "Playtime!", p.Pet.Name+" had a great time.")
		},
	})
}

// Rename trims name; it must be non-empty and at most MaxPetNameLen runes.
func (e *Engine) Rename(name string) (Outcome, error) {
	name = strings.TrimSpace(name)
	return e.interact("rename", interaction{
		cost: RenameCost,
		check: func(*store.Profile) RejectReason {
			if name == "" || utf8.RuneCountInString(name) > MaxPetNameLen {
				return ReasonInvalidInput
			}
			return ""
		},
		apply: func(p *store.Profile, _ time.Time) { p.Pet.Name = name },
		done: func(p store.Profile) Notification {
			return newNotification(KindPetRenamed, ChannelPet, "New name", "Your pet is now called "+p.Pet.Name+".")
		},
	})
}

func (e *Engine) ChangeHead(head store.PetHead) (Outcome, error) {
	return e.interact("change_head", interaction{
		cost: ChangeHeadCost,
		check: func(*store.Profile) RejectReason {
			if !head.IsValid() {
				return ReasonInvalidInput
			}
			return ""
		},
		apply: func(p *store.Profile, _ time.Time) { p.Pet.Head = head },
		done: func(p store.Profile) Notification {
			return newNotification(KindPetHeadChanged, ChannelPet, "New look", fmt.Sprintf("%s now has the %s look.", p.Pet.Name, p.Pet.Head))
		},
	})
}

// BuyNewPet replaces a dead pet with a fresh default one.
func (e *Engine) BuyNewPet() (Outcome, error) {
	return e.interact("buy_new_pet", interaction{
		cost:     NewPetCost,
		needDead: true,
		apply: func(p *store.Profile, now time.Time) {
			p.Pet = store.DefaultPet(now)
		},
		done: func(p store.Profile) Notification {
			return newNotification(KindPetAdopted, ChannelPet, "Welcome home", "Say hello to "+p.Pet.Name+"!")
		},
	})
}

// BuyItem buys a shop item and applies its effects. XP effects are awarded
// after the price is paid and can level the profile up.
func (e *Engine) BuyItem(id string) (Outcome, error) {
	item, ok := LookupItem(id)
	return e.interact("buy_item", interaction{
		cost: item.Cost,
		check: func(*store.Profile) RejectReason {
			if !ok {
				return ReasonUnknownItem
			}
			return ""
		},
		apply: func(p *store.Profile, _ time.Time) {
			if xp := item.applyPetEffects(&p.Pet); xp > 0 {
				e.awardLocked(p, xp)
			}
		},
		done: func(p store.Profile) Notification {
			return newNotification(KindPetItemBought, ChannelPet, "Pet shop",
				fmt.Sprintf("%s got a %s (%s).", p.Pet.Name, item.Name, item.EffectSummary()))
		},
	})
}

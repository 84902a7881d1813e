package gamify

import (
	"fmt"
	"strings"

	"github.com/sadopc/petquest/internal/store"
)

// EffectKind is the closed set of things a shop item can change.
type EffectKind string

const (
	EffectHunger    EffectKind = "hunger"
	EffectHappiness EffectKind = "happiness"
	EffectXP        EffectKind = "xp"
)

type Effect struct {
	Kind   EffectKind `json:"kind"`
	Amount int        `json:"amount"`
}

func (f Effect) String() string {
	return fmt.Sprintf("%s %+d", f.Kind, f.Amount)
}

type ShopItem struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Cost        int      `json:"cost"`
	Effects     []Effect `json:"effects"`
}

// EffectSummary renders the effects as "hunger -15, happiness +5".
func (it ShopItem) EffectSummary() string {
	parts := make([]string, len(it.Effects))
	for i, f := range it.Effects {
		parts[i] = f.String()
	}
	return strings.Join(parts, ", ")
}

var shopItems = []ShopItem{
	{ID: "treat", Name: "Treat", Description: "A small snack.", Cost: 75,
		Effects: []Effect{{EffectHunger, -15}, {EffectHappiness, 5}}},
	{ID: "toy_ball", Name: "Toy Ball", Description: "Bouncy and loud.", Cost: 100,
		Effects: []Effect{{EffectHappiness, 25}}},
	{ID: "mystery_box", Name: "Mystery Box", Description: "Something good is inside.", Cost: 120,
		Effects: []Effect{{EffectHappiness, 15}, {EffectXP, 50}}},
	{ID: "feast", Name: "Feast", Description: "A proper meal.", Cost: 150,
		Effects: []Effect{{EffectHunger, -50}}},
	{ID: "spa_day", Name: "Spa Day", Description: "Brushing, bathing, pampering.", Cost: 200,
		Effects: []Effect{{EffectHappiness, 40}}},
	{ID: "royal_banquet", Name: "Royal Banquet", Description: "Everything on the menu.", Cost: 300,
		Effects: []Effect{{EffectHunger, -100}, {EffectHappiness, 30}}},
}

// ShopItems returns the shop catalog, cheapest first.
func ShopItems() []ShopItem {
	return append([]ShopItem(nil), shopItems...)
}

func LookupItem(id string) (ShopItem, bool) {
	for _, it := range shopItems {
		if it.ID == id {
			return it, true
		}
	}
	return ShopItem{}, false
}

// applyPetEffects changes the pet stats and returns the XP the item grants.
func (it ShopItem) applyPetEffects(pet *store.Pet) (xp int) {
	for _, f := range it.Effects {
		switch f.Kind {
		case EffectHunger:
			pet.Hunger = store.ClampStat(pet.Hunger + f.Amount)
		case EffectHappiness:
			pet.Happiness = store.ClampStat(pet.Happiness + f.Amount)
		case EffectXP:
			xp += f.Amount
		}
	}
	return xp
}

package gamify

import (
	"strings"
	"testing"
	"time"

	"github.com/sadopc/petquest/internal/store"
)

// ============================================================
// Tick
// ============================================================

func TestTickWithoutActivity(t *testing.T) {
	env := newTestEnv(t)
	env.eng.Profile() // creates the default pet at fixedNow

	later := fixedNow.Add(10*time.Hour + 20*time.Minute)
	pet, err := env.eng.TickPet(later)
	if err != nil {
		t.Fatal(err)
	}
	if pet.Hunger != 60 {
		t.Errorf("hunger = %d, want 60", pet.Hunger)
	}
	if pet.Happiness != 30 {
		t.Errorf("happiness = %d, want 30", pet.Happiness)
	}
	if !pet.LastFed.Equal(later) || !pet.LastPlayed.Equal(later) {
		t.Error("timestamps should advance after whole hours elapsed")
	}
	if pet.FavoriteSubject != store.DefaultFavoriteSubject {
		t.Errorf("favorite = %q", pet.FavoriteSubject)
	}
}

func TestTickSubHourKeepsTimestamps(t *testing.T) {
	env := newTestEnv(t)
	env.eng.Profile()

	pet, err := env.eng.TickPet(fixedNow.Add(59 * time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if pet.Hunger != 50 || pet.Happiness != 50 {
		t.Fatalf("sub-hour tick changed stats: %+v", pet)
	}
	if !pet.LastFed.Equal(fixedNow) || !pet.LastPlayed.Equal(fixedNow) {
		t.Fatal("sub-hour tick must not move timestamps")
	}
}

func TestTickWithActivity(t *testing.T) {
	env := newTestEnv(t)
	env.eng.Profile()
	env.rec.AppendFocusSession(store.FocusSession{StartTime: fixedNow.Add(-3 * time.Hour), Duration: 7200, Subject: ptr("Math")})
	env.rec.AddTodo(store.Todo{Title: "a", Completed: true, CompletedAt: &fixedNow})

	pet, err := env.eng.TickPet(fixedNow.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	// 50 + 1 - (2*5 + 1) - 5
	if pet.Hunger != 35 {
		t.Errorf("hunger = %d, want 35", pet.Hunger)
	}
	// hunger < 50 so no decay; 50 + 2*10 + 1*2 + 10
	if pet.Happiness != 82 {
		t.Errorf("happiness = %d, want 82", pet.Happiness)
	}
	if pet.FavoriteSubject != "Math" {
		t.Errorf("favorite = %q, want Math", pet.FavoriteSubject)
	}
}

func TestTickClampsStats(t *testing.T) {
	env := newTestEnv(t)
	env.eng.Profile()
	env.rec.AppendFocusSession(store.FocusSession{StartTime: fixedNow.Add(-200 * time.Hour), Duration: 100 * 3600})

	pet, err := env.eng.TickPet(fixedNow.Add(2 * time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if pet.Hunger != 0 || pet.Happiness != 100 {
		t.Fatalf("expected clamped 0/100, got %d/%d", pet.Hunger, pet.Happiness)
	}

	// Long neglect pushes hunger to the ceiling, never above it.
	env2 := newTestEnv(t)
	env2.eng.Profile()
	pet, _ = env2.eng.TickPet(fixedNow.Add(500 * time.Hour))
	if pet.Hunger != 100 || pet.Happiness != 0 {
		t.Fatalf("expected clamped 100/0, got %d/%d", pet.Hunger, pet.Happiness)
	}
}

func TestTickPetWithMissingClocksSurvives(t *testing.T) {
	env := newTestEnv(t)
	env.setProfile(t, func(p *store.Profile) {
		p.Pet = store.Pet{Name: "Rex", Hunger: 50, Happiness: 50, IsAlive: true, Head: store.HeadCat}
	})

	pet, err := env.eng.TickPet(fixedNow.Add(30 * time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if !pet.IsAlive || pet.Hunger != 50 || pet.Happiness != 50 {
		t.Fatalf("a pet without clocks should start aging now, got %+v", pet)
	}
	if !pet.LastFed.Equal(fixedNow) || !pet.LastPlayed.Equal(fixedNow) {
		t.Fatalf("clocks = %v / %v, want %v", pet.LastFed, pet.LastPlayed, fixedNow)
	}
}

func TestTickDeath(t *testing.T) {
	env := newTestEnv(t)
	env.setProfile(t, func(p *store.Profile) {
		p.XP = 1000
		p.Pet.Hunger = 85
		p.Pet.Happiness = 12
	})

	pet, err := env.eng.TickPet(fixedNow.Add(10 * time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if pet.IsAlive {
		t.Fatalf("pet should be dead: %+v", pet)
	}
	if !hasKind(env.notes.Kinds(), KindPetDied) {
		t.Fatal("expected pet_died notification")
	}

	// Dead is terminal: ticks, feeding and playing change nothing.
	before := env.eng.Profile()
	if _, err := env.eng.TickPet(fixedNow.Add(50 * time.Hour)); err != nil {
		t.Fatal(err)
	}
	for _, op := range []func() (Outcome, error){env.eng.Feed, env.eng.Play} {
		out, err := op()
		if err != nil {
			t.Fatal(err)
		}
		if out.OK || out.Reason != ReasonPetDead {
			t.Fatalf("expected pet_dead rejection, got %+v", out)
		}
	}
	after := env.eng.Profile()
	if after.XP != before.XP || after.Pet != before.Pet {
		t.Fatal("dead pet state must not change")
	}
}

// ============================================================
// Interactions
// ============================================================

func TestFeedAndPlay(t *testing.T) {
	env := newTestEnv(t)
	env.setProfile(t, func(p *store.Profile) { p.XP = 100 })
	env.now = fixedNow.Add(30 * time.Minute)

	out, err := env.eng.Feed()
	if err != nil {
		t.Fatal(err)
	}
	if !out.OK || out.XP != 50 || out.Pet.Hunger != 20 || out.Pet.Happiness != 60 {
		t.Fatalf("unexpected feed outcome %+v", out)
	}
	if !out.Pet.LastFed.Equal(env.now) {
		t.Fatal("feed should set lastFed")
	}
	if out.Notification.Kind != KindPetFed {
		t.Fatalf("kind = %s", out.Notification.Kind)
	}

	out, err = env.eng.Play()
	if err != nil {
		t.Fatal(err)
	}
	if !out.OK || out.XP != 20 || out.Pet.Happiness != 80 || out.Pet.Hunger != 25 {
		t.Fatalf("unexpected play outcome %+v", out)
	}
}

func TestInsufficientXP(t *testing.T) {
	env := newTestEnv(t)
	env.setProfile(t, func(p *store.Profile) { p.XP = 10 })

	out, err := env.eng.Feed()
	if err != nil {
		t.Fatal(err)
	}
	if out.OK || out.Reason != ReasonInsufficientXP {
		t.Fatalf("expected insufficient_xp, got %+v", out)
	}
	if out.Notification.Kind != KindRejectedInsufficient {
		t.Fatalf("kind = %s", out.Notification.Kind)
	}
	if p := env.eng.Profile(); p.XP != 10 || p.Pet.Hunger != 50 {
		t.Fatal("rejected interaction must not change the profile")
	}
}

func TestSpendingNeverDemotes(t *testing.T) {
	env := newTestEnv(t)
	env.setProfile(t, func(p *store.Profile) { p.Level, p.XP = 3, 300 })

	if out, _ := env.eng.Rename("Mochi"); !out.OK {
		t.Fatalf("rename failed: %+v", out)
	}
	if p := env.eng.Profile(); p.Level != 3 || p.XP != 100 {
		t.Fatalf("level %d xp %d, want 3/100", p.Level, p.XP)
	}
}

func TestRename(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		ok     bool
		stored string
	}{
		{"trimmed", "  Mochi  ", true, "Mochi"},
		{"blank", "   ", false, store.DefaultPetName},
		{"too long", strings.Repeat("x", MaxPetNameLen+1), false, store.DefaultPetName},
		{"max runes", strings.Repeat("é", MaxPetNameLen), true, strings.Repeat("é", MaxPetNameLen)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.setProfile(t, func(p *store.Profile) { p.XP = 500 })

			out, err := env.eng.Rename(tt.input)
			if err != nil {
				t.Fatal(err)
			}
			if out.OK != tt.ok {
				t.Fatalf("OK = %v, want %v (%+v)", out.OK, tt.ok, out)
			}
			if !tt.ok && out.Reason != ReasonInvalidInput {
				t.Fatalf("reason = %s", out.Reason)
			}
			if got := env.eng.Profile().Pet.Name; got != tt.stored {
				t.Fatalf("name = %q, want %q", got, tt.stored)
			}
		})
	}
}

func TestChangeHead(t *testing.T) {
	env := newTestEnv(t)
	env.setProfile(t, func(p *store.Profile) { p.XP = 1000 })

	out, _ := env.eng.ChangeHead("dragon")
	if out.OK || out.Reason != ReasonInvalidInput {
		t.Fatalf("expected invalid_input, got %+v", out)
	}
	out, _ = env.eng.ChangeHead(store.HeadFox)
	if !out.OK || out.Pet.Head != store.HeadFox || out.XP != 500 {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestBuyNewPetGating(t *testing.T) {
	env := newTestEnv(t)
	env.setProfile(t, func(p *store.Profile) { p.XP = 20000 })

	out, _ := env.eng.BuyNewPet()
	if out.OK || out.Reason != ReasonPetAlive {
		t.Fatalf("expected pet_alive, got %+v", out)
	}
	if env.eng.Profile().XP != 20000 {
		t.Fatal("rejected purchase must not charge")
	}

	env.setProfile(t, func(p *store.Profile) {
		p.XP = NewPetCost - 1
		p.Pet.IsAlive = false
		p.Pet.Name = "Ghost"
	})
	out, _ = env.eng.BuyNewPet()
	if out.OK || out.Reason != ReasonInsufficientXP {
		t.Fatalf("expected insufficient_xp, got %+v", out)
	}

	env.setProfile(t, func(p *store.Profile) { p.XP, p.Level = NewPetCost, 20 })
	out, err := env.eng.BuyNewPet()
	if err != nil {
		t.Fatal(err)
	}
	if !out.OK || out.XP != 0 {
		t.Fatalf("expected success with 0 XP left, got %+v", out)
	}
	want := store.DefaultPet(env.now)
	if out.Pet != want {
		t.Fatalf("pet = %+v, want default %+v", out.Pet, want)
	}
	if env.eng.Profile().Level != 20 {
		t.Fatal("buying a pet must not lower the level")
	}
	if out.Notification.Kind != KindPetAdopted {
		t.Fatalf("kind = %s", out.Notification.Kind)
	}
}

func TestBuyItem(t *testing.T) {
	env := newTestEnv(t)
	env.setProfile(t, func(p *store.Profile) { p.XP = 120 })

	out, err := env.eng.BuyItem("mystery_box")
	if err != nil {
		t.Fatal(err)
	}
	if !out.OK || out.XP != 50 || out.Pet.Happiness != 65 {
		t.Fatalf("unexpected outcome %+v", out)
	}

	out, _ = env.eng.BuyItem("rocket")
	if out.OK || out.Reason != ReasonUnknownItem {
		t.Fatalf("expected unknown_item, got %+v", out)
	}
	if out.Notification.Kind != KindRejectedUnknownItem {
		t.Fatalf("kind = %s", out.Notification.Kind)
	}
}

func TestBuyItemEffects(t *testing.T) {
	for _, item := range ShopItems() {
		t.Run(item.ID, func(t *testing.T) {
			env := newTestEnv(t)
			env.setProfile(t, func(p *store.Profile) { p.XP = item.Cost })

			out, err := env.eng.BuyItem(item.ID)
			if err != nil {
				t.Fatal(err)
			}
			if !out.OK {
				t.Fatalf("purchase rejected: %+v", out)
			}
			pet := store.DefaultPet(fixedNow)
			xp := item.applyPetEffects(&pet)
			if out.Pet.Hunger != pet.Hunger || out.Pet.Happiness != pet.Happiness || out.XP != xp {
				t.Fatalf("got %+v, want hunger %d happiness %d xp %d", out, pet.Hunger, pet.Happiness, xp)
			}
		})
	}
}

func TestDeadCheckComesFirst(t *testing.T) {
	env := newTestEnv(t)
	env.setProfile(t, func(p *store.Profile) { p.Pet.IsAlive = false })

	for name, op := range map[string]func() (Outcome, error){
		"feed":   env.eng.Feed,
		"rename": func() (Outcome, error) { return env.eng.Rename("") },
		"item":   func() (Outcome, error) { return env.eng.BuyItem("rocket") },
	} {
		out, _ := op()
		if out.Reason != ReasonPetDead {
			t.Errorf("%s: reason = %s, want pet_dead", name, out.Reason)
		}
	}
}

func TestShopCatalog(t *testing.T) {
	items := ShopItems()
	if len(items) == 0 {
		t.Fatal("empty shop")
	}
	for i, it := range items {
		if it.Cost < 75 || it.Cost > 300 {
			t.Errorf("%s costs %d", it.ID, it.Cost)
		}
		if i > 0 && items[i-1].Cost > it.Cost {
			t.Errorf("shop not sorted by cost at %s", it.ID)
		}
		if len(it.Effects) == 0 {
			t.Errorf("%s has no effects", it.ID)
		}
	}
	if got, ok := LookupItem("treat"); !ok || got.EffectSummary() != "hunger -15, happiness +5" {
		t.Fatalf("treat summary = %q", got.EffectSummary())
	}
}

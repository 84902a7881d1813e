package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/petquest/internal/gamify"
	"github.com/sadopc/petquest/internal/service"
	"github.com/sadopc/petquest/internal/store"
)

var petFaces = map[store.PetHead][]string{
	store.HeadDefault: {" /\\_/\\ ", "( o.o )", " > ^ < "},
	store.HeadCat:     {" /\\_/\\ ", "( =.= )", "  >w<  "},
	store.HeadRabbit:  {" (\\_/) ", " (o.o) ", " (\")(\")"},
	store.HeadFox:     {" /\\ /\\ ", "( >.< )", "  \\_/  "},
	store.HeadLion:    {" {~~~} ", "{ o.o }", " {_^_} "},
	store.HeadPanda:   {" @   @ ", "( o.o )", " (___) "},
}

var deadFace = []string{"  ___  ", " |RIP| ", " |___| "}

type petModel struct {
	svc    *service.Service
	width  int
	height int

	pet store.Pet
	xp  int

	shopping   bool
	shopCursor int

	formActive bool
	form       *huh.Form
	formType   string // "rename", "head"
	formName   *string
	formHead   *store.PetHead
}

func newPetModel(svc *service.Service) petModel {
	name, head := "", store.HeadDefault
	return petModel{svc: svc, formName: &name, formHead: &head}
}

func (p *petModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type petDataMsg struct {
	pet store.Pet
	xp  int
}

func (p petModel) refresh() tea.Cmd {
	svc := p.svc
	return func() tea.Msg {
		prof := svc.Engine.Profile()
		return petDataMsg{pet: prof.Pet, xp: prof.XP}
	}
}

func petTickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return petTickMsg(t)
	})
}

// tick advances the pet on the engine. It runs whichever view is active.
func (p petModel) tick(now time.Time) tea.Cmd {
	svc := p.svc
	return func() tea.Msg {
		pet, err := svc.Engine.TickPet(now)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Pet tick: %v", err), isError: true}
		}
		return petDataMsg{pet: pet, xp: svc.Engine.Profile().XP}
	}
}

// act runs one pet interaction. Rejections reach the user as
// notifications, so only successful interactions trigger a reload.
func (p petModel) act(do func() (gamify.Outcome, error)) tea.Cmd {
	svc := p.svc
	return func() tea.Msg {
		out, err := do()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		if out.OK {
			if _, err := svc.Engine.CheckAndUnlock(svc.Now()); err != nil {
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
			return dataChangedMsg{}
		}
		return petDataMsg{pet: out.Pet, xp: out.XP}
	}
}

func (p petModel) update(msg tea.Msg) (petModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case petDataMsg:
		p.pet = msg.pet
		p.xp = msg.xp
		return p, nil

	case tea.KeyMsg:
		if p.shopping {
			return p.updateShop(msg)
		}
		e := p.svc.Engine
		switch {
		case key.Matches(msg, keys.Feed):
			return p, p.act(e.Feed)
		case key.Matches(msg, keys.Play):
			return p, p.act(e.Play)
		case key.Matches(msg, keys.Adopt):
			return p, p.act(e.BuyNewPet)
		case key.Matches(msg, keys.Shop):
			p.shopping = true
			p.shopCursor = 0
			return p, nil
		case key.Matches(msg, keys.Rename):
			return p.showRenameForm()
		case key.Matches(msg, keys.Head):
			return p.showHeadForm()
		}
	}
	return p, nil
}

func (p petModel) updateShop(msg tea.KeyMsg) (petModel, tea.Cmd) {
	items := gamify.ShopItems()
	switch {
	case key.Matches(msg, keys.Up):
		if p.shopCursor > 0 {
			p.shopCursor--
		}
	case key.Matches(msg, keys.Down):
		if p.shopCursor < len(items)-1 {
			p.shopCursor++
		}
	case key.Matches(msg, keys.Enter):
		p.shopping = false
		id := items[p.shopCursor].ID
		return p, p.act(func() (gamify.Outcome, error) { return p.svc.Engine.BuyItem(id) })
	case key.Matches(msg, keys.Back):
		p.shopping = false
	}
	return p, nil
}

func (p petModel) showRenameForm() (petModel, tea.Cmd) {
	*p.formName = p.pet.Name
	p.formType = "rename"
	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("New name (%d XP)", gamify.RenameCost)).
				CharLimit(gamify.MaxPetNameLen).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if s == "" || utf8.RuneCountInString(s) > gamify.MaxPetNameLen {
						return fmt.Errorf("1 to %d characters", gamify.MaxPetNameLen)
					}
					return nil
				}).
				Value(p.formName),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p petModel) showHeadForm() (petModel, tea.Cmd) {
	*p.formHead = p.pet.Head
	p.formType = "head"
	opts := make([]huh.Option[store.PetHead], len(store.PetHeads))
	for i, h := range store.PetHeads {
		opts[i] = huh.NewOption(string(h), h)
	}
	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[store.PetHead]().
				Title(fmt.Sprintf("New look (%d XP)", gamify.ChangeHeadCost)).
				Options(opts...).
				Value(p.formHead),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p petModel) updateForm(msg tea.Msg) (petModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		e := p.svc.Engine
		switch p.formType {
		case "rename":
			name := *p.formName
			return p, p.act(func() (gamify.Outcome, error) { return e.Rename(name) })
		case "head":
			head := *p.formHead
			return p, p.act(func() (gamify.Outcome, error) { return e.ChangeHead(head) })
		}
	}
	return p, cmd
}

func (p petModel) view() string {
	w := p.width - 4

	if p.formActive && p.form != nil {
		title := titleStyle.Render("Rename Pet")
		if p.formType == "head" {
			title = titleStyle.Render("Change Look")
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View()))
	}
	if p.shopping {
		return p.renderShop(w)
	}

	face := petFaces[p.pet.Head]
	if face == nil {
		face = petFaces[store.HeadDefault]
	}
	style := panelStyle
	if !p.pet.IsAlive {
		face = deadFace
		style = deadPanelStyle
	}
	art := highlightStyle.Render(strings.Join(face, "\n"))

	var rows []string
	rows = append(rows, titleStyle.Render(p.pet.Name)+"  "+mutedStyle.Render("loves "+p.pet.FavoriteSubject))
	rows = append(rows, "")
	rows = append(rows, fmt.Sprintf("%-10s %s %3d", "Hunger", meter(p.pet.Hunger, 20, hungerStyle(p.pet.Hunger)), p.pet.Hunger))
	rows = append(rows, fmt.Sprintf("%-10s %s %3d", "Happiness", meter(p.pet.Happiness, 20, happinessStyle(p.pet.Happiness)), p.pet.Happiness))
	rows = append(rows, "")
	rows = append(rows, goldStyle.Render(fmt.Sprintf("%d XP to spend", p.xp)))
	rows = append(rows, "")
	if p.pet.IsAlive {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  f: feed (%d)  p: play (%d)  r: rename (%d)  H: look (%d)  b: shop",
			gamify.FeedCost, gamify.PlayCost, gamify.RenameCost, gamify.ChangeHeadCost)))
	} else {
		rows = append(rows, errorStyle.Render(p.pet.Name+" has passed away."))
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  a: adopt a new pet (%d XP)", gamify.NewPetCost)))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, art, "    ", strings.Join(rows, "\n"))
	return style.Width(w).Render(body)
}

func (p petModel) renderShop(w int) string {
	var rows []string
	rows = append(rows, titleStyle.Render("Pet Shop")+"  "+goldStyle.Render(fmt.Sprintf("%d XP", p.xp)))
	rows = append(rows, "")
	for i, it := range gamify.ShopItems() {
		cursor := "  "
		style := normalItemStyle
		if i == p.shopCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		price := mutedStyle.Render(fmt.Sprintf("%d XP", it.Cost))
		if it.Cost > p.xp {
			price = errorStyle.Render(fmt.Sprintf("%d XP", it.Cost))
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-14s", cursor, it.Name))+" "+price+"  "+mutedStyle.Render(it.EffectSummary()))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: buy  esc: back"))
	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func hungerStyle(v int) lipgloss.Style {
	switch {
	case v >= 70:
		return errorStyle
	case v >= 50:
		return warningStyle
	}
	return successStyle
}

func happinessStyle(v int) lipgloss.Style {
	switch {
	case v <= 30:
		return errorStyle
	case v <= 50:
		return warningStyle
	}
	return successStyle
}

// petLine is the one-line pet summary used on the dashboard.
func petLine(pet store.Pet) string {
	if pet.Name == "" {
		return ""
	}
	if !pet.IsAlive {
		return errorStyle.Render("🪦 " + pet.Name + " has passed away")
	}
	return fmt.Sprintf("🐾 %s  hunger %s  happiness %s", pet.Name,
		meter(pet.Hunger, 10, hungerStyle(pet.Hunger)), meter(pet.Happiness, 10, happinessStyle(pet.Happiness)))
}

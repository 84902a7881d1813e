package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/petquest/internal/gamify"
	"github.com/sadopc/petquest/internal/service"
	"github.com/sadopc/petquest/internal/store"
)

var petFaces = map[store.PetHead]string{
	store.HeadDefault: "🐶",
	store.HeadCat:     "🐱",
	store.HeadRabbit:  "🐰",
	store.HeadFox:     "🦊",
	store.HeadLion:    "🦁",
	store.HeadPanda:   "🐼",
}

func newPetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pet",
		Short: "Look after your pet",
		Args:  cobra.NoArgs,
		RunE:  runPetStatus,
	}
	cmd.AddCommand(
		&cobra.Command{Use: "status", Short: "Show your pet", Args: cobra.NoArgs, RunE: runPetStatus},
		newPetTickCmd(),
		petActionCmd("feed", fmt.Sprintf("Feed your pet (%d XP)", gamify.FeedCost), cobra.NoArgs,
			func(svc *service.Service, _ []string) (gamify.Outcome, error) { return svc.Engine.Feed() }),
		petActionCmd("play", fmt.Sprintf("Play with your pet (%d XP)", gamify.PlayCost), cobra.NoArgs,
			func(svc *service.Service, _ []string) (gamify.Outcome, error) { return svc.Engine.Play() }),
		petActionCmd("rename <name>", fmt.Sprintf("Rename your pet (%d XP)", gamify.RenameCost), cobra.MinimumNArgs(1),
			func(svc *service.Service, args []string) (gamify.Outcome, error) {
				return svc.Engine.Rename(strings.Join(args, " "))
			}),
		petActionCmd("head <"+headList()+">", fmt.Sprintf("Change your pet's look (%d XP)", gamify.ChangeHeadCost), cobra.ExactArgs(1),
			func(svc *service.Service, args []string) (gamify.Outcome, error) {
				return svc.Engine.ChangeHead(store.PetHead(strings.ToLower(args[0])))
			}),
		petActionCmd("buy <item>", "Buy a shop item for your pet", cobra.ExactArgs(1),
			func(svc *service.Service, args []string) (gamify.Outcome, error) { return svc.Engine.BuyItem(args[0]) }),
		petActionCmd("revive", fmt.Sprintf("Adopt a new pet after yours has died (%d XP)", gamify.NewPetCost), cobra.NoArgs,
			func(svc *service.Service, _ []string) (gamify.Outcome, error) { return svc.Engine.BuyNewPet() }, "adopt"),
		newPetShopCmd(),
	)
	return cmd
}

func headList() string {
	names := make([]string, len(store.PetHeads))
	for i, h := range store.PetHeads {
		names[i] = string(h)
	}
	return strings.Join(names, "|")
}

// petActionCmd builds a subcommand that runs one interaction and prints the
// pet afterwards. Rejections are reported by the notifier and exit cleanly.
func petActionCmd(use, short string, args cobra.PositionalArgs, do func(*service.Service, []string) (gamify.Outcome, error), aliases ...string) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Aliases: aliases,
		Short:   short,
		Args:    args,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			out, err := do(svc, args)
			if err != nil {
				return err
			}
			if out.OK {
				if _, err := svc.Engine.CheckAndUnlock(svc.Now()); err != nil {
					return err
				}
			}
			printPet(cmd, out.Pet, out.XP)
			return nil
		},
	}
}

func runPetStatus(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := openService(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	p := svc.Engine.Profile()
	printPet(cmd, p.Pet, p.XP)
	return nil
}

// newPetTickCmd applies one simulation step. The TUI ticks on its own at
// pet.tick_interval; this is for cron or manual use when it is not running.
func newPetTickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Advance the pet simulation one step",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			pet, err := svc.Engine.TickPet(svc.Now())
			if err != nil {
				return err
			}
			printPet(cmd, pet, svc.Engine.Profile().XP)
			return nil
		},
	}
}

func printPet(cmd *cobra.Command, pet store.Pet, xp int) {
	out := cmd.OutOrStdout()
	face := petFaces[pet.Head]
	if !pet.IsAlive {
		face = "🪦"
	}
	fmt.Fprintln(out, heading(face, pet.Name))
	if !pet.IsAlive {
		fmt.Fprintln(out, badStyle.Render(fmt.Sprintf("%s has passed away. Revive with a new pet for %d XP.", pet.Name, gamify.NewPetCost)))
	}
	fmt.Fprintln(out, labelValue("Hunger   ", fmt.Sprintf("%s %d", bar(pet.Hunger, 20), pet.Hunger)))
	fmt.Fprintln(out, labelValue("Happiness", fmt.Sprintf("%s %d", bar(pet.Happiness, 20), pet.Happiness)))
	fmt.Fprintln(out, labelValue("Loves", pet.FavoriteSubject))
	fmt.Fprintln(out, labelValue("Your XP", xp))
	if pet.IsAlive {
		switch {
		case pet.Hunger >= 70:
			fmt.Fprintln(out, warnStyle.Render(iconWarn+" "+pet.Name+" is very hungry."))
		case pet.Happiness <= 30:
			fmt.Fprintln(out, warnStyle.Render(iconWarn+" "+pet.Name+" is feeling down."))
		}
	}
}

func newPetShopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shop",
		Short: "List pet shop items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, heading(iconPaw, "Pet shop"))
			for _, it := range gamify.ShopItems() {
				fmt.Fprintf(out, "%s %s %s\n  %s %s\n",
					keyStyle.Render(fmt.Sprintf("%-14s", it.ID)), it.Name, goldStyle.Render(fmt.Sprintf("%d XP", it.Cost)),
					mutedStyle.Render(it.Description), mutedStyle.Render("("+it.EffectSummary()+")"))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, mutedStyle.Render("Buy with: petquest pet buy <item>"))
			return nil
		},
	}
}

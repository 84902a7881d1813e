package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/petquest/internal/store"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage the plan board",
	}
	cmd.AddCommand(newPlanAddCmd(), newPlanRmCmd(), newPlanLsCmd())
	return cmd
}

func newPlanAddCmd() *cobra.Command {
	var date, kind, due, subject string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add an item to the plan board",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pt := store.PlanType(kind)
			if !pt.IsValid() {
				return fmt.Errorf("invalid type %q (activity, special-day, goal)", kind)
			}
			svc, cleanup, err := openService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			when, err := parseWhen(date, svc.Now())
			if err != nil {
				return err
			}
			item := store.PlanBoardItem{Title: strings.Join(args, " "), Date: when, Type: pt}
			if due != "" {
				d, err := parseWhen(due, svc.Now())
				if err != nil {
					return err
				}
				item.DueDate = &d
			}
			if subject != "" {
				item.Subject = &subject
			}

			saved, res, err := svc.SavePlan(item)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Planned %s for %s %s\n", iconDone, keyStyle.Render(saved.Title),
				saved.Date.Local().Format("Mon Jan 2"), mutedStyle.Render("("+shortID(saved.ID)+")"))
			if res != nil {
				printActionResult(cmd, *res)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "today", "date (YYYY-MM-DD [HH:MM], today, tomorrow)")
	cmd.Flags().StringVarP(&kind, "type", "t", string(store.PlanActivity), "activity, special-day or goal")
	cmd.Flags().StringVar(&due, "due", "", "optional due date")
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "subject")
	return cmd
}

func newPlanRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Remove a plan board item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			items := svc.Records.PlanItems()
			ids := make([]string, len(items))
			for i, it := range items {
				ids[i] = it.ID
			}
			id, err := resolveID(ids, args[0])
			if err != nil {
				return err
			}
			if err := svc.Records.DeletePlanItem(id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Removed "+shortID(id)))
			return nil
		},
	}
}

func newPlanLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "Show the plan board by date",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			items := svc.Records.PlanItems()
			sort.SliceStable(items, func(i, j int) bool { return items[i].Date.Before(items[j].Date) })

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, heading("🗓️", "Plan board"))
			if len(items) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("Nothing planned."))
				return nil
			}
			for _, it := range items {
				line := fmt.Sprintf("%s %s %s %s", mutedStyle.Render(shortID(it.ID)),
					it.Date.Local().Format("Mon Jan 2"), h2Style.Render(string(it.Type)), it.Title)
				if it.Subject != nil {
					line += mutedStyle.Render("  #" + *it.Subject)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/petquest/internal/gamify"
	"github.com/sadopc/petquest/internal/service"
	"github.com/sadopc/petquest/internal/store"
)

func newTodoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Manage todos",
	}
	cmd.AddCommand(newTodoAddCmd(), newTodoDoneCmd(), newTodoRmCmd(), newTodoLsCmd())
	return cmd
}

func newTodoAddCmd() *cobra.Command {
	var desc, priority, due, subject string
	var notify int
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prio, err := parsePriority(priority)
			if err != nil {
				return err
			}
			withReminder := cmd.Flags().Changed("notify")
			if withReminder && due == "" {
				return errors.New("--notify needs --due")
			}
			if notify < 0 {
				return fmt.Errorf("--notify %d: minutes must not be negative", notify)
			}
			svc, cleanup, err := openService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			t := store.Todo{Title: strings.Join(args, " "), Priority: prio}
			if desc != "" {
				t.Description = &desc
			}
			if subject != "" {
				t.Subject = &subject
			}
			if due != "" {
				when, err := parseWhen(due, svc.Now())
				if err != nil {
					return err
				}
				t.DueDate = &when
			}
			if withReminder {
				at := t.DueDate.Add(-time.Duration(notify) * time.Minute)
				t.NotificationTime = &at
			}

			saved, err := svc.Records.AddTodo(t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s %s\n", iconDone, keyStyle.Render(saved.Title), mutedStyle.Render("("+shortID(saved.ID)+")"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "medium", "low, medium or high")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD [HH:MM], today, tomorrow)")
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "subject")
	cmd.Flags().IntVar(&notify, "notify", 0, "remind this many minutes before the due date")
	return cmd
}

func newTodoDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Complete a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveID(todoIDs(svc), args[0])
			if err != nil {
				return err
			}
			todo, res, err := svc.CompleteTodo(id)
			if err != nil {
				return err
			}
			if res == nil {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(todo.Title+" was already done."))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Completed %s\n", iconDone, keyStyle.Render(todo.Title))
			printActionResult(cmd, *res)
			return nil
		},
	}
}

func newTodoRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a todo",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveID(todoIDs(svc), args[0])
			if err != nil {
				return err
			}
			if err := svc.Records.DeleteTodo(id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Deleted "+shortID(id)))
			return nil
		},
	}
}

func newTodoLsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List todos",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, heading(iconDone, "Todos"))
			shown := 0
			for _, t := range svc.Records.Todos() {
				if t.Completed && !all {
					continue
				}
				check := "[ ]"
				if t.Completed {
					check = goodStyle.Render("[x]")
				}
				line := fmt.Sprintf("%s %s %s %s", mutedStyle.Render(shortID(t.ID)), check, priorityLabel(t.Priority), t.Title)
				if t.DueDate != nil {
					line += mutedStyle.Render("  due " + t.DueDate.Local().Format("Mon Jan 2 15:04"))
				}
				if t.Subject != nil {
					line += mutedStyle.Render("  #" + *t.Subject)
				}
				fmt.Fprintln(out, line)
				shown++
			}
			if shown == 0 {
				fmt.Fprintln(out, mutedStyle.Render("Nothing to do."))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include completed todos")
	return cmd
}

func todoIDs(svc *service.Service) []string {
	todos := svc.Records.Todos()
	ids := make([]string, len(todos))
	for i, t := range todos {
		ids[i] = t.ID
	}
	return ids
}

func printActionResult(cmd *cobra.Command, res gamify.ActionResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, goodStyle.Render(fmt.Sprintf("+%d XP", res.XPAwarded)))
	if res.LevelUp {
		fmt.Fprintln(out, goldStyle.Render(fmt.Sprintf("%s Level %d reached!", iconBolt, res.NewLevel)))
	}
	for _, a := range res.NewAchievements {
		fmt.Fprintln(out, goldStyle.Render(fmt.Sprintf("%s %s (+%d XP)", iconTrophy, a.Name, a.Reward.XP)))
	}
}

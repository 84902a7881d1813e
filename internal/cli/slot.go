package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/petquest/internal/store"
)

var dayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func newSlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slot",
		Short: "Manage the weekly timetable",
	}
	cmd.AddCommand(newSlotAddCmd(), newSlotRmCmd(), newSlotLsCmd())
	return cmd
}

func newSlotAddCmd() *cobra.Command {
	var day, start, end, subject, location string
	var notify int
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a weekly time slot",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dow, err := parseWeekday(day)
			if err != nil {
				return err
			}
			svc, cleanup, err := openService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			slot := store.TimeSlot{
				Title:     strings.Join(args, " "),
				DayOfWeek: dow,
				StartTime: start,
				EndTime:   end,
			}
			if subject != "" {
				slot.Subject = &subject
			}
			if location != "" {
				slot.Location = &location
			}
			if cmd.Flags().Changed("notify") {
				slot.NotificationTime = &notify
			}
			saved, err := svc.Records.AddTimeSlot(slot)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s on %s %s-%s %s\n", iconDone, keyStyle.Render(saved.Title),
				dayNames[saved.DayOfWeek], saved.StartTime, saved.EndTime, mutedStyle.Render("("+shortID(saved.ID)+")"))
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "day", "mon", "day of week (sun..sat or 0..6)")
	cmd.Flags().StringVar(&start, "start", "09:00", "start time HH:MM")
	cmd.Flags().StringVar(&end, "end", "10:00", "end time HH:MM")
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "subject")
	cmd.Flags().StringVarP(&location, "location", "l", "", "location")
	cmd.Flags().IntVar(&notify, "notify", 0, "remind this many minutes before the start")
	return cmd
}

func newSlotRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Remove a time slot",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			slots := svc.Records.TimeSlots()
			ids := make([]string, len(slots))
			for i, s := range slots {
				ids[i] = s.ID
			}
			id, err := resolveID(ids, args[0])
			if err != nil {
				return err
			}
			if err := svc.Records.DeleteTimeSlot(id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Removed "+shortID(id)))
			return nil
		},
	}
}

func newSlotLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "Show the weekly timetable",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			slots := svc.Records.TimeSlots()
			sort.SliceStable(slots, func(i, j int) bool {
				if slots[i].DayOfWeek != slots[j].DayOfWeek {
					return slots[i].DayOfWeek < slots[j].DayOfWeek
				}
				return slots[i].StartTime < slots[j].StartTime
			})

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, heading("🕘", "Timetable"))
			if len(slots) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No time slots."))
				return nil
			}
			day := -1
			for _, s := range slots {
				if s.DayOfWeek != day {
					day = s.DayOfWeek
					fmt.Fprintln(out, h2Style.Render(dayNames[day]))
				}
				line := fmt.Sprintf("  %s %s-%s %s", mutedStyle.Render(shortID(s.ID)), s.StartTime, s.EndTime, s.Title)
				if s.Location != nil {
					line += mutedStyle.Render("  @" + *s.Location)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

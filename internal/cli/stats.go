package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sadopc/petquest/internal/gamify"
	"github.com/sadopc/petquest/internal/store"
	"github.com/sadopc/petquest/internal/suggest"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show level, streak and activity statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			st := svc.Stats()
			info := gamify.LevelForXP(st.XP)
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, heading(iconSparkle, "Progress"))
			fmt.Fprintln(out, labelValue("Level", st.Level))
			fmt.Fprintln(out, labelValue("XP", fmt.Sprintf("%d  %s %d/%d", st.XP, bar(int(info.Progress), 20), info.XPIntoLevel, info.XPForNextLevel)))
			fmt.Fprintln(out, labelValue("Streak", fmt.Sprintf("%d day(s)", st.Streak)))
			fmt.Fprintln(out, labelValue("Achievements", fmt.Sprintf("%d/%d", len(st.Achievements), svc.Engine.Catalog().Len())))
			fmt.Fprintln(out)

			fmt.Fprintln(out, h2Style.Render("Todos"))
			fmt.Fprintln(out, labelValue("Completed", fmt.Sprintf("%d/%d (%.0f%%)", st.CompletedTodos, st.TotalTodos, st.CompletionRate()*100)))
			fmt.Fprintln(out, labelValue("High priority done", st.CompletedHighPriorityTodos))
			fmt.Fprintln(out, labelValue("On time", st.CompletedOnTimeTodos))
			fmt.Fprintln(out, labelValue("Perfect days", st.PerfectDays))
			fmt.Fprintln(out)

			fmt.Fprintln(out, h2Style.Render("Focus"))
			fmt.Fprintln(out, labelValue("Sessions", st.FocusSessions))
			fmt.Fprintln(out, labelValue("Total", fmt.Sprintf("%.1fh", st.TotalFocusTime)))
			fmt.Fprintln(out, labelValue("This week", fmt.Sprintf("%.1fh (avg %.1fh)", st.WeeklyFocusTime, st.AverageWeeklyFocusTime)))
			fmt.Fprintln(out, labelValue("Longest", fmt.Sprintf("%.0f min", st.LongestSession)))
			fmt.Fprintln(out, labelValue("Early / night / weekend", fmt.Sprintf("%d / %d / %d", st.EarlyBirdSessions, st.NightOwlSessions, st.WeekendSessions)))
			fmt.Fprintln(out, labelValue("Breaks", st.TotalBreaks))
			if h, ok := st.MostProductiveHour(); ok {
				fmt.Fprintln(out, labelValue("Best hour", fmt.Sprintf("%02d:00", h)))
			}
			fmt.Fprintln(out)

			if len(st.SubjectStats) > 0 {
				fmt.Fprintln(out, h2Style.Render("Subjects"))
				names := make([]string, 0, len(st.SubjectStats))
				for name := range st.SubjectStats {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					ss := st.SubjectStats[name]
					fmt.Fprintf(out, "- %s %s\n", keyStyle.Render(name),
						mutedStyle.Render(fmt.Sprintf("%.1fh in %d session(s), avg score %.2f", float64(ss.TotalTime)/3600, ss.SessionsCount, ss.AverageScore)))
				}
				fmt.Fprintln(out)
			}

			fmt.Fprintln(out, h2Style.Render("Plans"))
			fmt.Fprintln(out, labelValue("Items", st.PlanBoardItems))
			fmt.Fprintln(out, labelValue("Planned ahead", st.PlansCreatedInAdvance))
			return nil
		},
	}
}

func newAchievementsCmd() *cobra.Command {
	var showLocked bool
	cmd := &cobra.Command{
		Use:     "achievements",
		Aliases: []string{"ach"},
		Short:   "List achievements",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			st := svc.Stats()
			p := svc.Engine.Profile()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, heading(iconTrophy, "Achievements"))

			category := ""
			for _, a := range svc.Engine.Catalog().All() {
				unlocked := p.HasAchievement(a.ID)
				if !unlocked && !showLocked {
					continue
				}
				if a.Category != category {
					category = a.Category
					fmt.Fprintln(out, h2Style.Render(category))
				}
				fmt.Fprintln(out, achievementLine(a, unlocked, a.Condition.Progress(st)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&showLocked, "all", "a", false, "include locked achievements")
	return cmd
}

func achievementLine(a gamify.Achievement, unlocked bool, progress float64) string {
	if unlocked {
		return fmt.Sprintf("- %s %s %s", iconDone, goldStyle.Render(a.Name), mutedStyle.Render(a.Description))
	}
	if a.Secret {
		return fmt.Sprintf("- %s %s", iconLock, mutedStyle.Render("??? (secret)"))
	}
	return fmt.Sprintf("- %s %s %s %s", iconLock, a.Name, mutedStyle.Render(a.Description),
		mutedStyle.Render(fmt.Sprintf("[%d%%, +%d XP]", int(progress*100), a.Reward.XP)))
}

func newSuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "Show suggestions based on your activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, heading(iconIdea, "Suggestions"))
			for _, s := range svc.Suggestions() {
				fmt.Fprintf(out, "- %s %s\n", priorityTag(s.Priority), s.Message)
			}
			return nil
		},
	}
}

func priorityTag(p suggest.Priority) string {
	switch p {
	case suggest.PriorityHigh:
		return badStyle.Render("[high]")
	case suggest.PriorityMedium:
		return warnStyle.Render("[med] ")
	default:
		return mutedStyle.Render("[low] ")
	}
}

func priorityLabel(p store.Priority) string {
	switch p {
	case store.PriorityHigh:
		return badStyle.Render("high")
	case store.PriorityLow:
		return mutedStyle.Render("low")
	default:
		return warnStyle.Render("med")
	}
}

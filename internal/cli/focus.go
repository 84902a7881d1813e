package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/petquest/internal/store"
)

func newFocusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Log and list focus sessions",
	}
	cmd.AddCommand(newFocusLogCmd(), newFocusBreakCmd(), newFocusLsCmd())
	return cmd
}

func newFocusLogCmd() *cobra.Command {
	var (
		minutes int
		subject string
		score   float64
		breaks  int
		at      string
	)
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log a finished focus session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if minutes <= 0 {
				return fmt.Errorf("--minutes must be positive")
			}
			if cmd.Flags().Changed("score") && (score < 0 || score > 1) {
				return fmt.Errorf("--score must be between 0 and 1")
			}
			svc, cleanup, err := openService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			dur := time.Duration(minutes) * time.Minute
			end := svc.Now()
			if at != "" {
				start, err := parseWhen(at, svc.Now())
				if err != nil {
					return err
				}
				end = start.Add(dur)
			}
			sess := store.FocusSession{
				StartTime: end.Add(-dur),
				EndTime:   end,
				Duration:  int64(dur.Seconds()),
			}
			if subject != "" {
				sess.Subject = &subject
			}
			if cmd.Flags().Changed("score") {
				sess.FocusScore = &score
			}
			if cmd.Flags().Changed("breaks") {
				sess.Breaks = &breaks
			}

			saved, res, err := svc.LogFocusSession(sess)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Logged %s of focus %s\n", iconDone,
				keyStyle.Render(formatMinutes(saved.Duration)), mutedStyle.Render("("+shortID(saved.ID)+")"))
			printActionResult(cmd, res)
			return nil
		},
	}
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 25, "session length in minutes")
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "subject studied")
	cmd.Flags().Float64Var(&score, "score", 0, "self-rated focus score, 0..1")
	cmd.Flags().IntVar(&breaks, "breaks", 0, "breaks taken during the session")
	cmd.Flags().StringVar(&at, "at", "", "start time (YYYY-MM-DD HH:MM), default: ended just now")
	return cmd
}

func newFocusBreakCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "break",
		Short: "Record a standalone break",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.Engine.RecordBreak(); err != nil {
				return err
			}
			if _, err := svc.Engine.CheckAndUnlock(svc.Now()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), goodStyle.Render("Break recorded. Stretch a little!"))
			return nil
		},
	}
}

func newFocusLsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List recent focus sessions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := openService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			sessions := svc.Records.FocusSessions()
			fmt.Fprintln(out, heading(iconBolt, "Focus sessions"))
			if len(sessions) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No sessions yet. Try `petquest focus log`."))
				return nil
			}
			start := 0
			if limit > 0 && len(sessions) > limit {
				start = len(sessions) - limit
			}
			for i := len(sessions) - 1; i >= start; i-- {
				s := sessions[i]
				line := fmt.Sprintf("%s %s %s", mutedStyle.Render(shortID(s.ID)),
					s.StartTime.Local().Format("Mon Jan 2 15:04"), keyStyle.Render(formatMinutes(s.Duration)))
				if s.Subject != nil {
					line += "  #" + *s.Subject
				}
				if s.FocusScore != nil {
					line += mutedStyle.Render(fmt.Sprintf("  score %.2f", *s.FocusScore))
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "show at most this many sessions (0 for all)")
	return cmd
}

func formatMinutes(secs int64) string {
	d := time.Duration(secs) * time.Second
	if d >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}

package cli

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/petquest/internal/export"
)

func newExportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Export your data as JSON (full backup) or CSV (focus sessions)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if format == "" {
				format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
			}
			if format != "json" && format != "csv" {
				return fmt.Errorf("unknown format %q (json or csv)", format)
			}

			svc, cleanup, err := openService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			snap := svc.Snapshot()
			if format == "csv" {
				err = export.ToCSV(snap.FocusSessions, path)
			} else {
				err = export.ToJSON(snap, svc.Now(), path)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Exported to %s\n", iconDone, keyStyle.Render(path))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or csv (default from the file extension)")
	return cmd
}

func newImportCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Replace all data with a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := export.FromJSON(args[0])
			if err != nil {
				return err
			}
			if !yes && !confirm(cmd, "This replaces all current data. Continue?") {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Cancelled."))
				return nil
			}

			svc, cleanup, err := openService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.Import(snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Imported %d todos, %d focus sessions, %d plan items, %d time slots\n",
				iconDone, len(snap.Todos), len(snap.FocusSessions), len(snap.PlanBoard), len(snap.TimeSlots))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all data and start over",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(cmd, "This deletes every todo, session, plan and your pet. Continue?") {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Cancelled."))
				return nil
			}

			svc, cleanup, err := openService(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.Reset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), warnStyle.Render("All data cleared."))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s ", warnStyle.Render(iconWarn+" "+prompt), mutedStyle.Render("[y/N]"))
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

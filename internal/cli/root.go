// Package cli implements the petquest command line. Running it without a
// subcommand opens the terminal UI.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var (
	configPath string
	verbose    bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "petquest",
		Short:         "Todos, focus sessions and a pet that grows with you",
		Long:          "petquest is a local-first productivity tracker: todos, a focus timer, a plan board and a virtual pet fed by your progress.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runTUI,
	}
	root.Version = Version
	root.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <config dir>/petquest/config.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "also write logs to stderr")

	root.AddCommand(
		newTUICmd(),
		newStatsCmd(),
		newTodoCmd(),
		newFocusCmd(),
		newPlanCmd(),
		newSlotCmd(),
		newPetCmd(),
		newAchievementsCmd(),
		newSuggestCmd(),
		newExportCmd(),
		newImportCmd(),
		newResetCmd(),
	)
	return root
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, badStyle.Render(iconError+" "+err.Error()))
		os.Exit(1)
	}
}

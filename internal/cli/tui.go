package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/petquest/internal/logging"
	"github.com/sadopc/petquest/internal/service"
	"github.com/sadopc/petquest/internal/tui"
)

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal UI (default)",
		Args:  cobra.NoArgs,
		RunE:  runTUI,
	}
}

// runTUI owns the terminal, so logs only go to the file and engine
// notifications are routed into the program instead of stderr.
func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return err
	}
	defer log.Sync()

	sink := tui.NewNotificationSink(32)
	svc, err := service.Open(cfg, log, service.WithNotifiers(sink))
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Warn("close service", zap.Error(err))
		}
	}()

	if _, _, err := svc.StartSession(); err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewApp(svc, sink), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/petquest/internal/config"
	"github.com/sadopc/petquest/internal/gamify"
	"github.com/sadopc/petquest/internal/logging"
	"github.com/sadopc/petquest/internal/service"
)

// printNotifier shows engine notifications under command output.
type printNotifier struct {
	w io.Writer
}

func (p printNotifier) Notify(n gamify.Notification) {
	style := goodStyle
	icon := iconSparkle
	switch n.Kind {
	case gamify.KindLevelUp:
		style, icon = goldStyle, iconBolt
	case gamify.KindAchievementUnlocked:
		style, icon = goldStyle, iconTrophy
	case gamify.KindPetDied,
		gamify.KindRejectedPetDead,
		gamify.KindRejectedInsufficient,
		gamify.KindRejectedPetAlive,
		gamify.KindRejectedUnknownItem,
		gamify.KindRejectedInvalidInput:
		style, icon = warnStyle, iconWarn
	}
	fmt.Fprintf(p.w, "%s %s\n", style.Render(icon+" "+n.Title), mutedStyle.Render(n.Body))
}

func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}

// openService loads config, builds the logger and opens the service. The
// daily login is recorded on every open; repeated opens on the same day
// leave the streak alone.
func openService(cmd *cobra.Command, opts ...service.Option) (*service.Service, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File, Console: verbose})
	if err != nil {
		return nil, nil, err
	}

	opts = append(opts, service.WithNotifiers(printNotifier{w: cmd.ErrOrStderr()}))
	svc, err := service.Open(cfg, log, opts...)
	if err != nil {
		log.Sync()
		return nil, nil, err
	}
	cleanup := func() {
		if err := svc.Close(); err != nil {
			log.Warn("close service", zap.Error(err))
		}
		log.Sync()
	}

	if _, _, err := svc.StartSession(); err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

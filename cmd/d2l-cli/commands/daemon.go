package commands

import (
	"context"
	"log/slog"
	"time"
	"valence/internal/components/chrono"
	"valence/internal/preload"
	"valence/internal/scrapers/d2l"
	"valence/internal/scrapers/d2l/parse"

	"github.com/spf13/cobra"
)

const preloadTimeout = 10 * time.Minute

var daemonSkipInitial *bool

func init() {
	daemonSkipInitial = daemonCmd.Flags().Bool("skip-initial", false, "Wait for the first scheduled run instead of preloading on startup.")
	rootCmd.AddCommand(daemonCmd)
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Keeps the cache warm by preloading on a schedule and logs new activity.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := preload.NewPreloader(a.client, a.cache, a.tel)
		if err != nil {
			return err
		}
		run := func() {
			ctx, cancel := context.WithTimeout(ctx, preloadTimeout)
			defer cancel()
			start := time.Now()
			err := p.PreloadAll(ctx, nil)
			if err != nil {
				slog.Error("scheduled preload failed", "err", err)
				return
			}
			slog.Info("scheduled preload finished", "took", time.Since(start))
		}

		cron := chrono.NewStandardCron(a.tel, a.client.Timezone(ctx))
		defer cron.Stop()
		err = cron.Cron(a.cfg.Daemon.PreloadCron, run)
		if err != nil {
			return err
		}

		feed := openFeeds(a).Get(d2l.RootOrgUnit, parse.CategoryUpdates)
		unsubscribe := feed.SubscribeToUpdates(func() {
			slog.Info("new activity in the updates feed")
		})
		defer unsubscribe()

		slog.Info("daemon started", "schedule", a.cfg.Daemon.PreloadCron)
		if !*daemonSkipInitial {
			run()
		}
		<-ctx.Done()
		slog.Info("daemon stopping")
		return nil
	},
}

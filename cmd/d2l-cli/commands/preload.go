package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
	"valence/internal/preload"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/spf13/cobra"
)

const progressTotal = 1000

func init() {
	rootCmd.AddCommand(preloadCmd)
}

// preloadWithProgress runs PreloadAll while rendering a progress bar to
// stderr.
func preloadWithProgress(ctx context.Context, p *preload.Preloader) error {
	pw := progress.NewWriter()
	pw.SetOutputWriter(os.Stderr)
	pw.SetAutoStop(false)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetTrackerPosition(progress.PositionRight)

	tracker := &progress.Tracker{
		Message: "preloading courses",
		Total:   progressTotal,
		Units:   progress.UnitsDefault,
	}
	pw.AppendTracker(tracker)
	go pw.Render()

	err := p.PreloadAll(ctx, func(value float64) {
		tracker.SetValue(int64(value * progressTotal))
	})
	if err != nil {
		tracker.MarkAsErrored()
	} else {
		tracker.MarkAsDone()
	}

	time.Sleep(150 * time.Millisecond)
	pw.Stop()
	for pw.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
	return err
}

var preloadCmd = &cobra.Command{
	Use:   "preload [course-id...]",
	Short: "Fills the cache with the data of every course, or only the given courses.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := preload.NewPreloader(a.client, a.cache, a.tel)
		if err != nil {
			return err
		}

		if len(args) == 0 {
			return preloadWithProgress(cmd.Context(), p)
		}

		var errs []error
		for _, courseId := range args {
			err := p.PreloadCourse(cmd.Context(), courseId)
			if err != nil {
				errs = append(errs, fmt.Errorf("course %s: %w", courseId, err))
				continue
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "preloaded course %s\n", courseId)
		}
		return errors.Join(errs...)
	},
}

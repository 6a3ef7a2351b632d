package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mta-tools/mta/internal/config"
	"github.com/mta-tools/mta/internal/persist"
	"github.com/mta-tools/mta/internal/playback"
	"github.com/mta-tools/mta/internal/timeline"
	"github.com/mta-tools/mta/internal/tui/editor"
)

type editOptions struct {
	name       string
	surname    string
	url        string
	importPath string
	provider   string
	step       int
}

func newEditCmd() *cobra.Command {
	var opts editOptions
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Open the timeline editor",
		Long: `Open the interactive timeline editor.

The project autosaves under the configured key. A saved project is restored
when it belongs to the same student; otherwise the editor starts empty.

Examples:
  mta edit --name Ana --surname García --url https://youtu.be/ID
  mta edit --import analysis-ana-garcía.json
  mta edit --provider mpv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "", "student name (default [student] name)")
	cmd.Flags().StringVar(&opts.surname, "surname", "", "student surname (default [student] surname)")
	cmd.Flags().StringVar(&opts.url, "url", "", "recording URL to load")
	cmd.Flags().StringVar(&opts.importPath, "import", "", "import an exported analysis before editing")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "playback provider: simulated or mpv")
	cmd.Flags().IntVar(&opts.step, "step", 0, "starting workflow step (1-7)")
	return cmd
}

func runEdit(ctx context.Context, opts editOptions) error {
	closeEditLog, err := setupLogging(cfg, filepath.Join(persist.DataDir(), "mta.log"))
	if err != nil {
		return err
	}
	defer closeEditLog()
	logger := slog.Default()

	student := timeline.Student{
		Name:    firstNonEmpty(opts.name, cfg.Student.Name),
		Surname: firstNonEmpty(opts.surname, cfg.Student.Surname),
	}
	if student.Name == "" {
		return fmt.Errorf("student name is required (--name or [student] name in %s)", config.DefaultPath())
	}

	project := timeline.NewProject(student, nil)
	project.SetVideo(timeline.Video{Duration: cfg.Editor.TotalDuration})

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	notifier := &editor.Notifier{}
	mgr := persist.NewManager(store, project,
		persist.WithKey(cfg.Autosave.Key),
		persist.WithInterval(cfg.AutosaveInterval()),
		persist.WithLogger(logger),
		persist.WithSaveHook(notifier.SaveHook),
	)

	restored, err := mgr.LoadOnOpen(ctx)
	if err != nil {
		logger.Warn("starting with an empty project", "error", err)
	} else if restored {
		logger.Info("restored saved project", "student", student.FullName(), "key", mgr.Key())
	}
	if opts.importPath != "" {
		if _, err := mgr.ImportFile(opts.importPath); err != nil {
			return err
		}
	}
	if opts.url != "" {
		v := project.Video()
		v.URL = opts.url
		project.SetVideo(v)
	}

	provider, err := newProvider(ctx, firstNonEmpty(opts.provider, cfg.Playback.Provider), project.Video())
	if err != nil {
		return err
	}
	defer provider.Close()

	clock := playback.NewClock(provider, playback.Config{
		PollInterval: cfg.PollInterval(),
		Deadband:     cfg.Playback.DeadbandSeconds,
	}, playback.WithLogger(logger))
	unsubscribe := clock.Subscribe(func(u playback.Update) {
		if u.Kind != playback.UpdateLoaded {
			return
		}
		v := project.Video()
		if u.Title != "" {
			v.Title = u.Title
		}
		if u.Duration > 0 {
			v.Duration = u.Duration
		}
		project.SetVideo(v)
	})
	defer unsubscribe()
	if url := project.Video().URL; url != "" {
		if err := clock.Load(ctx, url); err != nil {
			logger.Warn("loading media failed", "url", url, "error", err)
		}
	}

	step := cfg.Editor.Step
	if opts.step > 0 {
		step = opts.step
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return mgr.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return editor.Run(gctx, editor.Options{
			Project: project,
			Catalog: cat,
			Clock:   clock,
			Manager: mgr,
			Mapper:  timeline.Mapper{K: cfg.Editor.PixelsPerSecond},
			Interaction: timeline.InteractionConfig{
				HandlePixels:    timeline.DefaultInteractionConfig().HandlePixels,
				MinResizePixels: cfg.Editor.MinResizePixels,
			},
			Zoom:        cfg.Editor.Zoom,
			CellPixels:  cfg.Editor.CellPixels,
			Step:        step,
			CatalogFile: config.ExpandHome(cfg.Catalog.File),
			Notifier:    notifier,
		})
	})
	return g.Wait()
}

// newProvider builds and starts the named playback provider. The simulated
// provider reports the project's own video metadata.
func newProvider(ctx context.Context, name string, video timeline.Video) (playback.Provider, error) {
	switch name {
	case "mpv":
		mpv := playback.NewMPV(
			playback.WithMPVBinary(cfg.Playback.MPVPath),
			playback.WithMPVLogger(slog.Default()),
		)
		startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := mpv.Start(startCtx); err != nil {
			return nil, err
		}
		return mpv, nil
	case "simulated", "":
		return playback.NewSimulated(playback.WithMedia(video.Title, video.Duration)), nil
	default:
		return nil, fmt.Errorf("unknown playback provider %q", name)
	}
}

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapbuild/internal/cli/config"
	sharedcfg "github.com/leapstack-labs/leapbuild/internal/config"
)

// defaultDebounce collapses the burst of events editors emit on save.
const defaultDebounce = 100 * time.Millisecond

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-resolve the descriptor whenever the project file changes",
		Long: `Resolve the build descriptor, then watch the project file and resolve again
after every change until interrupted.

A project file that cannot be loaded at startup is an error. Once watching,
validation failures and unreadable edits are reported and the watch goes on.
Status messages go to stderr so json and yaml output stay parseable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reload := func() (*config.Config, error) {
				return config.LoadConfig(configFlag(cmd), cmd.Root().PersistentFlags())
			}
			return runWatch(ctx, cmdCtx, reload, debounce)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", defaultDebounce, "Quiet period before re-resolving")

	return cmd
}

func runWatch(ctx context.Context, cmdCtx *CommandContext, reload func() (*config.Config, error), debounce time.Duration) error {
	r := cmdCtx.Renderer

	dir, names := cmdCtx.Cfg.ProjectRoot, sharedcfg.FileNames()
	if used := config.GetConfigFileUsed(); used != "" {
		dir, names = filepath.Dir(used), []string{filepath.Base(used)}
	}

	render := func(cfg *config.Config) {
		res, err := cfg.Resolve(cmdCtx.Logger)
		if err != nil {
			_ = r.ValidationFailure(err)
			return
		}
		_ = r.Descriptor(res.Descriptor, nil)
	}
	render(cmdCtx.Cfg)

	w := &projectWatcher{dir: dir, names: names, debounce: debounce, logger: cmdCtx.Logger}
	r.Notice(fmt.Sprintf("Watching %s for changes. Press Ctrl+C to stop.", dir))

	return w.Run(ctx, func() {
		cfg, err := reload()
		if err != nil {
			r.Error(err.Error())
			return
		}
		cmdCtx.Cfg = cfg
		render(cfg)
	})
}

// projectWatcher reports debounced changes to the project file in dir.
type projectWatcher struct {
	dir      string
	names    []string
	debounce time.Duration
	logger   *slog.Logger
}

// Run blocks until ctx is cancelled, calling onChange once per burst of
// changes. onChange is never called concurrently with itself.
func (w *projectWatcher) Run(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory rather than the file so the project file may be
	// created, or replaced by an editor's rename.
	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	changes := make(chan struct{}, 1)

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return w.loop(egctx, watcher, changes)
	})
	eg.Go(func() error {
		for {
			select {
			case <-egctx.Done():
				return nil
			case <-changes:
				onChange()
			}
		}
	})
	return eg.Wait()
}

func (w *projectWatcher) loop(ctx context.Context, watcher *fsnotify.Watcher, changes chan<- struct{}) error {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("project file changed", "file", event.Name, "op", event.Op.String())

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			select {
			case changes <- struct{}{}:
			default:
				// A reload is already pending.
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *projectWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	return slices.Contains(w.names, filepath.Base(event.Name))
}

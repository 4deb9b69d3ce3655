package pipeline

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	"pyglue-generator/internal/discover"
	"pyglue-generator/internal/policy"
)

// DefaultDebounce collapses bursts of editor writes into one run.
const DefaultDebounce = 300 * time.Millisecond

// Watcher reruns the pipeline whenever an input header or a watched
// configuration file changes.
type Watcher struct {
	GC      *GenerationContext
	Inputs  []string
	Options Options
	// Extra files trigger a rerun too, typically the policy file.
	Extra []string
	// Reload, when set, is called before a rerun caused by an Extra file.
	Reload   func() (*policy.Policy, error)
	Debounce time.Duration
	// OnRun is called after every run, including the first.
	OnRun func(*Summary, error)
}

// Watch runs once and then after every relevant change until ctx is done.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating file watcher")
	}
	defer fw.Close()

	if err := w.addAll(fw); err != nil {
		return err
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w.run(ctx, false)

	var (
		timer  *time.Timer
		fire   <-chan time.Time
		reload bool
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}

			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}

			isExtra := w.isExtra(ev.Name)
			if !isExtra && !w.isInput(ev.Name) {
				continue
			}

			if ev.Has(fsnotify.Create) {
				if st, statErr := os.Stat(ev.Name); statErr == nil && st.IsDir() {
					_ = fw.Add(ev.Name)
				}
			}

			w.GC.Log.Debugw("change detected", "file", ev.Name, "op", ev.Op.String())

			reload = reload || isExtra

			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}

			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}

			w.GC.Log.Warnw("file watcher error", "error", err)

		case <-fire:
			fire = nil
			w.run(ctx, reload)
			reload = false
		}
	}
}

func (w *Watcher) run(ctx context.Context, reload bool) {
	if reload && w.Reload != nil {
		pol, err := w.Reload()
		if err != nil {
			w.GC.Log.Errorw("policy reload failed, keeping the previous one", "error", err)
			w.notify(nil, err)

			return
		}

		provider, err := ProviderFor(pol)
		if err != nil {
			w.GC.Log.Errorw("parser reload failed, keeping the previous policy", "error", err)
			w.notify(nil, err)

			return
		}

		w.GC.Policy = pol
		w.GC.Provider = provider
		w.GC.Log.Infow("policy reloaded")
	}

	paths, err := discover.Expand(w.Inputs)
	if err != nil {
		w.GC.Log.Errorw("expanding inputs", "error", err)
		w.notify(nil, err)

		return
	}

	summary, err := Run(ctx, w.GC, paths, w.Options)
	w.notify(summary, err)
}

func (w *Watcher) notify(s *Summary, err error) {
	if w.OnRun != nil {
		w.OnRun(s, err)
	}
}

// addAll watches every input directory recursively, the parent directory of
// every input file and of every extra file. Directories are watched rather
// than files so that editors replacing a file by rename are still seen.
func (w *Watcher) addAll(fw *fsnotify.Watcher) error {
	dirs := map[string]bool{}

	for _, in := range w.Inputs {
		st, err := os.Stat(in)
		if err != nil {
			return errors.Wrapf(err, "watching %s", in)
		}

		if !st.IsDir() {
			dirs[filepath.Dir(in)] = true
			continue
		}

		err = filepath.WalkDir(in, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				dirs[path] = true
			}

			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "walking %s", in)
		}
	}

	for _, extra := range w.Extra {
		dirs[filepath.Dir(extra)] = true
	}

	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			return errors.Wrapf(err, "watching %s", dir)
		}
	}

	return nil
}

func (w *Watcher) isExtra(name string) bool {
	for _, extra := range w.Extra {
		if sameFile(name, extra) {
			return true
		}
	}

	return false
}

// isInput reports whether name is a header inside the watched inputs. The
// destinations are never inputs, so the pipeline's own writes are ignored.
func (w *Watcher) isInput(name string) bool {
	if sameFile(name, w.Options.GlueFile) || sameFile(name, w.Options.StubFile) {
		return false
	}

	if st, err := os.Stat(name); err == nil && st.IsDir() {
		return true
	}

	return discover.IsHeader(name)
}

func sameFile(a, b string) bool {
	if a == "" || b == "" {
		return false
	}

	return filepath.Clean(a) == filepath.Clean(b)
}

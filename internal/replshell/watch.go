package repl

import (
	"fmt"

	"github.com/fsnotify/fsnotify"

	"github.com/wisecracklang/wisecrack/internal/diagnostics"
)

// fileWatcher reloads a single file into the REPL's Evaluator every time
// it changes on disk, for `:watch <file>`. Grounded on the same
// fsnotify.Watcher the rest of the pack reaches for file-change
// notification; wisecrack has no dev-server of its own to hang this
// off, so the REPL owns the watcher and the reload loop directly.
type fileWatcher struct {
	w    *fsnotify.Watcher
	path string
	done chan struct{}
}

// watchFile starts watching path, re-running it into r's Evaluator on
// every write/create event, and reporting reload errors through the
// REPL's writer the same way a normal :load failure would be.
func (r *REPL) watchFile(path string) error {
	if r.watcher != nil {
		r.watcher.Close()
		r.watcher = nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return fmt.Errorf("watch: %w", err)
	}

	fw := &fileWatcher{w: w, path: path, done: make(chan struct{})}
	r.watcher = fw

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				r.printf("\n[watch] %s changed, reloading...\n", path)
				if err := r.LoadFile(path); err != nil {
					r.printf("%s", diagnostics.FormatError(err, ""))
				} else {
					r.printf("[watch] reload ok\n")
				}
				r.printPrompt()
			case werr, ok := <-w.Errors:
				if !ok {
					return
				}
				r.printf("[watch] error: %v\n", werr)
			case <-fw.done:
				return
			}
		}
	}()

	return nil
}

// Close stops the watch goroutine and releases the underlying
// fsnotify.Watcher.
func (fw *fileWatcher) Close() {
	close(fw.done)
	fw.w.Close()
}

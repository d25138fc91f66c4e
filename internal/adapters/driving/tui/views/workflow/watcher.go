package workflow

import (
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui/messages"
)

// Watcher reports changes to a single file by watching its folder.
// Watching the folder rather than the file survives the file being
// replaced, which is how SaveAs overwrites it.
type Watcher struct {
	fs     *fsnotify.Watcher
	target string
}

// NewWatcher starts watching the folder that holds target.
func NewWatcher(target string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	target = filepath.Clean(target)
	if err := fw.Add(filepath.Dir(target)); err != nil {
		fw.Close() //nolint:errcheck
		return nil, err
	}

	return &Watcher{fs: fw, target: target}, nil
}

// Target returns the watched file path.
func (w *Watcher) Target() string {
	return w.target
}

// Next waits for the next change to the target and reports whether it
// exists. It returns nil once the watcher is closed.
func (w *Watcher) Next() tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.fs.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(ev.Name) != w.target {
					continue
				}
				return messages.ArtifactChanged{Path: w.target, Exists: fileExists(w.target)}

			case err, ok := <-w.fs.Errors:
				if !ok {
					return nil
				}
				return messages.WatchFailed{Err: err}
			}
		}
	}
}

// Close stops the watcher. A pending Next returns nil.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

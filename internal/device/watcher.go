package device

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports block-device hotplug by watching /dev for nodes
// appearing or disappearing. Notifications are coalesced so a burst
// of udev activity produces a single refresh.
type Watcher struct {
	fs      *fsnotify.Watcher
	changes chan struct{}
	done    chan struct{}
}

// devicePrefixes are the /dev node name families worth refreshing a
// device menu for.
var devicePrefixes = []string{"sd", "nvme", "mmcblk", "vd", "hd", "xvd"}

func isBlockNode(path string) bool {
	name := filepath.Base(path)
	for _, prefix := range devicePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// NewWatcher starts watching dir (normally /dev) for device nodes.
func NewWatcher(dir string) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	w := &Watcher{
		fs:      fs,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	var pending bool
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
				continue
			}
			if !isBlockNode(event.Name) {
				continue
			}
			if !pending {
				pending = true
				timer.Reset(500 * time.Millisecond)
			}
		case _, ok := <-w.fs.Errors:
			if !ok {
				return
			}
		case <-timer.C:
			pending = false
			select {
			case w.changes <- struct{}{}:
			default:
			}
		case <-w.done:
			return
		}
	}
}

// Changes delivers one value per coalesced burst of hotplug activity.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}

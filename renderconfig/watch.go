/*
NAME
  watch.go

DESCRIPTION
  watch.go hot-reloads a renderer configuration file, re-parsing and
  delivering a new *Config whenever the file changes on disk.

  Grounded on revid/config's file-driven Config idiom, using
  github.com/fsnotify/fsnotify (a teacher dependency) for the
  filesystem watch itself.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package renderconfig

import (
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

// Watcher watches a renderer configuration file on disk and delivers
// a newly parsed Config on Updates whenever it changes. A parse error
// is logged and the previous Config is retained.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	Updates chan *Config
	logger  logging.Logger
	done    chan struct{}
}

// NewWatcher starts watching path, returning the Config parsed from
// its current contents and a Watcher delivering subsequent updates.
func NewWatcher(path string, l logging.Logger) (*Config, *Watcher, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "renderconfig: read %s", path)
	}
	cfg, err := Parse(string(b))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "renderconfig: parse %s", path)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, errors.Wrap(err, "renderconfig: create fsnotify watcher")
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, nil, errors.Wrapf(err, "renderconfig: watch %s", path)
	}

	w := &Watcher{
		path:    path,
		watcher: fw,
		Updates: make(chan *Config, 1),
		logger:  l,
		done:    make(chan struct{}),
	}
	go w.run()
	return cfg, w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			b, err := os.ReadFile(w.path)
			if err != nil {
				w.warn("renderconfig: reload read error", "error", err.Error())
				continue
			}
			cfg, err := Parse(string(b))
			if err != nil {
				w.warn("renderconfig: reload parse error", "error", err.Error())
				continue
			}
			select {
			case w.Updates <- cfg:
			default:
				// Drop the stale pending update; the newest reload wins.
				select {
				case <-w.Updates:
				default:
				}
				w.Updates <- cfg
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.warn("renderconfig: watch error", "error", err.Error())
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) warn(msg string, args ...interface{}) {
	if w.logger == nil {
		return
	}
	w.logger.Warning(msg, args...)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

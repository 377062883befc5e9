/*
 * watch.go, part of TADF-Design.
 *
 *
 * Copyright 2026 The TADF-Design Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package validate

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/junhkim1226/TADF-Design/pipeline"
)

// Watcher calls a function whenever a TD-DFT log appears or changes in a
// results directory. Events closer than Quiet to each other are merged
// into one call.
type Watcher struct {
	Root   string
	Quiet  time.Duration
	Logger *slog.Logger
}

func (W *Watcher) logger() *slog.Logger {
	if W.Logger == nil {
		return slog.Default()
	}
	return W.Logger
}

// isLog reports whether path is a TD-DFT log or its archived copy.
func isLog(path string) bool {
	base := filepath.Base(path)
	td := pipeline.StemTD + ".log"
	return base == td || base == td+pipeline.ArchiveExt
}

// Watch blocks until ctx is done, calling fn after each burst of changes
// to the logs under Root. Molecule directories created while watching
// are watched as well. fn runs on the calling goroutine, one call at a
// time.
func (W *Watcher) Watch(ctx context.Context, fn func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	log := W.logger().With("dir", W.Root)
	if err := os.MkdirAll(W.Root, 0o755); err != nil {
		return err
	}
	if err := w.Add(W.Root); err != nil {
		return err
	}
	entries, err := os.ReadDir(W.Root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "mol_") {
			if err := w.Add(filepath.Join(W.Root, e.Name())); err != nil {
				log.Warn("watch", "error", err)
			}
		}
	}
	quiet := W.Quiet
	if quiet <= 0 {
		quiet = time.Second
	}
	timer := time.NewTimer(quiet)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create == fsnotify.Create && filepath.Dir(ev.Name) == filepath.Clean(W.Root) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := w.Add(ev.Name); err != nil {
						log.Warn("watch", "error", err)
					}
					//the log may be written before the directory is watched
					if _, err := os.Stat(filepath.Join(ev.Name, pipeline.StemTD+".log")); err == nil {
						timer.Reset(quiet)
					}
					continue
				}
			}
			if !isLog(ev.Name) || ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug("log changed", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(quiet)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch", "error", err)
		case <-timer.C:
			fn()
		}
	}
}

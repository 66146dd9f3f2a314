package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// editors often write a file several times in a row on save
const watchInterval = 500 * time.Millisecond

// watchExplanation prints the study material for path, then prints it again
// each time the file is written until ctx is done.
func watchExplanation(ctx context.Context, path string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating fsnotify watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	// Watch the directory, editors replace files on save.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("error adding dir to fsnotify watcher: %w", err)
	}
	log.Info("fsnotify watching dir", "dir", dir)

	limiter := rate.NewLimiter(rate.Every(watchInterval), 1)
	reload := func() {
		if err := printFile(w, path); err != nil {
			log.Error("unable to regenerate", "file", path, "error", err)
			fmt.Fprintln(w, err) //nolint:errcheck
		}
	}
	reload()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			if limiter.Allow() {
				reload()
				pending = nil
			} else if pending == nil {
				// catch the final write of a burst
				pending = time.After(watchInterval)
			}

		case <-pending:
			pending = nil
			reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Debug("fsnotify error", "dir", dir, "error", err)
		}
	}
}

// printFile reads the explanation at path and prints its study material.
func printFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("unable to open file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	text, err := readExplanation(f, path)
	if err != nil {
		return err
	}
	return printStudy(w, rawInput(path, text))
}

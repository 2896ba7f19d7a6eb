package store

import (
	"context"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// WatchInbox blocks on the inbox directory and calls imp after each new
// *.json file lands, until the context is cancelled. imp runs on this
// goroutine, so all book mutation stays on the normal import path; the
// short settle delay lets a writer finish before the file is read.
func WatchInbox(ctx context.Context, inboxDir string, imp func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(inboxDir); err != nil {
		return err
	}
	log.Infof("watching inbox %s", inboxDir)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !strings.HasSuffix(strings.ToLower(ev.Name), ".json") {
				continue
			}

			time.Sleep(100 * time.Millisecond)
			if err := imp(); err != nil {
				log.Warnf("inbox import: %v", err)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warnf("inbox watch: %v", err)
		}
	}
}

package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/sourceplane/campaignctl/internal/campaign"
)

// debounce collapses the burst of events editors emit for one save
const debounce = 150 * time.Millisecond

// Store holds the current model of one campaign file. A reload swaps in a
// whole new model; readers holding the old one are unaffected.
type Store struct {
	loader  *Loader
	path    string
	current atomic.Pointer[campaign.Model]
}

// NewStore loads path and returns a store serving it
func NewStore(l *Loader, path string) (*Store, error) {
	s := &Store{loader: l, path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the most recently loaded model
func (s *Store) Current() *campaign.Model {
	return s.current.Load()
}

// Path returns the campaign file served by the store
func (s *Store) Path() string {
	return s.path
}

// Reload loads the file again. On failure the previous model stays current.
func (s *Store) Reload() error {
	m, err := s.loader.Load(s.path)
	if err != nil {
		return err
	}
	s.current.Store(m)
	return nil
}

// Watch reloads the store whenever the campaign file changes on disk, until
// ctx is done. notify, if set, is called after every reload attempt.
func (s *Store) Watch(ctx context.Context, log zerolog.Logger, notify func(*campaign.Model, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory: editors often save by renaming a temp file over the target.
	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	target := filepath.Clean(s.path)
	log.Debug().Str("path", target).Msg("watching campaign")

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			pending = time.After(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watcher error")
		case <-pending:
			pending = nil
			err := s.Reload()
			if err != nil {
				log.Error().Err(err).Str("path", target).Msg("reload failed, keeping previous campaign")
			} else {
				log.Info().Str("path", target).Str("campaign", s.Current().Metadata().Name).Msg("campaign reloaded")
			}
			if notify != nil {
				notify(s.Current(), err)
			}
		}
	}
}

package main

import (
	"fmt"

	"github.com/pders01/lull/internal/action"
	"github.com/pders01/lull/internal/config"
	"github.com/pders01/lull/internal/debuglog"
	"github.com/pders01/lull/internal/operation"
	"github.com/pders01/lull/internal/search"
	"github.com/pders01/lull/internal/storage"
	"github.com/pders01/lull/internal/validation"
)

// session owns the controller and whatever its operation reads from.
type session struct {
	ctrl  *action.Controller
	store *storage.Store
	index *search.Index
}

func openSession(cfg *config.Config) (*session, error) {
	s := &session{}
	deps := operation.Deps{
		Random: cfg.Random,
		Feed:   cfg.Feed,
	}

	if operation.NeedsStore(cfg.Action.Operation) {
		if err := s.openStore(cfg); err != nil {
			return nil, err
		}
		deps.Registry = s.store
		deps.Matcher = s.matcher()
	}

	op, err := operation.New(cfg.Action.Operation, deps)
	if err != nil {
		s.Close()
		return nil, err
	}

	ctrl, err := action.New(op,
		action.WithDebounce(cfg.Action.Debounce),
		action.WithResetDelay(cfg.Action.ResetDelay),
		action.WithStaleGuard(cfg.Action.StaleGuard),
	)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.ctrl = ctrl
	return s, nil
}

// openStore opens the registry and, when possible, its search index.
func (s *session) openStore(cfg *config.Config) error {
	path, err := validation.EnsureParentDir(cfg.Database.Path)
	if err != nil {
		return err
	}
	store, err := storage.NewStore(path, cfg.Database.Timeout)
	if err != nil {
		return fmt.Errorf("opening registry: %w", err)
	}
	s.store = store

	if cfg.Database.SearchIndex == "" {
		return nil
	}
	idx, err := search.OpenIndex(cfg.Database.SearchIndex)
	if err != nil {
		debuglog.Warnf("search index unavailable, scanning instead: %v", err)
		return nil
	}
	if err := idx.Reindex(store); err != nil {
		debuglog.Warnf("reindexing failed, scanning instead: %v", err)
		idx.Close()
		return nil
	}
	s.index = idx
	return nil
}

func (s *session) matcher() search.Matcher {
	if s.index != nil {
		return s.index
	}
	return search.NewEngine(s.store)
}

// listener is the index as an update listener, or nil without one.
func (s *session) listener() search.UpdateListener {
	if s.index == nil {
		return nil
	}
	return s.index
}

func (s *session) Close() {
	if s.ctrl != nil {
		s.ctrl.Close()
	}
	if s.index != nil {
		s.index.Close()
	}
	if s.store != nil {
		s.store.Close()
	}
}

package service

import (
	"sync"

	"gold-analyst/internal/model"
)

// PreferenceStore holds the preferences the next analysis run is built from.
// Values are stored as given; they are checked when a request is built.
type PreferenceStore interface {
	Get() model.Preferences
	Set(patch model.PreferencesPatch) model.Preferences
	Replace(prefs model.Preferences)
}

type preferenceStore struct {
	mu    sync.RWMutex
	prefs model.Preferences
}

func NewPreferenceStore(initial model.Preferences) PreferenceStore {
	return &preferenceStore{prefs: initial}
}

func (s *preferenceStore) Get() model.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

func (s *preferenceStore) Set(patch model.PreferencesPatch) model.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = s.prefs.Apply(patch)
	return s.prefs
}

func (s *preferenceStore) Replace(prefs model.Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs = prefs
}

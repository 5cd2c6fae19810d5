// Package model provides the estimator plumbing shared by trainers: fitted
// state tracking, the streaming batch type and the online classifier contract.
package model

import (
	"sync"
)

// StateManager tracks whether a model has consumed training data and the
// data dimensions it saw.
type StateManager struct {
	mu sync.RWMutex

	Fitted    bool
	NFeatures int
	NSamples  int // examples consumed across all training calls
}

// NewStateManager creates a new StateManager instance.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted returns whether the model has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Fitted
}

// SetFitted marks the model as fitted.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = true
}

// Reset resets the fitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = false
	s.NFeatures = 0
	s.NSamples = 0
}

// Observe records that nSamples examples with nFeatures features were consumed.
func (s *StateManager) Observe(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.NFeatures = nFeatures
	s.NSamples += nSamples
}

// GetDimensions returns the number of features and samples seen during fitting.
func (s *StateManager) GetDimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.NFeatures, s.NSamples
}

// Clone returns an independent copy of the state.
func (s *StateManager) Clone() *StateManager {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &StateManager{Fitted: s.Fitted, NFeatures: s.NFeatures, NSamples: s.NSamples}
}

// Package slot holds the sidecar handle shared by every supervisor operation.
//
// A Slot is either empty or holds exactly one Child. Fill runs its spawn
// function while holding the lock, so two concurrent fills can never both
// install a child. Once sealed, a Slot accepts no further children.
package slot

import (
	"sync"

	"github.com/wagiedev/sidecar-go/internal/config"
	"github.com/wagiedev/sidecar-go/internal/errors"
)

// Slot is a mutex-guarded optional Child.
//
// Slot is safe for concurrent use. The zero value is an empty, unsealed slot.
type Slot struct {
	mu     sync.Mutex
	child  config.Child
	sealed bool
}

// New creates an empty slot.
func New() *Slot {
	return &Slot{}
}

// Fill installs the child returned by spawn if the slot is empty.
//
// spawn runs inside the critical section. If the slot already holds a child,
// spawn is not called and Fill reports installed == false with a nil error.
// If the slot is sealed, Fill returns ErrSupervisorClosed without calling spawn.
// An error from spawn is returned as-is and leaves the slot empty.
func (s *Slot) Fill(spawn func() (config.Child, error)) (installed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed {
		return false, errors.ErrSupervisorClosed
	}

	if s.child != nil {
		return false, nil
	}

	child, err := spawn()
	if err != nil {
		return false, err
	}

	s.child = child

	return true, nil
}

// Take removes and returns the current child. ok is false if the slot was empty.
func (s *Slot) Take() (child config.Child, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	child, s.child = s.child, nil

	return child, child != nil
}

// Seal marks the slot closed and removes any current child in the same step.
// It is safe to call more than once.
func (s *Slot) Seal() (child config.Child, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sealed = true
	child, s.child = s.child, nil

	return child, child != nil
}

// Occupied reports whether a child is currently installed.
func (s *Slot) Occupied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.child != nil
}

// Sealed reports whether Seal has been called.
func (s *Slot) Sealed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sealed
}

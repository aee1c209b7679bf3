// Package skeleton holds the most recent joint data received from a motion
// capture feed.
package skeleton

import (
	"sync"
	"time"

	"github.com/Faultbox/incubatio/pkg/math"
)

// Snapshot is an immutable copy of the joint data at one point in time.
type Snapshot struct {
	// Frame counts updates since the store was created.
	Frame     uint64
	UpdatedAt time.Time
	Positions []math.Vec3
	Rotations []math.Vec4 // (x, y, z, w)
}

// Empty reports whether the snapshot carries no joints.
func (s Snapshot) Empty() bool {
	return len(s.Positions) == 0 && len(s.Rotations) == 0
}

// JointCount returns the joint count, or -1 when positions and rotations
// disagree.
func (s Snapshot) JointCount() int {
	if len(s.Positions) != len(s.Rotations) {
		return -1
	}
	return len(s.Positions)
}

// Store is safe for concurrent use. Receivers write positions and
// rotations independently; the frame loop reads snapshots.
type Store struct {
	mu        sync.RWMutex
	frame     uint64
	updatedAt time.Time
	positions []math.Vec3
	rotations []math.Vec4

	now func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// SetPositions replaces the joint positions.
func (s *Store) SetPositions(positions []math.Vec3) {
	cp := append([]math.Vec3(nil), positions...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = cp
	s.touch()
}

// SetRotations replaces the joint rotations.
func (s *Store) SetRotations(rotations []math.Vec4) {
	cp := append([]math.Vec4(nil), rotations...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotations = cp
	s.touch()
}

// Set replaces positions and rotations together as one update.
func (s *Store) Set(positions []math.Vec3, rotations []math.Vec4) {
	pcp := append([]math.Vec3(nil), positions...)
	rcp := append([]math.Vec4(nil), rotations...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = pcp
	s.rotations = rcp
	s.touch()
}

// touch must be called with mu held.
func (s *Store) touch() {
	s.frame++
	s.updatedAt = s.now()
}

// Frame returns the update counter.
func (s *Store) Frame() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Frame:     s.frame,
		UpdatedAt: s.updatedAt,
		Positions: append([]math.Vec3(nil), s.positions...),
		Rotations: append([]math.Vec4(nil), s.rotations...),
	}
}

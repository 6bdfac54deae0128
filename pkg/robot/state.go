package robot

import (
	"sync"
	"time"
)

// Store holds the last known pose and torques. It has a single writer
// (the link reader) and any number of readers; all reads return copies.
type Store struct {
	mu      sync.RWMutex
	pose    Pose
	torques Torques
	updated time.Time
	now     func() time.Time
}

// NewStore returns a store with a zero pose.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Apply merges the fields present in u. Values are not validated.
func (s *Store) Apply(u Update) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := u.Fields
	p := &s.pose
	if f.Has(FieldX) {
		p.X = u.Pose.X
	}
	if f.Has(FieldY) {
		p.Y = u.Pose.Y
	}
	if f.Has(FieldZ) {
		p.Z = u.Pose.Z
	}
	if f.Has(FieldT) {
		p.T = u.Pose.T
	}
	if f.Has(FieldB) {
		p.B = u.Pose.B
	}
	if f.Has(FieldS) {
		p.S = u.Pose.S
	}
	if f.Has(FieldE) {
		p.E = u.Pose.E
	}

	t := &s.torques
	if f.Has(FieldTorB) {
		t.Base = u.Torques.Base
	}
	if f.Has(FieldTorS) {
		t.Shoulder = u.Torques.Shoulder
	}
	if f.Has(FieldTorE) {
		t.Elbow = u.Torques.Elbow
	}
	if f.Has(FieldTorH) {
		t.Hand = u.Torques.Hand
	}

	if f != 0 {
		s.updated = s.now()
	}
}

// SetTarget records a commanded target as the current pose. It is only
// used in optimistic echo mode and does not touch the update time.
func (s *Store) SetTarget(x, y, z, t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pose.X, s.pose.Y, s.pose.Z, s.pose.T = x, y, z, t
}

// Pose returns a copy of the current pose.
func (s *Store) Pose() Pose {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pose
}

// Torques returns a copy of the current torques.
func (s *Store) Torques() Torques {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.torques
}

// Snapshot returns pose, torques and the time of the last telemetry update
// in one consistent read. The time is zero until telemetry has arrived.
func (s *Store) Snapshot() (Pose, Torques, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pose, s.torques, s.updated
}

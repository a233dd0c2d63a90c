package launch

import (
	"sync"
	"time"
)

// Status tracks the supervised bot's current state for the status endpoint.
type Status struct {
	mu        sync.Mutex
	running   bool
	pid       int
	restarts  int
	startedAt time.Time
}

// Snapshot is a point-in-time copy of Status, safe to serialize.
type Snapshot struct {
	Running   bool      `json:"running"`
	PID       int       `json:"pid,omitempty"`
	Restarts  int       `json:"restarts"`
	StartedAt time.Time `json:"started_at,omitzero"`
}

// NewStatus returns an empty Status.
func NewStatus() *Status {
	return &Status{}
}

func (s *Status) setRunning(pid int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.pid = pid
	s.startedAt = time.Now()
}

func (s *Status) setStopped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.pid = 0
}

func (s *Status) incRestarts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restarts++
}

// Snapshot returns a copy of the current state.
func (s *Status) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Running:   s.running,
		PID:       s.pid,
		Restarts:  s.restarts,
		StartedAt: s.startedAt,
	}
}

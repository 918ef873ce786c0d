package object

import (
	"time"

	"github.com/tomz197/capylabs/internal/lifecycle"
)

// SpawnScheduler creates one enemy per offset, measured from Start.
type SpawnScheduler struct {
	offsets  []time.Duration
	registry *lifecycle.Registry
	spawn    func(i int)

	started bool
	spawned int
}

// NewSpawnScheduler creates a scheduler over offsets. spawn is called with
// the index of each offset as it comes due.
func NewSpawnScheduler(offsets []time.Duration, registry *lifecycle.Registry, spawn func(i int)) *SpawnScheduler {
	return &SpawnScheduler{
		offsets:  append([]time.Duration(nil), offsets...),
		registry: registry,
		spawn:    spawn,
	}
}

// Start arms one registry timer per offset. Timers that have not fired when
// the registry is disposed never spawn. Calling Start again does nothing.
func (s *SpawnScheduler) Start() {
	if s.started {
		return
	}
	s.started = true
	for i, offset := range s.offsets {
		s.registry.After(offset, func() {
			s.spawned++
			s.spawn(i)
		})
	}
}

// Spawned returns the number of offsets that have fired.
func (s *SpawnScheduler) Spawned() int {
	return s.spawned
}

// Remaining returns the number of offsets still waiting to fire.
func (s *SpawnScheduler) Remaining() int {
	if !s.started {
		return len(s.offsets)
	}
	return len(s.offsets) - s.spawned
}

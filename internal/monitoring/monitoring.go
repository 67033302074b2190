package monitoring

import (
	"sync"
	"time"

	nuts "github.com/vaudience/go-nuts"
)

// Service keeps in-process operational counters. Counters are cheap,
// monotonic and reset on restart; the /metrics endpoint exposes a
// point-in-time snapshot of them.
type Service struct {
	mu        sync.Mutex
	counters  map[string]int64
	startedAt time.Time
}

// NewService creates a new monitoring service
func NewService() *Service {
	return &Service{
		counters:  make(map[string]int64),
		startedAt: time.Now().UTC(),
	}
}

// RecordEvent records a monitored event with labels and counts it once.
func (s *Service) RecordEvent(eventName string, labels map[string]string) {
	if s == nil {
		return
	}
	s.Add(eventName, 1)
	nuts.L.Infof("[Monitoring] Event %s recorded with labels: %v", eventName, labels)
}

// Add increments a named counter by delta.
func (s *Service) Add(name string, delta int64) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.counters[name] += delta
	s.mu.Unlock()
}

// Snapshot returns a copy of all counters plus the process uptime.
func (s *Service) Snapshot() map[string]int64 {
	if s == nil {
		return map[string]int64{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int64, len(s.counters)+1)
	for name, v := range s.counters {
		out[name] = v
	}
	out["uptime_seconds"] = int64(time.Since(s.startedAt).Seconds())
	return out
}

package session

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/voicedesk/core/protocol"
)

// record is one live session. The data mutex guards messages and activity
// times; the gate mutex is the per-session serialization lock held across a
// whole request cycle, so the two must stay distinct.
type record struct {
	id         string
	messages   []protocol.Message
	created    time.Time
	lastActive time.Time

	mu   sync.Mutex
	gate sync.Mutex
}

// MemoryStore is a Store backed by an in-process map. Sessions are assigned
// unique UUIDv7 identifiers and evicted by a background sweep after the
// configured idle timeout.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*record

	idleTimeout   time.Duration
	sweepInterval time.Duration

	stop chan struct{}
	done chan struct{}
}

// NewMemoryStore creates a MemoryStore and starts its eviction sweep when
// the configured sweep interval is positive.
func NewMemoryStore(cfg *Config) *MemoryStore {
	s := &MemoryStore{
		records:       make(map[string]*record),
		idleTimeout:   time.Duration(cfg.IdleTimeoutSeconds) * time.Second,
		sweepInterval: time.Duration(cfg.SweepIntervalSeconds) * time.Second,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}

	if s.sweepInterval > 0 && s.idleTimeout > 0 {
		go s.sweeper()
	} else {
		close(s.done)
	}

	return s
}

func (s *MemoryStore) GetOrCreate(_ context.Context, id string) (string, error) {
	if id != "" {
		s.mu.RLock()
		rec, exists := s.records[id]
		s.mu.RUnlock()

		if exists {
			rec.mu.Lock()
			rec.lastActive = time.Now()
			rec.mu.Unlock()
			return id, nil
		}
	}

	now := time.Now()
	rec := &record{
		id:         uuid.Must(uuid.NewV7()).String(),
		created:    now,
		lastActive: now,
	}

	s.mu.Lock()
	s.records[rec.id] = rec
	s.mu.Unlock()

	return rec.id, nil
}

func (s *MemoryStore) Acquire(_ context.Context, id string) (func(), error) {
	rec, err := s.find(id)
	if err != nil {
		return nil, err
	}

	rec.gate.Lock()
	return rec.gate.Unlock, nil
}

func (s *MemoryStore) Append(_ context.Context, id string, msg protocol.Message) error {
	rec, err := s.find(id)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	rec.messages = append(rec.messages, msg)
	rec.lastActive = time.Now()
	rec.mu.Unlock()

	return nil
}

func (s *MemoryStore) History(_ context.Context, id string, maxTurns int) ([]protocol.Message, error) {
	rec, err := s.find(id)
	if err != nil {
		return nil, err
	}

	rec.mu.Lock()
	copied := make([]protocol.Message, len(rec.messages))
	for i, msg := range rec.messages {
		copied[i] = msg
		copied[i].ToolCalls = slices.Clone(msg.ToolCalls)
	}
	rec.mu.Unlock()

	return truncate(copied, maxTurns), nil
}

// Close stops the eviction sweep. Sessions remain until process exit.
func (s *MemoryStore) Close() error {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	<-s.done
	return nil
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemoryStore) find(id string) (*record, error) {
	s.mu.RLock()
	rec, exists := s.records[id]
	s.mu.RUnlock()

	if !exists {
		return nil, ErrUnknownSession
	}
	return rec, nil
}

func (s *MemoryStore) sweeper() {
	defer close(s.done)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

// sweep evicts sessions idle past the timeout. The gate is try-locked so a
// session serving an in-flight request is never evicted mid-request.
func (s *MemoryStore) sweep(now time.Time) {
	s.mu.RLock()
	candidates := make([]*record, 0, len(s.records))
	for _, rec := range s.records {
		candidates = append(candidates, rec)
	}
	s.mu.RUnlock()

	for _, rec := range candidates {
		if !rec.gate.TryLock() {
			continue
		}

		rec.mu.Lock()
		idle := now.Sub(rec.lastActive) >= s.idleTimeout
		rec.mu.Unlock()

		if idle {
			s.mu.Lock()
			delete(s.records, rec.id)
			s.mu.Unlock()
		}

		rec.gate.Unlock()
	}
}

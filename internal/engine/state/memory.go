package state

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

type memEntry struct {
	data []byte
	ack  bool
	ts   time.Time
}

// MemoryStore is an in-memory Store. Values go through the same JSON
// encoding as SQLiteStore so both backends hand back identical shapes.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
	states  map[string]*memEntry
	now     func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the clock used for state timestamps.
func WithClock(fn func() time.Time) MemoryOption {
	return func(m *MemoryStore) {
		if fn != nil {
			m.now = fn
		}
	}
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		objects: make(map[string]Object),
		states:  make(map[string]*memEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryStore) EnsureObject(_ context.Context, id string, obj Object) error {
	if err := validID(id); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[id]; ok {
		return nil
	}
	m.objects[id] = obj

	if obj.Type == TypeState && obj.Common.Def != nil {
		if _, ok := m.states[id]; !ok {
			data, err := json.Marshal(obj.Common.Def)
			if err != nil {
				return fmt.Errorf("encoding default for %s: %w", id, err)
			}
			m.states[id] = &memEntry{data: data, ack: true, ts: m.now()}
		}
	}
	return nil
}

func (m *MemoryStore) GetState(_ context.Context, id string) (*State, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	m.mu.RLock()
	e, ok := m.states[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return e.decode()
}

func (m *MemoryStore) SetState(_ context.Context, id string, val any, ack bool) error {
	if err := validID(id); err != nil {
		return err
	}
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("encoding state %s: %w", id, err)
	}

	m.mu.Lock()
	m.states[id] = &memEntry{data: data, ack: ack, ts: m.now()}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) List(_ context.Context, prefix string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.objects))
	for id := range m.objects {
		if underPrefix(id, prefix) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		e := Entry{ID: id, Object: m.objects[id]}
		if st, ok := m.states[id]; ok {
			decoded, err := st.decode()
			if err != nil {
				return nil, err
			}
			e.State = decoded
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Object returns the descriptor stored under id.
func (m *MemoryStore) Object(id string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[id]
	return obj, ok
}

// Len returns the number of objects and states held.
func (m *MemoryStore) Len() (objects, states int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects), len(m.states)
}

func (m *MemoryStore) Close() error { return nil }

func (e *memEntry) decode() (*State, error) {
	st := &State{Ack: e.ack, Ts: e.ts}
	if err := json.Unmarshal(e.data, &st.Val); err != nil {
		return nil, fmt.Errorf("decoding state value: %w", err)
	}
	return st, nil
}

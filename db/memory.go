package db

import "sync"

// Memory is an in-memory Database used by tests and small deployments.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ Database = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}}
}

func (m *Memory) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	ret := make([]byte, len(v))
	copy(ret, v)
	return ret, nil
}

func (m *Memory) NewTransaction() Transaction {
	return &memoryTransaction{db: m, writes: map[string][]byte{}}
}

func (m *Memory) Close() error {
	return nil
}

type memoryTransaction struct {
	db     *Memory
	writes map[string][]byte
}

var _ Transaction = (*memoryTransaction)(nil)

func (t *memoryTransaction) Get(key []byte) ([]byte, error) {
	if v, ok := t.writes[string(key)]; ok {
		ret := make([]byte, len(v))
		copy(ret, v)
		return ret, nil
	}
	return t.db.Get(key)
}

func (t *memoryTransaction) Set(key []byte, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	t.writes[string(key)] = v
	return nil
}

func (t *memoryTransaction) Commit() error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	for k, v := range t.writes {
		t.db.data[k] = v
	}
	t.writes = map[string][]byte{}
	return nil
}

func (t *memoryTransaction) Discard() {
	t.writes = map[string][]byte{}
}

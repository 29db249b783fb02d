package cache

import (
	"context"
	"sync"
	"time"

	"github.com/alejandrodnm/polydrop/internal/domain"
)

type entry struct {
	result  domain.EligibilityResult
	expires time.Time
}

// Memory es un cache de resultados en memoria con TTL fijo.
// Seguro para uso concurrente.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory crea un cache en memoria. ttl <= 0 desactiva la expiración.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) Get(_ context.Context, address string) (domain.EligibilityResult, bool) {
	m.mu.RLock()
	e, ok := m.entries[address]
	m.mu.RUnlock()
	if !ok {
		return domain.EligibilityResult{}, false
	}
	if m.expired(e) {
		m.mu.Lock()
		// Otro writer pudo refrescar la entrada entre ambos locks.
		if cur, ok := m.entries[address]; ok && m.expired(cur) {
			delete(m.entries, address)
		}
		m.mu.Unlock()
		return domain.EligibilityResult{}, false
	}
	return e.result, true
}

func (m *Memory) Set(_ context.Context, address string, result domain.EligibilityResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[address] = entry{result: result, expires: m.now().Add(m.ttl)}
}

// Prune elimina las entradas expiradas y devuelve cuántas borró.
func (m *Memory) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for addr, e := range m.entries {
		if m.expired(e) {
			delete(m.entries, addr)
			n++
		}
	}
	return n
}

// Len devuelve el número de entradas, expiradas incluidas.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) expired(e entry) bool {
	return m.ttl > 0 && !m.now().Before(e.expires)
}

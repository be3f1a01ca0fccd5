package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultHostName is used when a session never sends SetHostName (spec.md §3).
const DefaultHostName = "DefaultHostName"

// ClientMeta is the live (never persisted) metadata for one connected
// session, per spec.md §3. It is shared between the owning session
// goroutine (mutator) and httpapi handlers (readers) behind its own mutex.
type ClientMeta struct {
	ID         uuid.UUID
	RemoteAddr string

	mu           sync.Mutex
	hostname     string
	lastSyncTime int64 // milliseconds
	packStart    time.Time
	packOpen     bool
}

// NewClientMeta builds metadata for a new live client with a fresh UUID and
// the default hostname. It does not register it; see Registry.RegisterClient.
func NewClientMeta(remoteAddr string) *ClientMeta {
	return &ClientMeta{
		ID:         uuid.New(),
		RemoteAddr: remoteAddr,
		hostname:   DefaultHostName,
	}
}

// SetHostName updates the advisory hostname (SetHostName command).
func (m *ClientMeta) SetHostName(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hostname = name
}

// HostName returns the current advisory hostname.
func (m *ClientMeta) HostName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hostname
}

// PackStart records the wall-clock time a PackStart command was received.
func (m *ClientMeta) PackStart() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.packStart = time.Now()
	m.packOpen = true
}

// PackEnd records elapsed milliseconds since the last PackStart into
// last_sync_time (spec.md §4.C). If no PackStart has been received since the
// previous PackEnd (or ever), it is a no-op;
// these fields are advisory telemetry with no effect on buffer state.
func (m *ClientMeta) PackEnd() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.packOpen {
		return
	}
	m.lastSyncTime = time.Since(m.packStart).Milliseconds()
	m.packOpen = false
}

// LastSyncTime returns the last recorded elapsed pack duration in milliseconds.
func (m *ClientMeta) LastSyncTime() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSyncTime
}

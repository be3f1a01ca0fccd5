// Package registry implements the global, process-wide frequency maps of
// spec.md §3/§4.D: Frequency->Items, Frequency->Fluids, Frequency->energy,
// and UUID->ClientMeta. Each outer map has its own reader/writer lock;
// individual Items/Fluids carry their own inner synchronization so two
// sessions on the same frequency aren't serialized at the outer map.
//
// Locking discipline (spec.md §5, never inverted): outer map lock first,
// then the inner buffer/energy-entry lock. A caller holds at most one outer
// and one inner lock at a time.
package registry

import (
	"sync"

	"github.com/google/uuid"
	"github.com/xtaci/fedhub/buffer"
)

// Registry is the process-wide singleton described in spec.md §9: created at
// bootstrap, destroyed at process exit, with no reinitialization path.
type Registry struct {
	itemsMu sync.RWMutex
	items   map[string]*buffer.ItemBuffer

	fluidsMu sync.RWMutex
	fluids   map[string]*buffer.FluidBuffer

	energyMu sync.RWMutex
	energy   map[string]int64

	clientsMu sync.RWMutex
	clients   map[uuid.UUID]*ClientMeta
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		items:   make(map[string]*buffer.ItemBuffer),
		fluids:  make(map[string]*buffer.FluidBuffer),
		energy:  make(map[string]int64),
		clients: make(map[uuid.UUID]*ClientMeta),
	}
}

// Items returns the item buffer for freq, creating it on first use
// (spec.md §3: "created on the first write to an unknown frequency").
func (r *Registry) Items(freq string) *buffer.ItemBuffer {
	r.itemsMu.RLock()
	b, ok := r.items[freq]
	r.itemsMu.RUnlock()
	if ok {
		return b
	}

	r.itemsMu.Lock()
	defer r.itemsMu.Unlock()
	if b, ok = r.items[freq]; ok {
		return b
	}
	b = buffer.NewItemBuffer()
	r.items[freq] = b
	return b
}

// ItemsIfPresent returns the item buffer for freq without creating it.
func (r *Registry) ItemsIfPresent(freq string) (*buffer.ItemBuffer, bool) {
	r.itemsMu.RLock()
	defer r.itemsMu.RUnlock()
	b, ok := r.items[freq]
	return b, ok
}

// PutItems installs b as the item buffer for freq, replacing any existing
// entry. Used by the snapshot codec's load path.
func (r *Registry) PutItems(freq string, b *buffer.ItemBuffer) {
	r.itemsMu.Lock()
	defer r.itemsMu.Unlock()
	r.items[freq] = b
}

// ItemFrequencies returns a snapshot of every frequency with an item buffer.
func (r *Registry) ItemFrequencies() []string {
	r.itemsMu.RLock()
	defer r.itemsMu.RUnlock()
	out := make([]string, 0, len(r.items))
	for f := range r.items {
		out = append(out, f)
	}
	return out
}

// Fluids returns the fluid buffer for freq, creating it on first use.
func (r *Registry) Fluids(freq string) *buffer.FluidBuffer {
	r.fluidsMu.RLock()
	b, ok := r.fluids[freq]
	r.fluidsMu.RUnlock()
	if ok {
		return b
	}

	r.fluidsMu.Lock()
	defer r.fluidsMu.Unlock()
	if b, ok = r.fluids[freq]; ok {
		return b
	}
	b = buffer.NewFluidBuffer()
	r.fluids[freq] = b
	return b
}

// FluidsIfPresent returns the fluid buffer for freq without creating it.
func (r *Registry) FluidsIfPresent(freq string) (*buffer.FluidBuffer, bool) {
	r.fluidsMu.RLock()
	defer r.fluidsMu.RUnlock()
	b, ok := r.fluids[freq]
	return b, ok
}

// PutFluids installs b as the fluid buffer for freq, replacing any existing
// entry. Used by the snapshot codec's load path.
func (r *Registry) PutFluids(freq string, b *buffer.FluidBuffer) {
	r.fluidsMu.Lock()
	defer r.fluidsMu.Unlock()
	r.fluids[freq] = b
}

// FluidFrequencies returns a snapshot of every frequency with a fluid buffer.
func (r *Registry) FluidFrequencies() []string {
	r.fluidsMu.RLock()
	defer r.fluidsMu.RUnlock()
	out := make([]string, 0, len(r.fluids))
	for f := range r.fluids {
		out = append(out, f)
	}
	return out
}

// EnergyReceive applies buffer.EnergyReceive to freq's stored value under the
// energy map's write lock (there's no separate inner lock for a scalar:
// spec.md §5 treats "the inner ... or energy map entry" as the second lock
// level, and a plain int64 has no container of its own to lock).
func (r *Registry) EnergyReceive(freq string, offered int64) (reject int64) {
	r.energyMu.Lock()
	defer r.energyMu.Unlock()
	cur := r.energy[freq]
	newCur, reject := buffer.EnergyReceive(cur, offered)
	if newCur == 0 {
		delete(r.energy, freq)
	} else {
		r.energy[freq] = newCur
	}
	return reject
}

// EnergySend applies buffer.EnergySend to freq's stored value, deleting the
// entry if it drains to zero (spec.md §3 invariant: an energy entry is
// removed when it drains to zero).
func (r *Registry) EnergySend(freq string, want int64) (send int64) {
	r.energyMu.Lock()
	defer r.energyMu.Unlock()
	cur := r.energy[freq]
	newCur, send := buffer.EnergySend(cur, want)
	if newCur == 0 {
		delete(r.energy, freq)
	} else {
		r.energy[freq] = newCur
	}
	return send
}

// EnergyValue returns the stored energy value for freq (0 if absent).
func (r *Registry) EnergyValue(freq string) int64 {
	r.energyMu.RLock()
	defer r.energyMu.RUnlock()
	return r.energy[freq]
}

// EnergyMerge saturating-adds delta into freq's stored value, used by the
// snapshot codec's merge-on-load path.
func (r *Registry) EnergyMerge(freq string, delta int64) {
	r.energyMu.Lock()
	defer r.energyMu.Unlock()
	cur := r.energy[freq]
	next := buffer.SaturatingAddI64(cur, delta)
	if next == 0 {
		delete(r.energy, freq)
	} else {
		r.energy[freq] = next
	}
}

// EnergyFrequencies returns a snapshot of every frequency with a non-zero
// energy entry.
func (r *Registry) EnergyFrequencies() map[string]int64 {
	r.energyMu.RLock()
	defer r.energyMu.RUnlock()
	out := make(map[string]int64, len(r.energy))
	for f, v := range r.energy {
		out[f] = v
	}
	return out
}

// RegisterClient inserts meta at session start.
func (r *Registry) RegisterClient(meta *ClientMeta) {
	r.clientsMu.Lock()
	defer r.clientsMu.Unlock()
	r.clients[meta.ID] = meta
}

// UnregisterClient removes meta when the session ends, regardless of error.
func (r *Registry) UnregisterClient(id uuid.UUID) {
	r.clientsMu.Lock()
	defer r.clientsMu.Unlock()
	delete(r.clients, id)
}

// Clients returns a snapshot of every live client.
func (r *Registry) Clients() []*ClientMeta {
	r.clientsMu.RLock()
	defer r.clientsMu.RUnlock()
	out := make([]*ClientMeta, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

// WithAllWriters runs fn while holding the items, fluids, and energy outer
// maps as writers — the stop-the-world registry swap snapshot.Load needs
// (spec.md §5). Clients is intentionally excluded: live connections are not
// part of a snapshot.
func (r *Registry) WithAllWriters(fn func()) {
	r.itemsMu.Lock()
	defer r.itemsMu.Unlock()
	r.fluidsMu.Lock()
	defer r.fluidsMu.Unlock()
	r.energyMu.Lock()
	defer r.energyMu.Unlock()
	fn()
}

// WithAllReaders runs fn while holding the items, fluids, and energy outer
// maps as readers — the snapshot.Save consistency snapshot needs.
func (r *Registry) WithAllReaders(fn func()) {
	r.itemsMu.RLock()
	defer r.itemsMu.RUnlock()
	r.fluidsMu.RLock()
	defer r.fluidsMu.RUnlock()
	r.energyMu.RLock()
	defer r.energyMu.RUnlock()
	fn()
}

// ItemsRawLocked/FluidsRawLocked/EnergyRawLocked give the snapshot codec direct map access
// while already holding the corresponding lock via WithAllReaders/WithAllWriters.
func (r *Registry) ItemsRawLocked() map[string]*buffer.ItemBuffer   { return r.items }
func (r *Registry) FluidsRawLocked() map[string]*buffer.FluidBuffer { return r.fluids }
func (r *Registry) EnergyRawLocked() map[string]int64               { return r.energy }

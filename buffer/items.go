package buffer

import "sync"

// ItemBuffer is the per-frequency FIFO item container of spec.md §4.B.
// Stacks are never merged; a stack with Count <= 0 is still a valid stack
// and occupies a slot.
type ItemBuffer struct {
	mu   sync.Mutex
	data []ItemStack
}

// NewItemBuffer returns an empty item buffer.
func NewItemBuffer() *ItemBuffer {
	return &ItemBuffer{}
}

// Len reports the number of stored stacks.
func (b *ItemBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Take returns the prefix of length min(len(data), max(0, maxStacks)),
// removing those stacks from the head. The returned order is the stored
// order. A negative maxStacks yields an empty take.
func (b *ItemBuffer) Take(maxStacks int32) []ItemStack {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := int(maxStacks)
	if n < 0 {
		n = 0
	}
	if n > len(b.data) {
		n = len(b.data)
	}
	if n == 0 {
		return nil
	}

	out := make([]ItemStack, n)
	copy(out, b.data[:n])
	b.data = append([]ItemStack(nil), b.data[n:]...)
	return out
}

// Insert appends as many stacks as fit under ITEM_BUFFER_LIMIT, in order.
// The accepted count and the rejected tail (the portion that didn't fit)
// are returned; the caller uses the rejected tail to build the protocol's
// reject response.
func (b *ItemBuffer) Insert(stacks []ItemStack) (accepted int, rejected []ItemStack) {
	b.mu.Lock()
	defer b.mu.Unlock()

	room := ITEM_BUFFER_LIMIT - len(b.data)
	if room < 0 {
		room = 0
	}
	if room > len(stacks) {
		room = len(stacks)
	}

	b.data = append(b.data, stacks[:room]...)
	return room, stacks[room:]
}

// InsertAllIgnoringLimit appends every stack to the tail regardless of
// ITEM_BUFFER_LIMIT. Used only by the snapshot codec's merge-on-load path
// (spec.md §4.E, §9): the resulting length may temporarily exceed the limit
// until the next Take.
func (b *ItemBuffer) InsertAllIgnoringLimit(stacks []ItemStack) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, stacks...)
}

// Snapshot returns a copy of the stored stacks in order, for save/inspection.
func (b *ItemBuffer) Snapshot() []ItemStack {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ItemStack, len(b.data))
	copy(out, b.data)
	return out
}

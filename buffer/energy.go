package buffer

import "math"

// ENERGY_BUFFER_LIMIT is the per-frequency energy cap (spec.md §3).
const ENERGY_BUFFER_LIMIT int64 = math.MaxUint32 // 2^32 - 1

// EnergyReceive implements the client-push transfer semantics of spec.md
// §4.B verbatim, including the documented quirk for negative offered values
// (spec.md §9, Open Questions): a negative offered clamps accept to zero and
// reject = offered - 0 = offered, which is itself negative. Implementations
// must match this for wire-compat rather than "fixing" it.
func EnergyReceive(cur, offered int64) (newCur, reject int64) {
	room := maxI64(0, ENERGY_BUFFER_LIMIT-cur)
	accept := clampI64(offered, 0, room)
	// Deliberately not wrapped in max(0, ...): a negative offered must
	// surface as a negative reject (spec.md §9, Open Questions).
	reject = offered - accept
	return cur + accept, reject
}

// EnergySend implements the client-pull transfer semantics of spec.md §4.B:
// want' = max(0, want); send = min(want', cur); newCur = cur - send.
func EnergySend(cur, want int64) (newCur, send int64) {
	wantPrime := maxI64(0, want)
	send = minI64(wantPrime, cur)
	return cur - send, send
}

// Package protocol implements the ItemStack/FluidStack wire codec shared by
// the session command loop (package session) and the snapshot codec
// (spec.md §4.E) — both use the exact same ItemStack.write/FluidStack.write
// byte layout, so it lives in one place rather than being duplicated.
package protocol

import (
	"github.com/pkg/errors"
	"github.com/xtaci/fedhub/buffer"
	"github.com/xtaci/fedhub/wire"
)

// ErrInvalidNBTLen is returned when a decoded nbt length is neither 0, a
// positive in-range length, nor the -1 Extra sentinel.
var ErrInvalidNBTLen = errors.New("protocol: invalid nbt length")

// WriteItemHeader writes id, damage, count, and the nbt length discriminator
// (spec.md §4.E "ItemStack.write"). For NBTExtra stacks the payload itself is
// never written here — it belongs to the extras region (WriteItemExtra).
func WriteItemHeader(w *wire.Writer, s buffer.ItemStack) error {
	if err := w.WriteString(s.ID); err != nil {
		return err
	}
	if err := w.WriteI32(s.Damage); err != nil {
		return err
	}
	if err := w.WriteI32(s.Count); err != nil {
		return err
	}
	switch s.NBT.Kind {
	case buffer.NBTNone:
		return w.WriteI16(0)
	case buffer.NBTRaw:
		if err := w.WriteI16(int16(len(s.NBT.Raw))); err != nil {
			return err
		}
		return w.WriteBytes(s.NBT.Raw)
	case buffer.NBTExtra:
		return w.WriteI16(-1)
	default:
		return errors.Errorf("protocol: unknown nbt kind %d", s.NBT.Kind)
	}
}

// ReadItemHeader reads one ItemStack header. A stack whose nbt is NBTExtra
// has its payload filled in later by ReadItemExtra, in original item order.
func ReadItemHeader(r *wire.Reader) (buffer.ItemStack, error) {
	var s buffer.ItemStack
	id, err := r.ReadString()
	if err != nil {
		return s, err
	}
	damage, err := r.ReadI32()
	if err != nil {
		return s, err
	}
	count, err := r.ReadI32()
	if err != nil {
		return s, err
	}
	nbtLen, err := r.ReadI16()
	if err != nil {
		return s, err
	}

	s.ID, s.Damage, s.Count = id, damage, count
	switch {
	case nbtLen == 0:
		s.NBT = buffer.NBT{Kind: buffer.NBTNone}
	case nbtLen > 0:
		raw, err := r.ReadBytes(int(nbtLen))
		if err != nil {
			return s, err
		}
		s.NBT = buffer.NBT{Kind: buffer.NBTRaw, Raw: raw}
	case nbtLen == -1:
		s.NBT = buffer.NBT{Kind: buffer.NBTExtra}
	default:
		return s, ErrInvalidNBTLen
	}
	return s, nil
}

// WriteItemExtra writes the out-of-band extras-region entry for one stack.
// Non-Extra stacks contribute nothing at all (no bytes, not even a length
// prefix): only Extra-kind stacks participate in the extras region, always
// with an i32 length prefix (0 when no payload is present).
func WriteItemExtra(w *wire.Writer, s buffer.ItemStack) error {
	if s.NBT.Kind != buffer.NBTExtra {
		return nil
	}
	if !s.NBT.ExtraPresent {
		return w.WriteI32(0)
	}
	if err := w.WriteI32(int32(len(s.NBT.Extra))); err != nil {
		return err
	}
	return w.WriteBytes(s.NBT.Extra)
}

// ReadItemExtra reads one extras-region entry (i32 len + len bytes). Callers
// only invoke this for stacks whose header nbt was NBTExtra, in order.
func ReadItemExtra(r *wire.Reader) (payload []byte, present bool, err error) {
	n, err := r.ReadI32()
	if err != nil {
		return nil, false, err
	}
	if n <= 0 {
		return nil, false, nil
	}
	payload, err = r.ReadBytes(int(n))
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

package protocol

import (
	"github.com/xtaci/fedhub/buffer"
	"github.com/xtaci/fedhub/wire"
)

// WriteFluidStack writes name, count, and the optional inline nbt payload
// (spec.md §4.E "FluidStack.write"): string name, i64 count, i16 nbt_len,
// nbt_len bytes (0 means no nbt).
func WriteFluidStack(w *wire.Writer, s buffer.FluidStack) error {
	if err := w.WriteString(s.Name); err != nil {
		return err
	}
	if err := w.WriteI64(s.Count); err != nil {
		return err
	}
	if err := w.WriteI16(int16(len(s.NBT))); err != nil {
		return err
	}
	return w.WriteBytes(s.NBT)
}

// ReadFluidStack reads one FluidStack per WriteFluidStack's layout.
func ReadFluidStack(r *wire.Reader) (buffer.FluidStack, error) {
	var s buffer.FluidStack
	name, err := r.ReadString()
	if err != nil {
		return s, err
	}
	count, err := r.ReadI64()
	if err != nil {
		return s, err
	}
	nbtLen, err := r.ReadI16()
	if err != nil {
		return s, err
	}
	var nbt []byte
	if nbtLen > 0 {
		nbt, err = r.ReadBytes(int(nbtLen))
		if err != nil {
			return s, err
		}
	}
	s.Name, s.Count, s.NBT = name, count, nbt
	return s, nil
}

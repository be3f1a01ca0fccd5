package session

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/xtaci/fedhub/protocol"
	"github.com/xtaci/fedhub/wire"
)

// handleFluidFromClient implements spec.md §4.C "FluidFromClient": read one
// FluidStack and insert it; no response.
func (s *Session) handleFluidFromClient() error {
	if err := s.requireFrequency(); err != nil {
		return err
	}
	stack, err := protocol.ReadFluidStack(s.r)
	if err != nil {
		return errors.Wrap(err, "FluidFromClient: read stack")
	}
	s.reg.Fluids(s.freq).Insert(stack)
	return nil
}

// handleFluidToClient implements spec.md §4.C "FluidToClient": read a
// request FluidStack, reply with i32 len + payload, or i32 0 if none.
func (s *Session) handleFluidToClient() error {
	if err := s.requireFrequency(); err != nil {
		return err
	}
	req, err := protocol.ReadFluidStack(s.r)
	if err != nil {
		return errors.Wrap(err, "FluidToClient: read request")
	}

	stack, ok := s.reg.Fluids(s.freq).Take(req)
	if !ok {
		return s.w.WriteI32(0)
	}

	var buf bytes.Buffer
	pw := wire.NewWriter(&buf)
	if err := protocol.WriteFluidStack(pw, stack); err != nil {
		return errors.Wrap(err, "FluidToClient: encode payload")
	}
	if err := s.w.WriteI32(int32(buf.Len())); err != nil {
		return errors.Wrap(err, "FluidToClient: write length")
	}
	return s.w.WriteBytes(buf.Bytes())
}

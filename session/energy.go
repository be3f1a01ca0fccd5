package session

import "github.com/pkg/errors"

// handleEnergyFromClient implements spec.md §4.C "EnergyFromClient": read
// an i64 offered amount, reply with the i64 reject amount.
func (s *Session) handleEnergyFromClient() error {
	if err := s.requireFrequency(); err != nil {
		return err
	}
	offered, err := s.r.ReadI64()
	if err != nil {
		return errors.Wrap(err, "EnergyFromClient: read offered")
	}
	reject := s.reg.EnergyReceive(s.freq, offered)
	return s.w.WriteI64(reject)
}

// handleEnergyToClient implements spec.md §4.C "EnergyToClient": read an
// i64 want amount, reply with the i64 send amount.
func (s *Session) handleEnergyToClient() error {
	if err := s.requireFrequency(); err != nil {
		return err
	}
	want, err := s.r.ReadI64()
	if err != nil {
		return errors.Wrap(err, "EnergyToClient: read want")
	}
	send := s.reg.EnergySend(s.freq, want)
	return s.w.WriteI64(send)
}

// Package session implements the per-connection command loop of spec.md
// §4.C: read one command byte, dispatch, loop until a transport/decode
// error, an unknown command, or the peer disconnects.
package session

import (
	"io"
	"log"
	"net"

	"github.com/pkg/errors"
	"github.com/xtaci/fedhub/registry"
	"github.com/xtaci/fedhub/wire"
)

// ClientVersion is the i64 greeting written once a connection is accepted
// (spec.md §4.C, §6).
const ClientVersion int64 = 7

// Command byte values, per spec.md §4.C.
const (
	cmdNOP             int8 = -1
	cmdSetFrequency    int8 = 1
	cmdItemFromClient  int8 = 2
	cmdItemToClient    int8 = 3
	cmdFluidFromClient int8 = 4
	cmdFluidToClient   int8 = 5
	cmdEnergyFromClient int8 = 6
	cmdEnergyToClient  int8 = 7
	cmdSetHostName     int8 = 8
	cmdPackStart       int8 = 9
	cmdPackEnd         int8 = 10
)

// errFrequencyUnset is returned when a transfer command arrives before
// SetFrequency; spec.md §4.C treats this as fatal to the session.
var errFrequencyUnset = errors.New("session: frequency not set")

// errUnknownCommand ends the session per the command dispatch table.
var errUnknownCommand = errors.New("session: unknown command")

// Session owns one TCP connection's command loop and its optional bound
// frequency.
type Session struct {
	conn  net.Conn
	reg   *registry.Registry
	r     *wire.Reader
	w     *wire.Writer
	meta  *registry.ClientMeta
	quiet bool

	freq    string
	hasFreq bool
}

// New constructs a session bound to conn, registering a ClientMeta in reg.
func New(conn net.Conn, reg *registry.Registry, quiet bool) *Session {
	meta := registry.NewClientMeta(conn.RemoteAddr().String())
	reg.RegisterClient(meta)
	return &Session{
		conn:  conn,
		reg:   reg,
		r:     wire.NewReader(conn),
		w:     wire.NewWriter(conn),
		meta:  meta,
		quiet: quiet,
	}
}

// Serve writes the greeting and runs the command loop until the session
// ends, for any reason. The registry's ClientMeta is always removed.
func (s *Session) Serve() {
	defer s.conn.Close()
	defer s.reg.UnregisterClient(s.meta.ID)

	if !s.quiet {
		log.Printf("session open: %s (%s)", s.meta.ID, s.meta.RemoteAddr)
	}
	defer func() {
		if !s.quiet {
			log.Printf("session closed: %s (%s)", s.meta.ID, s.meta.RemoteAddr)
		}
	}()

	if err := s.w.WriteI64(ClientVersion); err != nil {
		log.Printf("session %s: greeting failed: %+v", s.meta.ID, err)
		return
	}

	for {
		if err := s.step(); err != nil {
			if !isBenignClose(err) {
				log.Printf("session %s: %+v", s.meta.ID, err)
			}
			return
		}
	}
}

func (s *Session) step() error {
	cmd, err := s.r.ReadI8()
	if err != nil {
		return errors.Wrap(err, "read command")
	}

	switch cmd {
	case cmdNOP:
		return nil
	case cmdSetFrequency:
		return s.handleSetFrequency()
	case cmdItemFromClient:
		return s.handleItemFromClient()
	case cmdItemToClient:
		return s.handleItemToClient()
	case cmdFluidFromClient:
		return s.handleFluidFromClient()
	case cmdFluidToClient:
		return s.handleFluidToClient()
	case cmdEnergyFromClient:
		return s.handleEnergyFromClient()
	case cmdEnergyToClient:
		return s.handleEnergyToClient()
	case cmdSetHostName:
		return s.handleSetHostName()
	case cmdPackStart:
		s.meta.PackStart()
		return nil
	case cmdPackEnd:
		s.meta.PackEnd()
		return nil
	default:
		return errUnknownCommand
	}
}

func (s *Session) handleSetFrequency() error {
	freq, err := s.r.ReadString()
	if err != nil {
		return errors.Wrap(err, "SetFrequency")
	}
	s.freq = freq
	s.hasFreq = true
	return nil
}

func (s *Session) handleSetHostName() error {
	name, err := s.r.ReadString()
	if err != nil {
		return errors.Wrap(err, "SetHostName")
	}
	s.meta.SetHostName(name)
	return nil
}

func (s *Session) requireFrequency() error {
	if !s.hasFreq {
		return errFrequencyUnset
	}
	return nil
}

func isBenignClose(err error) bool {
	cause := errors.Cause(err)
	return cause == io.EOF
}

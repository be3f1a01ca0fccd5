// Package acceptor implements the plain TCP accept loop of spec.md §4.F:
// accept, spawn a session goroutine, continue; a failing accept is logged
// and the loop continues.
package acceptor

import (
	"log"
	"net"

	"github.com/pkg/errors"
	"github.com/xtaci/fedhub/registry"
	"github.com/xtaci/fedhub/session"
)

// Acceptor owns the TCP listener socket for the client protocol.
type Acceptor struct {
	ln    net.Listener
	reg   *registry.Registry
	quiet bool
}

// Listen binds addr (spec.md §6: "0.0.0.0:3030") and returns an Acceptor
// ready to Serve.
func Listen(addr string, reg *registry.Registry, quiet bool) (*Acceptor, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "acceptor: listen")
	}
	return &Acceptor{ln: ln, reg: reg, quiet: quiet}, nil
}

// Addr returns the bound listener address.
func (a *Acceptor) Addr() net.Addr { return a.ln.Addr() }

// Serve runs the accept loop until the listener is closed.
func (a *Acceptor) Serve() {
	for {
		conn, err := a.ln.Accept()
		if err != nil {
			if isClosedListener(err) {
				return
			}
			log.Printf("acceptor: accept: %+v", err)
			continue
		}
		go session.New(conn, a.reg, a.quiet).Serve()
	}
}

// Close stops the accept loop, causing Serve to return once its current
// Accept call unblocks.
func (a *Acceptor) Close() error {
	return a.ln.Close()
}

func isClosedListener(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Err.Error() == "use of closed network connection"
	}
	return false
}

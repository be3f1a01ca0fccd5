// Package operator implements the stdin operator CLI of spec.md §6: a
// line-based command loop offering load, save, and stop, backed by the
// registry's snapshot file.
package operator

import (
	"bufio"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/xtaci/fedhub/registry"
	"github.com/xtaci/fedhub/snapshot"
)

// Operator reads newline-delimited commands from in and reports results on
// out, operating against reg and the snapshot file at path.
type Operator struct {
	reg  *registry.Registry
	path string
	in   io.Reader
	out  io.Writer
}

// New builds an Operator over reg, persisting to path (spec.md §6:
// snapshot.DefaultPath unless overridden).
func New(reg *registry.Registry, path string, in io.Reader, out io.Writer) *Operator {
	return &Operator{reg: reg, path: path, in: in, out: out}
}

// Run reads commands from in until EOF or a "stop" command, returning true
// if the caller should shut the process down afterward.
func (o *Operator) Run() (shouldStop bool) {
	scanner := bufio.NewScanner(o.in)
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "load":
			o.load()
		case "save":
			o.save()
		case "stop":
			o.save()
			return true
		default:
			color.New(color.FgRed).Fprintln(o.out, "Command Not Found")
		}
	}
	return false
}

func (o *Operator) load() {
	if err := snapshot.LoadFromFile(o.path, o.reg); err != nil {
		color.New(color.FgRed).Fprintf(o.out, "load failed: %+v\n", err)
		return
	}
	color.New(color.FgGreen).Fprintln(o.out, "loaded")
}

func (o *Operator) save() {
	if err := snapshot.SaveToFile(o.path, o.reg); err != nil {
		color.New(color.FgRed).Fprintf(o.out, "save failed: %+v\n", err)
		return
	}
	color.New(color.FgGreen).Fprintln(o.out, "saved")
}

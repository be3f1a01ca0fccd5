// Package snapshot implements the versioned, gzip-framed persistence format
// of spec.md §4.E, including its merge-on-load semantics: loading never
// clears the live registry, it merges disk state into whatever is already
// held (fluids and energy by saturating addition, items by appending the
// pre-existing stacks after the loaded ones).
package snapshot

import (
	"compress/gzip"
	"io"

	"github.com/pkg/errors"
	"github.com/xtaci/fedhub/buffer"
	"github.com/xtaci/fedhub/protocol"
	"github.com/xtaci/fedhub/registry"
	"github.com/xtaci/fedhub/wire"
)

// CurrentVersion is written by Save. Version 2 is also accepted verbatim by
// Load (version 2 predates the Extra nbt variant; all nbts are Raw or absent).
const CurrentVersion int64 = 3

const minAcceptedVersion int64 = 2

// ErrVersionMismatch is returned by Load when the stream's version is
// neither 2 nor 3.
var ErrVersionMismatch = errors.New("snapshot: unsupported version")

// Save writes a full snapshot of reg to w, under read-locks on the three
// outer maps (spec.md §5: save takes readers, load takes writers).
func Save(w io.Writer, reg *registry.Registry) error {
	gw := gzip.NewWriter(w)

	var saveErr error
	reg.WithAllReaders(func() {
		saveErr = writeBody(gw, reg)
	})
	if saveErr != nil {
		gw.Close()
		return saveErr
	}
	return gw.Close()
}

// Load reads a snapshot from r and merges it into reg under write-locks on
// the three outer maps — a stop-the-world registry swap for the duration of
// the call (spec.md §5).
func Load(r io.Reader, reg *registry.Registry) error {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return errors.Wrap(err, "snapshot: open gzip stream")
	}
	defer gr.Close()

	rd := wire.NewReader(gr)
	version, err := rd.ReadI64()
	if err != nil {
		return errors.Wrap(err, "snapshot: read version")
	}
	if version != CurrentVersion && version != minAcceptedVersion {
		return ErrVersionMismatch
	}

	var loadErr error
	reg.WithAllWriters(func() {
		loadErr = mergeBody(rd, reg)
	})
	return loadErr
}

func writeBody(gw *gzip.Writer, reg *registry.Registry) error {
	w := wire.NewWriter(gw)
	if err := w.WriteI64(CurrentVersion); err != nil {
		return err
	}

	fluids := reg.FluidsRawLocked()
	if err := w.WriteI32(int32(len(fluids))); err != nil {
		return err
	}
	for freq, fb := range fluids {
		snap := fb.Snapshot()
		if err := w.WriteString(freq); err != nil {
			return err
		}
		if err := w.WriteI32(int32(len(snap))); err != nil {
			return err
		}
		for _, stack := range snap {
			if err := protocol.WriteFluidStack(w, stack); err != nil {
				return err
			}
		}
	}

	items := reg.ItemsRawLocked()
	if err := w.WriteI32(int32(len(items))); err != nil {
		return err
	}
	for freq, ib := range items {
		snap := ib.Snapshot()
		if err := w.WriteString(freq); err != nil {
			return err
		}
		if err := w.WriteI32(int32(len(snap))); err != nil {
			return err
		}
		for _, stack := range snap {
			if err := protocol.WriteItemHeader(w, stack); err != nil {
				return err
			}
		}
		for _, stack := range snap {
			if err := protocol.WriteItemExtra(w, stack); err != nil {
				return err
			}
		}
	}

	energy := reg.EnergyRawLocked()
	if err := w.WriteI32(int32(len(energy))); err != nil {
		return err
	}
	for freq, v := range energy {
		if err := w.WriteString(freq); err != nil {
			return err
		}
		if err := w.WriteI64(v); err != nil {
			return err
		}
	}
	return nil
}

// mergeBody runs under reg.WithAllWriters: the three outer maps are already
// held as writers by the caller, so it mutates them directly via the
// RawLocked accessors instead of going through Registry's public methods,
// which would try to re-acquire the same (non-reentrant) locks and deadlock.
func mergeBody(r *wire.Reader, reg *registry.Registry) error {
	fluids := reg.FluidsRawLocked()
	fluidFreqCount, err := r.ReadI32()
	if err != nil {
		return errors.Wrap(err, "snapshot: read fluid freq count")
	}
	for i := int32(0); i < fluidFreqCount; i++ {
		freq, err := r.ReadString()
		if err != nil {
			return errors.Wrap(err, "snapshot: read fluid freq")
		}
		stackCount, err := r.ReadI32()
		if err != nil {
			return errors.Wrap(err, "snapshot: read fluid stack count")
		}
		loaded := buffer.NewFluidBuffer()
		for j := int32(0); j < stackCount; j++ {
			stack, err := protocol.ReadFluidStack(r)
			if err != nil {
				return errors.Wrap(err, "snapshot: read fluid stack")
			}
			loaded.Insert(stack)
		}
		// Merge-on-load: re-insert whatever was already live at this
		// frequency into the freshly loaded buffer (spec.md §4.E).
		if existing, ok := fluids[freq]; ok {
			for _, stack := range existing.Snapshot() {
				loaded.Insert(stack)
			}
		}
		fluids[freq] = loaded
	}

	items := reg.ItemsRawLocked()
	itemFreqCount, err := r.ReadI32()
	if err != nil {
		return errors.Wrap(err, "snapshot: read item freq count")
	}
	for i := int32(0); i < itemFreqCount; i++ {
		freq, err := r.ReadString()
		if err != nil {
			return errors.Wrap(err, "snapshot: read item freq")
		}
		stackCount, err := r.ReadI32()
		if err != nil {
			return errors.Wrap(err, "snapshot: read item stack count")
		}
		headers := make([]buffer.ItemStack, stackCount)
		for j := int32(0); j < stackCount; j++ {
			s, err := protocol.ReadItemHeader(r)
			if err != nil {
				return errors.Wrap(err, "snapshot: read item header")
			}
			headers[j] = s
		}
		for j := range headers {
			if headers[j].NBT.Kind != buffer.NBTExtra {
				continue
			}
			payload, present, err := protocol.ReadItemExtra(r)
			if err != nil {
				return errors.Wrap(err, "snapshot: read item extra")
			}
			headers[j].NBT.Extra = payload
			headers[j].NBT.ExtraPresent = present
		}

		loaded := buffer.NewItemBuffer()
		loaded.InsertAllIgnoringLimit(headers)
		// Merge-on-load: append pre-existing stacks to the tail of the
		// newly-loaded sequence, without respect to ITEM_BUFFER_LIMIT
		// (spec.md §4.E, §9 — may transiently exceed the cap).
		if existing, ok := items[freq]; ok {
			loaded.InsertAllIgnoringLimit(existing.Snapshot())
		}
		items[freq] = loaded
	}

	energy := reg.EnergyRawLocked()
	energyFreqCount, err := r.ReadI32()
	if err != nil {
		return errors.Wrap(err, "snapshot: read energy freq count")
	}
	for i := int32(0); i < energyFreqCount; i++ {
		freq, err := r.ReadString()
		if err != nil {
			return errors.Wrap(err, "snapshot: read energy freq")
		}
		value, err := r.ReadI64()
		if err != nil {
			return errors.Wrap(err, "snapshot: read energy value")
		}
		next := buffer.SaturatingAddI64(energy[freq], value)
		if next == 0 {
			delete(energy, freq)
		} else {
			energy[freq] = next
		}
	}

	return nil
}

package session

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/xtaci/fedhub/buffer"
	"github.com/xtaci/fedhub/protocol"
	"github.com/xtaci/fedhub/wire"
)

// handleItemFromClient implements spec.md §4.C "ItemFromClient": read a
// length-prefixed gzip block containing (i32 n, n item headers), then read
// one extras entry per Extra-kind item from the outer (uncompressed)
// stream in original order, insert, and reply with the rejected tail's
// original indices.
//
// The reply is intentionally NOT length-prefixed on the wire, despite the
// command table's summary: spec.md §9 (Open Questions) documents that the
// reference implementation writes the gzip block directly with no outer
// length, and implementations that add one break wire compatibility.
func (s *Session) handleItemFromClient() error {
	if err := s.requireFrequency(); err != nil {
		return err
	}

	blockLen, err := s.r.ReadI32()
	if err != nil {
		return errors.Wrap(err, "ItemFromClient: read block length")
	}
	block, err := s.r.ReadBytes(int(blockLen))
	if err != nil {
		return errors.Wrap(err, "ItemFromClient: read block")
	}
	inner, err := wire.GunzipBytes(block)
	if err != nil {
		return errors.Wrap(err, "ItemFromClient: gunzip block")
	}

	ir := wire.NewReader(bytes.NewReader(inner))
	n, err := ir.ReadI32()
	if err != nil {
		return errors.Wrap(err, "ItemFromClient: read n")
	}
	stacks := make([]buffer.ItemStack, n)
	for i := int32(0); i < n; i++ {
		st, err := protocol.ReadItemHeader(ir)
		if err != nil {
			return errors.Wrap(err, "ItemFromClient: read header")
		}
		stacks[i] = st
	}

	// Extras travel on the outer (uncompressed) stream, in original order,
	// one entry per item whose nbt is Extra.
	for i := range stacks {
		if stacks[i].NBT.Kind != buffer.NBTExtra {
			continue
		}
		payload, present, err := protocol.ReadItemExtra(s.r)
		if err != nil {
			return errors.Wrap(err, "ItemFromClient: read extra")
		}
		stacks[i].NBT.Extra = payload
		stacks[i].NBT.ExtraPresent = present
	}

	accepted, _ := s.reg.Items(s.freq).Insert(stacks)
	rc := int(n) - accepted

	var respBuf bytes.Buffer
	rw := wire.NewWriter(&respBuf)
	if err := rw.WriteI32(int32(rc)); err != nil {
		return err
	}
	for idx := accepted; idx < int(n); idx++ {
		if err := rw.WriteI32(int32(idx)); err != nil {
			return err
		}
	}

	gz, err := wire.GzipBytes(respBuf.Bytes())
	if err != nil {
		return errors.Wrap(err, "ItemFromClient: gzip response")
	}
	if err := s.w.WriteBytes(gz); err != nil {
		return errors.Wrap(err, "ItemFromClient: write response")
	}
	return nil
}

// handleItemToClient implements spec.md §4.C "ItemToClient": take up to
// max_stacks, reply with a length-prefixed gzip block of (i32 m, m
// headers), then one uncompressed extras entry per Extra-kind item, in order.
func (s *Session) handleItemToClient() error {
	if err := s.requireFrequency(); err != nil {
		return err
	}

	maxStacks, err := s.r.ReadI32()
	if err != nil {
		return errors.Wrap(err, "ItemToClient: read max_stacks")
	}

	items := s.reg.Items(s.freq).Take(maxStacks)

	var headerBuf bytes.Buffer
	hw := wire.NewWriter(&headerBuf)
	if err := hw.WriteI32(int32(len(items))); err != nil {
		return err
	}
	for _, it := range items {
		if err := protocol.WriteItemHeader(hw, it); err != nil {
			return err
		}
	}

	gz, err := wire.GzipBytes(headerBuf.Bytes())
	if err != nil {
		return errors.Wrap(err, "ItemToClient: gzip headers")
	}
	if err := s.w.WriteI32(int32(len(gz))); err != nil {
		return errors.Wrap(err, "ItemToClient: write block length")
	}
	if err := s.w.WriteBytes(gz); err != nil {
		return errors.Wrap(err, "ItemToClient: write block")
	}

	for _, it := range items {
		if err := protocol.WriteItemExtra(s.w, it); err != nil {
			return errors.Wrap(err, "ItemToClient: write extra")
		}
	}
	return nil
}

package httpapi

import (
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/xtaci/fedhub/buffer"
)

type frequencySize struct {
	ID   string `json:"id"`
	Size int64  `json:"size"`
}

func (s *Server) handleItemFrequency(w http.ResponseWriter, r *http.Request) {
	out := []frequencySize{}
	for _, freq := range s.reg.ItemFrequencies() {
		ib, ok := s.reg.ItemsIfPresent(freq)
		if !ok {
			continue
		}
		out = append(out, frequencySize{ID: freq, Size: int64(ib.Len())})
	}
	writeJSON(w, out)
}

func (s *Server) handleFluidFrequency(w http.ResponseWriter, r *http.Request) {
	out := []frequencySize{}
	for _, freq := range s.reg.FluidFrequencies() {
		fb, ok := s.reg.FluidsIfPresent(freq)
		if !ok {
			continue
		}
		out = append(out, frequencySize{ID: freq, Size: int64(len(fb.Snapshot()))})
	}
	writeJSON(w, out)
}

type energyFrequency struct {
	ID    string `json:"id"`
	Value int64  `json:"value"`
}

func (s *Server) handleEnergyFrequency(w http.ResponseWriter, r *http.Request) {
	out := []energyFrequency{}
	for freq, v := range s.reg.EnergyFrequencies() {
		out = append(out, energyFrequency{ID: freq, Value: v})
	}
	writeJSON(w, out)
}

type itemView struct {
	Name  string  `json:"name"`
	Count int32   `json:"count"`
	NBT   *string `json:"nbt"`
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	freq := r.URL.Query().Get("frequency")
	out := []itemView{}
	if ib, ok := s.reg.ItemsIfPresent(freq); ok {
		for _, st := range ib.Snapshot() {
			out = append(out, itemView{Name: st.ID, Count: st.Count, NBT: itemFingerprint(st.NBT)})
		}
	}
	writeJSON(w, out)
}

// itemFingerprint renders an uppercase-hex fingerprint of the stack's nbt
// for display: raw bytes directly for Raw, md5(gzip) for Extra, nil for
// None (spec.md §6).
func itemFingerprint(n buffer.NBT) *string {
	switch n.Kind {
	case buffer.NBTNone:
		return nil
	case buffer.NBTRaw:
		h := strings.ToUpper(hex.EncodeToString(n.Raw))
		return &h
	case buffer.NBTExtra:
		if !n.ExtraPresent {
			return nil
		}
		sum := md5.Sum(n.Extra)
		h := strings.ToUpper(hex.EncodeToString(sum[:]))
		return &h
	}
	return nil
}

type fluidView struct {
	Name  string  `json:"name"`
	Count int64   `json:"count"`
	NBT   *string `json:"nbt"`
}

func (s *Server) handleFluids(w http.ResponseWriter, r *http.Request) {
	freq := r.URL.Query().Get("frequency")
	out := []fluidView{}
	if fb, ok := s.reg.FluidsIfPresent(freq); ok {
		for _, st := range fb.Snapshot() {
			var nbt *string
			if len(st.NBT) > 0 {
				h := strings.ToUpper(hex.EncodeToString(st.NBT))
				nbt = &h
			}
			out = append(out, fluidView{Name: st.Name, Count: st.Count, NBT: nbt})
		}
	}
	writeJSON(w, out)
}

type clientView struct {
	Name string `json:"name"`
	Sync int64  `json:"sync"`
}

func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	out := []clientView{}
	for _, c := range s.reg.Clients() {
		out = append(out, clientView{Name: c.HostName(), Sync: c.LastSyncTime()})
	}
	writeJSON(w, out)
}

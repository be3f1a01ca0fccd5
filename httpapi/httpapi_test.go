package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xtaci/fedhub/buffer"
	"github.com/xtaci/fedhub/registry"
)

func newTestServer(t *testing.T) (*Server, *registry.Registry) {
	t.Helper()
	reg := registry.New()
	return New("127.0.0.1:0", reg, t.TempDir()), reg
}

func TestUnknownFrequencyReturnsEmptyArray(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/list/items.json?frequency=nope", nil)
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if rec.Body.String() != "[]\n" {
		t.Fatalf("body = %q, want []", rec.Body.String())
	}
}

func TestItemFrequencyListsSizes(t *testing.T) {
	s, reg := newTestServer(t)
	reg.Items("alpha").Insert([]buffer.ItemStack{{ID: "a"}, {ID: "b"}})

	req := httptest.NewRequest(http.MethodGet, "/api/list/item_frequency.json", nil)
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)

	var out []frequencySize
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].ID != "alpha" || out[0].Size != 2 {
		t.Fatalf("got %+v", out)
	}
}

func TestItemsListFingerprintsRawNBT(t *testing.T) {
	s, reg := newTestServer(t)
	reg.Items("alpha").Insert([]buffer.ItemStack{
		{ID: "a", Count: 1, NBT: buffer.NBT{Kind: buffer.NBTRaw, Raw: []byte{0xde, 0xad}}},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/list/items.json?frequency=alpha", nil)
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)

	var out []itemView
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].NBT == nil || *out[0].NBT != "DEAD" {
		t.Fatalf("got %+v", out)
	}
}

func TestClientsListsLiveSessions(t *testing.T) {
	s, reg := newTestServer(t)
	meta := registry.NewClientMeta("1.2.3.4:5")
	meta.SetHostName("rig-7")
	reg.RegisterClient(meta)

	req := httptest.NewRequest(http.MethodGet, "/api/list/clients.json", nil)
	rec := httptest.NewRecorder()
	s.http.Handler.ServeHTTP(rec, req)

	var out []clientView
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].Name != "rig-7" {
		t.Fatalf("got %+v", out)
	}
}

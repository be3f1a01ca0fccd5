package operator

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xtaci/fedhub/buffer"
	"github.com/xtaci/fedhub/registry"
)

func TestSaveThenLoadMergesState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.dat.gz")
	reg := registry.New()
	reg.Items("alpha").Insert([]buffer.ItemStack{{ID: "a", Count: 1}})

	var out bytes.Buffer
	op := New(reg, path, strings.NewReader("save\n"), &out)
	if stop := op.Run(); stop {
		t.Fatal("save should not request stop")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("save file missing: %v", err)
	}

	reg2 := registry.New()
	var out2 bytes.Buffer
	op2 := New(reg2, path, strings.NewReader("load\n"), &out2)
	op2.Run()

	if reg2.Items("alpha").Len() != 1 {
		t.Fatalf("loaded registry missing merged item, len = %d", reg2.Items("alpha").Len())
	}
}

func TestStopCommandSavesAndRequestsShutdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.dat.gz")
	reg := registry.New()

	var out bytes.Buffer
	op := New(reg, path, strings.NewReader("stop\n"), &out)
	if stop := op.Run(); !stop {
		t.Fatal("stop should request shutdown")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stop should have saved: %v", err)
	}
}

func TestUnknownCommandReportsError(t *testing.T) {
	reg := registry.New()
	var out bytes.Buffer
	op := New(reg, filepath.Join(t.TempDir(), "x.gz"), strings.NewReader("frobnicate\n"), &out)
	if stop := op.Run(); stop {
		t.Fatal("unknown command should not request stop")
	}
	if !strings.Contains(out.String(), "Command Not Found") {
		t.Fatalf("output = %q", out.String())
	}
}

package snapshot

import (
	"os"

	"github.com/pkg/errors"
	"github.com/xtaci/fedhub/registry"
)

// DefaultPath is the default save file, relative to the working directory
// (spec.md §6).
const DefaultPath = "save.dat.gz"

// SaveToFile writes reg's snapshot to path, creating or truncating it.
func SaveToFile(path string, reg *registry.Registry) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "snapshot: create file")
	}
	defer f.Close()
	return Save(f, reg)
}

// LoadFromFile merges the snapshot at path into reg.
func LoadFromFile(path string, reg *registry.Registry) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "snapshot: open file")
	}
	defer f.Close()
	return Load(f, reg)
}

package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func setupRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	root := t.TempDir()
	writeDataset(t, root, "prenoms-fr", sample)
	writeDataset(t, root, "firstnames-us", "sexe;preusuel;annais;nombre\n1;James;1990;5000\n2;Emma;2015;20000\n")

	// Directories without a manifest are ignored.
	os.MkdirAll(filepath.Join(root, "_download"), 0o755)
	os.WriteFile(filepath.Join(root, "README"), []byte("x"), 0o644)

	reg := NewRegistry(root, t.TempDir(), quietLogger())
	if err := reg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return reg, root
}

func TestRegistryLoad(t *testing.T) {
	reg, _ := setupRegistry(t)
	if reg.Count() != 2 {
		t.Fatalf("Count = %d, want 2", reg.Count())
	}

	infos := reg.List()
	if infos[0].ID != "firstnames-us" || infos[1].ID != "prenoms-fr" {
		t.Errorf("List order = %s, %s", infos[0].ID, infos[1].ID)
	}
	fr := infos[1]
	if fr.FirstYear != 2019 || fr.LastYear != 2020 || fr.Dropped != 1 || fr.Names != 2 {
		t.Errorf("prenoms-fr info = %+v", fr)
	}
}

func TestRegistryGet(t *testing.T) {
	reg, _ := setupRegistry(t)

	s, err := reg.Get("firstnames-us")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.ID() != "firstnames-us" {
		t.Errorf("ID = %q", s.ID())
	}

	if _, err := reg.Get("nope"); !errors.Is(err, ErrUnknownDataset) {
		t.Errorf("err = %v, want ErrUnknownDataset", err)
	}
}

func TestRegistryReload(t *testing.T) {
	reg, root := setupRegistry(t)
	writeDataset(t, root, "prenoms-be", "sexe;preusuel;annais;nombre\n2;Lina;2020;12\n")

	if err := reg.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if reg.Count() != 3 {
		t.Errorf("Count after reload = %d, want 3", reg.Count())
	}
}

func TestRegistryLoad_MissingDir(t *testing.T) {
	reg := NewRegistry(filepath.Join(t.TempDir(), "missing"), "", quietLogger())
	if err := reg.Load(); err == nil {
		t.Error("expected error for missing datasets dir")
	}
}

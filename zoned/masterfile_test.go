package zoned

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenMasterFileLoadsApexSOA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.com.zone")
	contents := `
example.com. 3600 IN SOA ns1.example.com. hostmaster.example.com. 2024010100 3600 600 1209600 3600
example.com. 3600 IN NS ns1.example.com.
ns1.example.com. 3600 IN A 192.0.2.1
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	reader, err := OpenMasterFile(path)
	if err != nil {
		t.Fatalf("OpenMasterFile: %v", err)
	}
	defer reader.Close()

	if reader.Source() != path {
		t.Errorf("Source() = %q, want %q", reader.Source(), path)
	}
	if reader.NeedsUpdate() {
		t.Error("NeedsUpdate() should always be false: staleness is the Reconciler's job")
	}

	z, err := reader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if z.Apex == nil || z.Apex.SOA == nil {
		t.Fatal("loaded zone should have an apex SOA")
	}
	if z.Apex.SOA.Serial != 2024010100 {
		t.Errorf("SOA.Serial = %d, want 2024010100", z.Apex.SOA.Serial)
	}
	if len(z.Apex.RRs) != 2 {
		t.Errorf("got %d non-SOA RRs, want 2", len(z.Apex.RRs))
	}
}

func TestOpenMasterFileRejectsMissingSOA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noSOA.zone")
	if err := os.WriteFile(path, []byte("example.com. 3600 IN NS ns1.example.com.\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	reader, err := OpenMasterFile(path)
	if err != nil {
		t.Fatalf("OpenMasterFile: %v", err)
	}
	defer reader.Close()

	if _, err := reader.Load(); err == nil {
		t.Fatal("expected error loading a zone file with no apex SOA")
	}
}

func TestOpenMasterFileMissingPath(t *testing.T) {
	if _, err := OpenMasterFile(filepath.Join(t.TempDir(), "does-not-exist.zone")); err == nil {
		t.Fatal("expected error opening a nonexistent file")
	}
}

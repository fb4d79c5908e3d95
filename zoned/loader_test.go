package zoned

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/miekg/dns"
)

func writeTempCompiledFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "example.com.db")
	if err := os.WriteFile(path, []byte("placeholder"), 0o644); err != nil {
		t.Fatalf("writeTempCompiledFile: %v", err)
	}
	return path
}

type fakeReader struct {
	source      string
	needsUpdate bool
	zone        *Zone
	loadErr     error
	closed      bool
}

func (f *fakeReader) Source() string     { return f.source }
func (f *fakeReader) NeedsUpdate() bool  { return f.needsUpdate }
func (f *fakeReader) Load() (*Zone, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.zone, nil
}
func (f *fakeReader) Close() error { f.closed = true; return nil }

func fakeZoneWithSOA(name string) *Zone {
	z := newZone(name)
	z.Apex = &ApexNode{SOA: &dns.SOA{Hdr: dns.RR_Header{Name: name, Rrtype: dns.TypeSOA}, Refresh: 3600}}
	return z
}

func TestLoadEmptyCompiledPathIsInvalidParam(t *testing.T) {
	db := NewZoneDB()
	_, err := Load(db, func(string) (CompiledZoneReader, error) {
		t.Fatal("openFn should not be called for empty compiled path")
		return nil, nil
	}, "example.com.", "/z/ex.txt", "")

	if !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("Load with empty compiled path: err = %v, want ErrInvalidParam", err)
	}
}

func TestLoadOpenFailureIsZoneInvalid(t *testing.T) {
	db := NewZoneDB()
	_, err := Load(db, func(string) (CompiledZoneReader, error) {
		return nil, errors.New("boom")
	}, "example.com.", "/z/ex.txt", "/z/ex.db")

	if !errors.Is(err, ErrZoneInvalid) {
		t.Fatalf("Load with open failure: err = %v, want ErrZoneInvalid", err)
	}
}

func TestLoadSuccessStampsVersionAndInserts(t *testing.T) {
	db := NewZoneDB()
	compiledPath := writeTempCompiledFile(t)
	f := &fakeReader{source: "/z/ex.txt", zone: fakeZoneWithSOA("example.com.")}

	z, err := Load(db, func(path string) (CompiledZoneReader, error) {
		return f, nil
	}, "example.com.", "/z/ex.txt", compiledPath)

	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if z.Name != "example.com." {
		t.Errorf("z.Name = %q, want %q", z.Name, "example.com.")
	}
	if z.Version == 0 {
		t.Error("z.Version should be stamped from the compiled file's mtime, got 0")
	}
	if got, ok := db.FindZone("example.com."); !ok || got != z {
		t.Error("loaded zone should be inserted into db")
	}
	if !f.closed {
		t.Error("reader should be closed after Load")
	}
}

func TestLoadDecodeFailureIsZoneInvalid(t *testing.T) {
	db := NewZoneDB()
	f := &fakeReader{source: "/z/ex.txt", loadErr: errors.New("parse error")}

	_, err := Load(db, func(string) (CompiledZoneReader, error) { return f, nil },
		"example.com.", "/z/ex.txt", writeTempCompiledFile(t))

	if !errors.Is(err, ErrZoneInvalid) {
		t.Fatalf("Load with decode failure: err = %v, want ErrZoneInvalid", err)
	}
}

func TestLoadWarnsOnSourceMismatchButSucceeds(t *testing.T) {
	db := NewZoneDB()
	f := &fakeReader{source: "/other/path.txt", needsUpdate: true, zone: fakeZoneWithSOA("example.com.")}

	z, err := Load(db, func(string) (CompiledZoneReader, error) { return f, nil },
		"example.com.", "/z/ex.txt", writeTempCompiledFile(t))

	if err != nil {
		t.Fatalf("Load should still succeed on source/staleness mismatch: %v", err)
	}
	if z == nil {
		t.Fatal("expected a loaded zone")
	}
}

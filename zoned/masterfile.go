/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package zoned

import (
	"bufio"
	"fmt"
	"os"

	"github.com/miekg/dns"
)

// masterFileReader is the default CompiledZoneReader: it treats the
// "compiled" form spec.md's Zone Loader (C3) expects as a standard RFC
// 1035 master file, parsed with the same dns.NewZoneParser the rest of
// the corpus reaches for (tdns/dnsutils.go:ParseZoneFromReader,
// lanrat-allxfr/zone/parse.go). A real deployment may swap in a reader
// over a denser on-disk form; this one exists so the Loader has a
// working implementation out of the box.
type masterFileReader struct {
	path string
	f    *os.File
}

// OpenMasterFile implements OpenCompiledZoneFunc over plain zone master files.
func OpenMasterFile(compiledPath string) (CompiledZoneReader, error) {
	f, err := os.Open(compiledPath)
	if err != nil {
		return nil, fmt.Errorf("OpenMasterFile: %w", err)
	}
	return &masterFileReader{path: compiledPath, f: f}, nil
}

func (r *masterFileReader) Source() string { return r.path }

// NeedsUpdate never reports staleness; the Reconciler already decides
// reload-vs-carry-over from file mtimes before C3 is ever invoked.
func (r *masterFileReader) NeedsUpdate() bool { return false }

func (r *masterFileReader) Load() (*Zone, error) {
	zp := dns.NewZoneParser(bufio.NewReader(r.f), "", r.path)
	zp.SetIncludeAllowed(true)

	apex := &ApexNode{}

	for rr, ok := zp.Next(); ok; rr, ok = zp.Next() {
		if soa, isSOA := rr.(*dns.SOA); isSOA && apex.SOA == nil {
			apex.SOA = soa
			continue
		}
		apex.RRs = append(apex.RRs, rr)
	}
	if err := zp.Err(); err != nil {
		return nil, fmt.Errorf("masterFileReader: %s: %w", r.path, err)
	}
	if apex.SOA == nil {
		return nil, fmt.Errorf("masterFileReader: %s: %w: no apex SOA found", r.path, ErrZoneInvalid)
	}

	z := newZone(apex.SOA.Hdr.Name)
	z.Apex = apex
	return z, nil
}

func (r *masterFileReader) Close() error {
	return r.f.Close()
}

/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package zoned

// CompiledZoneReader is the external interface to the on-disk
// compiled-zone file reader (spec.md §6). The core never parses a
// compiled zone itself — the zone-file compiler and its binary format
// are explicit non-goals; this interface is the seam the Zone Loader
// (C3) drives.
type CompiledZoneReader interface {
	// Source returns the source (text zone file) path embedded in the
	// compiled form.
	Source() string
	// NeedsUpdate reports whether the compiled form is stale relative
	// to its source.
	NeedsUpdate() bool
	// Load decodes the compiled zone into a Zone. Version is left
	// zero; the Loader stamps it from the compiled file's mtime.
	Load() (*Zone, error)
	Close() error
}

// OpenCompiledZone opens compiledPath via the given factory. Kept as a
// function value (rather than a free-standing package function) so the
// Loader can be exercised with a fake reader in tests, and so a real
// implementation can be swapped in without the Loader depending on it
// directly.
type OpenCompiledZoneFunc func(compiledPath string) (CompiledZoneReader, error)

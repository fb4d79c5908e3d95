/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package zoned

import (
	"fmt"
	"log"
	"os"
)

// Load is the Zone Loader (C3): it opens and decodes one compiled zone
// from disk, stamps its version from the compiled file's mtime, and
// inserts it into db. Grounded on tdns/zone_utils.go:FetchFromFile's
// "decode, stamp, warn-on-staleness, continue" shape (spec.md §4.3).
func Load(db *ZoneDB, openFn OpenCompiledZoneFunc, name, sourcePath, compiledPath string) (*Zone, error) {
	if compiledPath == "" {
		return nil, fmt.Errorf("Load(%s): %w: compiled path is empty", name, ErrInvalidParam)
	}

	reader, err := openFn(compiledPath)
	if err != nil {
		return nil, fmt.Errorf("Load(%s): %w: %v", name, ErrZoneInvalid, err)
	}
	defer reader.Close()

	if reader.Source() != sourcePath {
		log.Printf("Load: zone %s: compiled file %s embeds source %q, configured source is %q",
			name, compiledPath, reader.Source(), sourcePath)
	}
	if reader.NeedsUpdate() {
		log.Printf("Load: zone %s: compiled file %s is stale relative to its source; loading anyway", name, compiledPath)
	}

	z, err := reader.Load()
	if err != nil {
		return nil, fmt.Errorf("Load(%s): %w: %v", name, ErrZoneInvalid, err)
	}
	if _, err := z.GetSOA(); err != nil {
		return nil, fmt.Errorf("Load(%s): %w: %v", name, ErrZoneInvalid, err)
	}
	z.Name = canonicalName(name)
	if z.XfrIn == nil {
		z.XfrIn = newXfrInState()
	}

	info, err := os.Stat(compiledPath)
	if err != nil {
		return nil, fmt.Errorf("Load(%s): %w: stat %s: %v", name, ErrZoneInvalid, compiledPath, err)
	}
	z.Version = uint32(info.ModTime().Unix())

	if err := db.insert(z); err != nil {
		return nil, fmt.Errorf("Load(%s): %w: insert: %v", name, ErrZoneInvalid, err)
	}

	return z, nil
}

/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package zoned

import (
	"fmt"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// ZoneDB is a mapping from domain name to Zone, keyed case-insensitively
// per DNS rules (spec.md §3). It is immutable from a reader's
// perspective once published by the Swap Coordinator (C6); the
// concurrent map is still the right structure pre-publication, matching
// the teacher's own `Zones = cmap.New[*ZoneData]()` (tdns/global.go).
type ZoneDB struct {
	zones cmap.ConcurrentMap[string, *Zone]
}

func NewZoneDB() *ZoneDB {
	return &ZoneDB{zones: cmap.New[*Zone]()}
}

// FindZone is the query processor's sole interface to a ZoneDB
// (spec.md §6): look up by canonical name, never mutate.
func (db *ZoneDB) FindZone(name string) (*Zone, bool) {
	if db == nil {
		return nil, false
	}
	return db.zones.Get(canonicalName(name))
}

func (db *ZoneDB) Len() int {
	if db == nil {
		return 0
	}
	return db.zones.Count()
}

func (db *ZoneDB) Names() []string {
	if db == nil {
		return nil
	}
	return db.zones.Keys()
}

// insert adds a zone, failing if the name is already present — spec.md's
// "keys unique" invariant.
func (db *ZoneDB) insert(z *Zone) error {
	if z == nil {
		return fmt.Errorf("%w: nil zone", ErrInvalidParam)
	}
	if _, exists := db.zones.Get(z.Name); exists {
		return fmt.Errorf("%w: zone %s already present", ErrZoneInvalid, z.Name)
	}
	db.zones.Set(z.Name, z)
	return nil
}

// remove drops name from db without freeing the zone (spec.md §4.6 step 6:
// "remove (without freeing) that name from old"). GC reclaims the Zone
// once nothing else references it; "without freeing" here means "the
// caller, not this call, decides the zone's fate".
func (db *ZoneDB) remove(name string) (*Zone, bool) {
	name = canonicalName(name)
	z, exists := db.zones.Get(name)
	if exists {
		db.zones.Remove(name)
	}
	return z, exists
}

/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package zoned

// SOAField selects which SOA timer FindSoaTimer reads.
type SOAField uint8

const (
	FieldRefresh SOAField = iota
	FieldRetry
	FieldExpire
)

// FindSoaTimer is the SOA Timer Extractor (C1): it locates the zone's
// apex SOA RDATA and returns the requested field's value, in
// milliseconds. Grounded on tdns/refreshengine.go:FindSoaRefresh, which
// reads zd.GetSOA().Refresh off the apex the same way.
//
// Undefined only if the zone lacks an apex SOA; the Loader (C3) never
// hands such a zone to a caller of this function.
func FindSoaTimer(z *Zone, field SOAField) (uint32, error) {
	soa, err := z.GetSOA()
	if err != nil {
		return 0, err
	}

	var seconds uint32
	switch field {
	case FieldRefresh:
		seconds = soa.Refresh
	case FieldRetry:
		seconds = soa.Retry
	case FieldExpire:
		seconds = soa.Expire
	}
	return seconds * 1000, nil
}

func SoaRefreshMs(z *Zone) (uint32, error) { return FindSoaTimer(z, FieldRefresh) }
func SoaRetryMs(z *Zone) (uint32, error)   { return FindSoaTimer(z, FieldRetry) }
func SoaExpireMs(z *Zone) (uint32, error)  { return FindSoaTimer(z, FieldExpire) }

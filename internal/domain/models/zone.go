// internal/domain/models/zone.go
package models

// Zone is the geographic service area a coordinator covers and a member
// lives in. Assignment rules may constrain matching by zone.
type Zone string

const (
	ZoneSW Zone = "SW"
	ZoneSE Zone = "SE"
	ZoneNE Zone = "NE"
	ZoneNW Zone = "NW"
	ZoneLC Zone = "LC" // long-term care, not geographic
)

// Zones lists every valid zone, in display order.
var Zones = []Zone{ZoneSW, ZoneSE, ZoneNE, ZoneNW, ZoneLC}

// IsValidZone reports whether z is one of the defined service zones.
func IsValidZone(z Zone) bool {
	switch z {
	case ZoneSW, ZoneSE, ZoneNE, ZoneNW, ZoneLC:
		return true
	}
	return false
}

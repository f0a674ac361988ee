/*
NAME
  zone.go

DESCRIPTION
  zone.go implements the 9-zone speaker partition of spec.md §4.G's
  zone gain extension, as a closed azimuth/elevation band table.

  spec.md defers to ST 2098-2's verbatim partition table, which this
  module does not reproduce; Zone below is a best-effort conventional
  reconstruction (front/side/rear bands crossed with upper/mid/lower
  elevation bands, collapsing to a single top and bottom zone), not a
  transcription of the restricted standard text.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package vbap

import "math"

// Zone names the 9 regions of spec.md §4.G's zone gain partition.
type Zone int

const (
	ZoneFront Zone = iota
	ZoneFrontSide
	ZoneSide
	ZoneRearSide
	ZoneRear
	ZoneTop
	ZoneBottom
	ZoneCenter
	ZoneLFE
	numZones
)

// elevationUpper/elevationLower bound the mid-height band; outside it
// a speaker is assigned to ZoneTop/ZoneBottom regardless of azimuth.
const (
	elevationUpper = 45.0
	elevationLower = -45.0
)

// ZoneOf classifies a speaker's (azimuth, elevation) in degrees (as
// stored on renderconfig.Speaker) into one of the 9 zones. A speaker
// above or below the mid-height band is ZoneTop or ZoneBottom whatever
// its azimuth; inside the band, a speaker within 5 degrees of
// dead-centre front is ZoneCenter; channels conventionally carrying LFE content are
// classified by the caller via isLFE, since LFE routing is a
// configuration fact, not a position fact.
func ZoneOf(azimuthDeg, elevationDeg float64, isLFE bool) Zone {
	if isLFE {
		return ZoneLFE
	}
	if elevationDeg > elevationUpper {
		return ZoneTop
	}
	if elevationDeg < elevationLower {
		return ZoneBottom
	}

	az := math.Mod(azimuthDeg, 360)
	if az < -180 {
		az += 360
	}
	if az > 180 {
		az -= 360
	}
	abs := math.Abs(az)

	switch {
	case abs <= 5:
		return ZoneCenter
	case abs <= 45:
		return ZoneFront
	case abs <= 75:
		return ZoneFrontSide
	case abs <= 105:
		return ZoneSide
	case abs <= 150:
		return ZoneRearSide
	default:
		return ZoneRear
	}
}

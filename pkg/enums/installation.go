package enums

import "fmt"

// RateTrack selects which labor-cost table feeds the installation model.
type RateTrack string

const (
	RateTrackInternal      RateTrack = "internal"
	RateTrackSubcontractor RateTrack = "subcontractor"
)

var validRateTracks = []RateTrack{
	RateTrackInternal,
	RateTrackSubcontractor,
}

// String implements fmt.Stringer.
func (t RateTrack) String() string {
	return string(t)
}

// IsValid reports whether the value is a known RateTrack.
func (t RateTrack) IsValid() bool {
	for _, candidate := range validRateTracks {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseRateTrack converts raw input into a RateTrack.
func ParseRateTrack(value string) (RateTrack, error) {
	for _, candidate := range validRateTracks {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rate track %q", value)
}

// RoofType represents the roof construction categories with distinct
// installation multipliers.
type RoofType string

const (
	RoofTypeTile    RoofType = "tile"
	RoofTypeMetal   RoofType = "metal"
	RoofTypeKlipLok RoofType = "klip_lok"
	RoofTypeSlate   RoofType = "slate"
	RoofTypeFlat    RoofType = "flat"
)

var validRoofTypes = []RoofType{
	RoofTypeTile,
	RoofTypeMetal,
	RoofTypeKlipLok,
	RoofTypeSlate,
	RoofTypeFlat,
}

// String implements fmt.Stringer.
func (t RoofType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known RoofType.
func (t RoofType) IsValid() bool {
	for _, candidate := range validRoofTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseRoofType converts raw input into a RoofType.
func ParseRoofType(value string) (RoofType, error) {
	for _, candidate := range validRoofTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid roof type %q", value)
}

// RoofPitch buckets the roof slope for the pitch multiplier.
type RoofPitch string

const (
	RoofPitchFlat     RoofPitch = "flat"
	RoofPitchStandard RoofPitch = "standard"
	RoofPitchSteep    RoofPitch = "steep"
)

var validRoofPitches = []RoofPitch{
	RoofPitchFlat,
	RoofPitchStandard,
	RoofPitchSteep,
}

// String implements fmt.Stringer.
func (p RoofPitch) String() string {
	return string(p)
}

// IsValid reports whether the value is a known RoofPitch.
func (p RoofPitch) IsValid() bool {
	for _, candidate := range validRoofPitches {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseRoofPitch converts raw input into a RoofPitch.
func ParseRoofPitch(value string) (RoofPitch, error) {
	for _, candidate := range validRoofPitches {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid roof pitch %q", value)
}

// EVChargeTiming records when an electric vehicle is charged; only overnight
// charging feeds the battery sizing target.
type EVChargeTiming string

const (
	EVChargeTimingDay   EVChargeTiming = "day"
	EVChargeTimingNight EVChargeTiming = "night"
)

var validEVChargeTimings = []EVChargeTiming{
	EVChargeTimingDay,
	EVChargeTimingNight,
}

// String implements fmt.Stringer.
func (t EVChargeTiming) String() string {
	return string(t)
}

// IsValid reports whether the value is a known EVChargeTiming.
func (t EVChargeTiming) IsValid() bool {
	for _, candidate := range validEVChargeTimings {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseEVChargeTiming converts raw input into an EVChargeTiming.
func ParseEVChargeTiming(value string) (EVChargeTiming, error) {
	for _, candidate := range validEVChargeTimings {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ev charge timing %q", value)
}

package domain

import "regexp"

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^[\d\s\-\+\(\)]{10,}$`)
)

// IsValidEmail reports whether s has local@domain.tld shape: non-whitespace
// local part and a domain containing at least one dot. Emptiness is handled
// by the required-field check, not here.
func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// IsValidPhone reports whether s consists of at least 10 characters drawn
// from digits, spaces, hyphens, parentheses and the plus sign. Deliberately
// permissive; strict parsing happens only when building the lead payload.
func IsValidPhone(s string) bool {
	return phoneRegex.MatchString(s)
}

// Heat-distribution tags.
const (
	HeatRadiators       = "radiators"
	HeatFloorHeating    = "floor-heating"
	HeatAirHeating      = "air-heating"
	HeatDistrictHeating = "district-heating"
	HeatFloorConvectors = "floor-convectors"
	HeatWallConvectors  = "wall-convectors"
	HeatCombination     = "combination"
	HeatOther           = "other"
)

// KnownHeatDistribution is the closed set of selectable tags.
var KnownHeatDistribution = map[string]bool{
	HeatRadiators:       true,
	HeatFloorHeating:    true,
	HeatAirHeating:      true,
	HeatDistrictHeating: true,
	HeatFloorConvectors: true,
	HeatWallConvectors:  true,
	HeatCombination:     true,
	HeatOther:           true,
}

// disqualifying holds the system types incompatible with the product.
var disqualifying = map[string]bool{
	HeatDistrictHeating: true,
	HeatAirHeating:      true,
}

// IsDisqualifyingHeating reports whether the selection is non-empty and
// drawn exclusively from the incompatible subset. Recomputed from the
// current selection on every call; never cached.
func IsDisqualifyingHeating(selection []string) bool {
	if len(selection) == 0 {
		return false
	}
	for _, tag := range selection {
		if !disqualifying[tag] {
			return false
		}
	}
	return true
}

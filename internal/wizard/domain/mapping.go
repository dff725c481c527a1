package domain

import (
	"strconv"
	"strings"
)

// Build-year bucket labels as they appear in the lead payload.
const (
	BuildYearBefore1970 = "Voor 1970"
	BuildYear1971To1989 = "Tussen 1971 en 1989"
	BuildYear1990To1999 = "Tussen 1990 en 1999"
	BuildYear2000To2019 = "Tussen 2000 en 2019"
	BuildYearAfter2019  = "Na 2019"
)

// houseTypeTable translates the external service's free-text dwelling
// categories into the closed enumeration. Keys are lowercased.
var houseTypeTable = map[string]string{
	"vrijstaande woning":       HouseTypeDetached,
	"vrijstaand":               HouseTypeDetached,
	"2 onder 1 kap woning":     HouseTypeSemiDetached,
	"2-onder-1-kapwoning":      HouseTypeSemiDetached,
	"twee-onder-een-kapwoning": HouseTypeSemiDetached,
	"tussenwoning":             HouseTypeTerraced,
	"hoekwoning":               HouseTypeTerraced,
	"rijtjeswoning":            HouseTypeTerraced,
	"appartement":              HouseTypeApartment,
	"flatwoning":               HouseTypeApartment,
	"portiekwoning":            HouseTypeApartment,
}

// MapHouseType translates a free-text dwelling category into the closed
// enumeration. Unrecognized categories map to the empty string.
func MapHouseType(freeText string) string {
	mapped, ok := houseTypeTable[strings.ToLower(strings.TrimSpace(freeText))]
	if !ok {
		return ""
	}
	return mapped
}

// MapBuildYear buckets a raw build-year value into the fixed ranges used by
// the funnel. Non-numeric input maps to the empty string.
func MapBuildYear(raw string) string {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}

	switch {
	case year <= 1970:
		return BuildYearBefore1970
	case year <= 1989:
		return BuildYear1971To1989
	case year <= 1999:
		return BuildYear1990To1999
	case year <= 2019:
		return BuildYear2000To2019
	default:
		return BuildYearAfter2019
	}
}

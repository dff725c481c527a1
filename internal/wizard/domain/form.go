// Package domain holds the wizard's form aggregate and the pure rules that
// operate on it: merge-update semantics, field validators, step validity and
// the lookup tables that translate external vocabulary into the closed
// enumerations used by the funnel.
package domain

import "strings"

// HouseType is the closed enumeration for dwelling types. The external
// house-data service returns free text; MapHouseType translates it.
const (
	HouseTypeDetached     = "detached"
	HouseTypeSemiDetached = "semi-detached"
	HouseTypeTerraced     = "terraced"
	HouseTypeApartment    = "apartment"
)

// InstallerRef references an installer from the last-fetched directory list.
type InstallerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FormData is the single mutable aggregate for one wizard session. All
// string fields default to the empty string, never null, so a controlled
// frontend can always render them.
type FormData struct {
	// Location step
	PostalCode          string `json:"postalCode"`
	HouseNumber         string `json:"houseNumber"`
	HouseNumberAddition string `json:"houseNumberAddition"`
	Street              string `json:"street"`
	City                string `json:"city"`

	// Enrichment-derived
	Area                 string  `json:"area"`
	BuildYear            string  `json:"buildYear"`
	EnergyLabel          string  `json:"energyLabel"`
	EstimatedEnergyUsage float64 `json:"estimatedEnergyUsage"`
	EstimatedGasUsage    float64 `json:"estimatedGasUsage"`
	Latitude             string  `json:"latitude"`
	Longitude            string  `json:"longitude"`
	WOZ                  string  `json:"woz"`
	HouseType            string  `json:"houseType"`

	// Preferences
	Insulation       []string `json:"insulation"`
	HeatDistribution []string `json:"heatDistribution"`

	// Installer selection (intake variant)
	SelectedInstaller *InstallerRef `json:"selectedInstaller,omitempty"`

	// Contact step
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
}

// NewFormData returns the all-empty default aggregate.
func NewFormData() FormData {
	return FormData{
		Insulation:       []string{},
		HeatDistribution: []string{},
	}
}

// Update is a partial form update. A nil field means "key absent"; a present
// field replaces the prior value wholesale (slices included, no deep merge).
type Update struct {
	PostalCode          *string `json:"postalCode"`
	HouseNumber         *string `json:"houseNumber"`
	HouseNumberAddition *string `json:"houseNumberAddition"`

	Insulation       *[]string `json:"insulation"`
	HeatDistribution *[]string `json:"heatDistribution"`

	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Message   *string `json:"message"`
}

// ApplyResult reports what an update touched, so the caller can schedule
// follow-up work (debounced address validation) and clear field errors.
type ApplyResult struct {
	// AddressChanged is true when postal code or house number changed.
	AddressChanged bool
	// ClearedErrors lists field-error keys the update cleared.
	ClearedErrors []string
}

// Apply merges the update into the form using shallow-merge semantics.
// Street and city are cleared whenever the address inputs become incomplete;
// they must never show stale data for a changed address.
func (f *FormData) Apply(u Update) ApplyResult {
	var result ApplyResult

	if u.PostalCode != nil && *u.PostalCode != f.PostalCode {
		f.PostalCode = *u.PostalCode
		result.AddressChanged = true
	}
	if u.HouseNumber != nil && *u.HouseNumber != f.HouseNumber {
		f.HouseNumber = *u.HouseNumber
		result.AddressChanged = true
	}
	if u.HouseNumberAddition != nil {
		f.HouseNumberAddition = *u.HouseNumberAddition
	}

	if u.Insulation != nil {
		f.Insulation = append([]string{}, (*u.Insulation)...)
	}
	if u.HeatDistribution != nil {
		f.HeatDistribution = append([]string{}, (*u.HeatDistribution)...)
	}

	if u.FirstName != nil {
		f.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		f.LastName = *u.LastName
	}
	if u.Email != nil {
		f.Email = *u.Email
		result.ClearedErrors = append(result.ClearedErrors, "email")
	}
	if u.Phone != nil {
		f.Phone = *u.Phone
		result.ClearedErrors = append(result.ClearedErrors, "phone")
	}
	if u.Message != nil {
		f.Message = *u.Message
	}

	if result.AddressChanged {
		f.Street = ""
		f.City = ""
	}

	return result
}

// SetResolvedAddress records the validated street and city for the current
// postal code and house number.
func (f *FormData) SetResolvedAddress(street, city string) {
	f.Street = street
	f.City = city
}

// ClearResolvedAddress drops the street and city.
func (f *FormData) ClearResolvedAddress() {
	f.Street = ""
	f.City = ""
}

// AddressComplete reports whether the address inputs are complete enough to
// attempt a lookup: stripped postal code of exactly 6 characters and a
// non-empty house number.
func (f *FormData) AddressComplete() bool {
	return len(CleanPostalCode(f.PostalCode)) == postalCodeLength && f.HouseNumber != ""
}

// CleanPostalCode strips all whitespace and uppercases ("1234 ab" -> "1234AB").
func CleanPostalCode(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(raw), ""))
}

const postalCodeLength = 6

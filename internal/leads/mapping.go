package leads

import (
	"fmt"

	"lead_funnel_backend/internal/flows"
	"lead_funnel_backend/internal/wizard/domain"
	"lead_funnel_backend/platform/phone"
	"lead_funnel_backend/platform/sanitize"
)

// Insulation options are stored under their downstream labels already, so
// membership translates directly to checkbox values.
var insulationLabels = []string{
	"Het dak is geïsoleerd",
	"Met dubbelglas of beter",
	"Met spouwmuurisolatie",
	"Met andere muurisolatie",
	"Met vloerisolatie",
}

// heatLabels maps internal heat-distribution tags to the downstream
// checkbox labels. The combination tag has no label of its own and folds
// into "Anders".
var heatLabels = map[string]string{
	domain.HeatDistrictHeating: "Stadsverwarming",
	domain.HeatAirHeating:      "Luchtverwarming",
	domain.HeatRadiators:       "Radiatoren",
	domain.HeatFloorConvectors: "Convectoren in de vloer",
	domain.HeatWallConvectors:  "Convectoren in de muren",
	domain.HeatFloorHeating:    "Vloerverwarming",
	domain.HeatOther:           "Anders",
	domain.HeatCombination:     "Anders",
}

// houseTypeLabels translates the closed enumeration back to the Dutch
// labels the downstream form expects.
var houseTypeLabels = map[string]string{
	domain.HouseTypeDetached:     "Vrijstaande woning",
	domain.HouseTypeSemiDetached: "2 onder 1 kap woning",
	domain.HouseTypeTerraced:     "Tussenwoning",
	domain.HouseTypeApartment:    "Appartement",
}

// buildData produces the flow-specific data map. Fixed mapping per flow
// variant: a shared address/contact base, plus the preference checkboxes
// for flows that collect them and the selected installer for the intake
// variant.
func buildData(flow *flows.Flow, form *domain.FormData) map[string]string {
	data := map[string]string{
		"Postcode":   domain.CleanPostalCode(form.PostalCode),
		"Huisnummer": form.HouseNumber,
		"Toevoeging": form.HouseNumberAddition,
		"Straat":     form.Street,
		"Plaats":     form.City,
		"Voornaam":   form.FirstName,
		"Achternaam": form.LastName,
		"Email":      form.Email,
		"company":    "",
	}

	if form.HouseType != "" {
		data["Type huis"] = houseTypeLabels[form.HouseType]
	}
	if form.Area != "" {
		data["Oppervlakte-Known"] = form.Area
	}
	if form.EnergyLabel != "" {
		data["Energielabel-known"] = form.EnergyLabel
	}
	if form.BuildYear != "" {
		data["Bouwjaar"] = form.BuildYear
	}
	if form.EstimatedEnergyUsage > 0 {
		data["Energieverbruik"] = fmt.Sprintf("%.0f", form.EstimatedEnergyUsage)
	}
	if form.EstimatedGasUsage > 0 {
		data["Gasverbruik"] = fmt.Sprintf("%.0f", form.EstimatedGasUsage)
	}
	if form.WOZ != "" {
		data["WOZ-waarde"] = form.WOZ
	}

	if flow.CollectPhone {
		number := form.Phone
		if phone.IsValid(number) {
			number = phone.NormalizeE164(number)
		}
		data["Telefoon"] = number
	}
	if form.Message != "" {
		data["Bericht"] = sanitize.Text(form.Message)
	}

	for _, label := range insulationLabels {
		data[label] = boolLabel(contains(form.Insulation, label))
	}

	selectedHeat := make(map[string]bool, len(form.HeatDistribution))
	for _, tag := range form.HeatDistribution {
		if label, ok := heatLabels[tag]; ok {
			selectedHeat[label] = true
		}
	}
	for _, label := range heatLabels {
		data[label] = boolLabel(selectedHeat[label])
	}

	if form.SelectedInstaller != nil {
		data["Installateur"] = form.SelectedInstaller.Name
	}

	return data
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

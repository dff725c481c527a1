package domain

// EnrichedData is the house-data lookup result, already translated into the
// funnel's vocabulary (closed house type enum, bucketed build year).
type EnrichedData struct {
	Area                 string  `json:"area"`
	BuildYear            string  `json:"buildYear"`
	EnergyLabel          string  `json:"energyLabel"`
	EstimatedEnergyUsage float64 `json:"estimatedEnergyUsage"`
	EstimatedGasUsage    float64 `json:"estimatedGasUsage"`
	Latitude             string  `json:"latitude"`
	Longitude            string  `json:"longitude"`
	WOZ                  string  `json:"woz"`
	HouseType            string  `json:"houseType"`
}

// ApplyEnrichment overwrites the enrichment fields wholesale. Enrichment is
// idempotent: applying the same data twice leaves the form unchanged. On a
// failed lookup this is never called, so previously held values survive.
func (f *FormData) ApplyEnrichment(e EnrichedData) {
	f.Area = e.Area
	f.BuildYear = e.BuildYear
	f.EnergyLabel = e.EnergyLabel
	f.EstimatedEnergyUsage = e.EstimatedEnergyUsage
	f.EstimatedGasUsage = e.EstimatedGasUsage
	f.Latitude = e.Latitude
	f.Longitude = e.Longitude
	f.WOZ = e.WOZ
	f.HouseType = e.HouseType
}

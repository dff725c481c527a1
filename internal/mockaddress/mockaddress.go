// Package mockaddress serves canned house-data records during development,
// so the funnel can be exercised without the external house-information
// service. Mounted only outside production.
package mockaddress

import (
	"net/http"

	apphttp "lead_funnel_backend/internal/http"
	"lead_funnel_backend/internal/wizard/domain"
	"lead_funnel_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Record is one fixture house-data response.
type Record struct {
	Area                 string  `json:"area"`
	BuildYear            string  `json:"build_year"`
	EnergyLabel          string  `json:"energy_label"`
	EstimatedEnergyUsage float64 `json:"estimated_energy_usage"`
	EstimatedGasUsage    float64 `json:"estimated_gas_usage"`
	Latitude             string  `json:"latitude"`
	Longitude            string  `json:"longitude"`
	WOZ                  string  `json:"woz"`
	HouseType            string  `json:"house_type"`
	Street               string  `json:"street"`
	City                 string  `json:"city"`
}

// fixtures is keyed by "{cleaned postal code}_{house number}".
var fixtures = map[string]Record{
	"6531KJ_4": {
		Area:                 "142",
		BuildYear:            "1932",
		EnergyLabel:          "C",
		EstimatedEnergyUsage: 3200,
		EstimatedGasUsage:    1650,
		Latitude:             "51.8335",
		Longitude:            "5.8372",
		WOZ:                  "425000",
		HouseType:            "2 onder 1 kap woning",
		Street:               "Groenestraat",
		City:                 "Nijmegen",
	},
	"1234AB_10": {
		Area:                 "98",
		BuildYear:            "1985",
		EnergyLabel:          "B",
		EstimatedEnergyUsage: 2700,
		EstimatedGasUsage:    1200,
		Latitude:             "52.3702",
		Longitude:            "4.8952",
		WOZ:                  "510000",
		HouseType:            "Tussenwoning",
		Street:               "Keizersgracht",
		City:                 "Amsterdam",
	},
	"3011AB_25": {
		Area:                 "76",
		BuildYear:            "2005",
		EnergyLabel:          "A",
		EstimatedEnergyUsage: 2100,
		EstimatedGasUsage:    800,
		Latitude:             "51.9225",
		Longitude:            "4.4792",
		WOZ:                  "340000",
		HouseType:            "Appartement",
		Street:               "Wijnhaven",
		City:                 "Rotterdam",
	},
	"5644JL_42": {
		Area:                 "110",
		BuildYear:            "1998",
		EnergyLabel:          "B",
		EstimatedEnergyUsage: 2900,
		EstimatedGasUsage:    1350,
		Latitude:             "51.4231",
		Longitude:            "5.4897",
		WOZ:                  "385000",
		HouseType:            "Tussenwoning",
		Street:               "Aalsterweg",
		City:                 "Eindhoven",
	},
}

// Lookup returns the fixture for an address, if any.
func Lookup(postalCode, houseNumber string) (Record, bool) {
	rec, ok := fixtures[domain.CleanPostalCode(postalCode)+"_"+houseNumber]
	return rec, ok
}

// Module mounts the fixture lookup endpoint.
type Module struct{}

// NewModule creates the mock address module.
func NewModule() *Module {
	return &Module{}
}

// Name implements http.Module.
func (m *Module) Name() string {
	return "mockaddress"
}

// RegisterRoutes implements http.Module.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.API.GET("/address", m.get)
}

func (m *Module) get(c *gin.Context) {
	postalCode := c.Query("postal_code")
	houseNumber := c.Query("house_number")
	if postalCode == "" || houseNumber == "" {
		httpkit.Error(c, http.StatusBadRequest, "postal_code and house_number are required", nil)
		return
	}

	rec, ok := Lookup(postalCode, houseNumber)
	if !ok {
		httpkit.Error(c, http.StatusNotFound, "no data for address", nil)
		return
	}
	httpkit.OK(c, rec)
}

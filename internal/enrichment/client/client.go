// Package client provides the HTTP client for the external house-information
// service that augments a bare address with building and energy attributes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"lead_funnel_backend/internal/wizard/domain"
	"lead_funnel_backend/platform/logger"
)

const defaultHTTPTimeout = 10 * time.Second

// ErrNoData indicates the service has no record for the address. Treated as
// a recognized outcome, not a failure.
var ErrNoData = errors.New("no house data for address")

// Client posts address lookups to the house-information endpoint.
type Client struct {
	httpClient *http.Client
	url        string
	log        *logger.Logger
}

// New creates a house-information client for the given endpoint.
func New(url string, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		url:        url,
		log:        log,
	}
}

type lookupRequest struct {
	PostalCode          string `json:"postal_code"`
	HouseNumber         int    `json:"house_number"`
	HouseNumberAddition string `json:"house_number_addition,omitempty"`
}

// rawResult mirrors the service response. house_type_mapped is already in
// the closed enumeration; house_type is free text needing local mapping.
type rawResult struct {
	Area                 string  `json:"area"`
	BuildYear            string  `json:"build_year"`
	EnergyLabel          string  `json:"energy_label"`
	EstimatedEnergyUsage float64 `json:"estimated_energy_usage"`
	EstimatedGasUsage    float64 `json:"estimated_gas_usage"`
	Latitude             string  `json:"latitude"`
	Longitude            string  `json:"longitude"`
	WOZ                  string  `json:"woz"`
	HouseTypeMapped      string  `json:"house_type_mapped"`
	HouseType            string  `json:"house_type"`
}

// Fetch looks up building data for an address. The postal code is
// whitespace-stripped before sending and the house number goes out as an
// integer; the addition is included only when non-empty.
func (c *Client) Fetch(ctx context.Context, postalCode, houseNumber, addition string) (domain.EnrichedData, error) {
	number, err := strconv.Atoi(houseNumber)
	if err != nil {
		return domain.EnrichedData{}, ErrNoData
	}

	body, err := json.Marshal(lookupRequest{
		PostalCode:          domain.CleanPostalCode(postalCode),
		HouseNumber:         number,
		HouseNumberAddition: addition,
	})
	if err != nil {
		return domain.EnrichedData{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return domain.EnrichedData{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("house-information request failed", "error", err)
		return domain.EnrichedData{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Debug("house-information lookup miss", "status", resp.StatusCode)
		return domain.EnrichedData{}, ErrNoData
	}

	var raw rawResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		c.log.Error("house-information decode failed", "error", err)
		return domain.EnrichedData{}, fmt.Errorf("decode house-information response: %w", err)
	}

	return mapResult(raw), nil
}

// mapResult translates the open-vocabulary response into the funnel's
// closed enumerations. Unrecognized categories become empty strings.
func mapResult(raw rawResult) domain.EnrichedData {
	houseType := raw.HouseTypeMapped
	if houseType == "" {
		houseType = domain.MapHouseType(raw.HouseType)
	}

	return domain.EnrichedData{
		Area:                 raw.Area,
		BuildYear:            domain.MapBuildYear(raw.BuildYear),
		EnergyLabel:          raw.EnergyLabel,
		EstimatedEnergyUsage: raw.EstimatedEnergyUsage,
		EstimatedGasUsage:    raw.EstimatedGasUsage,
		Latitude:             raw.Latitude,
		Longitude:            raw.Longitude,
		WOZ:                  raw.WOZ,
		HouseType:            houseType,
	}
}

// Package addresslookup confirms street and city for a postal code and house
// number via the public PDOK locatieserver. The wizard debounces calls and
// writes the result back into the form as the user types.
package addresslookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"lead_funnel_backend/internal/wizard/domain"
	"lead_funnel_backend/platform/logger"
)

const defaultHTTPTimeout = 5 * time.Second

// Result is the tri-state lookup outcome. Street and city are only set when
// Status is AddressFound.
type Result struct {
	Street string
	City   string
	Status domain.AddressStatus
}

// Client queries the locatieserver free-search endpoint.
type Client struct {
	httpClient *http.Client
	url        string
	log        *logger.Logger
}

// New creates a locatieserver client for the given endpoint.
func New(endpoint string, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		url:        endpoint,
		log:        log,
	}
}

type lookupResponse struct {
	Response struct {
		NumFound int `json:"numFound"`
		Docs     []struct {
			Straatnaam     string `json:"straatnaam"`
			Woonplaatsnaam string `json:"woonplaatsnaam"`
		} `json:"docs"`
	} `json:"response"`
}

// Validate resolves street and city for the address inputs. Incomplete
// input (stripped postal code not exactly 6 characters, or empty house
// number) reports AddressIdle without touching the network. Zero matches
// report AddressNotFound; transport or parse failures report
// AddressUnverifiable. The first match is trusted as ranked by the service.
func (c *Client) Validate(ctx context.Context, postalCode, houseNumber string) Result {
	clean := domain.CleanPostalCode(postalCode)
	if len(clean) != 6 || houseNumber == "" {
		return Result{Status: domain.AddressIdle}
	}

	params := url.Values{}
	params.Set("q", fmt.Sprintf("%s %s", clean, houseNumber))
	params.Add("fq", "type:adres")
	params.Add("fq", "postcode:"+clean)
	params.Add("fq", "huisnummer:"+houseNumber)
	params.Set("rows", "1")
	params.Set("fl", "straatnaam,huisnummer,huisletter,huisnummertoevoeging,woonplaatsnaam")

	reqURL := fmt.Sprintf("%s?%s", c.url, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Result{Status: domain.AddressUnverifiable}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("locatieserver request failed", "error", err)
		return Result{Status: domain.AddressUnverifiable}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("locatieserver upstream error", "status", resp.StatusCode)
		return Result{Status: domain.AddressUnverifiable}
	}

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Error("locatieserver decode failed", "error", err)
		return Result{Status: domain.AddressUnverifiable}
	}

	if payload.Response.NumFound == 0 || len(payload.Response.Docs) == 0 {
		return Result{Status: domain.AddressNotFound}
	}

	doc := payload.Response.Docs[0]
	return Result{
		Street: doc.Straatnaam,
		City:   doc.Woonplaatsnaam,
		Status: domain.AddressFound,
	}
}

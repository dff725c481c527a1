// Package installers fetches heat-pump installers near a location from the
// installer directory service. The wizard's installer-search step is never
// allowed to be empty: failures and zero-result responses fall back to one
// hardcoded nationwide installer.
package installers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"lead_funnel_backend/platform/logger"
)

const defaultHTTPTimeout = 10 * time.Second

// Installer is a normalized directory entry. Ephemeral: re-fetched per
// session, never stored.
type Installer struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Location   string   `json:"location"`
	Distance   float64  `json:"distance"`
	Tags       []string `json:"tags"`
	Nationwide bool     `json:"nationwide"`
	Rank       int      `json:"rank"`
}

// Fallback is shown when the directory is unreachable or returns nothing.
var Fallback = Installer{
	ID:         "fallback-weheat",
	Name:       "Weheat Installatiepartner",
	Location:   "Landelijk",
	Tags:       []string{"warmtepomp"},
	Nationwide: true,
}

// Client queries the installer directory endpoint.
type Client struct {
	httpClient *http.Client
	url        string
	log        *logger.Logger
}

// New creates an installer directory client for the given endpoint.
func New(endpoint string, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		url:        endpoint,
		log:        log,
	}
}

type account struct {
	SFID       string   `json:"sfid"`
	Name       string   `json:"name"`
	Location   string   `json:"location"`
	Order      int      `json:"order"`
	Tags       []string `json:"tags"`
	NationWide bool     `json:"nationWide"`
	Distance   float64  `json:"distance"`
}

type directoryResponse struct {
	Accounts []account `json:"accounts"`
}

// Near lists installers around the coordinates, ordered by rank. The result
// is never empty; any failure degrades to the fallback entry.
func (c *Client) Near(ctx context.Context, latitude, longitude string) []Installer {
	if latitude == "" || longitude == "" {
		return []Installer{Fallback}
	}

	params := url.Values{}
	params.Set("latitude", latitude)
	params.Set("longitude", longitude)

	reqURL := fmt.Sprintf("%s?%s", c.url, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return []Installer{Fallback}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("installer directory request failed", "error", err)
		return []Installer{Fallback}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("installer directory upstream error", "status", resp.StatusCode)
		return []Installer{Fallback}
	}

	var payload directoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Error("installer directory decode failed", "error", err)
		return []Installer{Fallback}
	}

	if len(payload.Accounts) == 0 {
		return []Installer{Fallback}
	}

	results := make([]Installer, 0, len(payload.Accounts))
	for _, acc := range payload.Accounts {
		results = append(results, Installer{
			ID:         acc.SFID,
			Name:       acc.Name,
			Location:   acc.Location,
			Distance:   acc.Distance,
			Tags:       acc.Tags,
			Nationwide: acc.NationWide,
			Rank:       acc.Order,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Rank < results[j].Rank
	})
	return results
}

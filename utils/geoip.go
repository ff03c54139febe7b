// utils/geoip.go
package utils

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
)

// CountryResolver maps a client IP to a country name. Lookups are best
// effort: any failure yields an empty string, which the aggregator later
// normalizes to "Unknown Country".
type CountryResolver interface {
	CountryForIP(ip string) string
}

// GeoIPClient resolves countries against an ip-country HTTP service
// (GET <base>/<ip> returning {"country": "..."}).
type GeoIPClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewGeoIPClient() *GeoIPClient {
	baseURL := os.Getenv("GEOIP_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.country.is"
	}
	return &GeoIPClient{
		BaseURL:    baseURL,
		HTTPClient: HTTPClient,
	}
}

func (c *GeoIPClient) CountryForIP(ip string) string {
	if ip == "" {
		return ""
	}
	resp, err := c.HTTPClient.Get(fmt.Sprintf("%s/%s", c.BaseURL, ip))
	if err != nil {
		log.Printf("[GEOIP] lookup failed for %s: %v", ip, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var body struct {
		Country string `json:"country"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Printf("[GEOIP] bad response for %s: %v", ip, err)
		return ""
	}
	return body.Country
}

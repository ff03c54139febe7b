// utils/prowl.go
package utils

import (
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// Notifier receives milestone alerts. Delivery is fire-and-forget: failures
// are logged and swallowed, never surfaced to the caller.
type Notifier interface {
	Notify(title, body, link string)
}

// NopNotifier is used when notifications are disabled.
type NopNotifier struct{}

func (NopNotifier) Notify(title, body, link string) {}

const prowlEndpoint = "https://api.prowlapp.com/publicapi/add"

// ProwlClient pushes notifications through the Prowl public API.
// Note Prowl rate-limits at 1000 requests per hour; the registrar's
// milestone mode exists to stay well under that.
type ProwlClient struct {
	APIKey      string
	Application string
	HTTPClient  *http.Client
}

func NewProwlClient() *ProwlClient {
	apiKey := os.Getenv("PROWL_API_KEY")
	if apiKey == "" {
		log.Println("⚠️  PROWL_ENABLED is set but PROWL_API_KEY is empty — notifications will not be delivered")
	}
	app := os.Getenv("PROWL_APP_NAME")
	if app == "" {
		app = "Chartridge"
	}
	return &ProwlClient{
		APIKey:      apiKey,
		Application: app,
		HTTPClient:  HTTPClient,
	}
}

func (c *ProwlClient) Notify(title, body, link string) {
	if c.APIKey == "" {
		return
	}

	form := url.Values{}
	form.Set("apikey", c.APIKey)
	form.Set("application", c.Application)
	form.Set("event", title)
	form.Set("description", body)
	if link != "" {
		form.Set("url", link)
	}

	resp, err := c.HTTPClient.Post(prowlEndpoint, "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()))
	if err != nil {
		log.Printf("❌ [PROWL] notify failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("❌ [PROWL] notify returned status %d", resp.StatusCode)
	}
}

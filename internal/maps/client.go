package maps

import (
	"fmt"

	"googlemaps.github.io/maps"
)

// NewClient creates a Google Maps client shared by the route, geocoding and
// places services.
func NewClient(apiKey string) (*maps.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("failed to create maps client: empty api key")
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return client, nil
}

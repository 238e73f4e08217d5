package services

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

// GoogleGeocoder resolves free-text locations (PIN codes, addresses) to
// coordinates through the Google Maps API.
type GoogleGeocoder struct {
	client *maps.Client
}

func NewGoogleGeocoder(apiKey string) (*GoogleGeocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleGeocoder{client: client}, nil
}

// Geocode returns the coordinates of the first geocoding result.
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (lat, lng float64, err error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return 0, 0, fmt.Errorf("maps api error: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("no results found for %q", address)
	}
	loc := results[0].Geometry.Location
	return loc.Lat, loc.Lng, nil
}

// TravelDistance returns the human-readable driving distance between two
// free-text locations.
func (g *GoogleGeocoder) TravelDistance(ctx context.Context, from, to string) (string, error) {
	resp, err := g.client.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      []string{from},
		Destinations: []string{to},
	})
	if err != nil {
		return "", fmt.Errorf("maps api error: %w", err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return "", fmt.Errorf("no route found between %q and %q", from, to)
	}
	element := resp.Rows[0].Elements[0]
	if element.Status != "OK" {
		return "", fmt.Errorf("distance lookup failed: %s", element.Status)
	}
	return element.Distance.HumanReadable, nil
}

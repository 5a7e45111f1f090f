package geo

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

// Geocoder resolves coordinates to a human-readable address. Used to
// backfill the optional alert address before responders see it.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

type GoogleMapsGeocoder struct {
	client *maps.Client
}

func NewGoogleMapsGeocoder(apiKey string) (*GoogleMapsGeocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return &GoogleMapsGeocoder{
		client: client,
	}, nil
}

func (g *GoogleMapsGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	req := &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lng},
	}

	resp, err := g.client.ReverseGeocode(ctx, req)
	if err != nil {
		return "", fmt.Errorf("reverse geocoding failed: %w", err)
	}

	if len(resp) == 0 {
		return "", fmt.Errorf("no address found for %f,%f", lat, lng)
	}

	return resp[0].FormattedAddress, nil
}

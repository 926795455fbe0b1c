// README: Geocoding collaborators (Google Maps + deterministic fallback).
package location

import (
	"context"
	"fmt"
	"math"

	"googlemaps.github.io/maps"

	"cabcab/internal/types"
)

// Geocoder resolves a free-text address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, addr Address) (types.Point, error)
}

// GoogleGeocoder resolves addresses through the Google Maps Geocoding API.
type GoogleGeocoder struct {
	client *maps.Client
}

func NewGoogleGeocoder(apiKey string) (*GoogleGeocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("maps client: %w", err)
	}
	return &GoogleGeocoder{client: client}, nil
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, addr Address) (types.Point, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: addr.String()})
	if err != nil {
		return types.Point{}, fmt.Errorf("geocode %q: %w", addr.Street, err)
	}
	if len(results) == 0 {
		return types.Point{}, fmt.Errorf("geocode %q: no results", addr.Street)
	}
	loc := results[0].Geometry.Location
	return types.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// StaticGeocoder derives stable pseudo-coordinates from the address text,
// spread around a base point. It stands in when no geocoding API is
// configured; the same address always maps to the same point.
type StaticGeocoder struct {
	Base types.Point
}

func NewStaticGeocoder() *StaticGeocoder {
	return &StaticGeocoder{Base: types.Point{Lat: 40.7128, Lng: -74.0060}}
}

func (g *StaticGeocoder) Geocode(_ context.Context, addr Address) (types.Point, error) {
	var sum int
	for _, c := range addr.Street {
		sum += int(c)
	}
	latOffset := float64(sum%100)/100.0 - 0.5
	lngOffset := float64((sum/100)%100)/100.0 - 0.5
	return types.Point{
		Lat: math.Round((g.Base.Lat+latOffset)*10000) / 10000,
		Lng: math.Round((g.Base.Lng+lngOffset)*10000) / 10000,
	}, nil
}

// FallbackGeocoder tries the primary resolver and degrades to the fallback on
// any error, so a missing or unreachable geocoding service never blocks ride
// creation.
type FallbackGeocoder struct {
	Primary  Geocoder
	Fallback Geocoder
}

func (g *FallbackGeocoder) Geocode(ctx context.Context, addr Address) (types.Point, error) {
	p, err := g.Primary.Geocode(ctx, addr)
	if err != nil {
		return g.Fallback.Geocode(ctx, addr)
	}
	return p, nil
}

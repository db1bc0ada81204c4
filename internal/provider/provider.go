package provider

import (
	"context"

	"github.com/UnknownOlympus/asclepius/internal/models"
)

// Provider is an interface that defines the mapping capabilities the place finder relies on.
// Geocode resolves an address to the coordinates of the first candidate returned by the API.
// NearbySearch returns the first page of places of the given type around a point.
type Provider interface {
	Geocode(ctx context.Context, address string) (*models.Coordinates, error)
	NearbySearch(
		ctx context.Context,
		center models.Coordinates,
		radiusMeters uint,
		placeType string,
	) ([]models.Place, error)
}

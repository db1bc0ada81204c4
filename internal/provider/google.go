package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/asclepius/internal/metrics"
	"github.com/UnknownOlympus/asclepius/internal/models"
	"googlemaps.github.io/maps"
)

// Operation labels used for provider request metrics.
const (
	opGeocode      = "geocode"
	opNearbySearch = "nearby_search"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Maps geocoding and places services.
type GoogleProvider struct {
	client  GoogleAPIClient  // client is the Google Maps API client
	log     *slog.Logger     // log is the logger for logging operations
	metrics *metrics.Metrics // metrics is optional, nil disables instrumentation
}

// GoogleAPIClient is the subset of *maps.Client used by the provider.
type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
	NearbySearch(ctx context.Context, r *maps.NearbySearchRequest) (maps.PlacesSearchResponse, error)
}

// ErrEmptyResponse is returned when the Google Maps API responds with an empty result.
var ErrEmptyResponse = errors.New("get empty response from Google Maps API")

// NewGoogleProvider initializes a new GoogleProvider with the given client and logger.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// WithMetrics attaches request duration and error metrics to the provider.
func (gp *GoogleProvider) WithMetrics(m *metrics.Metrics) *GoogleProvider {
	gp.metrics = m
	return gp
}

// Geocode takes a context and an address string as input, and returns the geographical coordinates
// (longitude and latitude) of the first candidate using the Google Maps Geocoding API.
// If the response has no candidates, ErrEmptyResponse is returned.
func (gp *GoogleProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "address", address)

	req := maps.GeocodingRequest{Address: address}
	start := time.Now()
	geocodeResponse, err := gp.client.Geocode(ctx, &req)
	gp.observe(opGeocode, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}

	if len(geocodeResponse) == 0 {
		return nil, ErrEmptyResponse
	}
	coords := geocodeResponse[0].Geometry.Location

	return &models.Coordinates{Longitude: coords.Lng, Latitude: coords.Lat}, nil
}

// NearbySearch queries the Places Nearby Search API around center. Only the first
// page is read; NextPageToken is ignored.
func (gp *GoogleProvider) NearbySearch(
	ctx context.Context,
	center models.Coordinates,
	radiusMeters uint,
	placeType string,
) ([]models.Place, error) {
	gp.log.DebugContext(ctx, "Searching nearby places using Google Maps",
		"lat", center.Latitude, "lng", center.Longitude, "radius", radiusMeters, "type", placeType)

	req := maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: center.Latitude, Lng: center.Longitude},
		Radius:   radiusMeters,
		Type:     maps.PlaceType(placeType),
	}
	start := time.Now()
	resp, err := gp.client.NearbySearch(ctx, &req)
	gp.observe(opNearbySearch, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to search nearby places: %w", err)
	}

	places := make([]models.Place, 0, len(resp.Results))
	for _, result := range resp.Results {
		places = append(places, models.Place{Name: result.Name, Vicinity: result.Vicinity})
	}

	gp.log.DebugContext(ctx, "Nearby search finished", "results", len(places))

	return places, nil
}

func (gp *GoogleProvider) observe(operation string, start time.Time, err error) {
	if gp.metrics == nil {
		return
	}
	gp.metrics.RequestSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		gp.metrics.APIErrors.Inc()
	}
}

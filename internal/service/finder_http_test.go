package service_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/UnknownOlympus/asclepius/internal/provider"
	"github.com/UnknownOlympus/asclepius/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMapsServer fakes the Geocoding and Places endpoints with canned bodies.
func newMapsServer(t *testing.T, geocodeBody, nearbyBody string, nearbyCalls *int) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/geocode/json"):
			_, _ = w.Write([]byte(geocodeBody))
		case strings.HasSuffix(r.URL.Path, "/nearbysearch/json"):
			*nearbyCalls++
			_, _ = w.Write([]byte(nearbyBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func newFinder(t *testing.T, baseURL string) *service.PlaceFinder {
	t.Helper()

	gp, err := provider.NewProvider(provider.ProviderConfig{
		APIKey:  "test-api-key",
		BaseURL: baseURL,
		Logger:  slog.Default(),
	})
	require.NoError(t, err)

	return service.NewPlaceFinder(slog.Default(), gp, nil)
}

func TestPlaceFinder_GoogleMapsHTTP(t *testing.T) {
	const geocodeOK = `{"status":"OK","results":[{"geometry":{"location":{"lat":37.422,"lng":-122.084}}}]}`

	t.Run("two pharmacies", func(t *testing.T) {
		calls := 0
		server := newMapsServer(t, geocodeOK, `{"status":"OK","results":[
			{"name":"CVS","vicinity":"500 Castro St"},
			{"name":"Walgreens","vicinity":"1 Main St"}
		]}`, &calls)

		result := newFinder(t, server.URL).FindNearbyPharmacies(t.Context(), sampleAddress)

		assert.Equal(t, []string{"CVS at 500 Castro St", "Walgreens at 1 Main St"}, result)
		assert.Equal(t, 1, calls)
	})

	t.Run("zero geocoding candidates", func(t *testing.T) {
		calls := 0
		server := newMapsServer(t, `{"status":"ZERO_RESULTS","results":[]}`, `{}`, &calls)

		result := newFinder(t, server.URL).FindNearbyPharmacies(t.Context(), "qwertyuiop")

		assert.Equal(t, []string{"Could not find the location for the given address."}, result)
		assert.Zero(t, calls)
	})

	t.Run("zero places", func(t *testing.T) {
		calls := 0
		server := newMapsServer(t, geocodeOK, `{"status":"ZERO_RESULTS","results":[]}`, &calls)

		result := newFinder(t, server.URL).FindNearbyPharmacies(t.Context(), sampleAddress)

		assert.Equal(t, []string{"No pharmacies found nearby."}, result)
	})

	t.Run("provider denies the request", func(t *testing.T) {
		calls := 0
		server := newMapsServer(t,
			`{"status":"REQUEST_DENIED","error_message":"The provided API key is invalid.","results":[]}`,
			`{}`, &calls)

		result := newFinder(t, server.URL).FindNearbyPharmacies(t.Context(), sampleAddress)

		require.Len(t, result, 1)
		assert.True(t, strings.HasPrefix(result[0], "An error occurred: "))
		assert.Contains(t, result[0], "REQUEST_DENIED")
		assert.Zero(t, calls)
	})

	t.Run("malformed nearby response", func(t *testing.T) {
		calls := 0
		server := newMapsServer(t, geocodeOK, `not json`, &calls)

		result := newFinder(t, server.URL).FindNearbyPharmacies(t.Context(), sampleAddress)

		require.Len(t, result, 1)
		assert.True(t, strings.HasPrefix(result[0], service.MsgFaultPrefix))
	})
}

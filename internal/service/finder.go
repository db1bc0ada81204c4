package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/asclepius/internal/metrics"
	"github.com/UnknownOlympus/asclepius/internal/provider"
)

// Fixed search parameters of the pharmacy lookup.
const (
	SearchRadiusMeters uint = 5000
	SearchPlaceType         = "pharmacy"
)

// PlaceFinder resolves an address to nearby pharmacies.
// A nil provider means the Maps client could not be built at start up;
// every lookup then short-circuits without touching the network.
type PlaceFinder struct {
	log      *slog.Logger      // Logger for logging lookups
	provider provider.Provider // Maps provider, nil when the client failed to initialize
	metrics  *metrics.Metrics  // Metrics for lookup outcomes, may be nil
}

// NewPlaceFinder creates a new instance of PlaceFinder.
// Pass a nil provider when the Maps client failed to initialize.
func NewPlaceFinder(log *slog.Logger, p provider.Provider, m *metrics.Metrics) *PlaceFinder {
	return &PlaceFinder{log: log, provider: p, metrics: m}
}

// Initialized reports whether the Maps client was available at construction time.
func (pf *PlaceFinder) Initialized() bool {
	return pf.provider != nil
}

// FindNearbyPharmacies returns display lines for the pharmacies around address.
// It never fails: every error is folded into a single descriptive line.
func (pf *PlaceFinder) FindNearbyPharmacies(ctx context.Context, address string) []string {
	outcome := pf.Lookup(ctx, address)

	if pf.metrics != nil {
		pf.metrics.Lookups.WithLabelValues(outcome.Kind.String()).Inc()
	}

	return outcome.Lines()
}

// Lookup runs geocoding and nearby search and reports the typed outcome.
func (pf *PlaceFinder) Lookup(ctx context.Context, address string) (outcome Outcome) {
	if pf.provider == nil {
		pf.log.WarnContext(ctx, "Lookup requested but Maps client is not initialized")
		return Outcome{Kind: OutcomeClientUnavailable}
	}

	defer func() {
		if r := recover(); r != nil {
			pf.log.ErrorContext(ctx, "Lookup panicked", "address", address, "panic", r)
			outcome = Outcome{Kind: OutcomeProviderFault, Err: fmt.Errorf("%v", r)}
		}
	}()

	coords, err := pf.provider.Geocode(ctx, address)
	if err != nil {
		if errors.Is(err, provider.ErrEmptyResponse) {
			pf.log.InfoContext(ctx, "Address could not be geocoded", "address", address)
			return Outcome{Kind: OutcomeLocationNotFound}
		}
		pf.log.ErrorContext(ctx, "Failed to geocode", "address", address, "error", err)
		return Outcome{Kind: OutcomeProviderFault, Err: err}
	}

	places, err := pf.provider.NearbySearch(ctx, *coords, SearchRadiusMeters, SearchPlaceType)
	if err != nil {
		pf.log.ErrorContext(ctx, "Failed to search nearby pharmacies", "address", address, "error", err)
		return Outcome{Kind: OutcomeProviderFault, Err: err}
	}

	if len(places) == 0 {
		pf.log.InfoContext(ctx, "No pharmacies found", "address", address)
		return Outcome{Kind: OutcomeNoResults}
	}

	pf.log.DebugContext(ctx, "Pharmacies found", "address", address, "count", len(places))

	return Outcome{Kind: OutcomeSuccess, Places: places}
}

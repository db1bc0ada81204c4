package provider

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/asclepius/internal/metrics"
	"googlemaps.github.io/maps"
)

// ErrMissingAPIKey is returned when no Google Maps API key is configured.
var ErrMissingAPIKey = errors.New("API key is required for Google Maps provider")

// ProviderConfig holds configuration for creating the Google Maps provider.
type ProviderConfig struct {
	APIKey  string           // API key for the Google Maps platform
	BaseURL string           // Optional override of the Maps API host
	Logger  *slog.Logger     // Logger for the provider
	Metrics *metrics.Metrics // Optional provider metrics
}

// NewProvider creates the Google Maps provider from the configuration.
// It is meant to be called once at process start; the returned provider is safe
// for concurrent use and is never rebuilt.
func NewProvider(config ProviderConfig) (*GoogleProvider, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(config.APIKey),
	}

	if config.BaseURL != "" {
		clientOpts = append(clientOpts, maps.WithBaseURL(config.BaseURL))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, config.Logger).WithMetrics(config.Metrics), nil
}

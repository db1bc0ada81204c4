package service

import (
	"fmt"

	"github.com/UnknownOlympus/asclepius/internal/models"
)

// Messages returned to the tool caller for the non-success outcomes.
const (
	MsgClientNotInitialized = "Google Maps client is not initialized. Check API key."
	MsgLocationNotFound     = "Could not find the location for the given address."
	MsgNoResultsNearby      = "No pharmacies found nearby."
	MsgFaultPrefix          = "An error occurred: "
)

// OutcomeKind tags the terminal state of a lookup.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeLocationNotFound
	OutcomeNoResults
	OutcomeClientUnavailable
	OutcomeProviderFault
)

// String returns the label used for logs and metrics.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeLocationNotFound:
		return "location_not_found"
	case OutcomeNoResults:
		return "no_results"
	case OutcomeClientUnavailable:
		return "client_unavailable"
	case OutcomeProviderFault:
		return "provider_fault"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Outcome is the typed result of a lookup. Places is set only for OutcomeSuccess,
// Err only for OutcomeProviderFault.
type Outcome struct {
	Kind   OutcomeKind
	Places []models.Place
	Err    error
}

// Lines renders the outcome into the string list handed back to the tool caller.
// The result always has at least one element.
func (o Outcome) Lines() []string {
	switch o.Kind {
	case OutcomeSuccess:
		if len(o.Places) == 0 {
			return []string{MsgNoResultsNearby}
		}
		lines := make([]string, 0, len(o.Places))
		for _, place := range o.Places {
			lines = append(lines, FormatPlace(place))
		}
		return lines
	case OutcomeLocationNotFound:
		return []string{MsgLocationNotFound}
	case OutcomeNoResults:
		return []string{MsgNoResultsNearby}
	case OutcomeClientUnavailable:
		return []string{MsgClientNotInitialized}
	default:
		detail := "unknown error"
		if o.Err != nil {
			detail = o.Err.Error()
		}
		return []string{MsgFaultPrefix + detail}
	}
}

// FormatPlace renders a single place as "<name> at <vicinity>".
// A missing vicinity is passed through as an empty string.
func FormatPlace(place models.Place) string {
	return place.Name + " at " + place.Vicinity
}

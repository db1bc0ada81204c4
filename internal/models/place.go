package models

// Place is a single entry of a nearby search response.
// Only the fields needed to render a result line are kept.
type Place struct {
	Name     string // Name is the display name of the place.
	Vicinity string // Vicinity is a short human-readable address, may be empty.
}

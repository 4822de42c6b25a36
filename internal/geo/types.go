// internal/geo/types.go

// Package geo resolves location entity text to coordinates through an
// external gazetteer, with per-term caching and conflict-zone tagging.
package geo

// Location is one resolved place.
type Location struct {
	Name         string  `json:"name"`
	Country      string  `json:"country"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Coordinates  string  `json:"coordinates"`
	Confidence   float64 `json:"confidence"`
	ConflictZone bool    `json:"conflictZone"`
}

// ResolutionResult is the outcome of resolving one article's locations.
type ResolutionResult struct {
	Primary           *Location  `json:"primary,omitempty"`
	All               []Location `json:"all"`
	OverallConfidence float64    `json:"overallConfidence"`
	ResolutionTimeMs  int64      `json:"resolutionTimeMs"`
}

// EmptyResolutionResult is returned when no location resolves.
func EmptyResolutionResult() *ResolutionResult {
	return &ResolutionResult{All: []Location{}}
}

// HasResults reports whether anything resolved.
func (r *ResolutionResult) HasResults() bool {
	return r.Primary != nil || len(r.All) > 0
}

// LocationNames returns the resolved place names in order.
func (r *ResolutionResult) LocationNames() []string {
	names := make([]string, 0, len(r.All))
	for _, loc := range r.All {
		names = append(names, loc.Name)
	}
	return names
}

// ConflictZones returns the resolved locations tagged as conflict zones.
func (r *ResolutionResult) ConflictZones() []Location {
	out := make([]Location, 0, len(r.All))
	for _, loc := range r.All {
		if loc.ConflictZone {
			out = append(out, loc)
		}
	}
	return out
}

// PrimaryCoordinates returns the primary location's coordinates, empty when
// there is no primary.
func (r *ResolutionResult) PrimaryCoordinates() string {
	if r.Primary == nil {
		return ""
	}
	return r.Primary.Coordinates
}

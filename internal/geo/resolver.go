// internal/geo/resolver.go
package geo

import (
	"context"
	"time"

	"conflictradar-processing/internal/common/cache"
	"conflictradar-processing/internal/common/logger"
	"conflictradar-processing/internal/common/metrics"
	"conflictradar-processing/internal/nlp"
)

// maxLookups bounds external queries per article to respect provider rate
// limits.
const defaultMaxLookups = 5

// Resolver resolves an article's location entities through a cached
// gazetteer.
type Resolver struct {
	gazetteer  Gazetteer
	cache      *cache.Cache
	maxLookups int
	logger     logger.Logger
}

// cachedLocation wraps a lookup outcome so misses are cached alongside hits.
type cachedLocation struct {
	Found    bool     `json:"found"`
	Location Location `json:"location"`
}

func NewResolver(gazetteer Gazetteer, geoCache *cache.Cache, maxLookups int, log logger.Logger) *Resolver {
	if maxLookups <= 0 {
		maxLookups = defaultMaxLookups
	}
	return &Resolver{
		gazetteer:  gazetteer,
		cache:      geoCache,
		maxLookups: maxLookups,
		logger:     log,
	}
}

// Resolve looks up the article's location entities. Individual failures skip
// that location only; a fully failed batch yields an empty result.
func (r *Resolver) Resolve(ctx context.Context, locations []nlp.ExtractedEntity) *ResolutionResult {
	if len(locations) == 0 {
		return EmptyResolutionResult()
	}

	start := time.Now()

	candidates := locations
	if len(candidates) > r.maxLookups {
		candidates = candidates[:r.maxLookups]
	}

	all := make([]Location, 0, len(candidates))
	for _, entity := range candidates {
		loc, ok := r.resolveOne(ctx, entity.Text)
		if ok {
			all = append(all, loc)
		}
	}

	result := &ResolutionResult{
		All:               all,
		OverallConfidence: overallConfidence(all),
		ResolutionTimeMs:  time.Since(start).Milliseconds(),
	}

	if primary := primaryEntity(locations); primary != nil {
		if loc, ok := r.resolveOne(ctx, primary.Text); ok {
			result.Primary = &loc
		}
	}

	return result
}

// ResolveOne resolves a single place name through the cache.
func (r *Resolver) ResolveOne(ctx context.Context, name string) (*Location, error) {
	var cached cachedLocation
	err := r.cache.GetOrCompute(ctx, name, &cached, func(ctx context.Context) (interface{}, error) {
		loc, err := r.gazetteer.Lookup(ctx, name)
		if err != nil {
			metrics.GeoLookups.WithLabelValues("error").Inc()
			return nil, err
		}
		if loc == nil {
			metrics.GeoLookups.WithLabelValues("miss").Inc()
			return cachedLocation{}, nil
		}
		metrics.GeoLookups.WithLabelValues("hit").Inc()
		return cachedLocation{Found: true, Location: *loc}, nil
	})
	if err != nil {
		return nil, err
	}
	if !cached.Found {
		return nil, nil
	}
	return &cached.Location, nil
}

func (r *Resolver) resolveOne(ctx context.Context, name string) (Location, bool) {
	loc, err := r.ResolveOne(ctx, name)
	if err != nil {
		r.logger.WithError(err).Warn("Location lookup failed, skipping", map[string]interface{}{
			"location": name,
		})
		return Location{}, false
	}
	if loc == nil {
		return Location{}, false
	}
	return *loc, true
}

// primaryEntity picks the first conflict-relevant location, else the highest
// confidence one.
func primaryEntity(locations []nlp.ExtractedEntity) *nlp.ExtractedEntity {
	if len(locations) == 0 {
		return nil
	}

	for i := range locations {
		if locations[i].ConflictRelevant {
			return &locations[i]
		}
	}

	best := &locations[0]
	for i := range locations[1:] {
		if locations[i+1].Confidence > best.Confidence {
			best = &locations[i+1]
		}
	}
	return best
}

// overallConfidence is the mean location confidence, boosted by 0.1 (capped
// at 1.0) when a conflict zone resolved.
func overallConfidence(locations []Location) float64 {
	if len(locations) == 0 {
		return 0.0
	}

	sum := 0.0
	hasConflictZone := false
	for _, loc := range locations {
		sum += loc.Confidence
		if loc.ConflictZone {
			hasConflictZone = true
		}
	}

	confidence := sum / float64(len(locations))
	if hasConflictZone {
		confidence += 0.1
		if confidence > 1.0 {
			confidence = 1.0
		}
	}
	return confidence
}

// Healthy probes the gazetteer by resolving a well-known place.
func (r *Resolver) Healthy(ctx context.Context) bool {
	loc, err := r.ResolveOne(ctx, "London")
	return err == nil && loc != nil
}

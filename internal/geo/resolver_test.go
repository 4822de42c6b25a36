// internal/geo/resolver_test.go
package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conflictradar-processing/internal/common/cache"
	"conflictradar-processing/internal/common/logger"
	"conflictradar-processing/internal/nlp"
)

func newTestResolver(t *testing.T, handler http.HandlerFunc) (*Resolver, *httptest.Server) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := logger.NewNoOpLogger()
	gazetteer := NewGeoNamesClient(server.URL, "demo", 2*time.Second, log)
	geoCache := cache.New(client, "geo", 7*24*time.Hour, log)

	return NewResolver(gazetteer, geoCache, 5, log), server
}

func geonamesHandler(calls *int32) http.HandlerFunc {
	responses := map[string]string{
		"Ukraine": `{"geonames":[{"name":"Ukraine","countryName":"Ukraine","lat":"49.0","lng":"32.0","population":41000000}]}`,
		"Geneva":  `{"geonames":[{"name":"Geneva","countryName":"Switzerland","lat":"46.20222","lng":"6.14569","population":183981}]}`,
		"London":  `{"geonames":[{"name":"London","countryName":"United Kingdom","lat":"51.50853","lng":"-0.12574","population":8961989}]}`,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if body, ok := responses[r.URL.Query().Get("q")]; ok {
			fmt.Fprint(w, body)
			return
		}
		fmt.Fprint(w, `{"geonames":[]}`)
	}
}

func TestResolvePrefersConflictRelevantPrimary(t *testing.T) {
	var calls int32
	resolver, _ := newTestResolver(t, geonamesHandler(&calls))

	locations := []nlp.ExtractedEntity{
		{Text: "Geneva", Type: nlp.TypeLocation, Confidence: 0.95},
		{Text: "Ukraine", Type: nlp.TypeLocation, Confidence: 0.9, ConflictRelevant: true},
	}

	result := resolver.Resolve(context.Background(), locations)

	require.NotNil(t, result.Primary)
	assert.Equal(t, "Ukraine", result.Primary.Name)
	assert.True(t, result.Primary.ConflictZone)
	assert.Equal(t, []string{"Geneva", "Ukraine"}, result.LocationNames())
	// mean of 0.95 and 0.95 plus the conflict-zone boost, capped
	assert.Equal(t, 1.0, result.OverallConfidence)
}

func TestResolveHighestConfidencePrimaryWithoutConflictZones(t *testing.T) {
	var calls int32
	resolver, _ := newTestResolver(t, geonamesHandler(&calls))

	locations := []nlp.ExtractedEntity{
		{Text: "London", Type: nlp.TypeLocation, Confidence: 0.7},
		{Text: "Geneva", Type: nlp.TypeLocation, Confidence: 0.9},
	}

	result := resolver.Resolve(context.Background(), locations)

	require.NotNil(t, result.Primary)
	assert.Equal(t, "Geneva", result.Primary.Name)
	assert.Empty(t, result.ConflictZones())
}

func TestResolveCachesLookups(t *testing.T) {
	var calls int32
	resolver, _ := newTestResolver(t, geonamesHandler(&calls))

	locations := []nlp.ExtractedEntity{
		{Text: "Ukraine", Type: nlp.TypeLocation, Confidence: 0.9, ConflictRelevant: true},
	}

	first := resolver.Resolve(context.Background(), locations)
	callsAfterFirst := atomic.LoadInt32(&calls)
	second := resolver.Resolve(context.Background(), locations)

	require.NotNil(t, first.Primary)
	require.NotNil(t, second.Primary)
	assert.Equal(t, first.Primary.Coordinates, second.Primary.Coordinates)
	assert.Equal(t, callsAfterFirst, atomic.LoadInt32(&calls), "second resolve must be served from cache")
}

func TestResolveBoundsLookupCount(t *testing.T) {
	var calls int32
	resolver, _ := newTestResolver(t, geonamesHandler(&calls))

	locations := make([]nlp.ExtractedEntity, 0, 8)
	for i := 0; i < 8; i++ {
		locations = append(locations, nlp.ExtractedEntity{
			Text: fmt.Sprintf("Unknown Place %d", i), Type: nlp.TypeLocation, Confidence: 0.5,
		})
	}

	resolver.Resolve(context.Background(), locations)

	// 5 candidates plus one primary lookup
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(6))
}

func TestResolveAllRateLimited(t *testing.T) {
	var calls int32
	resolver, _ := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	locations := []nlp.ExtractedEntity{
		{Text: "Ukraine", Type: nlp.TypeLocation, Confidence: 0.9, ConflictRelevant: true},
		{Text: "Geneva", Type: nlp.TypeLocation, Confidence: 0.8},
	}

	result := resolver.Resolve(context.Background(), locations)

	assert.Nil(t, result.Primary)
	assert.Empty(t, result.All)
	assert.Equal(t, 0.0, result.OverallConfidence)
	assert.False(t, result.HasResults())
}

func TestResolveEmptyInput(t *testing.T) {
	var calls int32
	resolver, _ := newTestResolver(t, geonamesHandler(&calls))

	result := resolver.Resolve(context.Background(), nil)

	assert.False(t, result.HasResults())
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestResolverHealthy(t *testing.T) {
	var calls int32
	resolver, _ := newTestResolver(t, geonamesHandler(&calls))

	assert.True(t, resolver.Healthy(context.Background()))

	failing, _ := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	assert.False(t, failing.Healthy(context.Background()))
}

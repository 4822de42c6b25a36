// internal/geo/gazetteer_test.go
package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conflictradar-processing/internal/common/errors"
	"conflictradar-processing/internal/common/logger"
)

func TestGeoNamesLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/searchJSON", r.URL.Path)
		assert.Equal(t, "Kyiv", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("maxRows"))
		assert.Equal(t, "P", r.URL.Query().Get("featureClass"))
		assert.Equal(t, "demo", r.URL.Query().Get("username"))

		// GeoNames serves lat/lng as strings.
		fmt.Fprint(w, `{"geonames":[{"name":"Kyiv","countryName":"Ukraine","lat":"50.45466","lng":"30.5238","population":2797553}]}`)
	}))
	defer server.Close()

	client := NewGeoNamesClient(server.URL, "demo", 2*time.Second, logger.NewNoOpLogger())

	loc, err := client.Lookup(context.Background(), "Kyiv")

	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, "Kyiv", loc.Name)
	assert.Equal(t, "Ukraine", loc.Country)
	assert.InDelta(t, 50.45466, loc.Latitude, 0.0001)
	assert.InDelta(t, 30.5238, loc.Longitude, 0.0001)
	assert.Equal(t, "50.454660,30.523800", loc.Coordinates)
	assert.Equal(t, 0.95, loc.Confidence)
	assert.True(t, loc.ConflictZone)
}

func TestGeoNamesLookupNumericCoordinates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"geonames":[{"name":"London","countryName":"United Kingdom","lat":51.50853,"lng":-0.12574,"population":8961989}]}`)
	}))
	defer server.Close()

	client := NewGeoNamesClient(server.URL, "demo", 2*time.Second, logger.NewNoOpLogger())

	loc, err := client.Lookup(context.Background(), "London")

	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.InDelta(t, 51.50853, loc.Latitude, 0.0001)
	assert.False(t, loc.ConflictZone)
}

func TestGeoNamesLookupNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"geonames":[]}`)
	}))
	defer server.Close()

	client := NewGeoNamesClient(server.URL, "demo", 2*time.Second, logger.NewNoOpLogger())

	loc, err := client.Lookup(context.Background(), "Nowhereville")

	assert.NoError(t, err)
	assert.Nil(t, loc)
}

func TestGeoNamesLookupRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewGeoNamesClient(server.URL, "demo", 2*time.Second, logger.NewNoOpLogger())

	loc, err := client.Lookup(context.Background(), "Kyiv")

	assert.Nil(t, loc)
	require.Error(t, err)
	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeGazetteerRateLimited, stdErr.Code)
}

func TestGeoNamesLookupBlankTerm(t *testing.T) {
	client := NewGeoNamesClient("http://127.0.0.1:1", "demo", time.Second, logger.NewNoOpLogger())

	loc, err := client.Lookup(context.Background(), "   ")

	assert.NoError(t, err)
	assert.Nil(t, loc)
}

func TestMatchConfidence(t *testing.T) {
	tests := []struct {
		name       string
		search     string
		result     string
		population int64
		expected   float64
	}{
		{"exact match", "Kyiv", "Kyiv", 100, 0.95},
		{"exact match case-insensitive", "kyiv", "Kyiv", 100, 0.95},
		{"substring match", "New York", "New York City", 0, 0.8},
		{"reverse substring match", "New York City Area", "New York City", 0, 0.8},
		{"ambiguous small place", "Springfield", "Springfld", 50_000, 0.705},
		{"ambiguous metropolis capped", "Springfield", "Springfld", 20_000_000, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, matchConfidence(tt.search, tt.result, tt.population), 0.0001)
		})
	}
}

func TestIsConflictZone(t *testing.T) {
	assert.True(t, isConflictZone("Kyiv", "Ukraine"))
	assert.True(t, isConflictZone("Mariupol", "Unknown"))
	assert.True(t, isConflictZone("Gaza", ""))
	assert.False(t, isConflictZone("Geneva", "Switzerland"))
}

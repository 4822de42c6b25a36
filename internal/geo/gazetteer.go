// internal/geo/gazetteer.go
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	stdhttp "net/http"
	"net/url"
	"strings"
	"time"

	"conflictradar-processing/internal/common/errors"
	"conflictradar-processing/internal/common/http"
	"conflictradar-processing/internal/common/logger"
)

// Gazetteer turns a place name into at most one best match.
type Gazetteer interface {
	Lookup(ctx context.Context, name string) (*Location, error)
}

// GeoNamesClient queries the GeoNames searchJSON endpoint.
type GeoNamesClient struct {
	baseURL  string
	username string
	client   *http.Client
	logger   logger.Logger
}

func NewGeoNamesClient(baseURL, username string, timeout time.Duration, log logger.Logger) *GeoNamesClient {
	return &GeoNamesClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		client:   http.NewClient(timeout),
		logger:   log,
	}
}

type geoNamesResponse struct {
	Geonames []geoName `json:"geonames"`
}

// GeoNames serves lat/lng as strings in some deployments and numbers in
// others; json.Number accepts both.
type geoName struct {
	Name        string      `json:"name"`
	CountryName string      `json:"countryName"`
	Lat         json.Number `json:"lat"`
	Lng         json.Number `json:"lng"`
	Population  int64       `json:"population"`
}

// Lookup queries for the best populated-place match. A miss returns
// (nil, nil); rate limiting and transport failures return typed errors.
func (c *GeoNamesClient) Lookup(ctx context.Context, name string) (*Location, error) {
	term := strings.TrimSpace(name)
	if term == "" {
		return nil, nil
	}

	query := url.Values{}
	query.Set("q", term)
	query.Set("maxRows", "1")
	query.Set("featureClass", "P")
	query.Set("username", c.username)

	req, err := stdhttp.NewRequest(stdhttp.MethodGet, c.baseURL+"/searchJSON?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.NewGazetteerQueryFailedError(term, err)
	}

	resp, err := c.client.DoWithContext(ctx, req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewGazetteerTimeoutError(term)
		}
		return nil, errors.NewGazetteerQueryFailedError(term, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == stdhttp.StatusTooManyRequests {
		return nil, errors.NewGazetteerRateLimitedError(term)
	}
	if resp.StatusCode != stdhttp.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.NewGazetteerQueryFailedError(term,
			fmt.Errorf("gazetteer returned %d: %s", resp.StatusCode, string(payload)))
	}

	var parsed geoNamesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.NewGazetteerQueryFailedError(term, err)
	}

	if len(parsed.Geonames) == 0 {
		c.logger.Debug("No gazetteer results", map[string]interface{}{"location": term})
		return nil, nil
	}

	match := parsed.Geonames[0]
	lat, err := match.Lat.Float64()
	if err != nil {
		return nil, errors.NewGazetteerQueryFailedError(term, err)
	}
	lng, err := match.Lng.Float64()
	if err != nil {
		return nil, errors.NewGazetteerQueryFailedError(term, err)
	}

	return &Location{
		Name:         match.Name,
		Country:      match.CountryName,
		Latitude:     lat,
		Longitude:    lng,
		Coordinates:  formatCoordinates(lat, lng),
		Confidence:   matchConfidence(term, match.Name, match.Population),
		ConflictZone: isConflictZone(match.Name, match.CountryName),
	}, nil
}

func formatCoordinates(lat, lng float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lng)
}

// matchConfidence scores how well a gazetteer hit matches the search term.
// Larger places score slightly higher on ambiguous matches.
func matchConfidence(searchTerm, resultName string, population int64) float64 {
	search := strings.ToLower(strings.TrimSpace(searchTerm))
	result := strings.ToLower(resultName)

	if search == result {
		return 0.95
	}
	if strings.Contains(result, search) || strings.Contains(search, result) {
		return 0.8
	}

	populationBoost := float64(population) / 1_000_000.0 * 0.1
	if populationBoost > 0.1 {
		populationBoost = 0.1
	}

	confidence := 0.7 + populationBoost
	if confidence > 0.9 {
		confidence = 0.9
	}
	return confidence
}

var (
	conflictCountries = []string{
		"ukraine", "syria", "afghanistan", "iraq",
		"yemen", "somalia", "sudan", "myanmar",
	}

	conflictCities = []string{
		"gaza", "donetsk", "mariupol", "kharkiv",
		"aleppo", "kabul", "baghdad",
	}
)

func isConflictZone(cityName, countryName string) bool {
	city := strings.ToLower(cityName)
	country := strings.ToLower(countryName)

	for _, c := range conflictCountries {
		if strings.Contains(country, c) {
			return true
		}
	}
	for _, c := range conflictCities {
		if strings.Contains(city, c) {
			return true
		}
	}
	return false
}

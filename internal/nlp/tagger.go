// internal/nlp/tagger.go
package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	stdhttp "net/http"
	"strings"
	"time"

	"conflictradar-processing/internal/common/errors"
	"conflictradar-processing/internal/common/http"
	"conflictradar-processing/internal/common/logger"
)

// Tagger produces raw token-level entity tags for a piece of text.
type Tagger interface {
	Tag(ctx context.Context, text string) ([]RawEntity, error)
	Ready(ctx context.Context) bool
}

// HTTPTagger talks to the external NER tagging service.
type HTTPTagger struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

func NewHTTPTagger(baseURL string, timeout time.Duration, log logger.Logger) *HTTPTagger {
	return &HTTPTagger{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.NewClient(timeout),
		logger:  log,
	}
}

type tagRequest struct {
	Text string `json:"text"`
}

type tagResponse struct {
	Tokens []tagToken `json:"tokens"`
}

type tagToken struct {
	Text       string  `json:"text"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
}

// Tag posts the text to the tagger and maps its token labels onto entity
// types. Tokens labelled "O" are discarded.
func (t *HTTPTagger) Tag(ctx context.Context, text string) ([]RawEntity, error) {
	body, err := json.Marshal(tagRequest{Text: text})
	if err != nil {
		return nil, errors.NewTaggingFailedError(err)
	}

	req, err := stdhttp.NewRequest(stdhttp.MethodPost, t.baseURL+"/v1/tag", bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewTaggingFailedError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.DoWithContext(ctx, req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewTaggerTimeoutError()
		}
		return nil, errors.NewTaggerUnavailableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != stdhttp.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.NewTaggingFailedError(
			fmt.Errorf("tagger returned %d: %s", resp.StatusCode, string(payload)))
	}

	var parsed tagResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.NewTaggingFailedError(err)
	}

	raw := make([]RawEntity, 0, len(parsed.Tokens))
	for _, tok := range parsed.Tokens {
		entityType, ok := entityTypeForLabel(tok.Label)
		if !ok {
			continue
		}
		raw = append(raw, RawEntity{
			Text:       tok.Text,
			Type:       entityType,
			Confidence: tok.Confidence,
			Start:      tok.Start,
			End:        tok.End,
		})
	}
	return raw, nil
}

// Ready probes the tagger's readiness endpoint.
func (t *HTTPTagger) Ready(ctx context.Context) bool {
	req, err := stdhttp.NewRequest(stdhttp.MethodGet, t.baseURL+"/v1/ready", nil)
	if err != nil {
		return false
	}

	resp, err := t.client.DoWithContext(ctx, req)
	if err != nil {
		t.logger.WithError(err).Debug("Tagger readiness probe failed", nil)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == stdhttp.StatusOK
}

func entityTypeForLabel(label string) (EntityType, bool) {
	switch strings.ToUpper(label) {
	case "PERSON", "PER":
		return TypePerson, true
	case "ORGANIZATION", "ORG":
		return TypeOrganization, true
	case "LOCATION", "LOC", "GPE":
		return TypeLocation, true
	case "O", "":
		return "", false
	default:
		return TypeOther, true
	}
}

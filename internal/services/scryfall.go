package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cardforge/deck-builder/backend/internal/metrics"
	"github.com/cardforge/deck-builder/backend/internal/models"
)

const (
	scryfallBaseURL = "https://api.scryfall.com"
	scryfallTimeout = 10 * time.Second

	// The catalog asks clients to keep at least 100ms between requests.
	requestSpacing = 100 * time.Millisecond

	// Bulk collection lookups accept at most 75 identifiers per request.
	collectionChunkSize = 75

	maxRateLimitRetries  = 3
	rateLimitBackoffStep = 200 * time.Millisecond

	autocompleteCacheSize = 256
)

// ErrNotFound marks a 404 from the catalog. Callers translate it into an
// absent result; it is never a failure condition on its own.
var ErrNotFound = errors.New("card not found in catalog")

// ErrRateLimited marks a 429 that persisted past the retry budget. Single-name
// resolution treats it the same as ErrNotFound, since the catalog truly may
// not have the card.
var ErrRateLimited = errors.New("catalog rate limit persisted past retry budget")

// ScryfallService is the HTTP client for the card catalog. Every request
// passes through the shared throttle; 429 responses are retried with a
// stepped backoff before any error surfaces.
type ScryfallService struct {
	client      *http.Client
	baseURL     string
	throttle    *Throttle
	maxRetries  int
	backoffStep time.Duration
	suggestions *lru.Cache[string, []string]
}

// NewScryfallService creates a catalog client. An empty baseURL selects the
// public catalog endpoint.
func NewScryfallService(baseURL string) *ScryfallService {
	if baseURL == "" {
		baseURL = scryfallBaseURL
	}

	suggestions, err := lru.New[string, []string](autocompleteCacheSize)
	if err != nil {
		log.Printf("Failed to create autocomplete cache: %v", err)
	}

	return &ScryfallService{
		client: &http.Client{
			Timeout: scryfallTimeout,
		},
		baseURL:     baseURL,
		throttle:    NewThrottle(requestSpacing),
		maxRetries:  maxRateLimitRetries,
		backoffStep: rateLimitBackoffStep,
		suggestions: suggestions,
	}
}

type searchResponse struct {
	Data       []models.CardRecord `json:"data"`
	TotalCards int                 `json:"total_cards"`
	HasMore    bool                `json:"has_more"`
}

// SearchOptions mirror the catalog's search query parameters. Zero values
// are omitted from the request.
type SearchOptions struct {
	Order  string // edhrec, cmc, name, usd
	Dir    string // asc, desc
	Unique string // cards, prints
	Page   int
}

func (o SearchOptions) encode(query string) string {
	params := url.Values{}
	params.Set("q", query)
	if o.Order != "" {
		params.Set("order", o.Order)
	}
	if o.Dir != "" {
		params.Set("dir", o.Dir)
	}
	if o.Unique != "" {
		params.Set("unique", o.Unique)
	}
	if o.Page > 1 {
		params.Set("page", strconv.Itoa(o.Page))
	}
	return params.Encode()
}

// SearchCards fetches one page of search results.
func (s *ScryfallService) SearchCards(ctx context.Context, query string, opts SearchOptions) (*models.CardSearchResult, error) {
	var resp searchResponse
	if err := s.getJSON(ctx, "/cards/search?"+opts.encode(query), &resp); err != nil {
		return nil, err
	}

	return &models.CardSearchResult{
		Cards:      resp.Data,
		TotalCount: resp.TotalCards,
		HasMore:    resp.HasMore,
	}, nil
}

// SearchAllCards follows the has_more flag through every result page and
// returns the full card list for the query.
func (s *ScryfallService) SearchAllCards(ctx context.Context, query string, opts SearchOptions) ([]models.CardRecord, error) {
	var all []models.CardRecord

	opts.Page = 1
	for {
		page, err := s.SearchCards(ctx, query, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Cards...)
		if !page.HasMore {
			return all, nil
		}
		opts.Page++
	}
}

// NamedExact looks a card up by its exact name. Returns ErrNotFound when the
// catalog has no card of that name.
func (s *ScryfallService) NamedExact(ctx context.Context, name string) (*models.CardRecord, error) {
	var record models.CardRecord
	if err := s.getJSON(ctx, "/cards/named?exact="+url.QueryEscape(name), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// NamedFuzzy looks a card up by approximate name.
func (s *ScryfallService) NamedFuzzy(ctx context.Context, name string) (*models.CardRecord, error) {
	var record models.CardRecord
	if err := s.getJSON(ctx, "/cards/named?fuzzy="+url.QueryEscape(name), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// CollectionResult is one bulk lookup outcome. Found records carry canonical
// names; NotFound lists the identifiers the catalog did not recognize.
type CollectionResult struct {
	Found    []models.CardRecord
	NotFound []string
}

type collectionIdentifier struct {
	Name string `json:"name"`
}

type collectionRequest struct {
	Identifiers []collectionIdentifier `json:"identifiers"`
}

type collectionResponse struct {
	Data     []models.CardRecord    `json:"data"`
	NotFound []collectionIdentifier `json:"not_found"`
}

// Collection resolves up to 75 names in one bulk request.
func (s *ScryfallService) Collection(ctx context.Context, names []string) (*CollectionResult, error) {
	if len(names) > collectionChunkSize {
		return nil, fmt.Errorf("collection request exceeds %d identifiers: %d", collectionChunkSize, len(names))
	}

	req := collectionRequest{Identifiers: make([]collectionIdentifier, len(names))}
	for i, name := range names {
		req.Identifiers[i] = collectionIdentifier{Name: name}
	}

	var resp collectionResponse
	if err := s.postJSON(ctx, "/cards/collection", req, &resp); err != nil {
		return nil, err
	}

	result := &CollectionResult{Found: resp.Data}
	for _, id := range resp.NotFound {
		if id.Name != "" {
			result.NotFound = append(result.NotFound, id.Name)
		}
	}
	return result, nil
}

type autocompleteResponse struct {
	Data []string `json:"data"`
}

// Autocomplete returns name suggestions for a partial query. Results are kept
// in a small LRU so repeated keystroke prefixes skip the network.
func (s *ScryfallService) Autocomplete(ctx context.Context, partial string) ([]string, error) {
	key := strings.ToLower(strings.TrimSpace(partial))
	if s.suggestions != nil {
		if cached, ok := s.suggestions.Get(key); ok {
			return cached, nil
		}
	}

	var resp autocompleteResponse
	if err := s.getJSON(ctx, "/cards/autocomplete?q="+url.QueryEscape(partial), &resp); err != nil {
		return nil, err
	}

	if s.suggestions != nil {
		s.suggestions.Add(key, resp.Data)
	}
	return resp.Data, nil
}

func (s *ScryfallService) getJSON(ctx context.Context, endpoint string, out any) error {
	return s.doJSON(ctx, http.MethodGet, endpoint, nil, out)
}

func (s *ScryfallService) postJSON(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	return s.doJSON(ctx, http.MethodPost, endpoint, payload, out)
}

// doJSON issues one throttled catalog request. A 429 is retried on the spot
// with a backoff that steps up as the retry budget shrinks; the request never
// advances past a rate limit, which preserves per-chunk ordering for bulk
// callers.
func (s *ScryfallService) doJSON(ctx context.Context, method, endpoint string, payload []byte, out any) error {
	label := endpointLabel(endpoint)

	for attempt := 0; ; attempt++ {
		if err := s.throttle.Acquire(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := s.client.Do(req)
		if err != nil {
			metrics.CatalogRequestsTotal.WithLabelValues(label, "network_error").Inc()
			return fmt.Errorf("catalog request failed: %w", err)
		}
		metrics.CatalogRequestDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
		metrics.CatalogRequestsTotal.WithLabelValues(label, strconv.Itoa(resp.StatusCode)).Inc()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			if attempt >= s.maxRetries {
				return ErrRateLimited
			}
			metrics.CatalogRetriesTotal.Inc()
			wait := s.backoffStep * time.Duration(attempt+1)
			log.Printf("Catalog rate limited on %s, retrying in %v (%d retries left)", label, wait, s.maxRetries-attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue

		case resp.StatusCode != http.StatusOK:
			resp.Body.Close()
			return fmt.Errorf("catalog API returned status %d", resp.StatusCode)
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to decode catalog response: %w", err)
		}
		return nil
	}
}

// endpointLabel strips the query string so metrics stay low-cardinality.
func endpointLabel(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		return endpoint[:i]
	}
	return endpoint
}

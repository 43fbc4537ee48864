package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cardforge/deck-builder/backend/internal/metrics"
	"github.com/cardforge/deck-builder/backend/internal/models"
)

// Resolver turns a single card name into a canonical catalog record through a
// layered fallback chain: record cache, cheapest-printing search, exact-name
// lookup. Not-found is an absent result, never an error; only transport
// failures that survive the client's retry budget propagate.
type Resolver struct {
	scryfall *ScryfallService
	cache    *RecordCache
}

func NewResolver(scryfall *ScryfallService, cache *RecordCache) *Resolver {
	return &Resolver{
		scryfall: scryfall,
		cache:    cache,
	}
}

// Resolve returns the record for name, or (nil, nil) when the catalog has no
// such card.
func (r *Resolver) Resolve(ctx context.Context, name string) (*models.CardRecord, error) {
	if record, ok := r.cache.Get(name); ok {
		metrics.RecordCacheHits.Inc()
		return record, nil
	}
	metrics.RecordCacheMisses.Inc()

	record, err := r.ResolveCheapestPrinting(ctx, name)
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}

	// The printing search came up empty (404 or a rate limit that outlived
	// the retry budget); the exact-name endpoint is the last resort.
	metrics.ResolverFallbacksTotal.WithLabelValues("named").Inc()
	record, err = r.scryfall.NamedExact(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrRateLimited) {
			return nil, nil
		}
		return nil, err
	}

	r.cache.Put(name, record)
	return record, nil
}

// ResolveCheapestPrinting searches all non-digital printings of the exact
// name ordered by ascending USD price and picks the most useful result:
// the first printing with a direct USD price, else the first with any
// recognized price, else the first unconditionally. It always goes to the
// network and refreshes the cache, which is what the batch dispatcher's
// price-repair pass relies on. Returns (nil, nil) when the search finds
// nothing.
func (r *Resolver) ResolveCheapestPrinting(ctx context.Context, name string) (*models.CardRecord, error) {
	query := fmt.Sprintf(`!"%s" -is:digital`, escapeQueryName(name))
	result, err := r.scryfall.SearchCards(ctx, query, SearchOptions{
		Order:  "usd",
		Dir:    "asc",
		Unique: "prints",
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrRateLimited) {
			metrics.ResolverFallbacksTotal.WithLabelValues("search_miss").Inc()
			return nil, nil
		}
		return nil, err
	}
	if len(result.Cards) == 0 {
		return nil, nil
	}

	record := pickPreferredPrinting(result.Cards)
	r.cache.Put(name, record)
	return record, nil
}

func pickPreferredPrinting(cards []models.CardRecord) *models.CardRecord {
	for i := range cards {
		if cards[i].HasUSDPrice() {
			return &cards[i]
		}
	}
	for i := range cards {
		if cards[i].HasPrice() {
			return &cards[i]
		}
	}
	return &cards[0]
}

// escapeQueryName escapes double quotes so the name survives inside the
// catalog's quoted exact-match syntax.
func escapeQueryName(name string) string {
	return strings.ReplaceAll(name, `"`, `\"`)
}

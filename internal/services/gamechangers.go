package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"
)

const (
	gameChangerQuery = `format:commander is:gamechanger`
	gameChangerTTL   = 30 * time.Minute
)

// GameChangerSet caches the catalog's game-changer membership flag as a set
// of card names. The set is rebuilt wholesale when its TTL expires, never
// partially updated; readers see either the old set or the fully refreshed
// one.
type GameChangerSet struct {
	scryfall *ScryfallService

	mu        sync.Mutex
	names     map[string]string // folded name -> canonical name
	fetchedAt time.Time
	ttl       time.Duration
}

func NewGameChangerSet(scryfall *ScryfallService) *GameChangerSet {
	return &GameChangerSet{
		scryfall: scryfall,
		ttl:      gameChangerTTL,
	}
}

// Contains reports whether the named card is a game changer, refreshing the
// set first if it is stale or was never built.
func (g *GameChangerSet) Contains(ctx context.Context, name string) (bool, error) {
	names, err := g.snapshot(ctx)
	if err != nil {
		return false, err
	}
	_, ok := names[foldName(name)]
	return ok, nil
}

// Names returns the current membership as a sorted name list.
func (g *GameChangerSet) Names(ctx context.Context) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.refreshLocked(ctx); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(g.names))
	for _, name := range g.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Refresh forces a rebuild regardless of TTL. The background warmer uses it
// to re-fetch ahead of expiry so interactive callers rarely pay the fetch.
func (g *GameChangerSet) Refresh(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetchedAt = time.Time{}
	return g.refreshLocked(ctx)
}

func (g *GameChangerSet) snapshot(ctx context.Context) (map[string]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.refreshLocked(ctx); err != nil {
		return nil, err
	}
	return g.names, nil
}

// refreshLocked rebuilds the set when stale. The caller holds g.mu, so only
// one rebuild runs at a time and the swap below is atomic for readers.
func (g *GameChangerSet) refreshLocked(ctx context.Context) error {
	if g.names != nil && time.Since(g.fetchedAt) < g.ttl {
		return nil
	}

	cards, err := g.scryfall.SearchAllCards(ctx, gameChangerQuery, SearchOptions{Order: "name"})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			cards = nil
		} else {
			// A stale set beats no set; keep serving it until a refresh works.
			if g.names != nil {
				log.Printf("Game changers: refresh failed, serving stale set: %v", err)
				return nil
			}
			return err
		}
	}

	names := make(map[string]string, len(cards))
	for _, card := range cards {
		names[foldName(card.Name)] = card.Name
	}

	g.names = names
	g.fetchedAt = time.Now()
	log.Printf("Game changers: membership set rebuilt with %d cards", len(names))
	return nil
}

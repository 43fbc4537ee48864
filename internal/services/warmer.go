package services

import (
	"context"
	"log"
	"time"
)

// warmInterval sits just inside the game-changer TTL so interactive callers
// almost never pay for a rebuild themselves.
const warmInterval = 25 * time.Minute

// CatalogWarmer re-warms the time-boxed catalog caches in the background.
// It is purely opportunistic: the caches still refresh lazily on demand, so
// a failed warm pass costs nothing but the next caller's latency.
type CatalogWarmer struct {
	gameChangers *GameChangerSet
	multiCopy    *MultiCopySet
}

func NewCatalogWarmer(gameChangers *GameChangerSet, multiCopy *MultiCopySet) *CatalogWarmer {
	return &CatalogWarmer{
		gameChangers: gameChangers,
		multiCopy:    multiCopy,
	}
}

// Start runs the warm loop until ctx is cancelled. The multi-copy map is
// session-immutable, so it is built once up front; only the game-changer set
// is re-fetched on the ticker.
func (w *CatalogWarmer) Start(ctx context.Context) {
	log.Printf("Catalog warmer started: refreshing game changers every %v", warmInterval)

	if _, err := w.multiCopy.All(ctx); err != nil {
		log.Printf("Catalog warmer: initial multi-copy build failed: %v", err)
	}
	if err := w.gameChangers.Refresh(ctx); err != nil {
		log.Printf("Catalog warmer: initial game-changer fetch failed: %v", err)
	}

	ticker := time.NewTicker(warmInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Catalog warmer stopping...")
			return
		case <-ticker.C:
			if err := w.gameChangers.Refresh(ctx); err != nil {
				log.Printf("Catalog warmer: game-changer refresh failed: %v", err)
			}
		}
	}
}

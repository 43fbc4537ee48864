package services

import (
	"context"
	"log"
	"strings"

	"github.com/cardforge/deck-builder/backend/internal/metrics"
	"github.com/cardforge/deck-builder/backend/internal/models"
)

// ProgressFunc reports batch progress after each bulk chunk completes.
// fetched is monotonically increasing and the final call reports total.
type ProgressFunc func(fetched, total int)

// BatchResolver fans a large name list out into bulk collection chunks and
// repairs the gaps the bulk endpoint leaves behind: records without price
// data are re-resolved through the cheapest-printing search, and names the
// bulk lookup missed entirely get a last-resort individual resolution.
type BatchResolver struct {
	scryfall *ScryfallService
	resolver *Resolver
	cache    *RecordCache
}

func NewBatchResolver(scryfall *ScryfallService, resolver *Resolver, cache *RecordCache) *BatchResolver {
	return &BatchResolver{
		scryfall: scryfall,
		resolver: resolver,
		cache:    cache,
	}
}

// ResolveMany resolves names to catalog records. The result map contains only
// resolved names, keyed by the requested spelling; absence means not found,
// not failure. onProgress may be nil. Per-name failures are swallowed into
// omission; only a transport failure of a bulk chunk propagates, and the
// caller may retry the whole batch.
func (b *BatchResolver) ResolveMany(ctx context.Context, names []string, onProgress ProgressFunc) (map[string]*models.CardRecord, error) {
	unique := dedupeNames(names)
	result := make(map[string]*models.CardRecord, len(unique))

	// Cached names cost nothing; only the rest go to the network.
	var uncached []string
	for _, name := range unique {
		if record, ok := b.cache.Get(name); ok {
			metrics.RecordCacheHits.Inc()
			result[name] = record
		} else {
			metrics.RecordCacheMisses.Inc()
			uncached = append(uncached, name)
		}
	}

	total := len(unique)
	fetched := total - len(uncached)

	var missing []string
	for start := 0; start < len(uncached); start += collectionChunkSize {
		end := start + collectionChunkSize
		if end > len(uncached) {
			end = len(uncached)
		}
		chunk := uncached[start:end]

		chunkResult, err := b.scryfall.Collection(ctx, chunk)
		if err != nil {
			return nil, err
		}
		metrics.BatchChunksTotal.Inc()

		requested := foldedNameIndex(chunk)
		for i := range chunkResult.Found {
			record := &chunkResult.Found[i]
			key := record.Name
			if asked, ok := requested[foldName(record.Name)]; ok {
				key = asked
			}
			b.cache.Put(key, record)
			result[key] = record
		}
		for _, name := range chunkResult.NotFound {
			if asked, ok := requested[foldName(name)]; ok {
				name = asked
			}
			missing = append(missing, name)
		}

		fetched += len(chunk)
		if onProgress != nil {
			onProgress(fetched, total)
		}
	}

	b.repairPricelessRecords(ctx, result)
	b.resolveMissing(ctx, result, missing)

	return result, nil
}

// repairPricelessRecords re-resolves records the bulk endpoint returned with
// no recognized price field. A not-yet-released reprint can legitimately come
// back priceless while an older printing of the same card carries a price, so
// this is a heuristic repair, not a data-error path.
func (b *BatchResolver) repairPricelessRecords(ctx context.Context, result map[string]*models.CardRecord) {
	for name, record := range result {
		if record.HasPrice() {
			continue
		}

		metrics.BatchRepairsTotal.Inc()
		repaired, err := b.resolver.ResolveCheapestPrinting(ctx, record.Name)
		if err != nil {
			log.Printf("Batch: price repair for %q failed: %v", record.Name, err)
			continue
		}
		if repaired != nil && repaired.HasPrice() {
			b.cache.Put(name, repaired)
			result[name] = repaired
		}
	}
}

// resolveMissing gives names the bulk lookup reported as not found one
// individual pass through the full resolver chain before they are dropped.
func (b *BatchResolver) resolveMissing(ctx context.Context, result map[string]*models.CardRecord, missing []string) {
	for _, name := range missing {
		record, err := b.resolver.Resolve(ctx, name)
		if err != nil {
			log.Printf("Batch: individual resolution for %q failed: %v", name, err)
			continue
		}
		if record != nil {
			result[name] = record
		}
	}
}

func dedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[foldName(name)]; ok {
			continue
		}
		seen[foldName(name)] = struct{}{}
		unique = append(unique, name)
	}
	return unique
}

// foldedNameIndex maps case-folded names back to the spelling the caller
// asked with, so results stay keyed by the requested name even when the
// catalog canonicalizes it.
func foldedNameIndex(names []string) map[string]string {
	index := make(map[string]string, len(names))
	for _, name := range names {
		index[foldName(name)] = name
	}
	return index
}

func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

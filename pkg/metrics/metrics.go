// Package metrics declares opencensus measures for the storage stack.
//
// Measures are recorded unconditionally (recording against unregistered
// views is cheap); an operator opts into collection by calling
// RegisterViews and plugging an exporter.
package metrics

import (
	"context"
	"sync"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
)

var (
	// BlockCacheHits counts block loads served from the caching store.
	BlockCacheHits = stats.Int64("vaultfs/blocks/cache_hits", "block loads served from cache", stats.UnitDimensionless)

	// BlockCacheMisses counts block loads that went to the inner store.
	BlockCacheMisses = stats.Int64("vaultfs/blocks/cache_misses", "block loads fetched from the inner store", stats.UnitDimensionless)

	// BlocksStored counts write-through block stores.
	BlocksStored = stats.Int64("vaultfs/blocks/stored", "blocks written through to the inner store", stats.UnitDimensionless)

	// PathResolutions counts Device path resolutions, successful or not.
	PathResolutions = stats.Int64("vaultfs/device/resolutions", "path resolutions", stats.UnitDimensionless)
)

var registerOnce sync.Once

// RegisterViews registers count views for all measures in this package.
func RegisterViews() error {
	var err error
	registerOnce.Do(func() {
		err = view.Register(
			countView(BlockCacheHits),
			countView(BlockCacheMisses),
			countView(BlocksStored),
			countView(PathResolutions),
		)
	})
	return err
}

func countView(m *stats.Int64Measure) *view.View {
	return &view.View{
		Name:        m.Name(),
		Description: m.Description(),
		Measure:     m,
		Aggregation: view.Count(),
	}
}

// Inc records a unit increment of m.
func Inc(m *stats.Int64Measure) {
	stats.Record(context.Background(), m.M(1))
}

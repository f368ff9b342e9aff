// Package featureindex provides an R-Tree backed local cache of feature
// envelopes fetched from WFS services, so repeated bounding-box lookups can
// be answered without another network round trip. Batch indexing is
// parallelized across CPU cores.
package featureindex

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/dhconnelly/rtreego"

	"github.com/kass/go-ogc-client/pkg/models"
)

const (
	minChildren = 25
	maxChildren = 50
	dimensions  = 2

	// minExtent pads degenerate envelopes (point features) so rtreego
	// accepts them as rectangles.
	minExtent = 1e-9
)

// spatialFeature wraps a Feature for R-Tree indexing
type spatialFeature struct {
	*models.Feature
	rect *rtreego.Rect
}

func (sf *spatialFeature) Bounds() *rtreego.Rect {
	return sf.rect
}

// Index is a thread-safe R-Tree index of feature envelopes
type Index struct {
	tree      *rtreego.Rtree
	mu        sync.RWMutex
	itemCount atomic.Int64
}

// New creates an empty feature index
func New() *Index {
	return &Index{
		tree: rtreego.NewTree(dimensions, minChildren, maxChildren),
	}
}

func featureRect(f *models.Feature) (*rtreego.Rect, error) {
	env := f.Envelope
	lengths := []float64{
		env.TopRight.Lat - env.BottomLeft.Lat,
		env.TopRight.Lon - env.BottomLeft.Lon,
	}
	for i := range lengths {
		if lengths[i] < minExtent {
			lengths[i] = minExtent
		}
	}
	return rtreego.NewRect(rtreego.Point{env.BottomLeft.Lat, env.BottomLeft.Lon}, lengths)
}

// Add indexes a batch of features using parallel rectangle construction
func (ix *Index) Add(features []*models.Feature) error {
	if len(features) == 0 {
		return nil
	}

	numCPU := runtime.NumCPU()
	items := make([]rtreego.Spatial, len(features))
	errs := make([]error, numCPU)
	var wg sync.WaitGroup

	batchSize := len(features) / numCPU
	if batchSize < 1 {
		batchSize = 1
		numCPU = len(features)
	}

	for i := 0; i < numCPU && i*batchSize < len(features); i++ {
		wg.Add(1)
		start := i * batchSize
		end := start + batchSize
		if i == numCPU-1 || end > len(features) {
			end = len(features)
		}

		go func(worker, start, end int) {
			defer wg.Done()
			for j := start; j < end; j++ {
				feature := features[j]
				if feature == nil {
					continue
				}
				rect, err := featureRect(feature)
				if err != nil {
					errs[worker] = fmt.Errorf("invalid envelope for feature %s: %w", feature.ID, err)
					return
				}
				items[j] = &spatialFeature{feature, rect}
			}
		}(i, start, end)
	}

	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	count := int64(0)
	for _, item := range items {
		if item != nil {
			ix.tree.Insert(item)
			count++
		}
	}
	ix.itemCount.Add(count)
	return nil
}

// SearchBox returns all features whose envelope intersects the bounding box
func (ix *Index) SearchBox(box models.BoundingBox) ([]*models.Feature, error) {
	if !box.Valid() {
		return nil, fmt.Errorf("invalid bounding box: %+v", box)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	bounds, err := rtreego.NewRect(
		rtreego.Point{box.BottomLeft.Lat, box.BottomLeft.Lon},
		[]float64{
			box.TopRight.Lat - box.BottomLeft.Lat + minExtent,
			box.TopRight.Lon - box.BottomLeft.Lon + minExtent,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("invalid bounding box: %w", err)
	}

	results := ix.tree.SearchIntersect(bounds)

	features := make([]*models.Feature, 0, len(results))
	for _, result := range results {
		item, ok := result.(*spatialFeature)
		if !ok || item.Feature == nil {
			continue
		}
		if item.Envelope.Intersects(box) {
			features = append(features, item.Feature)
		}
	}
	return features, nil
}

// Nearest returns the n features whose envelopes are closest to the location
func (ix *Index) Nearest(loc models.Location, n int) []*models.Feature {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	results := ix.tree.NearestNeighbors(n, rtreego.Point{loc.Lat, loc.Lon})

	features := make([]*models.Feature, 0, len(results))
	for _, result := range results {
		if item, ok := result.(*spatialFeature); ok && item.Feature != nil {
			features = append(features, item.Feature)
		}
	}
	return features
}

// Size returns the number of features in the index
func (ix *Index) Size() int64 {
	return ix.itemCount.Load()
}

// Clear removes all features from the index
func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.tree = rtreego.NewTree(dimensions, minChildren, maxChildren)
	ix.itemCount.Store(0)
}

package featureindex

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/dhconnelly/rtreego"

	"github.com/kass/go-ogc-client/pkg/models"
)

// indexData is the serializable form of the feature index
type indexData struct {
	Features []*models.Feature
	Count    int64
}

// SaveToFile saves the index to a file using gob encoding
func (ix *Index) SaveToFile(filename string) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	// rtreego offers no iterator, so collect everything with a
	// whole-world rectangle.
	worldBounds, err := rtreego.NewRect(rtreego.Point{-90, -180}, []float64{180, 360})
	if err != nil {
		return fmt.Errorf("failed to build world bounds: %w", err)
	}

	var features []*models.Feature
	for _, result := range ix.tree.SearchIntersect(worldBounds) {
		if item, ok := result.(*spatialFeature); ok {
			features = append(features, item.Feature)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(indexData{Features: features, Count: ix.itemCount.Load()}); err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	return nil
}

// LoadFromFile loads the index from a file, replacing the current contents
func (ix *Index) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var data indexData
	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&data); err != nil {
		return fmt.Errorf("failed to decode index: %w", err)
	}

	ix.Clear()
	if err := ix.Add(data.Features); err != nil {
		return fmt.Errorf("failed to index features: %w", err)
	}
	return nil
}

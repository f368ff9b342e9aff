package models

// Location represents a geographic coordinate in decimal degrees
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BoundingBox represents a rectangular area defined by two corners
type BoundingBox struct {
	BottomLeft Location `json:"bottom_left"`
	TopRight   Location `json:"top_right"`
}

// Valid reports whether the box corners are ordered and within geographic bounds
func (b BoundingBox) Valid() bool {
	if b.BottomLeft.Lat > b.TopRight.Lat || b.BottomLeft.Lon > b.TopRight.Lon {
		return false
	}
	return b.BottomLeft.Lat >= -90 && b.TopRight.Lat <= 90 &&
		b.BottomLeft.Lon >= -180 && b.TopRight.Lon <= 180
}

// Contains reports whether the location falls inside the box (inclusive)
func (b BoundingBox) Contains(loc Location) bool {
	return loc.Lat >= b.BottomLeft.Lat && loc.Lat <= b.TopRight.Lat &&
		loc.Lon >= b.BottomLeft.Lon && loc.Lon <= b.TopRight.Lon
}

// Intersects reports whether two boxes overlap
func (b BoundingBox) Intersects(other BoundingBox) bool {
	return b.BottomLeft.Lon <= other.TopRight.Lon && b.TopRight.Lon >= other.BottomLeft.Lon &&
		b.BottomLeft.Lat <= other.TopRight.Lat && b.TopRight.Lat >= other.BottomLeft.Lat
}

// Center returns the midpoint of the box
func (b BoundingBox) Center() Location {
	return Location{
		Lat: (b.BottomLeft.Lat + b.TopRight.Lat) / 2,
		Lon: (b.BottomLeft.Lon + b.TopRight.Lon) / 2,
	}
}

// Feature identifies a single member of a WFS feature collection.
// Only the envelope is retained; full geometries stay in the raw response document.
type Feature struct {
	ID       string      `json:"id"`
	TypeName string      `json:"type_name"`
	Envelope BoundingBox `json:"envelope"`
}

// Package gml builds and parses the small set of GML fragments the WFS and
// WPS clients exchange: coordinate strings, bounding boxes and multi-polygon
// feature collections.
package gml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kass/go-ogc-client/pkg/models"
	"github.com/kass/go-ogc-client/pkg/ows"
)

// DefaultSRS is the spatial reference used when none is given.
const DefaultSRS = "EPSG:4326"

// formatCoord renders a coordinate with minimal digits, matching the
// "-100.0,40.0" style servers and examples use.
func formatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Coordinates encodes locations in the GML 2 coordinates form
// "lon,lat lon,lat".
func Coordinates(locs []models.Location) string {
	pairs := make([]string, len(locs))
	for i, loc := range locs {
		pairs[i] = formatCoord(loc.Lon) + "," + formatCoord(loc.Lat)
	}
	return strings.Join(pairs, " ")
}

// PosList encodes a ring in the GML 3 posList form "lon lat lon lat".
func PosList(ring []models.Location) string {
	parts := make([]string, 0, len(ring)*2)
	for _, loc := range ring {
		parts = append(parts, formatCoord(loc.Lon), formatCoord(loc.Lat))
	}
	return strings.Join(parts, " ")
}

// Box renders a gml:Box element for the bounding box in the given SRS.
func Box(b models.BoundingBox, srsName string) string {
	if srsName == "" {
		srsName = DefaultSRS
	}
	coords := Coordinates([]models.Location{b.BottomLeft, b.TopRight})
	return `<gml:Box srsName="` + srsName + `"><gml:coordinates>` + coords + `</gml:coordinates></gml:Box>`
}

// SRSURLEPSG4326 is the URL form of the EPSG:4326 reference used by GML 3
// multi-polygon documents.
const SRSURLEPSG4326 = "http://www.opengis.net/gml/srs/epsg.xml#4326"

// MultiPolygon renders a gml:MultiPolygon document fragment from rings of
// locations, one exterior ring per polygon. Used as WPS complex input data.
func MultiPolygon(polygons [][]models.Location, srsName string) string {
	if srsName == "" {
		srsName = SRSURLEPSG4326
	}

	var b strings.Builder
	b.WriteString(`<gml:MultiPolygon xmlns:gml="` + ows.NamespaceGML + `" srsDimension="2" srsName="` + srsName + `">`)
	for _, ring := range polygons {
		b.WriteString(`<gml:polygonMember><gml:Polygon><gml:exterior><gml:LinearRing><gml:posList>`)
		b.WriteString(PosList(ring))
		b.WriteString(`</gml:posList></gml:LinearRing></gml:exterior></gml:Polygon></gml:polygonMember>`)
	}
	b.WriteString(`</gml:MultiPolygon>`)
	return b.String()
}

// ParseCoordinates parses a GML 2 coordinates string ("lon,lat lon,lat")
// into locations.
func ParseCoordinates(s string) ([]models.Location, error) {
	fields := strings.Fields(s)
	locs := make([]models.Location, 0, len(fields))
	for _, pair := range fields {
		parts := strings.Split(pair, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid coordinate pair %q", pair)
		}
		lon, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude in %q: %w", pair, err)
		}
		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude in %q: %w", pair, err)
		}
		locs = append(locs, models.Location{Lat: lat, Lon: lon})
	}
	return locs, nil
}

// ParseCorner parses a GML 3 corner position ("lon lat") into a location.
func ParseCorner(s string) (models.Location, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return models.Location{}, fmt.Errorf("invalid corner position %q", s)
	}
	lon, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("invalid corner position %q: %w", s, err)
	}
	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return models.Location{}, fmt.Errorf("invalid corner position %q: %w", s, err)
	}
	return models.Location{Lat: lat, Lon: lon}, nil
}

// EnvelopeFromCoordinates builds a bounding box from a two-pair coordinates
// string as found in gml:Box elements.
func EnvelopeFromCoordinates(s string) (models.BoundingBox, error) {
	locs, err := ParseCoordinates(s)
	if err != nil {
		return models.BoundingBox{}, err
	}
	if len(locs) != 2 {
		return models.BoundingBox{}, fmt.Errorf("expected 2 coordinate pairs, got %d", len(locs))
	}
	return models.BoundingBox{BottomLeft: locs[0], TopRight: locs[1]}, nil
}

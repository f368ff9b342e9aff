package wps

import (
	"strings"

	"github.com/kass/go-ogc-client/pkg/gml"
	"github.com/kass/go-ogc-client/pkg/models"
	"github.com/kass/go-ogc-client/pkg/ows"
	"github.com/kass/go-ogc-client/pkg/wfs"
)

// WFSFeatureCollection is a complex input resolved by the WPS server itself:
// a reference to a WFS endpoint with an embedded GetFeature body.
type WFSFeatureCollection struct {
	ServiceURL string
	Query      wfs.GetFeatureRequest
}

func (w WFSFeatureCollection) appendInputXML(b *strings.Builder) {
	b.WriteString(`<wps:Reference xlink:href="` + escapeText(w.ServiceURL) + `">`)
	b.WriteString(`<wps:Body>`)
	b.WriteString(wfs.BuildGetFeatureBody(w.Query))
	b.WriteString(`</wps:Body>`)
	b.WriteString(`</wps:Reference>`)
}

// GMLMultiPolygonFeatureCollection is a complex input carried inline as a
// GML multi-polygon document. Each polygon is the exterior ring as a list of
// locations, first point repeated last.
type GMLMultiPolygonFeatureCollection struct {
	Polygons [][]models.Location
}

func (g GMLMultiPolygonFeatureCollection) appendInputXML(b *strings.Builder) {
	b.WriteString(`<wps:Data>`)
	b.WriteString(`<wps:ComplexData mimeType="text/xml" encoding="UTF-8" schema="` + ows.SchemaLocationGMLFeature + `">`)
	b.WriteString(gml.MultiPolygon(g.Polygons, ""))
	b.WriteString(`</wps:ComplexData>`)
	b.WriteString(`</wps:Data>`)
}

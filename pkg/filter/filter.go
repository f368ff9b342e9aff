// Package filter builds OGC Filter Encoding 1.0 predicates for WFS queries.
// Rendering is deterministic string building so request documents are stable
// and can be compared byte-for-byte in tests.
package filter

import (
	"encoding/xml"
	"strings"

	"github.com/kass/go-ogc-client/pkg/gml"
	"github.com/kass/go-ogc-client/pkg/models"
	"github.com/kass/go-ogc-client/pkg/ows"
)

// Expression is a filter predicate that can render itself inside an
// ogc:Filter element.
type Expression interface {
	writeTo(b *strings.Builder)
}

// Render wraps the expression in an ogc:Filter element carrying the ogc and
// gml namespace declarations, producing a self-contained filter document
// suitable for a FILTER KVP parameter.
func Render(e Expression) string {
	var b strings.Builder
	b.WriteString(`<ogc:Filter xmlns:ogc="` + ows.NamespaceOGC + `" xmlns:gml="` + ows.NamespaceGML + `">`)
	e.writeTo(&b)
	b.WriteString(`</ogc:Filter>`)
	return b.String()
}

func escape(s string) string {
	var b strings.Builder
	// EscapeText only fails on writer errors; strings.Builder never errors.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

type bbox struct {
	property string
	box      models.BoundingBox
	srsName  string
}

// BBOX restricts features to those whose geometry property intersects the
// bounding box. Coordinates are interpreted in srsName (EPSG:4326 when empty).
func BBOX(geometryProperty string, box models.BoundingBox, srsName string) Expression {
	return &bbox{property: geometryProperty, box: box, srsName: srsName}
}

func (f *bbox) writeTo(b *strings.Builder) {
	b.WriteString(`<ogc:BBOX><ogc:PropertyName>`)
	b.WriteString(escape(f.property))
	b.WriteString(`</ogc:PropertyName>`)
	b.WriteString(gml.Box(f.box, f.srsName))
	b.WriteString(`</ogc:BBOX>`)
}

type featureID struct {
	ids []string
}

// FeatureID selects features by their GML object identifiers.
func FeatureID(ids ...string) Expression {
	return &featureID{ids: ids}
}

func (f *featureID) writeTo(b *strings.Builder) {
	for _, id := range f.ids {
		b.WriteString(`<ogc:GmlObjectId gml:id="`)
		b.WriteString(escape(id))
		b.WriteString(`"/>`)
	}
}

type comparison struct {
	op       string
	property string
	literal  string
}

// PropertyIsEqualTo matches features whose property equals the literal.
func PropertyIsEqualTo(property, literal string) Expression {
	return &comparison{op: "PropertyIsEqualTo", property: property, literal: literal}
}

// PropertyIsLike matches features whose property matches the literal pattern.
func PropertyIsLike(property, literal string) Expression {
	return &comparison{op: "PropertyIsLike", property: property, literal: literal}
}

func (f *comparison) writeTo(b *strings.Builder) {
	b.WriteString(`<ogc:` + f.op + `><ogc:PropertyName>`)
	b.WriteString(escape(f.property))
	b.WriteString(`</ogc:PropertyName><ogc:Literal>`)
	b.WriteString(escape(f.literal))
	b.WriteString(`</ogc:Literal></ogc:` + f.op + `>`)
}

type logical struct {
	op    string
	exprs []Expression
}

// And combines predicates so all must match.
func And(exprs ...Expression) Expression { return &logical{op: "And", exprs: exprs} }

// Or combines predicates so any may match.
func Or(exprs ...Expression) Expression { return &logical{op: "Or", exprs: exprs} }

func (f *logical) writeTo(b *strings.Builder) {
	b.WriteString(`<ogc:` + f.op + `>`)
	for _, e := range f.exprs {
		e.writeTo(b)
	}
	b.WriteString(`</ogc:` + f.op + `>`)
}

type not struct {
	expr Expression
}

// Not negates a predicate.
func Not(e Expression) Expression { return &not{expr: e} }

func (f *not) writeTo(b *strings.Builder) {
	b.WriteString(`<ogc:Not>`)
	f.expr.writeTo(b)
	b.WriteString(`</ogc:Not>`)
}

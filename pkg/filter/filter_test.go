package filter

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"github.com/kass/go-ogc-client/pkg/models"
)

var soilBox = models.BoundingBox{
	BottomLeft: models.Location{Lat: 37.13, Lon: -100.22},
	TopRight:   models.Location{Lat: 38.12, Lon: -99.49},
}

func TestRenderBBOX(t *testing.T) {
	got := Render(BBOX("Geometry", soilBox, "EPSG:4326"))

	g := goldie.New(t)
	g.Assert(t, "bbox_filter", []byte(got))
}

func TestRenderFeatureID(t *testing.T) {
	got := Render(FeatureID("CONUS_States.508", "CONUS_States.509"))

	g := goldie.New(t)
	g.Assert(t, "featureid_filter", []byte(got))
}

func TestRenderLogicalCombinators(t *testing.T) {
	got := Render(And(
		BBOX("Geometry", soilBox, ""),
		Not(PropertyIsEqualTo("STATE", "Kansas")),
	))

	g := goldie.New(t)
	g.Assert(t, "combined_filter", []byte(got))
}

func TestRenderEscapesLiterals(t *testing.T) {
	got := Render(PropertyIsEqualTo("NAME", `Fox & Hound <north>`))

	assert.Contains(t, got, "Fox &amp; Hound &lt;north&gt;")
	assert.NotContains(t, got, "& Hound")
}

func TestRenderOr(t *testing.T) {
	got := Render(Or(
		PropertyIsEqualTo("STATE", "Kansas"),
		PropertyIsLike("STATE", "Neb*"),
	))

	assert.Contains(t, got, "<ogc:Or>")
	assert.Contains(t, got, "<ogc:PropertyIsLike>")
	assert.Contains(t, got, "<ogc:Literal>Neb*</ogc:Literal>")
}

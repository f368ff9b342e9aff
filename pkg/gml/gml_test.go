package gml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kass/go-ogc-client/pkg/models"
)

func TestCoordinates(t *testing.T) {
	locs := []models.Location{
		{Lat: 37.13, Lon: -100.0},
		{Lat: 38.12, Lon: -99.22},
	}
	assert.Equal(t, "-100.0,37.13 -99.22,38.12", Coordinates(locs))
}

func TestBox(t *testing.T) {
	box := models.BoundingBox{
		BottomLeft: models.Location{Lat: 37.13, Lon: -100.22},
		TopRight:   models.Location{Lat: 38.12, Lon: -99.49},
	}

	got := Box(box, "")
	assert.Equal(t,
		`<gml:Box srsName="EPSG:4326"><gml:coordinates>-100.22,37.13 -99.49,38.12</gml:coordinates></gml:Box>`,
		got)
}

func TestPosList(t *testing.T) {
	ring := []models.Location{
		{Lat: 39.5273, Lon: -102.8184},
		{Lat: 37.418, Lon: -102.8184},
		{Lat: 39.5273, Lon: -102.8184},
	}
	assert.Equal(t, "-102.8184 39.5273 -102.8184 37.418 -102.8184 39.5273", PosList(ring))
}

func TestMultiPolygon(t *testing.T) {
	polygons := [][]models.Location{
		{
			{Lat: 39.5273, Lon: -102.8184},
			{Lat: 37.418, Lon: -102.8184},
			{Lat: 37.418, Lon: -101.2363},
			{Lat: 39.5273, Lon: -101.2363},
			{Lat: 39.5273, Lon: -102.8184},
		},
	}

	got := MultiPolygon(polygons, "")
	assert.Contains(t, got, `<gml:MultiPolygon`)
	assert.Contains(t, got, `srsName="http://www.opengis.net/gml/srs/epsg.xml#4326"`)
	assert.Contains(t, got, `<gml:posList>-102.8184 39.5273 -102.8184 37.418 -101.2363 37.418 -101.2363 39.5273 -102.8184 39.5273</gml:posList>`)
	assert.Equal(t, 1, strings.Count(got, "<gml:polygonMember>"))
}

func TestParseCoordinates(t *testing.T) {
	locs, err := ParseCoordinates("-100.0,37.13 -99.22,38.12")
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, models.Location{Lat: 37.13, Lon: -100.0}, locs[0])
	assert.Equal(t, models.Location{Lat: 38.12, Lon: -99.22}, locs[1])

	_, err = ParseCoordinates("not-a-pair")
	assert.Error(t, err)

	_, err = ParseCoordinates("x,37.13")
	assert.Error(t, err)
}

func TestParseCorner(t *testing.T) {
	loc, err := ParseCorner("-100.0 37.13")
	require.NoError(t, err)
	assert.Equal(t, models.Location{Lat: 37.13, Lon: -100.0}, loc)

	_, err = ParseCorner("-100.0")
	assert.Error(t, err)
}

func TestEnvelopeFromCoordinates(t *testing.T) {
	box, err := EnvelopeFromCoordinates("-100.22,37.13 -99.49,38.12")
	require.NoError(t, err)
	assert.Equal(t, models.BoundingBox{
		BottomLeft: models.Location{Lat: 37.13, Lon: -100.22},
		TopRight:   models.Location{Lat: 38.12, Lon: -99.49},
	}, box)

	_, err = EnvelopeFromCoordinates("-100.22,37.13")
	assert.Error(t, err)
}

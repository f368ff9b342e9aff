package wfs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kass/go-ogc-client/pkg/filter"
	"github.com/kass/go-ogc-client/pkg/models"
)

const soilFeatureCollection = `<?xml version="1.0" encoding="UTF-8"?>
<wfs:FeatureCollection xmlns:wfs="http://www.opengis.net/wfs" xmlns:gml="http://www.opengis.net/gml" xmlns:ms="http://mapserver.gis.umn.edu/mapserver">
  <gml:boundedBy>
    <gml:Box srsName="EPSG:4326">
      <gml:coordinates>-100.22,37.13 -99.49,38.12</gml:coordinates>
    </gml:Box>
  </gml:boundedBy>
  <gml:featureMember>
    <ms:MapunitPolyExtended fid="MapunitPolyExtended.1">
      <gml:boundedBy>
        <gml:Box srsName="EPSG:4326">
          <gml:coordinates>-100.21,37.51 -100.05,37.62</gml:coordinates>
        </gml:Box>
      </gml:boundedBy>
      <ms:musym>8870</ms:musym>
    </ms:MapunitPolyExtended>
  </gml:featureMember>
  <gml:featureMember>
    <ms:MapunitPolyExtended fid="MapunitPolyExtended.2">
      <gml:boundedBy>
        <gml:Box srsName="EPSG:4326">
          <gml:coordinates>-99.98,37.71 -99.81,37.84</gml:coordinates>
        </gml:Box>
      </gml:boundedBy>
      <ms:musym>8871</ms:musym>
    </ms:MapunitPolyExtended>
  </gml:featureMember>
</wfs:FeatureCollection>`

// TestGetFeatureSoilSurvey mirrors the query this client was built for: a
// soil survey WFS queried for MapunitPolyExtended features inside a
// bounding box, with no property restriction, expecting a
// wfs:FeatureCollection document back.
func TestGetFeatureSoilSurvey(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(soilFeatureCollection))
	}))
	defer server.Close()

	bboxFilter := filter.Render(filter.BBOX("Geometry", models.BoundingBox{
		BottomLeft: models.Location{Lat: 37.13, Lon: -100.22},
		TopRight:   models.Location{Lat: 38.12, Lon: -99.49},
	}, "EPSG:4326"))

	client := New(server.URL)
	info, body, err := client.GetFeature(context.Background(), GetFeatureRequest{
		TypeNames: []string{"MapunitPolyExtended"},
		Filter:    bboxFilter,
	})
	require.NoError(t, err)

	// The response body, read fully as text, is a feature collection.
	assert.True(t, strings.Contains(string(body), "<wfs:FeatureCollection"))

	assert.Equal(t, "WFS", gotQuery.Get("service"))
	assert.Equal(t, "1.0.0", gotQuery.Get("version"))
	assert.Equal(t, "GetFeature", gotQuery.Get("request"))
	assert.Equal(t, "MapunitPolyExtended", gotQuery.Get("typename"))
	assert.Equal(t, bboxFilter, gotQuery.Get("filter"))
	// No property restriction means no propertyname parameter at all.
	assert.False(t, gotQuery.Has("propertyname"))

	assert.Equal(t, "FeatureCollection", info.Root.Local)
	assert.Equal(t, 2, info.NumberOfFeatures)
	require.Len(t, info.Features, 2)
	assert.Equal(t, "MapunitPolyExtended.1", info.Features[0].ID)
	assert.Equal(t, "MapunitPolyExtended", info.Features[0].TypeName)
	assert.Equal(t, models.BoundingBox{
		BottomLeft: models.Location{Lat: 37.51, Lon: -100.21},
		TopRight:   models.Location{Lat: 37.62, Lon: -100.05},
	}, info.Features[0].Envelope)
}

func TestGetFeatureRequestParameters(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(soilFeatureCollection))
	}))
	defer server.Close()

	client := New(server.URL, WithVersion("1.1.0"))
	_, _, err := client.GetFeature(context.Background(), GetFeatureRequest{
		TypeNames:     []string{"MapunitPolyExtended", "SurveyAreaPoly"},
		PropertyNames: []string{"musym", "muname"},
		MaxFeatures:   50,
		SRSName:       "EPSG:4326",
	})
	require.NoError(t, err)

	assert.Equal(t, "1.1.0", gotQuery.Get("version"))
	assert.Equal(t, "MapunitPolyExtended,SurveyAreaPoly", gotQuery.Get("typename"))
	assert.Equal(t, "musym,muname", gotQuery.Get("propertyname"))
	assert.Equal(t, "50", gotQuery.Get("maxfeatures"))
	assert.Equal(t, "EPSG:4326", gotQuery.Get("srsname"))
}

func TestGetFeatureRequiresTypeName(t *testing.T) {
	client := New("http://example.com/wfs")
	_, _, err := client.GetFeature(context.Background(), GetFeatureRequest{})
	assert.ErrorContains(t, err, "type name")
}

func TestGetFeatureServiceException(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<ServiceExceptionReport version="1.2.0">
  <ServiceException code="InvalidParameterValue">msWFSGetFeature(): unknown type name</ServiceException>
</ServiceExceptionReport>`))
	}))
	defer server.Close()

	client := New(server.URL)
	_, _, err := client.GetFeature(context.Background(), GetFeatureRequest{
		TypeNames: []string{"NoSuchType"},
	})
	require.Error(t, err)

	var report *ServiceExceptionReport
	require.ErrorAs(t, err, &report)
	assert.Equal(t, "InvalidParameterValue", report.Exceptions[0].Code)
	assert.Contains(t, report.Exceptions[0].Text, "unknown type name")
}

func TestGetFeatureUnexpectedRoot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>proxy error</body></html>`))
	}))
	defer server.Close()

	client := New(server.URL)
	_, body, err := client.GetFeature(context.Background(), GetFeatureRequest{
		TypeNames: []string{"MapunitPolyExtended"},
	})
	require.Error(t, err)
	// Raw bytes still surface so callers can inspect the payload.
	assert.Contains(t, string(body), "proxy error")
}

func TestBuildGetFeatureBody(t *testing.T) {
	body := BuildGetFeatureBody(GetFeatureRequest{
		TypeNames:     []string{"sample:CONUS_States"},
		PropertyNames: []string{"the_geom", "STATE"},
		Filter:        filter.Render(filter.FeatureID("CONUS_States.508")),
	})

	g := goldie.New(t)
	g.Assert(t, "getfeature_body", []byte(body))
}

func TestBuildGetFeatureBodyEscapesNames(t *testing.T) {
	body := BuildGetFeatureBody(GetFeatureRequest{
		TypeNames:     []string{`ns:Type"with&quotes`},
		PropertyNames: []string{"a<b"},
	})

	assert.Contains(t, body, `typeName="ns:Type&#34;with&amp;quotes"`)
	assert.Contains(t, body, "<wfs:PropertyName>a&lt;b</wfs:PropertyName>")
	assert.NotContains(t, body, `Type"with&quotes`)
}

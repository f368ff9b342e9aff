package wfs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kass/go-ogc-client/pkg/models"
)

const soilCapabilities = `<?xml version="1.0" encoding="UTF-8"?>
<WFS_Capabilities version="1.0.0" xmlns="http://www.opengis.net/wfs" xmlns:ogc="http://www.opengis.net/ogc">
  <Service>
    <Name>MapServer WFS</Name>
    <Title>Soil Data Mart</Title>
    <Abstract>Soil survey spatial data</Abstract>
  </Service>
  <FeatureTypeList>
    <FeatureType>
      <Name>MapunitPolyExtended</Name>
      <Title>Map Unit Polygons</Title>
      <SRS>EPSG:4326</SRS>
      <LatLongBoundingBox minx="-170.84" miny="-14.37" maxx="171.09" maxy="71.35"/>
    </FeatureType>
    <FeatureType>
      <Name>SurveyAreaPoly</Name>
      <Title>Survey Area Polygons</Title>
      <SRS>EPSG:4326</SRS>
      <LatLongBoundingBox minx="-170.84" miny="-14.37" maxx="171.09" maxy="71.35"/>
    </FeatureType>
  </FeatureTypeList>
</WFS_Capabilities>`

func TestGetCapabilities(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(soilCapabilities))
	}))
	defer server.Close()

	client := New(server.URL)
	caps, err := client.GetCapabilities(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "GetCapabilities", gotQuery.Get("request"))
	assert.Equal(t, "WFS", gotQuery.Get("service"))

	assert.Equal(t, "1.0.0", caps.Version)
	assert.Equal(t, "Soil Data Mart", caps.Service.Title)
	assert.Equal(t, "MapServer WFS", caps.Service.Name)

	require.Len(t, caps.FeatureTypes, 2)
	ft := caps.FeatureTypes[0]
	assert.Equal(t, "MapunitPolyExtended", ft.Name)
	assert.Equal(t, "Map Unit Polygons", ft.Title)
	assert.Equal(t, "EPSG:4326", ft.SRS)
	assert.Equal(t, models.BoundingBox{
		BottomLeft: models.Location{Lat: -14.37, Lon: -170.84},
		TopRight:   models.Location{Lat: 71.35, Lon: 171.09},
	}, ft.LatLonBoundingBox)
}

func TestParseCapabilitiesRejectsOtherDocuments(t *testing.T) {
	_, err := ParseCapabilities([]byte(`<wfs:FeatureCollection xmlns:wfs="http://www.opengis.net/wfs"/>`))
	assert.ErrorContains(t, err, "unexpected root element")
}

func TestDescribeFeatureType(t *testing.T) {
	const schemaDoc = `<xsd:schema xmlns:xsd="http://www.w3.org/2001/XMLSchema"/>`

	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(schemaDoc))
	}))
	defer server.Close()

	client := New(server.URL)
	schema, err := client.DescribeFeatureType(context.Background(), "MapunitPolyExtended")
	require.NoError(t, err)

	assert.Equal(t, schemaDoc, string(schema))
	assert.Equal(t, "DescribeFeatureType", gotQuery.Get("request"))
	assert.Equal(t, "MapunitPolyExtended", gotQuery.Get("typename"))
}

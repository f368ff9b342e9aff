package ows

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQueryURL(t *testing.T) {
	params := url.Values{}
	params.Set("service", "WFS")
	params.Set("request", "GetCapabilities")

	got, err := BuildQueryURL("http://example.com/wfs", params)
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "WFS", u.Query().Get("service"))
	assert.Equal(t, "GetCapabilities", u.Query().Get("request"))
}

func TestBuildQueryURLPreservesExistingParams(t *testing.T) {
	params := url.Values{}
	params.Set("service", "WFS")
	params.Set("VERSION", "1.0.0")

	// The base URL already pins a map and a version; neither may be
	// overridden, and version must not be duplicated despite the case
	// difference.
	got, err := BuildQueryURL("http://example.com/wfs?map=/data/soil.map&version=1.1.0", params)
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	query := u.Query()
	assert.Equal(t, "/data/soil.map", query.Get("map"))
	assert.Equal(t, "1.1.0", query.Get("version"))
	assert.Empty(t, query.Get("VERSION"))
	assert.Equal(t, "WFS", query.Get("service"))
}

func TestBuildQueryURLEncodesValues(t *testing.T) {
	params := url.Values{}
	params.Set("filter", `<ogc:Filter><ogc:BBOX/></ogc:Filter>`)

	got, err := BuildQueryURL("http://example.com/wfs", params)
	require.NoError(t, err)
	assert.NotContains(t, got, "<")

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, `<ogc:Filter><ogc:BBOX/></ogc:Filter>`, u.Query().Get("filter"))
}

func TestBuildQueryURLInvalidBase(t *testing.T) {
	_, err := BuildQueryURL("http://exa mple.com/", url.Values{})
	assert.Error(t, err)
}

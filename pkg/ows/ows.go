// Package ows provides the common plumbing shared by OGC web service
// clients: namespace constants, KVP URL building, exception report
// handling and an HTTP transport with logging and basic auth.
package ows

// XML namespace URIs used across OGC service documents.
const (
	NamespaceWFS   = "http://www.opengis.net/wfs"
	NamespaceOGC   = "http://www.opengis.net/ogc"
	NamespaceGML   = "http://www.opengis.net/gml"
	NamespaceWPS   = "http://www.opengis.net/wps/1.0.0"
	NamespaceOWS   = "http://www.opengis.net/ows/1.1"
	NamespaceXLink = "http://www.w3.org/1999/xlink"
	NamespaceXSI   = "http://www.w3.org/2001/XMLSchema-instance"
)

// Schema locations referenced by request documents.
const (
	SchemaLocationWPSExecute = "http://schemas.opengis.net/wps/1.0.0/wpsExecute_request.xsd"
	SchemaLocationGMLFeature = "http://schemas.opengis.net/gml/3.1.1/base/feature.xsd"
	SchemaLocationWFS110     = "http://www.opengis.net/wfs ../wfs/1.1.0/WFS.xsd"
)

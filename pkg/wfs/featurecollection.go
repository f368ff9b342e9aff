package wfs

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/kass/go-ogc-client/pkg/gml"
	"github.com/kass/go-ogc-client/pkg/models"
)

// FeatureCollectionInfo summarizes a wfs:FeatureCollection response: the
// root element, the member count and the envelope of each member that
// carries a gml:boundedBy. Full geometries are left in the raw document.
type FeatureCollectionInfo struct {
	Root             xml.Name
	NumberOfFeatures int
	Features         []models.Feature
}

type boundedByXML struct {
	Box struct {
		Coordinates string `xml:"coordinates"`
	} `xml:"Box"`
	Envelope struct {
		LowerCorner string `xml:"lowerCorner"`
		UpperCorner string `xml:"upperCorner"`
	} `xml:"Envelope"`
}

type memberFeatureXML struct {
	XMLName   xml.Name
	FID       string       `xml:"fid,attr"`
	GMLID     string       `xml:"id,attr"`
	BoundedBy boundedByXML `xml:"boundedBy"`
}

type featureCollectionXML struct {
	XMLName          xml.Name
	NumberOfFeatures string `xml:"numberOfFeatures,attr"`
	Members          []struct {
		Feature memberFeatureXML `xml:",any"`
	} `xml:"featureMember"`
}

// ParseFeatureCollection decodes a GetFeature response body. It fails when
// the root element is not a FeatureCollection.
func ParseFeatureCollection(body []byte) (*FeatureCollectionInfo, error) {
	var doc featureCollectionXML
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("wfs: malformed response document: %w", err)
	}
	if doc.XMLName.Local != "FeatureCollection" {
		return nil, fmt.Errorf("wfs: unexpected root element %q, want FeatureCollection", doc.XMLName.Local)
	}

	info := &FeatureCollectionInfo{
		Root:             doc.XMLName,
		NumberOfFeatures: len(doc.Members),
	}
	// WFS 1.1 servers state the count as an attribute; trust it when the
	// document carries fewer inline members (paged responses).
	if doc.NumberOfFeatures != "" {
		if n, err := strconv.Atoi(doc.NumberOfFeatures); err == nil && n > info.NumberOfFeatures {
			info.NumberOfFeatures = n
		}
	}

	for _, member := range doc.Members {
		feature := models.Feature{
			ID:       member.Feature.FID,
			TypeName: member.Feature.XMLName.Local,
		}
		if feature.ID == "" {
			feature.ID = member.Feature.GMLID
		}

		envelope, ok := memberEnvelope(member.Feature.BoundedBy)
		if ok {
			feature.Envelope = envelope
		}
		info.Features = append(info.Features, feature)
	}
	return info, nil
}

func memberEnvelope(bounded boundedByXML) (models.BoundingBox, bool) {
	if bounded.Box.Coordinates != "" {
		box, err := gml.EnvelopeFromCoordinates(bounded.Box.Coordinates)
		if err != nil {
			return models.BoundingBox{}, false
		}
		return box, true
	}
	if bounded.Envelope.LowerCorner != "" && bounded.Envelope.UpperCorner != "" {
		lower, err := gml.ParseCorner(bounded.Envelope.LowerCorner)
		if err != nil {
			return models.BoundingBox{}, false
		}
		upper, err := gml.ParseCorner(bounded.Envelope.UpperCorner)
		if err != nil {
			return models.BoundingBox{}, false
		}
		return models.BoundingBox{BottomLeft: lower, TopRight: upper}, true
	}
	return models.BoundingBox{}, false
}

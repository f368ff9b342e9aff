package wfs

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/kass/go-ogc-client/pkg/models"
)

// ServiceInfo is the Service section of a WFS 1.0.0 capabilities document.
type ServiceInfo struct {
	Name           string `xml:"Name"`
	Title          string `xml:"Title"`
	Abstract       string `xml:"Abstract"`
	OnlineResource string `xml:"OnlineResource"`
}

// FeatureType describes one entry of the FeatureTypeList.
type FeatureType struct {
	Name              string
	Title             string
	Abstract          string
	SRS               string
	LatLonBoundingBox models.BoundingBox
}

// Capabilities is the parsed WFS capabilities document.
type Capabilities struct {
	Version      string
	Service      ServiceInfo
	FeatureTypes []FeatureType
}

type featureTypeXML struct {
	Name     string `xml:"Name"`
	Title    string `xml:"Title"`
	Abstract string `xml:"Abstract"`
	SRS      string `xml:"SRS"`
	LatLon   struct {
		MinX string `xml:"minx,attr"`
		MinY string `xml:"miny,attr"`
		MaxX string `xml:"maxx,attr"`
		MaxY string `xml:"maxy,attr"`
	} `xml:"LatLongBoundingBox"`
}

type capabilitiesXML struct {
	XMLName      xml.Name
	Version      string           `xml:"version,attr"`
	Service      ServiceInfo      `xml:"Service"`
	FeatureTypes []featureTypeXML `xml:"FeatureTypeList>FeatureType"`
}

// GetCapabilities fetches and parses the service capabilities document.
func (c *Client) GetCapabilities(ctx context.Context) (*Capabilities, error) {
	body, err := c.get(ctx, c.baseParams("GetCapabilities"))
	if err != nil {
		return nil, err
	}
	return ParseCapabilities(body)
}

// ParseCapabilities decodes a WFS capabilities document.
func ParseCapabilities(body []byte) (*Capabilities, error) {
	var doc capabilitiesXML
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("wfs: malformed capabilities document: %w", err)
	}
	if !strings.Contains(doc.XMLName.Local, "Capabilities") {
		return nil, fmt.Errorf("wfs: unexpected root element %q in capabilities response", doc.XMLName.Local)
	}

	caps := &Capabilities{
		Version: doc.Version,
		Service: doc.Service,
	}
	for _, ft := range doc.FeatureTypes {
		featureType := FeatureType{
			Name:     ft.Name,
			Title:    ft.Title,
			Abstract: ft.Abstract,
			SRS:      ft.SRS,
		}
		if box, err := parseLatLonBox(ft.LatLon.MinX, ft.LatLon.MinY, ft.LatLon.MaxX, ft.LatLon.MaxY); err == nil {
			featureType.LatLonBoundingBox = box
		}
		caps.FeatureTypes = append(caps.FeatureTypes, featureType)
	}
	return caps, nil
}

func parseLatLonBox(minx, miny, maxx, maxy string) (models.BoundingBox, error) {
	values := [4]float64{}
	for i, s := range []string{minx, miny, maxx, maxy} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.BoundingBox{}, fmt.Errorf("invalid bounding box attribute %q: %w", s, err)
		}
		values[i] = v
	}
	return models.BoundingBox{
		BottomLeft: models.Location{Lon: values[0], Lat: values[1]},
		TopRight:   models.Location{Lon: values[2], Lat: values[3]},
	}, nil
}

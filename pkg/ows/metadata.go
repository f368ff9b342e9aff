package ows

import "encoding/xml"

// ServiceIdentification holds the ows:ServiceIdentification section of a
// capabilities document.
type ServiceIdentification struct {
	Title              string   `xml:"Title"`
	Abstract           string   `xml:"Abstract"`
	Keywords           []string `xml:"Keywords>Keyword"`
	ServiceType        string   `xml:"ServiceType"`
	ServiceTypeVersion string   `xml:"ServiceTypeVersion"`
	Fees               string   `xml:"Fees"`
	AccessConstraints  string   `xml:"AccessConstraints"`
}

// ServiceProvider holds the ows:ServiceProvider section of a capabilities
// document.
type ServiceProvider struct {
	Name string `xml:"ProviderName"`
	Site struct {
		Href string `xml:"href,attr"`
	} `xml:"ProviderSite"`
	Contact struct {
		IndividualName string `xml:"IndividualName"`
		PositionName   string `xml:"PositionName"`
	} `xml:"ServiceContact"`
}

// Operation describes one entry of ows:OperationsMetadata with its
// HTTP binding endpoints.
type Operation struct {
	Name    string `xml:"name,attr"`
	GetURL  string
	PostURL string
}

type operationXML struct {
	Name string `xml:"name,attr"`
	DCP  struct {
		HTTP struct {
			Get struct {
				Href string `xml:"href,attr"`
			} `xml:"Get"`
			Post struct {
				Href string `xml:"href,attr"`
			} `xml:"Post"`
		} `xml:"HTTP"`
	} `xml:"DCP"`
}

// CapabilitiesMetadata is the service-level metadata common to OGC
// capabilities documents using the ows namespace.
type CapabilitiesMetadata struct {
	Identification ServiceIdentification
	Provider       ServiceProvider
	Operations     []Operation
}

type capabilitiesMetadataXML struct {
	Identification ServiceIdentification `xml:"ServiceIdentification"`
	Provider       ServiceProvider       `xml:"ServiceProvider"`
	Operations     []operationXML        `xml:"OperationsMetadata>Operation"`
}

// ParseCapabilitiesMetadata extracts the ows sections from a capabilities
// document. Sections absent from the document are left zero-valued.
func ParseCapabilitiesMetadata(body []byte) (*CapabilitiesMetadata, error) {
	var doc capabilitiesMetadataXML
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, err
	}

	meta := &CapabilitiesMetadata{
		Identification: doc.Identification,
		Provider:       doc.Provider,
	}
	for _, op := range doc.Operations {
		meta.Operations = append(meta.Operations, Operation{
			Name:    op.Name,
			GetURL:  op.DCP.HTTP.Get.Href,
			PostURL: op.DCP.HTTP.Post.Href,
		})
	}
	return meta, nil
}

package wfs

import (
	"encoding/xml"
	"strings"
)

// ServiceException is one entry of a WFS 1.0.0 ServiceExceptionReport.
type ServiceException struct {
	Code string
	Text string
}

// ServiceExceptionReport is the pre-OWS exception document WFS 1.0.0
// servers return. It implements error.
type ServiceExceptionReport struct {
	Exceptions []ServiceException
}

func (r *ServiceExceptionReport) Error() string {
	if len(r.Exceptions) == 0 {
		return "wfs: service exception report with no exceptions"
	}
	parts := make([]string, 0, len(r.Exceptions))
	for _, ex := range r.Exceptions {
		msg := ex.Text
		if ex.Code != "" {
			msg = ex.Code + ": " + msg
		}
		parts = append(parts, msg)
	}
	return "wfs: " + strings.Join(parts, "; ")
}

type serviceExceptionReportXML struct {
	XMLName    xml.Name
	Exceptions []struct {
		Code string `xml:"code,attr"`
		Text string `xml:",chardata"`
	} `xml:"ServiceException"`
}

// ParseServiceExceptionReport decodes body as a ServiceExceptionReport. The
// second return value reports whether the document was one.
func ParseServiceExceptionReport(body []byte) (*ServiceExceptionReport, bool) {
	var doc serviceExceptionReportXML
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, false
	}
	if doc.XMLName.Local != "ServiceExceptionReport" {
		return nil, false
	}

	report := &ServiceExceptionReport{}
	for _, ex := range doc.Exceptions {
		report.Exceptions = append(report.Exceptions, ServiceException{
			Code: ex.Code,
			Text: strings.TrimSpace(ex.Text),
		})
	}
	return report, true
}

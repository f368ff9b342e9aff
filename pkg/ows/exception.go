package ows

import (
	"encoding/xml"
	"errors"
	"strings"
)

// Exception is a single ows:Exception entry from an exception report.
type Exception struct {
	Code    string
	Locator string
	Text    string
}

// ExceptionReport is an ows:ExceptionReport document returned by a service
// in place of a normal response. It implements error so callers can surface
// it directly.
type ExceptionReport struct {
	Version    string
	Exceptions []Exception
}

func (r *ExceptionReport) Error() string {
	if len(r.Exceptions) == 0 {
		return "ows: exception report with no exceptions"
	}
	parts := make([]string, 0, len(r.Exceptions))
	for _, ex := range r.Exceptions {
		msg := ex.Code
		if ex.Locator != "" {
			msg += " (locator " + ex.Locator + ")"
		}
		if ex.Text != "" {
			msg += ": " + ex.Text
		}
		parts = append(parts, msg)
	}
	return "ows: " + strings.Join(parts, "; ")
}

type exceptionReportXML struct {
	XMLName    xml.Name
	Version    string `xml:"version,attr"`
	Exceptions []struct {
		Code    string   `xml:"exceptionCode,attr"`
		Locator string   `xml:"locator,attr"`
		Text    []string `xml:"ExceptionText"`
	} `xml:"Exception"`
}

// ParseExceptionReport decodes body as an ows:ExceptionReport. The second
// return value reports whether the document actually was an exception
// report; bodies that are not XML or have a different root are not.
func ParseExceptionReport(body []byte) (*ExceptionReport, bool) {
	var doc exceptionReportXML
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, false
	}
	if doc.XMLName.Local != "ExceptionReport" {
		return nil, false
	}

	report := &ExceptionReport{Version: doc.Version}
	for _, ex := range doc.Exceptions {
		report.Exceptions = append(report.Exceptions, Exception{
			Code:    ex.Code,
			Locator: ex.Locator,
			Text:    strings.TrimSpace(strings.Join(ex.Text, " ")),
		})
	}
	return report, true
}

// IsExceptionReport reports whether err wraps an ExceptionReport with the
// given exception code. An empty code matches any report.
func IsExceptionReport(err error, code string) bool {
	var report *ExceptionReport
	if !errors.As(err, &report) {
		return false
	}
	if code == "" {
		return true
	}
	for _, ex := range report.Exceptions {
		if ex.Code == code {
			return true
		}
	}
	return false
}

package wps

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kass/go-ogc-client/pkg/ows"
)

// Process execution statuses reported by WPS status documents.
const (
	StatusAccepted  = "ProcessAccepted"
	StatusStarted   = "ProcessStarted"
	StatusPaused    = "ProcessPaused"
	StatusSucceeded = "ProcessSucceeded"
	StatusFailed    = "ProcessFailed"
	StatusException = "Exception"
)

// Output is one wps:ProcessOutputs entry of an execute response: either a
// reference to fetch or inline data.
type Output struct {
	Identifier string
	Title      string
	Reference  string
	MimeType   string
	Data       string
}

// Execution tracks a single process run on a remote WPS server. ID is a
// client-side correlation id carried in log fields.
type Execution struct {
	ID string

	url       string
	transport *ows.Transport
	log       *zap.Logger

	ProcessID       string
	ServiceInstance string
	StatusLocation  string
	Status          string
	StatusMessage   string
	Errors          []ows.Exception
	Outputs         []Output
}

type executeResponseXML struct {
	XMLName         xml.Name
	ServiceInstance string `xml:"serviceInstance,attr"`
	StatusLocation  string `xml:"statusLocation,attr"`
	Process         struct {
		Identifier string `xml:"Identifier"`
	} `xml:"Process"`
	Status struct {
		Accepted  *statusDetailXML `xml:"ProcessAccepted"`
		Started   *statusDetailXML `xml:"ProcessStarted"`
		Paused    *statusDetailXML `xml:"ProcessPaused"`
		Succeeded *statusDetailXML `xml:"ProcessSucceeded"`
		Failed    *struct {
			statusDetailXML
			ExceptionReport struct {
				Exceptions []struct {
					Code    string   `xml:"exceptionCode,attr"`
					Locator string   `xml:"locator,attr"`
					Text    []string `xml:"ExceptionText"`
				} `xml:"Exception"`
			} `xml:"ExceptionReport"`
		} `xml:"ProcessFailed"`
	} `xml:"Status"`
	Outputs []struct {
		Identifier string `xml:"Identifier"`
		Title      string `xml:"Title"`
		Reference  struct {
			Href     string `xml:"href,attr"`
			MimeType string `xml:"mimeType,attr"`
		} `xml:"Reference"`
		Data struct {
			Literal string `xml:"LiteralData"`
			Complex struct {
				MimeType string `xml:"mimeType,attr"`
				Value    string `xml:",chardata"`
			} `xml:"ComplexData"`
		} `xml:"Data"`
	} `xml:"ProcessOutputs>Output"`
}

type statusDetailXML struct {
	Message string `xml:",chardata"`
}

// parseResponse ingests an ExecuteResponse or ExceptionReport document and
// updates the execution state.
func (e *Execution) parseResponse(body []byte) error {
	if report, ok := ows.ParseExceptionReport(body); ok {
		e.Status = StatusException
		e.Errors = append(e.Errors, report.Exceptions...)
		return nil
	}

	var doc executeResponseXML
	if err := xml.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("wps: malformed execute response: %w", err)
	}
	if doc.XMLName.Local != "ExecuteResponse" {
		return fmt.Errorf("wps: unexpected root element %q in execute response", doc.XMLName.Local)
	}

	e.ServiceInstance = doc.ServiceInstance
	if doc.StatusLocation != "" {
		e.StatusLocation = doc.StatusLocation
	}
	if doc.Process.Identifier != "" {
		e.ProcessID = doc.Process.Identifier
	}

	switch {
	case doc.Status.Accepted != nil:
		e.Status, e.StatusMessage = StatusAccepted, strings.TrimSpace(doc.Status.Accepted.Message)
	case doc.Status.Started != nil:
		e.Status, e.StatusMessage = StatusStarted, strings.TrimSpace(doc.Status.Started.Message)
	case doc.Status.Paused != nil:
		e.Status, e.StatusMessage = StatusPaused, strings.TrimSpace(doc.Status.Paused.Message)
	case doc.Status.Succeeded != nil:
		e.Status, e.StatusMessage = StatusSucceeded, strings.TrimSpace(doc.Status.Succeeded.Message)
	case doc.Status.Failed != nil:
		e.Status = StatusFailed
		for _, ex := range doc.Status.Failed.ExceptionReport.Exceptions {
			e.Errors = append(e.Errors, ows.Exception{
				Code:    ex.Code,
				Locator: ex.Locator,
				Text:    strings.TrimSpace(strings.Join(ex.Text, " ")),
			})
		}
	default:
		return fmt.Errorf("wps: execute response carries no recognized status")
	}

	e.Outputs = e.Outputs[:0]
	for _, out := range doc.Outputs {
		output := Output{
			Identifier: out.Identifier,
			Title:      out.Title,
			Reference:  out.Reference.Href,
			MimeType:   out.Reference.MimeType,
		}
		if output.Reference == "" {
			if data := strings.TrimSpace(out.Data.Complex.Value); data != "" {
				output.Data = data
				output.MimeType = out.Data.Complex.MimeType
			} else if out.Data.Literal != "" {
				output.Data = out.Data.Literal
			}
		}
		e.Outputs = append(e.Outputs, output)
	}

	e.log.Debug("execution status updated",
		zap.String("execution_id", e.ID),
		zap.String("status", e.Status),
		zap.Int("errors", len(e.Errors)),
	)
	return nil
}

// Complete reports whether the execution reached a terminal status.
func (e *Execution) Complete() bool {
	switch e.Status {
	case StatusSucceeded, StatusFailed, StatusException:
		return true
	default:
		return false
	}
}

// Succeeded reports whether the execution finished successfully.
func (e *Execution) Succeeded() bool {
	return e.Status == StatusSucceeded
}

// CheckStatus fetches the status document and updates the execution state
// once. The statusLocation from the last response is polled; servers that
// omit it are polled at the service URL.
func (e *Execution) CheckStatus(ctx context.Context) error {
	statusURL := e.StatusLocation
	if statusURL == "" {
		statusURL = e.url
	}
	if statusURL == "" {
		return errors.New("wps: execution has no status location to poll")
	}
	body, err := e.transport.Get(ctx, statusURL, url.Values{})
	if err != nil {
		return fmt.Errorf("wps: status check failed: %w", err)
	}
	return e.parseResponse(body)
}

// Wait polls the status location at the given interval until the execution
// completes or the context is cancelled.
func (e *Execution) Wait(ctx context.Context, interval time.Duration) error {
	for !e.Complete() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
		if err := e.CheckStatus(ctx); err != nil {
			return err
		}
	}
	return nil
}

// FetchOutput downloads the first referenced output to filePath and returns
// the path written. When filePath is empty a name is derived from the
// reference URL. Inline outputs are written as-is.
func (e *Execution) FetchOutput(ctx context.Context, filePath string) (string, error) {
	if !e.Succeeded() {
		return "", fmt.Errorf("wps: execution not successfully completed: status=%s", e.Status)
	}

	for _, output := range e.Outputs {
		var data []byte
		switch {
		case output.Reference != "":
			body, err := e.transport.Get(ctx, output.Reference, url.Values{})
			if err != nil {
				return "", fmt.Errorf("wps: failed to fetch output %s: %w", output.Identifier, err)
			}
			data = body
			if filePath == "" {
				filePath = outputFileName(output.Reference)
			}
		case output.Data != "":
			data = []byte(output.Data)
			if filePath == "" {
				filePath = output.Identifier + ".out"
			}
		default:
			continue
		}

		if err := os.WriteFile(filePath, data, 0o644); err != nil {
			return "", fmt.Errorf("wps: failed to write output file: %w", err)
		}
		e.log.Info("output written",
			zap.String("execution_id", e.ID),
			zap.String("path", filePath),
			zap.Int("bytes", len(data)),
		)
		return filePath, nil
	}
	return "", errors.New("wps: execution has no outputs")
}

// outputFileName derives a local file name from an output reference URL:
// the value of the last query parameter when present, else the last path
// segment.
func outputFileName(reference string) string {
	if u, err := url.Parse(reference); err == nil {
		query := u.Query()
		if len(query) > 0 {
			for _, values := range query {
				for _, v := range values {
					if v != "" {
						return path.Base(v)
					}
				}
			}
		}
		if base := path.Base(u.Path); base != "." && base != "/" {
			return base
		}
	}
	return "wps-output.dat"
}

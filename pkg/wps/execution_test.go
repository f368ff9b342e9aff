package wps

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kass/go-ogc-client/pkg/ows"
)

func acceptedResponse(statusLocation string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<wps:ExecuteResponse xmlns:wps="http://www.opengis.net/wps/1.0.0" xmlns:ows="http://www.opengis.net/ows/1.1"
    serviceInstance="http://cida.usgs.gov/gdp/process/WebProcessingService"
    statusLocation="%s">
  <wps:Process><ows:Identifier>stats</ows:Identifier></wps:Process>
  <wps:Status><wps:ProcessAccepted>Process accepted</wps:ProcessAccepted></wps:Status>
</wps:ExecuteResponse>`, statusLocation)
}

const succeededResponse = `<?xml version="1.0" encoding="UTF-8"?>
<wps:ExecuteResponse xmlns:wps="http://www.opengis.net/wps/1.0.0" xmlns:ows="http://www.opengis.net/ows/1.1" xmlns:xlink="http://www.w3.org/1999/xlink">
  <wps:Process><ows:Identifier>stats</ows:Identifier></wps:Process>
  <wps:Status><wps:ProcessSucceeded>Process completed</wps:ProcessSucceeded></wps:Status>
  <wps:ProcessOutputs>
    <wps:Output>
      <ows:Identifier>OUTPUT</ows:Identifier>
      <wps:Reference mimeType="text/csv" xlink:href="%s"/>
    </wps:Output>
  </wps:ProcessOutputs>
</wps:ExecuteResponse>`

const failedResponse = `<?xml version="1.0" encoding="UTF-8"?>
<wps:ExecuteResponse xmlns:wps="http://www.opengis.net/wps/1.0.0" xmlns:ows="http://www.opengis.net/ows/1.1">
  <wps:Process><ows:Identifier>stats</ows:Identifier></wps:Process>
  <wps:Status>
    <wps:ProcessFailed>
      <ows:ExceptionReport>
        <ows:Exception exceptionCode="NoApplicableCode">
          <ows:ExceptionText>Dataset not reachable</ows:ExceptionText>
        </ows:Exception>
      </ows:ExceptionReport>
    </wps:ProcessFailed>
  </wps:Status>
</wps:ExecuteResponse>`

func newExecution() *Execution {
	return &Execution{
		ID:        "test-execution",
		transport: ows.NewTransport(),
		log:       zap.NewNop(),
	}
}

func TestParseResponseAccepted(t *testing.T) {
	e := newExecution()
	err := e.parseResponse([]byte(acceptedResponse("http://example.com/status/42")))
	require.NoError(t, err)

	assert.Equal(t, StatusAccepted, e.Status)
	assert.Equal(t, "Process accepted", e.StatusMessage)
	assert.Equal(t, "http://example.com/status/42", e.StatusLocation)
	assert.Equal(t, "stats", e.ProcessID)
	assert.False(t, e.Complete())
	assert.False(t, e.Succeeded())
}

func TestParseResponseFailed(t *testing.T) {
	e := newExecution()
	err := e.parseResponse([]byte(failedResponse))
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, e.Status)
	assert.True(t, e.Complete())
	assert.False(t, e.Succeeded())
	require.Len(t, e.Errors, 1)
	assert.Equal(t, "NoApplicableCode", e.Errors[0].Code)
	assert.Equal(t, "Dataset not reachable", e.Errors[0].Text)
}

func TestParseResponseExceptionReport(t *testing.T) {
	e := newExecution()
	err := e.parseResponse([]byte(`<ows:ExceptionReport xmlns:ows="http://www.opengis.net/ows/1.1">
  <ows:Exception exceptionCode="InvalidParameterValue" locator="identifier">
    <ows:ExceptionText>Unknown process</ows:ExceptionText>
  </ows:Exception>
</ows:ExceptionReport>`))
	require.NoError(t, err)

	assert.Equal(t, StatusException, e.Status)
	assert.True(t, e.Complete())
	require.Len(t, e.Errors, 1)
	assert.Equal(t, "InvalidParameterValue", e.Errors[0].Code)
}

func TestParseResponseRejectsUnknownDocument(t *testing.T) {
	e := newExecution()
	err := e.parseResponse([]byte(`<unexpected/>`))
	assert.ErrorContains(t, err, "unexpected root element")
}

func TestWaitPollsUntilComplete(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	outputURL := server.URL + "/outputs/result.csv"
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) < 3 {
			w.Write([]byte(acceptedResponse(server.URL + "/status")))
			return
		}
		fmt.Fprintf(w, succeededResponse, outputURL)
	})
	mux.HandleFunc("/outputs/result.csv", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mean,max\n1.5,2.0\n"))
	})

	e := newExecution()
	require.NoError(t, e.parseResponse([]byte(acceptedResponse(server.URL+"/status"))))

	err := e.Wait(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, e.Succeeded())
	assert.GreaterOrEqual(t, polls.Load(), int32(3))

	outPath := filepath.Join(t.TempDir(), "result.csv")
	written, err := e.FetchOutput(context.Background(), outPath)
	require.NoError(t, err)
	assert.Equal(t, outPath, written)

	data, err := os.ReadFile(written)
	require.NoError(t, err)
	assert.Equal(t, "mean,max\n1.5,2.0\n", string(data))
}

func TestWaitHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(acceptedResponse("")))
	}))
	defer server.Close()

	e := newExecution()
	require.NoError(t, e.parseResponse([]byte(acceptedResponse(server.URL))))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := e.Wait(ctx, time.Hour)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCheckStatusRequiresLocation(t *testing.T) {
	e := newExecution()
	err := e.CheckStatus(context.Background())
	assert.ErrorContains(t, err, "status location")
}

func TestCheckStatusFallsBackToServiceURL(t *testing.T) {
	var polled atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polled.Add(1)
		fmt.Fprintf(w, succeededResponse, "http://example.com/outputs/result.csv")
	}))
	defer server.Close()

	// Some servers omit statusLocation from the first response; polling then
	// targets the service URL itself.
	e := newExecution()
	e.url = server.URL
	require.NoError(t, e.parseResponse([]byte(acceptedResponse(""))))
	require.Empty(t, e.StatusLocation)

	err := e.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), polled.Load())
	assert.True(t, e.Succeeded())
}

func TestFetchOutputRequiresSuccess(t *testing.T) {
	e := newExecution()
	require.NoError(t, e.parseResponse([]byte(failedResponse)))

	_, err := e.FetchOutput(context.Background(), "out.csv")
	assert.ErrorContains(t, err, "not successfully completed")
}

func TestOutputFileName(t *testing.T) {
	assert.Equal(t, "result.csv",
		outputFileName("http://example.com/outputs/result.csv"))
	assert.Equal(t, "1318528582026OUTPUT.601bb3d0",
		outputFileName("http://example.com/RetrieveResultServlet?id=1318528582026OUTPUT.601bb3d0"))
	assert.Equal(t, "wps-output.dat", outputFileName("http://example.com/"))
}

package monitoring

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"statuspulse/core/store"
)

const (
	defaultProbeTimeout = 10 * time.Second
	maxBodyCapture      = 50000
	truncationMarker    = "... [truncated]"
)

// ProbeResult is the classified outcome of a single health-check request.
type ProbeResult struct {
	Status          string
	StatusCode      *int
	Latency         time.Duration
	Error           string
	ResponseBody    *string
	ResponseHeaders map[string]string
	CheckedAt       time.Time
}

type Prober struct {
	transport http.RoundTripper
}

func NewProber() *Prober {
	return &Prober{transport: http.DefaultTransport}
}

// Probe issues exactly one GET against the endpoint with a hard deadline of
// the endpoint's configured timeout. It never retries; the next scheduler
// tick is the retry.
//
// Outcomes:
//   - response status equals the expected code: success, nothing captured
//   - response received with any other code: failure, body (capped) and
//     headers captured for diagnosis
//   - deadline exceeded: timeout, nothing captured
//   - any other transport error: failure with the error text
func (p *Prober) Probe(ctx context.Context, ep store.Endpoint) ProbeResult {
	timeout := time.Duration(ep.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	result := ProbeResult{Status: store.PingFailure, CheckedAt: start.UTC()}
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, ep.URL, nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	client := &http.Client{Transport: p.transport}
	resp, err := client.Do(req)
	result.Latency = time.Since(start)
	if err != nil {
		if isTimeoutErr(err) {
			result.Status = store.PingTimeout
			result.Error = fmt.Sprintf("request timed out after %s", timeout)
		} else {
			result.Error = err.Error()
		}
		return result
	}
	defer resp.Body.Close()

	code := resp.StatusCode
	result.StatusCode = &code
	if code == ep.ExpectedStatus {
		result.Status = store.PingSuccess
		return result
	}
	result.Error = fmt.Sprintf("expected status %d, got %d", ep.ExpectedStatus, code)
	body := readCappedBody(resp.Body)
	result.ResponseBody = &body
	result.ResponseHeaders = flattenHeaders(resp.Header)
	return result
}

func isTimeoutErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func readCappedBody(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxBodyCapture+1))
	if err != nil && len(raw) == 0 {
		return ""
	}
	if len(raw) > maxBodyCapture {
		return string(raw[:maxBodyCapture]) + truncationMarker
	}
	return string(raw)
}

func flattenHeaders(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	flat := make(map[string]string, len(h))
	for key, values := range h {
		flat[key] = strings.Join(values, ", ")
	}
	return flat
}

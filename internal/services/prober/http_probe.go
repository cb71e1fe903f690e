package prober

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/NordCoder/Netprobe/internal/domain/probe"
)

const maxBodyDrain = 1 << 20

// HTTPProber fetches a URL once. Only a 200 counts as success.
type HTTPProber struct {
	Client    *http.Client
	UserAgent string
}

func (h HTTPProber) Get(ctx context.Context, url string, timeout time.Duration) probe.Outcome {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return probe.Failed(probe.ClassOther, err.Error())
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		class, msg := classifyHTTPErr(err, timeout)
		return probe.Failed(class, msg)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyDrain))

	latency := roundTo(float64(time.Since(start).Microseconds())/1000, 2)
	code := resp.StatusCode
	out := probe.Outcome{
		Success:    code == http.StatusOK,
		LatencyMs:  &latency,
		StatusCode: &code,
	}
	if !out.Success {
		out.Error = fmt.Sprintf("HTTP %d", code)
		out.ErrorClass = probe.ClassHTTPStatus
	}
	return out
}

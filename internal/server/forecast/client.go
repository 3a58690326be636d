package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/agritrack/internal/common"
)

// maxResponseBytes bounds how much of an upstream body is read.
const maxResponseBytes = 4 << 20

// Client calls GET <base>/predictions/predict/<commodity>.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client whose every call is bounded by timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Predict returns the upstream JSON payload unchanged. Transport failures and
// timeouts yield common.ErrUpstreamUnavailable; a non-2xx status yields a
// *common.UpstreamStatusError.
func (c *Client) Predict(ctx context.Context, commodity Commodity) (json.RawMessage, error) {
	if commodity == (Commodity{}) {
		return nil, common.Invalid("commodityType", "unknown commodity")
	}

	url := c.baseURL + "/predictions/predict/" + commodity.PathSegment()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &common.UpstreamStatusError{StatusCode: resp.StatusCode}
	}

	body = bytes.TrimSpace(body)
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: invalid json payload", common.ErrUpstreamError)
	}
	return json.RawMessage(body), nil
}

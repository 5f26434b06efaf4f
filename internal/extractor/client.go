package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// FormatSelector asks the extraction service for a progressive MP4 with an
// AVC video track, excluding manifest-based adaptive protocols that cannot
// be served through a plain range-forwarding relay.
const FormatSelector = "best[ext=mp4][vcodec^=avc][protocol!=m3u8_native][protocol!=m3u8]/best[ext=mp4]/best"

// Format is one candidate stream returned by the extraction service.
type Format struct {
	FormatID   string `json:"format_id"`
	URL        string `json:"url"`
	Ext        string `json:"ext"`
	VideoCodec string `json:"vcodec"`
	Protocol   string `json:"protocol"`
}

// MediaInfo is the extraction service response: either a directly usable
// URL, a list of candidate formats, or both.
type MediaInfo struct {
	URL     string   `json:"url"`
	Formats []Format `json:"formats"`
}

// Client fetches media info for a source id from the extraction service.
type Client interface {
	Extract(ctx context.Context, sourceID string) (*MediaInfo, error)
}

// HTTPClient talks to the extraction service over HTTP. The service is a
// black box that may be slow, so every call is bounded by the configured
// timeout.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Extract(ctx context.Context, sourceID string) (*MediaInfo, error) {
	q := url.Values{}
	q.Set("id", sourceID)
	q.Set("format", FormatSelector)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/extract?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction service returned status %d", resp.StatusCode)
	}

	var info MediaInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("extraction response: %w", err)
	}
	return &info, nil
}

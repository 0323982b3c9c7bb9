package leadfeed

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Client pulls pending enquiries from the external lead portal. The poll
// worker drains this on a timer; the same payload shape also arrives pushed
// on the webhook endpoint.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c.baseURL != ""
}

func (c *Client) FetchEnquiries(ctx context.Context) ([]map[string]interface{}, error) {
	url := fmt.Sprintf("%s/enquiries?status=pending", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lead feed request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lead feed returned %d: %s", resp.StatusCode, string(body))
	}

	raws, unparsable := DecodeEnquiries(body)
	if unparsable > 0 {
		// Broken records cost only themselves; the rest of the poll proceeds.
		log.Printf("⚠️ [FEED] %d unparsable record(s) in feed response", unparsable)
	}
	return raws, nil
}

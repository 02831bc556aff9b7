package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.trello.com"

// Client creates cards in one Trello list.
type Client struct {
	baseURL string
	key     string
	token   string
	listID  string
	http    *http.Client
}

func NewClient(key, token, listID string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		key:     key,
		token:   token,
		listID:  listID,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// WithBaseURL points the client at another API host (tests, proxies).
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

// CreateCard adds a card named text to the configured list and returns its id.
// Credentials travel in the form body so they never show up in url.Error text.
func (c *Client) CreateCard(ctx context.Context, text string) (string, error) {
	params := url.Values{}
	params.Set("key", c.key)
	params.Set("token", c.token)
	params.Set("idList", c.listID)
	params.Set("name", text)
	params.Set("pos", "top")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/1/cards", strings.NewReader(params.Encode()))
	if err != nil {
		return "", fmt.Errorf("build trello request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("trello create card: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("trello create card error: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode trello card: %w", err)
	}
	return out.ID, nil
}

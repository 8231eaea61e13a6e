// Package wiki resolves article titles through the MediaWiki API. The lobby
// only needs title resolution; page content is the clients' business.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ArticleProvider resolves free-text queries to canonical article titles
// and supplies random titles.
type ArticleProvider interface {
	// Search returns candidate titles for a query, best match first.
	Search(ctx context.Context, query string) ([]string, error)
	// Random returns n random article titles from the main namespace.
	Random(ctx context.Context, n int) ([]string, error)
}

const DefaultAPIURL = "https://en.wikipedia.org/w/api.php"

// Client is an ArticleProvider backed by a MediaWiki api.php endpoint.
type Client struct {
	apiURL string
	http   *http.Client
}

func NewClient(apiURL string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		apiURL: apiURL,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}

type queryResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
		Random []struct {
			Title string `json:"title"`
		} `json:"random"`
	} `json:"query"`
}

func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {"5"},
		"format":   {"json"},
	}
	resp, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(resp.Query.Search))
	for _, r := range resp.Query.Search {
		titles = append(titles, r.Title)
	}
	return titles, nil
}

func (c *Client) Random(ctx context.Context, n int) ([]string, error) {
	params := url.Values{
		"action":      {"query"},
		"list":        {"random"},
		"rnnamespace": {"0"},
		"rnlimit":     {strconv.Itoa(n)},
		"format":      {"json"},
	}
	resp, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(resp.Query.Random))
	for _, r := range resp.Query.Random {
		titles = append(titles, r.Title)
	}
	return titles, nil
}

func (c *Client) get(ctx context.Context, params url.Values) (*queryResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building wiki request: %w", err)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying wiki api: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wiki api returned status %d", res.StatusCode)
	}
	var parsed queryResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding wiki response: %w", err)
	}
	return &parsed, nil
}

// Package books integrates the Google Books catalog and the per-user
// library endpoints.
package books

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const defaultVolumesURL = "https://www.googleapis.com/books/v1/volumes"

const defaultMaxResults = 20

// Volume is a catalog search result.
type Volume struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors,omitempty"`
	Date     string   `json:"date,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
}

// Config holds catalog client configuration.
type Config struct {
	VolumesURL string
	APIKey     string
	HTTPClient *http.Client
}

// Client queries the Google Books volumes API.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new catalog client.
func NewClient(cfg Config) *Client {
	if cfg.VolumesURL == "" {
		cfg.VolumesURL = defaultVolumesURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		config:     cfg,
		httpClient: client,
	}
}

// Search queries the catalog for the given term. number caps the result
// count, zero or negative falls back to the default page size.
func (c *Client) Search(ctx context.Context, term string, number int) ([]Volume, error) {
	if term == "" {
		return nil, goerrors.New("search term must not be empty", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	if number <= 0 {
		number = defaultMaxResults
	}

	params := url.Values{
		"q":          {term},
		"maxResults": {strconv.Itoa(number)},
	}
	if c.config.APIKey != "" {
		params.Set("key", c.config.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.VolumesURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build catalog request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "catalog request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read catalog response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, goerrors.New(
			fmt.Sprintf("catalog responded with status %d", resp.StatusCode),
			goerrors.CategoryInternal,
		)
	}

	var volumesResp volumesResponse
	if err := json.Unmarshal(body, &volumesResp); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to decode catalog response")
	}

	out := make([]Volume, 0, len(volumesResp.Items))
	for _, item := range volumesResp.Items {
		out = append(out, Volume{
			ID:       item.ID,
			Title:    item.VolumeInfo.Title,
			Authors:  item.VolumeInfo.Authors,
			Date:     item.VolumeInfo.PublishedDate,
			ImageURL: item.VolumeInfo.ImageLinks.Thumbnail,
		})
	}

	return out, nil
}

type volumesResponse struct {
	Items []volumeItem `json:"items"`
}

type volumeItem struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title         string   `json:"title"`
		Authors       []string `json:"authors"`
		PublishedDate string   `json:"publishedDate"`
		ImageLinks    struct {
			Thumbnail string `json:"thumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

// Package wiki looks up thumbnail images for concepts via the Wikipedia REST
// summary API. Lookup failure is a normal outcome: callers render a
// placeholder, the user never sees an error.
package wiki

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
	_ "golang.org/x/image/webp"

	"github.com/vanderheijden86/mindmesh/pkg/debug"
)

// DefaultBaseURL is the English Wikipedia REST endpoint.
const DefaultBaseURL = "https://en.wikipedia.org/api/rest_v1"

const userAgent = "mindmesh (https://github.com/vanderheijden86/mindmesh)"

// maxImageBytes caps thumbnail downloads; summaries link small thumbs but a
// redirect could hand back something larger.
const maxImageBytes = 4 << 20

// Client queries page summaries and downloads thumbnails.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
}

// NewClient returns a Client against the default endpoint.
func NewClient() *Client {
	return &Client{HTTPClient: http.DefaultClient, BaseURL: DefaultBaseURL}
}

// summary is the subset of the REST summary response we read.
type summary struct {
	Thumbnail struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
}

// ThumbnailURL returns the thumbnail image URL for a concept name, or "" if
// the page has none or the lookup fails in any way.
func (c *Client) ThumbnailURL(ctx context.Context, name string) string {
	endpoint := c.BaseURL + "/page/summary/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		debug.Log("wiki: summary %q: %v", name, err)
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		debug.Log("wiki: summary %q: status %d", name, resp.StatusCode)
		return ""
	}

	var s summary
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxImageBytes)).Decode(&s); err != nil {
		debug.Log("wiki: summary %q: decode: %v", name, err)
		return ""
	}
	return s.Thumbnail.Source
}

// FetchImage downloads and decodes a thumbnail. Unlike ThumbnailURL this
// returns errors, but callers still treat them as a silent placeholder case.
func (c *Client) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

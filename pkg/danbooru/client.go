package danbooru

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"boorudl/pkg/auth"
	apperrors "boorudl/pkg/errors"
	"boorudl/pkg/logger"
)

// Client talks to one board instance. Credentials are an explicit value
// threaded in at construction; a nil or incomplete pair means anonymous
// access. Metadata requests and asset transfers carry separate
// deadlines: a transfer is bounded by downloadTimeout, not by the much
// shorter request timeout.
type Client struct {
	httpClient     *http.Client
	downloadClient *http.Client
	baseURL        string
	userAgent      string
	creds          *auth.Credentials
	logger         logger.Logger
}

// NewClient creates a new board API client. requestTimeout bounds
// metadata requests (HTML listing, JSON pages, tag search);
// downloadTimeout bounds a single asset transfer including the body
// read. A non-positive downloadTimeout falls back to requestTimeout.
func NewClient(baseURL, userAgent string, requestTimeout, downloadTimeout time.Duration, creds *auth.Credentials, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if baseURL == "" {
		baseURL = BaseURL
	}
	if downloadTimeout <= 0 {
		downloadTimeout = requestTimeout
	}

	return &Client{
		httpClient:     &http.Client{Timeout: requestTimeout},
		downloadClient: &http.Client{Timeout: downloadTimeout},
		baseURL:        baseURL,
		userAgent:      userAgent,
		creds:          creds,
		logger:         log,
	}
}

// BaseURL returns the board instance the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs a metadata GET with the identifying headers set.
func (c *Client) doRequest(ctx context.Context, url, accept string) (*http.Response, error) {
	return c.send(ctx, c.httpClient, url, accept)
}

// send performs a GET through the given client with the identifying
// headers set.
func (c *Client) send(ctx context.Context, httpClient *http.Client, url, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrorTypeUnknown, 0, "failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, apperrors.New(apperrors.ErrorTypeNetwork, 0, "network error: %v", err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// checkResponseStatus maps non-200 responses to classified errors.
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return apperrors.New(apperrors.ErrorTypeAuth, resp.StatusCode, "authentication rejected")
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.New(apperrors.ErrorTypeNotFound, resp.StatusCode, "resource not found")
	case resp.StatusCode >= 500:
		return apperrors.New(apperrors.ErrorTypeServer, resp.StatusCode, "server error")
	default:
		return apperrors.New(apperrors.ErrorTypeUnknown, resp.StatusCode, "unexpected status code: %d", resp.StatusCode)
	}
}

// GetHTML performs a GET and parses the response body as an HTML
// document.
func (c *Client) GetHTML(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := c.doRequest(ctx, url, "text/html")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrorTypeParsing, resp.StatusCode, "failed to parse HTML: %v", err)
	}
	return doc, nil
}

// GetJSON performs a GET and decodes the JSON response into target.
func (c *Client) GetJSON(ctx context.Context, url string, target interface{}) error {
	resp, err := c.doRequest(ctx, url, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.New(apperrors.ErrorTypeNetwork, resp.StatusCode, "failed to read response body: %v", err)
	}

	if err := json.Unmarshal(body, target); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return apperrors.New(apperrors.ErrorTypeParsing, resp.StatusCode, "failed to parse JSON: %v", err)
	}

	return nil
}

// Download opens a streaming GET for an asset URL. Asset URLs are
// unauthenticated, no special headers required. The caller owns the
// returned body; reading it is bounded by the download timeout.
func (c *Client) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	resp, err := c.send(ctx, c.downloadClient, url, "")
	if err != nil {
		return nil, err
	}

	if err := c.checkResponseStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	return resp.Body, nil
}

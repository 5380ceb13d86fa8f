// Package vault implements the DNFileVault REST API client: login, purchase
// and group enumeration, and the authenticated download route.
package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/deltaneutral/dnfvault/pkg/errors"
	"github.com/deltaneutral/dnfvault/pkg/model"
)

const (
	// DefaultTimeout bounds login and metadata listing calls.
	DefaultTimeout = 60 * time.Second

	// DefaultDownloadTimeout bounds authenticated downloads, which are not
	// CDN-accelerated and can carry multi-gigabyte payloads.
	DefaultDownloadTimeout = 10 * time.Minute

	defaultUserAgent = "DNFileVaultClient/1.0-Go (+support@deltaneutral.com)"
)

// Client talks to one resolved API server. The bearer token is established
// once by Login and attached to every subsequent call; there is no refresh,
// a mid-run 401 surfaces as an error.
type Client struct {
	client         *http.Client
	downloadClient *http.Client
	baseURL        string
	userAgent      string
	token          string
}

// NewClient creates a client for the given base URL. Zero timeouts select
// the defaults.
func NewClient(baseURL string, timeout, downloadTimeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if downloadTimeout <= 0 {
		downloadTimeout = DefaultDownloadTimeout
	}
	return &Client{
		client:         &http.Client{Timeout: timeout},
		downloadClient: &http.Client{Timeout: downloadTimeout},
		baseURL:        baseURL,
		userAgent:      defaultUserAgent,
	}
}

// BaseURL returns the API server this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login authenticates and stores the bearer token for the remainder of the
// run. It is attempted exactly once per run; callers treat failure as fatal.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return errors.Wrap(err, "failed to encode login request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuthUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Continue processing
	case http.StatusUnauthorized:
		return ErrBadCredentials
	default:
		return fmt.Errorf("%w: server returned %d", ErrAuthUnavailable, resp.StatusCode)
	}

	var login loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if login.Token == "" {
		return fmt.Errorf("%w: login response carries no token", ErrMalformedResponse)
	}

	c.token = login.Token
	return nil
}

// Authenticated reports whether Login has succeeded.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

type purchaseWire struct {
	ID          int64  `json:"id"`
	ProductName string `json:"product_name"`
}

type groupWire struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ListPurchases returns the account's purchases. An empty list is valid.
func (c *Client) ListPurchases(ctx context.Context) ([]model.Container, error) {
	var body struct {
		Purchases []purchaseWire `json:"purchases"`
	}
	if err := c.getJSON(ctx, "/purchases", &body); err != nil {
		return nil, errors.Wrap(err, "failed to list purchases")
	}

	containers := make([]model.Container, 0, len(body.Purchases))
	for _, p := range body.Purchases {
		containers = append(containers, model.Container{ID: p.ID, Name: p.ProductName, Kind: model.KindPurchase})
	}
	return containers, nil
}

// ListGroups returns the account's groups. An empty list is valid.
func (c *Client) ListGroups(ctx context.Context) ([]model.Container, error) {
	var body struct {
		Groups []groupWire `json:"groups"`
	}
	if err := c.getJSON(ctx, "/groups", &body); err != nil {
		return nil, errors.Wrap(err, "failed to list groups")
	}

	containers := make([]model.Container, 0, len(body.Groups))
	for _, g := range body.Groups {
		containers = append(containers, model.Container{ID: g.ID, Name: g.Name, Kind: model.KindGroup})
	}
	return containers, nil
}

// ListFiles returns the files of one purchase or group, in server order.
func (c *Client) ListFiles(ctx context.Context, container model.Container) ([]model.FileRecord, error) {
	var body struct {
		Files []model.FileRecord `json:"files"`
	}
	path := fmt.Sprintf("/%s/%d/files", container.Kind, container.ID)
	if err := c.getJSON(ctx, path, &body); err != nil {
		return nil, errors.Wrapf(err, "failed to list files for %s %d", container.Kind, container.ID)
	}
	return body.Files, nil
}

// DBHealth is the extended status reported by GET /health/db.
type DBHealth struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Files    int64  `json:"files"`
	Users    int64  `json:"users"`
}

// HealthDB fetches the extended health report. No authentication required.
func (c *Client) HealthDB(ctx context.Context) (*DBHealth, error) {
	var health DBHealth
	if err := c.getJSON(ctx, "/health/db", &health); err != nil {
		return nil, errors.Wrap(err, "failed to check database health")
	}
	return &health, nil
}

// DownloadTo streams the authenticated download route for the given remote
// identity into w. This is the fallback path when a file has no usable CDN
// link.
func (c *Client) DownloadTo(ctx context.Context, uuidFilename string, w io.Writer) error {
	if !c.Authenticated() {
		return ErrNotAuthenticated
	}

	downloadURL := c.baseURL + "/download/" + url.PathEscape(uuidFilename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, http.NoBody)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.downloadClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "download failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d: %w", resp.StatusCode, errors.ErrDownloadFailed)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return errors.Wrap(err, "failed to write download data")
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

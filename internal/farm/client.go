package farm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/gridsphere/kesan/internal/config"
)

// ErrInvalidData marks a farm API body that could not be decoded as JSON.
var ErrInvalidData = errors.New("invalid data from farm API")

// Some farm API deployments reject default Go clients, so requests carry a
// browser-like identity.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.36"

// ReadingSource fetches the most recent sensor reading for one device.
// It returns the reading verbatim as it appeared in the upstream payload,
// or nil with a nil error when the device has no readings.
type ReadingSource interface {
	FetchLatest(ctx context.Context, deviceID int64) (json.RawMessage, error)
}

// NewSource selects the farm API integration from configuration.
func NewSource(cfg *config.FarmConfig) (ReadingSource, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("farm API base URL cannot be empty")
	}

	switch cfg.Source {
	case "public":
		return NewPublicClient(cfg.BaseURL, cfg.Timeout), nil
	case "legacy":
		if cfg.Username == "" || cfg.Password == "" {
			return nil, fmt.Errorf("legacy farm API source requires FARM_USERNAME and FARM_PASSWORD")
		}
		return NewLegacyClient(cfg.BaseURL, cfg.Username, cfg.Password, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown farm API source %q", cfg.Source)
	}
}

// PublicClient reads from the unauthenticated /dapi endpoint.
type PublicClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewPublicClient(baseURL string, timeout time.Duration) *PublicClient {
	slog.Info("creating public farm API client", "baseURL", baseURL)
	return &PublicClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *PublicClient) FetchLatest(ctx context.Context, deviceID int64) (json.RawMessage, error) {
	target := fmt.Sprintf("%s/dapi/?d_id=%d", c.baseURL, deviceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	setFarmHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("farm API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Readings []json.RawMessage `json:"readings"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	if len(payload.Readings) == 0 {
		return nil, nil
	}
	return payload.Readings[0], nil
}

// LegacyClient reads through the superseded stateful flow: CSRF token
// fetch, form login, then the session-scoped live-data endpoint. Each fetch
// runs in a fresh session so no cookies leak across requests.
type LegacyClient struct {
	baseURL  string
	username string
	password string
	timeout  time.Duration
}

func NewLegacyClient(baseURL, username, password string, timeout time.Duration) *LegacyClient {
	slog.Info("creating legacy farm API client", "baseURL", baseURL)
	return &LegacyClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		timeout:  timeout,
	}
}

func (c *LegacyClient) FetchLatest(ctx context.Context, deviceID int64) (json.RawMessage, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	session := &http.Client{
		Timeout: c.timeout,
		Jar:     jar,
	}

	csrfName, csrfToken, err := c.fetchCSRF(ctx, session)
	if err != nil {
		return nil, err
	}

	if err := c.login(ctx, session, csrfName, csrfToken); err != nil {
		return nil, err
	}

	return c.fetchLiveData(ctx, session, deviceID)
}

func (c *LegacyClient) fetchCSRF(ctx context.Context, session *http.Client) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/getCSRF", nil)
	if err != nil {
		return "", "", err
	}
	setFarmHeaders(req)

	resp, err := session.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("CSRF fetch returned status %d", resp.StatusCode)
	}

	var payload struct {
		Name  string `json:"csrf_name"`
		Token string `json:"csrf_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if payload.Name == "" || payload.Token == "" {
		return "", "", fmt.Errorf("%w: CSRF response missing token", ErrInvalidData)
	}

	return payload.Name, payload.Token, nil
}

func (c *LegacyClient) login(ctx context.Context, session *http.Client, csrfName, csrfToken string) error {
	form := url.Values{
		"username": {c.username},
		"password": {c.password},
		csrfName:   {csrfToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	setFarmHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := session.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("login returned status %d", resp.StatusCode)
	}

	// The legacy API answers 200 even on bad credentials, with the failure
	// only visible in the body text.
	text := string(body)
	if !strings.Contains(text, "Login successful") && strings.Contains(strings.ToLower(text), "error") {
		return fmt.Errorf("login failed: %s", text)
	}

	return nil
}

func (c *LegacyClient) fetchLiveData(ctx context.Context, session *http.Client, deviceID int64) (json.RawMessage, error) {
	target := fmt.Sprintf("%s/live-data/%d", c.baseURL, deviceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	setFarmHeaders(req)

	resp, err := session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("live data fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	if len(payload.Data) == 0 {
		return nil, nil
	}
	return payload.Data[0], nil
}

func setFarmHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
}

package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

type Mode string

const (
	ModeSandbox Mode = "sandbox"
	ModeLive    Mode = "live"

	sandboxURL = "https://api.sandbox.paypal.com"
	liveURL    = "https://api.paypal.com"
)

// ErrAuth is returned when no access token could be obtained.
var ErrAuth = errors.New("paypal: authentication failed")

// Config carries the processor credentials. It is built once by the caller
// and handed to NewClient.
type Config struct {
	Mode         Mode
	ClientID     string
	ClientSecret string
	// BaseURL overrides the endpoint implied by Mode (proxies, tests).
	BaseURL string
	Timeout time.Duration
}

func (c Config) endpoint() string {
	if u := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/"); u != "" {
		return u
	}
	if c.Mode == ModeLive {
		return liveURL
	}
	return sandboxURL
}

type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, fmt.Errorf("paypal: client id and secret are required")
	}
	switch cfg.Mode {
	case "":
		cfg.Mode = ModeSandbox
	case ModeSandbox, ModeLive:
	default:
		return nil, fmt.Errorf("paypal: unknown mode %q", cfg.Mode)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		baseURL:    cfg.endpoint(),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// CreatePayment posts a payment and reports success for any 2xx answer. A
// processor rejection comes back as *APIError; anything else is a transport
// or authentication failure.
func (c *Client) CreatePayment(ctx context.Context, p Payment) (*PaymentResponse, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("paypal: encode payment: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payments/payment", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal: create payment: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("paypal: read payment response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, raw)
	}

	// any 2xx is an accepted payment, the body only adds detail
	var out PaymentResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			log.Warnf("paypal: undecodable payment response (status %d): %s", resp.StatusCode, err)
			return &PaymentResponse{}, nil
		}
	}
	return &out, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuth, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %d %s", ErrAuth, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var tr tokenResponse
	if err := json.Unmarshal(raw, &tr); err != nil || tr.AccessToken == "" {
		return "", fmt.Errorf("%w: unexpected token response", ErrAuth)
	}

	// refresh a minute early
	ttl := time.Duration(tr.ExpiresIn)*time.Second - time.Minute
	if ttl < 0 {
		ttl = 0
	}
	c.accessToken = tr.AccessToken
	c.expiresAt = time.Now().Add(ttl)
	return c.accessToken, nil
}

package binlist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://lookup.binlist.net"
	Unknown        = "Unknown"
)

type FailureReason string

const (
	FailureTransport FailureReason = "transport"
	FailureStatus    FailureReason = "status"
	FailureDecode    FailureReason = "decode"
)

// Failure describes why a lookup could not be resolved.
type Failure struct {
	Reason FailureReason
	Detail string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("bin lookup %s failure: %s", f.Reason, f.Detail)
}

// Info is the fixed-shape result of a lookup. Every field is "Unknown" when
// Failure is set.
type Info struct {
	Bank    string
	Country string
	Brand   string
	Type    string
	Failure *Failure
}

func (i Info) OK() bool { return i.Failure == nil }

// Err returns the failure diagnostic, or "" on success.
func (i Info) Err() string {
	if i.Failure == nil {
		return ""
	}
	return i.Failure.Error()
}

func UnknownInfo(f *Failure) Info {
	return Info{Bank: Unknown, Country: Unknown, Brand: Unknown, Type: Unknown, Failure: f}
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Resolver looks up issuing bank metadata by six digit prefix.
type Resolver struct {
	baseURL    string
	httpClient *http.Client
}

func NewResolver(cfg Config) *Resolver {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Resolver{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type lookupResponse struct {
	Bank *struct {
		Name string `json:"name"`
	} `json:"bank"`
	Country *struct {
		Name string `json:"name"`
	} `json:"country"`
	Scheme string `json:"scheme"`
	Type   string `json:"type"`
}

// Resolve issues a single lookup for bin. It never returns an error: every
// failure is reported through Info.Failure.
func (r *Resolver) Resolve(ctx context.Context, bin string) Info {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/"+bin, nil)
	if err != nil {
		return r.fail(bin, &Failure{Reason: FailureTransport, Detail: err.Error()})
	}
	req.Header.Set("Accept-Version", "3")
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return r.fail(bin, &Failure{Reason: FailureTransport, Detail: err.Error()})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return r.fail(bin, &Failure{Reason: FailureTransport, Detail: err.Error()})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return r.fail(bin, &Failure{
			Reason: FailureStatus,
			Detail: fmt.Sprintf("%d %s for url: %s", resp.StatusCode, http.StatusText(resp.StatusCode), req.URL),
		})
	}

	var data lookupResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return r.fail(bin, &Failure{Reason: FailureDecode, Detail: err.Error()})
	}

	info := Info{
		Bank:    Unknown,
		Country: Unknown,
		Brand:   orUnknown(data.Scheme),
		Type:    orUnknown(data.Type),
	}
	if data.Bank != nil {
		info.Bank = orUnknown(data.Bank.Name)
	}
	if data.Country != nil {
		info.Country = orUnknown(data.Country.Name)
	}
	return info
}

func (r *Resolver) fail(bin string, f *Failure) Info {
	log.WithFields(log.Fields{
		"bin":    bin,
		"reason": f.Reason,
	}).Warnf("bin lookup failed: %s", f.Detail)
	return UnknownInfo(f)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return Unknown
	}
	return s
}

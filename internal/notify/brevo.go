package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
)

// DefaultBrevoEndpoint is the Brevo transactional email API endpoint.
const DefaultBrevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// BrevoConfig configures the Brevo HTTP API transport, the fallback for
// environments where outbound SMTP is blocked.
type BrevoConfig struct {
	APIKey    string
	FromName  string
	FromEmail string
	// Endpoint overrides the API URL; empty means DefaultBrevoEndpoint.
	Endpoint string
	Timeout  time.Duration
}

// BrevoTransport delivers messages through the Brevo REST API.
type BrevoTransport struct {
	http      *http.Client
	endpoint  string
	apiKey    string
	fromName  string
	fromEmail string
}

var _ Transport = (*BrevoTransport)(nil)

// NewBrevoTransport creates a Brevo API transport with a bounded request
// timeout.
func NewBrevoTransport(cfg BrevoConfig) *BrevoTransport {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultBrevoEndpoint
	}
	return &BrevoTransport{
		http:      &http.Client{Timeout: timeout},
		endpoint:  endpoint,
		apiKey:    cfg.APIKey,
		fromName:  cfg.FromName,
		fromEmail: cfg.FromEmail,
	}
}

type brevoAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoRequest struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

// Send delivers one HTML message. Non-2xx responses surface the provider's
// body as the error message.
func (t *BrevoTransport) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(brevoRequest{
		Sender:      brevoAddress{Name: t.fromName, Email: t.fromEmail},
		To:          []brevoAddress{{Email: msg.To}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
	})
	if err != nil {
		return errors.Wrap(err, "encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", t.apiKey)

	resp, err := t.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "send mail")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errors.Errorf("brevo api: status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

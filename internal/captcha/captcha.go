// internal/captcha/captcha.go
//
// CAPTCHA token verification against a siteverify endpoint.
//
// Context
// -------
// The contact form embeds a Turnstile-compatible widget.  The browser sends
// the widget's token with the form; the server posts it, together with the
// shared secret and the client IP, to the provider's siteverify URL and
// trusts the `success` flag in the JSON answer.
//
// Notes
// -----
//   - TestSecret is the provider's published always-pass key.  It is the
//     config default so local setups work, and it must be replaced in
//     production.  IsTestSecret lets the boot path warn about it.
//   - A rejected token is ErrRejected (caller maps to 400).  Any transport
//     or decode problem is returned as-is (caller maps to 500).
package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"
	WidgetScriptURL  = "https://challenges.cloudflare.com/turnstile/v0/api.js"
	TestSecret       = "1x0000000000000000000000000000000AA"
	TestSiteKey      = "1x00000000000000000000AA"
)

// ErrRejected means the provider answered and refused the token.
var ErrRejected = errors.New("captcha: token rejected")

// Verifier checks one token.  *Client satisfies it.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// Client posts tokens to a siteverify endpoint.
type Client struct {
	secret    string
	verifyURL string
	http      *http.Client
}

// New returns a Client.  Empty verifyURL means DefaultVerifyURL; nil hc gets
// a client with a 10 s timeout.
func New(secret, verifyURL string, hc *http.Client) *Client {
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{secret: secret, verifyURL: verifyURL, http: hc}
}

// IsTestSecret reports whether secret is the public always-pass key.
func IsTestSecret(secret string) bool { return secret == "" || secret == TestSecret }

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify posts token to the provider.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) error {
	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("captcha verify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("captcha verify: unexpected status %d", resp.StatusCode)
	}

	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("captcha verify: decode: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("%w: %s", ErrRejected, strings.Join(out.ErrorCodes, ","))
	}
	return nil
}

package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/igrejaconecta/broadcaster/internal/broadcast"
)

// Max length of a URL button title accepted by the Cloud API.
const maxButtonTitle = 20

// APIError is a non-2xx answer from the Cloud API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api: unexpected status code: %d body=%q", e.StatusCode, e.Body)
}

type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

type Options struct {
	BaseURL    string
	APIVersion string
	Timeout    time.Duration
	// RatePerSec caps outgoing requests across all tenants. Zero disables it.
	RatePerSec float64
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/") + "/" + strings.Trim(opts.APIVersion, "/"),
		client:  &http.Client{Timeout: opts.Timeout},
	}
	if opts.RatePerSec > 0 {
		burst := int(opts.RatePerSec)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), burst)
	}
	return c
}

type textBody struct {
	Body string `json:"body"`
}

type interactiveBody struct {
	Text string `json:"text"`
}

type urlButton struct {
	Type  string `json:"type"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

type interactive struct {
	Type   string          `json:"type"`
	Body   interactiveBody `json:"body"`
	Action struct {
		Buttons []urlButton `json:"buttons"`
	} `json:"action"`
}

type message struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             *textBody    `json:"text,omitempty"`
	Interactive      *interactive `json:"interactive,omitempty"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// SendText sends a plain text message and returns the provider message id.
func (c *Client) SendText(ctx context.Context, to, body string, creds broadcast.Credentials) (string, error) {
	return c.send(ctx, creds, message{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             &textBody{Body: body},
	})
}

// SendInteractive sends body with a single URL button. Titles longer than
// the provider limit are cut.
func (c *Client) SendInteractive(ctx context.Context, to, body, buttonText, url string, creds broadcast.Credentials) (string, error) {
	in := &interactive{Type: "button", Body: interactiveBody{Text: body}}
	in.Action.Buttons = []urlButton{{Type: "url", URL: url, Title: truncate(buttonText, maxButtonTitle)}}
	return c.send(ctx, creds, message{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "interactive",
		Interactive:      in,
	})
}

// ValidateCredentials reports whether the phone number id is readable with
// the token.
func (c *Client) ValidateCredentials(ctx context.Context, creds broadcast.Credentials) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+creds.PhoneNumberID, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK, nil
}

func (c *Client) send(ctx context.Context, creds broadcast.Credentials, msg message) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	reqBody, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}

	url := c.baseURL + "/" + creds.PhoneNumberID + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var sr sendResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return "", fmt.Errorf("failed to decode json: %w body=%q", err, string(body))
	}
	if len(sr.Messages) == 0 {
		return "", nil
	}
	return sr.Messages[0].ID, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/igrejaconecta/broadcaster/internal/broadcast"
)

var creds = broadcast.Credentials{PhoneNumberID: "1055", AccessToken: "tok-abc"}

type captured struct {
	Method string
	Path   string
	Auth   string
	Body   message
	Raw    []byte
}

func newServer(t *testing.T, status int, resp string, got *captured) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Method = r.Method
		got.Path = r.URL.Path
		got.Auth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		got.Raw = b
		_ = json.Unmarshal(b, &got.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)

	return NewClient(Options{BaseURL: srv.URL + "/", APIVersion: "v20.0", Timeout: time.Second})
}

func TestSendText(t *testing.T) {
	t.Parallel()

	var got captured
	c := newServer(t, http.StatusOK, `{"messages":[{"id":"wamid.1"}]}`, &got)

	id, err := c.SendText(context.Background(), "5511999990001", "Culto às 19h", creds)
	if err != nil {
		t.Fatalf("SendText() error: %v", err)
	}
	if id != "wamid.1" {
		t.Fatalf("expected id wamid.1, got %q", id)
	}
	if got.Method != http.MethodPost || got.Path != "/v20.0/1055/messages" {
		t.Fatalf("unexpected request %s %s", got.Method, got.Path)
	}
	if got.Auth != "Bearer tok-abc" {
		t.Fatalf("unexpected auth header %q", got.Auth)
	}
	if got.Body.MessagingProduct != "whatsapp" || got.Body.Type != "text" || got.Body.To != "5511999990001" {
		t.Fatalf("unexpected payload %+v", got.Body)
	}
	if got.Body.Text == nil || got.Body.Text.Body != "Culto às 19h" || got.Body.Interactive != nil {
		t.Fatalf("unexpected text payload %+v", got.Body)
	}
}

func TestSendInteractive_TruncatesButtonTitle(t *testing.T) {
	t.Parallel()

	var got captured
	c := newServer(t, http.StatusOK, `{"messages":[{"id":"wamid.2"}]}`, &got)

	_, err := c.SendInteractive(context.Background(), "5511999990002", "Live hoje",
		"Assistir à transmissão ao vivo", "https://igreja.example/live", creds)
	if err != nil {
		t.Fatalf("SendInteractive() error: %v", err)
	}
	in := got.Body.Interactive
	if got.Body.Type != "interactive" || in == nil || in.Type != "button" {
		t.Fatalf("unexpected payload %+v", got.Body)
	}
	if in.Body.Text != "Live hoje" || len(in.Action.Buttons) != 1 {
		t.Fatalf("unexpected interactive %+v", in)
	}
	btn := in.Action.Buttons[0]
	if btn.Type != "url" || btn.URL != "https://igreja.example/live" {
		t.Fatalf("unexpected button %+v", btn)
	}
	if btn.Title != "Assistir à transmiss" {
		t.Fatalf("expected 20-rune title, got %q", btn.Title)
	}
}

func TestSendInteractive_WireFormat(t *testing.T) {
	t.Parallel()

	var got captured
	c := newServer(t, http.StatusOK, `{"messages":[{"id":"wamid.3"}]}`, &got)

	if _, err := c.SendInteractive(context.Background(), "55", "Live hoje", "Assistir", "https://igreja.example/live", creds); err != nil {
		t.Fatalf("SendInteractive() error: %v", err)
	}

	var raw struct {
		Interactive struct {
			Body map[string]string `json:"body"`
		} `json:"interactive"`
	}
	if err := json.Unmarshal(got.Raw, &raw); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	body := raw.Interactive.Body
	if len(body) != 1 || body["text"] != "Live hoje" {
		t.Fatalf(`want interactive.body {"text":"Live hoje"}, got %s`, got.Raw)
	}
}

func TestSend_Non2xx_ReturnsAPIError(t *testing.T) {
	t.Parallel()

	var got captured
	c := newServer(t, http.StatusUnauthorized, `{"error":{"message":"bad token"}}`, &got)

	_, err := c.SendText(context.Background(), "5511", "x", creds)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Body == "" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestSend_InvalidJSON(t *testing.T) {
	t.Parallel()

	var got captured
	c := newServer(t, http.StatusOK, `not-json`, &got)

	if _, err := c.SendText(context.Background(), "5511", "x", creds); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestSend_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, APIVersion: "v20.0", Timeout: 50 * time.Millisecond})
	if _, err := c.SendText(context.Background(), "5511", "x", creds); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestSend_RateLimitHonoursContext(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"messages":[{"id":"x"}]}`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, APIVersion: "v20.0", RatePerSec: 0.5})

	if _, err := c.SendText(context.Background(), "5511", "x", creds); err != nil {
		t.Fatalf("first send: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.SendText(ctx, "5511", "x", creds); err == nil {
		t.Fatal("expected limiter wait to fail on short deadline")
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected 1 request to reach the server, got %d", n)
	}
}

func TestValidateCredentials(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v20.0/1055" || r.Header.Get("Authorization") != "Bearer tok-abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":"1055"}`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, APIVersion: "v20.0"})

	ok, err := c.ValidateCredentials(context.Background(), creds)
	if err != nil || !ok {
		t.Fatalf("expected valid credentials, ok=%v err=%v", ok, err)
	}
	ok, err = c.ValidateCredentials(context.Background(), broadcast.Credentials{PhoneNumberID: "1055", AccessToken: "wrong"})
	if err != nil || ok {
		t.Fatalf("expected invalid credentials, ok=%v err=%v", ok, err)
	}
}

package source

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept-Language": "en-US,en;q=0.9",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
}

// StatusError reports a non-200 response so callers can inspect the code.
type StatusError struct {
	Status int
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.URL)
}

// Client is the HTTP front shared by all adapters: browser-like headers,
// optional proxy, fixed timeout.
type Client struct {
	http *http.Client
}

// NewClient builds a client. proxyURL may be empty; a malformed proxy is
// ignored rather than failing startup.
func NewClient(proxyURL string) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil && u.Scheme != "" {
			transport.Proxy = http.ProxyURL(u)
		} else {
			log.Warn().Str("proxy", proxyURL).Msg("ignoring malformed proxy url")
		}
	}
	return &Client{
		http: &http.Client{Timeout: 30 * time.Second, Transport: transport},
	}
}

func mergeHeaders(extra map[string]string) http.Header {
	h := http.Header{}
	for k, v := range defaultHeaders {
		h.Set(k, v)
	}
	for k, v := range extra {
		h.Set(k, v)
	}
	return h
}

func (c *Client) do(ctx context.Context, method, rawURL string, body io.Reader, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header = mergeHeaders(headers)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{Status: resp.StatusCode, URL: rawURL}
	}
	return resp, nil
}

// GetText fetches a page body as a string.
func (c *Client) GetText(ctx context.Context, rawURL string, headers map[string]string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, rawURL, nil, headers)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rawURL, err)
	}
	return string(b), nil
}

// GetBytes fetches a raw body.
func (c *Client) GetBytes(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, rawURL, nil, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// GetJSON fetches and decodes a JSON document into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, headers map[string]string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, rawURL, nil, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

// PostJSON posts a JSON body and decodes the JSON response into out.
func (c *Client) PostJSON(ctx context.Context, rawURL string, body any, headers map[string]string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	merged := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		merged[k] = v
	}
	resp, err := c.do(ctx, http.MethodPost, rawURL, bytes.NewReader(payload), merged)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

// PostForm posts url-encoded form data and decodes the JSON response into out.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values, headers map[string]string, out any) error {
	merged := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	for k, v := range headers {
		merged[k] = v
	}
	resp, err := c.do(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()), merged)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", rawURL, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("non-JSON response from %s: %.200s", rawURL, string(b))
	}
	return nil
}

// SafeGetBytes downloads cover bytes best-effort: data: and file: URLs are
// read inline, http(s) gets a synthesized Referer, and any failure returns
// (nil, false) instead of an error.
func (c *Client) SafeGetBytes(ctx context.Context, rawURL string) ([]byte, bool) {
	switch {
	case strings.HasPrefix(rawURL, "data:"):
		header, payload, ok := strings.Cut(rawURL, ",")
		if !ok {
			return nil, false
		}
		if strings.Contains(header, ";base64") {
			b, err := base64.StdEncoding.DecodeString(payload)
			if err != nil {
				log.Warn().Err(err).Msg("data url decode failed")
				return nil, false
			}
			return b, true
		}
		return []byte(payload), true

	case strings.HasPrefix(rawURL, "file://"):
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, false
		}
		b, err := os.ReadFile(u.Path)
		if err != nil {
			log.Warn().Err(err).Str("url", rawURL).Msg("file url read failed")
			return nil, false
		}
		return b, true
	}

	headers := map[string]string{}
	if u, err := url.Parse(rawURL); err == nil && u.Scheme != "" && u.Host != "" {
		headers["Referer"] = u.Scheme + "://" + u.Host + "/"
	}
	b, err := c.GetBytes(ctx, rawURL, headers)
	if err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("cover download failed")
		return nil, false
	}
	return b, true
}

// GetTextViaJina fetches a page through the r.jina.ai reader, a lightweight
// fallback for sites that answer direct requests with 403/anti-bot pages.
func (c *Client) GetTextViaJina(ctx context.Context, rawURL string) (string, error) {
	headers := map[string]string{
		"Accept":          "text/plain,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	}
	return c.GetText(ctx, "https://r.jina.ai/"+rawURL, headers)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == code
}

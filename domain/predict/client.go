// Package predict talks to the leaf classification service.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// FieldName is the multipart field carrying the image.
const FieldName = "file"

const maxErrorBody = 4 << 10

// Image is the payload a prediction is made from.
type Image interface {
	Bytes() []byte
	ContentType() string
	Filename() string
}

// Client submits images to {baseURL}/predict. It performs exactly one request
// per call and never retries.
type Client struct {
	url    *url.URL
	client *http.Client
	logger *slog.Logger
}

// NewClient parses baseURL. A nil client uses http.DefaultClient.
func NewClient(baseURL string, client *http.Client, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid url %q: scheme must be http or https", baseURL)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{url: u, client: client, logger: logger}, nil
}

// NewHTTPClient returns a client with the given overall timeout; 0 leaves the
// transport default in place.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() string { return c.url.String() }

// Predict uploads img and decodes the classification.
func (c *Client) Predict(ctx context.Context, img Image) (Result, error) {
	const op = "predict"
	if img == nil {
		return Result{}, &TransportError{Op: op, Err: errors.New("no image")}
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreatePart(filePartHeader(img))
	if err != nil {
		return Result{}, &TransportError{Op: op, Err: fmt.Errorf("create form: %w", err)}
	}
	if _, err := part.Write(img.Bytes()); err != nil {
		return Result{}, &TransportError{Op: op, Err: fmt.Errorf("write form: %w", err)}
	}
	if err := writer.Close(); err != nil {
		return Result{}, &TransportError{Op: op, Err: fmt.Errorf("close multipart writer: %w", err)}
	}

	endpoint := c.url.JoinPath("/predict").String()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return Result{}, &TransportError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, &TransportError{Op: op, Err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Result{}, &ServerError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	res, err := Decode(resp.Body)
	if err != nil {
		return Result{}, &ServerError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	if c.logger != nil {
		c.logger.Debug("prediction received",
			"label", res.Label,
			"confidence", res.Confidence,
			"healthy", res.IsHealthy,
			"upload", humanize.Bytes(uint64(len(img.Bytes()))),
			"elapsed", time.Since(start),
		)
	}
	return res, nil
}

func filePartHeader(img Image) textproto.MIMEHeader {
	filename := img.Filename()
	if filename == "" {
		filename = "leaf.jpg"
	}
	ct := img.ContentType()
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FieldName, escapeQuotes(filename)))
	h.Set("Content-Type", ct)
	return h
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

// Health queries {baseURL}/health and expects {"status":"ok"}.
func (c *Client) Health(ctx context.Context) error {
	const op = "health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url.JoinPath("/health").String(), nil)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &ServerError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return &ServerError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response body: %w", err)}
	}
	if body.Status != "ok" {
		return &ServerError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("status %q", body.Status)}
	}
	return nil
}

package converter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// DefaultEndpoint is the hosted conversion service
const DefaultEndpoint = "https://jitendra-personal-website.herokuapp.com/convertImages"

// maxResponseBytes bounds the JSON body; 12 base64 images fit comfortably
const maxResponseBytes = 512 << 20

// Client submits conversion requests to a remote endpoint as multipart forms
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
	progress   ProgressFunc
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each request. Zero waits indefinitely.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithProgress installs an upload observer
func WithProgress(fn ProgressFunc) Option {
	return func(c *Client) { c.progress = fn }
}

// NewClient creates a client for the given endpoint
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL requests are posted to
func (c *Client) Endpoint() string { return c.endpoint }

// Convert posts the options and every file, and returns the service's
// per-file results in submission order
func (c *Client) Convert(ctx context.Context, req Request) ([]Result, error) {
	body, contentType, err := encodeRequest(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var reader io.Reader = bytes.NewReader(body)
	if c.progress != nil {
		if w := c.progress(int64(len(body))); w != nil {
			reader = io.TeeReader(reader, w)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, reader)
	if err != nil {
		return nil, &TransportError{Err: goerr.Wrap(err, "failed to build conversion request", goerr.V("endpoint", c.endpoint))}
	}
	httpReq.ContentLength = int64(len(body))
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug("submitting conversion request",
		"endpoint", c.endpoint,
		"files", len(req.Files),
		"format", req.Options.Format,
		"bytes", len(body))

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: goerr.Wrap(err, "conversion request failed", goerr.V("endpoint", c.endpoint))}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("conversion response received",
		"status", resp.StatusCode,
		"elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Err: goerr.New(
			fmt.Sprintf("request failed with status code %d", resp.StatusCode),
			goerr.V("endpoint", c.endpoint))}
	}

	var decoded response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&decoded); err != nil {
		return nil, &TransportError{Err: goerr.Wrap(err, "failed to decode conversion response")}
	}

	switch {
	case decoded.Status == nil || (*decoded.Status != 0 && *decoded.Status != 1):
		return nil, &TransportError{Err: goerr.New("malformed response: missing or unknown status",
			goerr.V("endpoint", c.endpoint))}
	case *decoded.Status == 0 && decoded.Message == "":
		return nil, &TransportError{Err: goerr.New("malformed response: failure without a message",
			goerr.V("endpoint", c.endpoint))}
	case *decoded.Status == 0:
		c.logger.Info("conversion rejected by service", "message", decoded.Message)
		return nil, &ServiceError{Message: decoded.Message}
	}

	c.logger.Info("conversion complete", "results", len(decoded.Files))
	return decoded.Files, nil
}

// encodeRequest builds the multipart body: the four option fields followed by
// one "files" part per upload
func encodeRequest(req Request) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"height", req.Options.Height},
		{"width", req.Options.Width},
		{"quality", req.Options.Quality},
		{"format", string(req.Options.Format)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}

	for _, upload := range req.Files {
		if err := writeFilePart(mw, upload); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFilePart(mw *multipart.Writer, upload Upload) error {
	f, err := os.Open(upload.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", upload.Name, err)
	}
	defer func() { _ = f.Close() }()

	contentType := upload.Type
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="files"; filename="%s"`, quoteEscaper.Replace(upload.Name)))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create part for %s: %w", upload.Name, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to read %s: %w", upload.Name, err)
	}
	return nil
}

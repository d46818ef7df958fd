package veo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sportscast/internal/infra"
)

// Options controls how a Veo client is configured. One client is
// constructed per pooled credential.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client talks to the Veo long-running video generation API. Generation is
// asynchronous: Submit returns an operation handle that is polled until the
// service reports completion, then the media is fetched with the same
// credential that submitted it.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

// Operation is a handle to an in-flight generation job.
type Operation struct {
	Name     string
	Done     bool
	VideoURI string
}

// APIError carries the service's HTTP status so callers can distinguish
// transient overload signals from permanent rejections.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("veo status %d", e.Status)
	}
	return fmt.Sprintf("veo status %d: %s", e.Status, e.Message)
}

type veoSubmitRequest struct {
	Instances  []veoInstance  `json:"instances"`
	Parameters *veoParameters `json:"parameters,omitempty"`
}

type veoInstance struct {
	Prompt string `json:"prompt"`
}

type veoParameters struct {
	NumberOfVideos int    `json:"numberOfVideos,omitempty"`
	Resolution     string `json:"resolution,omitempty"`
	AspectRatio    string `json:"aspectRatio,omitempty"`
}

type veoOperationResponse struct {
	Name     string           `json:"name"`
	Done     bool             `json:"done"`
	Response *veoOperationBody `json:"response,omitempty"`
	Error    *veoStatusDetail  `json:"error,omitempty"`
}

type veoOperationBody struct {
	GenerateVideoResponse *veoVideoResponse `json:"generateVideoResponse,omitempty"`
}

type veoVideoResponse struct {
	GeneratedSamples []veoSample `json:"generatedSamples"`
}

type veoSample struct {
	Video *veoVideo `json:"video,omitempty"`
}

type veoVideo struct {
	URI string `json:"uri"`
}

type veoStatusDetail struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type veoErrorResponse struct {
	Error veoStatusDetail `json:"error"`
}

// NewClient constructs a Veo client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one with sensible timeouts will be created.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	model := opts.Model
	if model == "" {
		model = "veo-3.1-fast-generate-preview"
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: client,
		logger:     logger,
	}
}

// Model returns the configured Veo model identifier.
func (c *Client) Model() string {
	return c.model
}

// Submit starts a generation job and returns its operation handle.
func (c *Client) Submit(ctx context.Context, prompt string) (Operation, error) {
	payload := veoSubmitRequest{
		Instances: []veoInstance{{Prompt: prompt}},
		Parameters: &veoParameters{
			NumberOfVideos: 1,
			Resolution:     "1080p",
			AspectRatio:    "16:9",
		},
	}

	path := fmt.Sprintf("/models/%s:predictLongRunning", url.PathEscape(c.model))
	var resp veoOperationResponse
	if err := c.invoke(ctx, http.MethodPost, path, payload, &resp); err != nil {
		return Operation{}, err
	}
	if resp.Name == "" {
		return Operation{}, &APIError{Status: 500, Message: "no operation name returned"}
	}

	c.logger.Debug().
		Str("operation", resp.Name).
		Str("model", c.model).
		Msg("veo: generation job submitted")

	return operationFromResponse(resp), nil
}

// Poll fetches the operation's current state.
func (c *Client) Poll(ctx context.Context, op Operation) (Operation, error) {
	path := "/" + strings.TrimLeft(op.Name, "/")
	var resp veoOperationResponse
	if err := c.invoke(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return Operation{}, err
	}
	if resp.Error != nil {
		return Operation{}, &APIError{Status: resp.Error.Code, Message: resp.Error.Message}
	}
	return operationFromResponse(resp), nil
}

// Download fetches generated media to dest. Media URIs are scoped to the
// credential that submitted the job, so the same key is appended.
func (c *Client) Download(ctx context.Context, uri, dest string) error {
	target := uri
	if c.apiKey != "" {
		sep := "?"
		if strings.Contains(uri, "?") {
			sep = "&"
		}
		target = uri + sep + "key=" + url.QueryEscape(c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("create download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("ensure media directory: %w", err)
	}
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("write media file: %w", err)
	}
	return nil
}

func (c *Client) invoke(ctx context.Context, method, path string, payload, out any) error {
	endpoint := c.baseURL + path

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	req.URL.RawQuery = q.Encode()
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke veo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr veoErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return &APIError{Status: resp.StatusCode, Message: apiErr.Error.Message}
		}
		return &APIError{Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode veo response: %w", err)
	}
	return nil
}

func operationFromResponse(resp veoOperationResponse) Operation {
	op := Operation{Name: resp.Name, Done: resp.Done}
	if resp.Response != nil && resp.Response.GenerateVideoResponse != nil {
		for _, sample := range resp.Response.GenerateVideoResponse.GeneratedSamples {
			if sample.Video != nil && sample.Video.URI != "" {
				op.VideoURI = sample.Video.URI
				break
			}
		}
	}
	return op
}

var _ Generator = (*Client)(nil)

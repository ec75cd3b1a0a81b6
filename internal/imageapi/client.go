package imageapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the OpenAI API base URL.
const DefaultBaseURL = "https://api.openai.com/v1"

const (
	generationsPath = "/images/generations"
	editsPath       = "/images/edits"
)

// Client talks to the OpenAI Images API. It holds no per-request state and is
// safe for concurrent use.
type Client struct {
	apiKey       string
	baseURL      string
	organization string
	httpClient   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithHTTPClient sets the HTTP client used for remote calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithOrganization sets the OpenAI-Organization header.
func WithOrganization(org string) Option {
	return func(c *Client) {
		c.organization = org
	}
}

func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate creates images from a text prompt.
func (c *Client) Generate(ctx context.Context, opts Options) (*Response, error) {
	body, err := json.Marshal(generationRequest{
		Model:             opts.Model,
		Prompt:            opts.Prompt,
		N:                 opts.N,
		Size:              opts.Size,
		Background:        opts.Background,
		Moderation:        opts.Moderation,
		Quality:           opts.Quality,
		OutputFormat:      opts.OutputFormat,
		OutputCompression: opts.OutputCompression,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	return c.do(ctx, generationsPath, "application/json", bytes.NewReader(body))
}

// Edit creates images from a text prompt and one or more reference images.
// Every image is sent under the multi-valued image[] field in the given order.
func (c *Client) Edit(ctx context.Context, opts Options, images []File) (*Response, error) {
	if len(images) == 0 {
		return nil, errors.New("edit requires at least one image")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range editFields(opts) {
		if err := w.WriteField(field[0], field[1]); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", field[0], err)
		}
	}

	for _, img := range images {
		part, err := createImagePart(w, img)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file %s: %w", img.Name, err)
		}
		if _, err := io.Copy(part, img.Content); err != nil {
			return nil, fmt.Errorf("failed to read image %s: %w", img.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return c.do(ctx, editsPath, w.FormDataContentType(), &buf)
}

// editFields lists the text fields of an edit request in a stable order.
func editFields(opts Options) [][2]string {
	fields := [][2]string{
		{"model", opts.Model},
		{"prompt", opts.Prompt},
		{"n", strconv.Itoa(opts.N)},
		{"size", opts.Size},
	}
	optional := [][2]string{
		{"background", opts.Background},
		{"moderation", opts.Moderation},
		{"quality", opts.Quality},
		{"output_format", opts.OutputFormat},
	}
	for _, f := range optional {
		if f[1] != "" {
			fields = append(fields, f)
		}
	}
	if opts.OutputCompression != nil {
		fields = append(fields, [2]string{"output_compression", strconv.Itoa(*opts.OutputCompression)})
	}
	return fields
}

func createImagePart(w *multipart.Writer, img File) (io.Writer, error) {
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image[]"; filename="%s"`, escapeQuotes(img.Name)))
	h.Set("Content-Type", contentType)
	return w.CreatePart(h)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func (c *Client) do(ctx context.Context, path, contentType string, body io.Reader) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.organization != "" {
		req.Header.Set("OpenAI-Organization", c.organization)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Str("request_id", resp.Header.Get("x-request-id")).
		Msg("Image API responded")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseError(resp.StatusCode, respBody)
	}

	var imgResp imageResponse
	if err := json.Unmarshal(respBody, &imgResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if imgResp.Error != nil {
		return nil, &APIError{
			Status:  resp.StatusCode,
			Code:    imgResp.Error.Code,
			Type:    imgResp.Error.Type,
			Message: imgResp.Error.Message,
		}
	}

	return convertResponse(imgResp), nil
}

func convertResponse(imgResp imageResponse) *Response {
	out := &Response{
		Created: imgResp.Created,
		Data:    make([]Image, len(imgResp.Data)),
	}
	for i, d := range imgResp.Data {
		out.Data[i] = Image{B64JSON: d.B64JSON, RevisedPrompt: d.RevisedPrompt}
	}
	if imgResp.Usage != nil {
		out.Usage = &Usage{
			InputTokens:  imgResp.Usage.InputTokens,
			OutputTokens: imgResp.Usage.OutputTokens,
			TotalTokens:  imgResp.Usage.TotalTokens,
		}
	}
	return out
}

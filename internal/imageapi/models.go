package imageapi

import "io"

// DefaultModel is the image model used when none is configured.
const DefaultModel = "gpt-image-1"

// Options is the normalized option set sent to the generate and edit endpoints.
// Empty strings and a nil OutputCompression are left out of the outgoing call
// so the remote service applies its own defaults.
type Options struct {
	Model             string
	Prompt            string
	N                 int
	Size              string
	Background        string
	Moderation        string
	Quality           string
	OutputFormat      string
	OutputCompression *int
}

// File is a reference image forwarded to the edit endpoint.
type File struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// Response is the result of a generate or edit call.
type Response struct {
	Created int64
	Data    []Image
	Usage   *Usage
}

// Image is a single generated image.
type Image struct {
	B64JSON       string
	RevisedPrompt string
}

// Usage reports token usage when the remote returns it.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// generationRequest is the JSON body of POST /images/generations.
type generationRequest struct {
	Model             string `json:"model"`
	Prompt            string `json:"prompt"`
	N                 int    `json:"n"`
	Size              string `json:"size"`
	Background        string `json:"background,omitempty"`
	Moderation        string `json:"moderation,omitempty"`
	Quality           string `json:"quality,omitempty"`
	OutputFormat      string `json:"output_format,omitempty"`
	OutputCompression *int   `json:"output_compression,omitempty"`
}

type imageResponse struct {
	Created int64        `json:"created"`
	Data    []imageData  `json:"data"`
	Usage   *imageUsage  `json:"usage,omitempty"`
	Error   *errorDetail `json:"error,omitempty"`
}

type imageData struct {
	B64JSON       string `json:"b64_json"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

type imageUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type errorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
}

type errorEnvelope struct {
	Error *errorDetail `json:"error"`
}

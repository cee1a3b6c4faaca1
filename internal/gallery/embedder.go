package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// ErrNoFaceDetected is returned when the embedding service cannot find a
// face in the image. It is a resolution, not a failure.
var ErrNoFaceDetected = errors.New("no face detected in image")

// Embedder turns raw image bytes into a face embedding.
type Embedder interface {
	Embed(ctx context.Context, imageData []byte) ([]float32, error)
}

// EmbeddingClient talks to the face embedding service over HTTP.
type EmbeddingClient struct {
	baseURL string
	dim     int
	client  *http.Client
}

// NewEmbeddingClient creates a client for the embedding service. A non-zero
// dim rejects responses of any other dimension; mixing dimensions would
// silently corrupt gallery distances.
func NewEmbeddingClient(baseURL string, dim int) *EmbeddingClient {
	return &EmbeddingClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		dim:     dim,
		client:  &http.Client{},
	}
}

// embedResponse represents the response from the embedding service.
type embedResponse struct {
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
}

// Embed posts the image as multipart form data and returns the face
// embedding. A 422 from the service means no detectable face and maps to
// ErrNoFaceDetected. The caller's context bounds the call.
func (c *EmbeddingClient) Embed(ctx context.Context, imageData []byte) ([]float32, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "capture.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnprocessableEntity {
		return nil, ErrNoFaceDetected
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("embedding service error %d: %s", resp.StatusCode, string(body))
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(result.Embedding) == 0 {
		return nil, errors.New("embedding service returned an empty embedding")
	}
	if c.dim > 0 && len(result.Embedding) != c.dim {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(result.Embedding), c.dim)
	}
	return result.Embedding, nil
}

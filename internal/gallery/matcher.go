package gallery

import (
	"context"
	"fmt"
	"time"
)

// MatchResult is the matcher gateway's verdict on one image.
type MatchResult struct {
	Matched    bool
	Name       string
	Distance   float64
	Confidence float64
}

// Matcher is the gateway the workflow consults: it embeds the probe image
// and searches the gallery, applying the acceptance tolerance.
type Matcher struct {
	embedder  Embedder
	gallery   *Gallery
	tolerance float64
	timeout   time.Duration
}

// NewMatcher wires the embedder and gallery behind a single contract.
// A match is accepted iff distance <= tolerance (the boundary matches).
func NewMatcher(embedder Embedder, g *Gallery, tolerance float64, timeout time.Duration) *Matcher {
	return &Matcher{
		embedder:  embedder,
		gallery:   g,
		tolerance: tolerance,
		timeout:   timeout,
	}
}

// Gallery exposes the underlying gallery for reloads.
func (m *Matcher) Gallery() *Gallery {
	return m.gallery
}

// Embed runs the embedding call under the matcher's timeout. Used directly
// by the register path, which needs face presence and the embedding itself
// rather than an identity match.
func (m *Matcher) Embed(ctx context.Context, imageData []byte) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return m.embedder.Embed(ctx, imageData)
}

// Match embeds the image and finds the best gallery identity. Returns
// ErrNoFaceDetected when the image has no detectable face; an empty gallery
// or a distance beyond tolerance yields Matched=false, never an error.
func (m *Matcher) Match(ctx context.Context, imageData []byte) (MatchResult, error) {
	embedding, err := m.Embed(ctx, imageData)
	if err != nil {
		return MatchResult{}, err
	}

	neighbor, ok := m.gallery.Nearest(embedding)
	if !ok || neighbor.Distance > m.tolerance {
		return MatchResult{}, nil
	}

	return MatchResult{
		Matched:    true,
		Name:       neighbor.Name,
		Distance:   neighbor.Distance,
		Confidence: Confidence(neighbor.Distance),
	}, nil
}

// String describes the matcher configuration for startup logging.
func (m *Matcher) String() string {
	return fmt.Sprintf("matcher(tolerance=%.2f, timeout=%s, gallery=%d)",
		m.tolerance, m.timeout, m.gallery.Size())
}

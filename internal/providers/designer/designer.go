// Package designer turns tattoo requests into model calls: three textual
// proposals per request, one image per prompt, refinements guided by a
// reference image, and body previews.
package designer

import (
	"context"
	"sync"
)

const (
	geminiProviderName = "gemini"
	openAIProviderName = "openai"
	staticProviderName = "static"
)

// DesignsRequest carries a validated generation request to the model.
type DesignsRequest struct {
	Description      string
	StylePreferences string
	Keywords         string
	ReferenceImage   string
	Locale           string
	RequestID        string
}

// RefineRequest carries the combined description and notes plus the
// mandatory reference image.
type RefineRequest struct {
	BaseDescriptionAndNotes string
	ReferenceImage          string
	Locale                  string
	RequestID               string
}

// RefineResult is the parsed refinement reply. ImageGenerationPrompt may be
// empty, in which case no image generation follows.
type RefineResult struct {
	RefinedDescription    string `json:"refinedDescription"`
	ImageGenerationPrompt string `json:"imageGenerationPrompt"`
}

// PreviewRequest asks for a realistic rendering of a tattoo on a body photo.
type PreviewRequest struct {
	TattooImage string
	BodyImage   string
	RequestID   string
}

// Designer is the hosted generative backend. Every method maps failures onto
// the domain error taxonomy (content blocked, malformed response, provider
// failure) and never retries.
type Designer interface {
	Name() string
	GenerateDesigns(ctx context.Context, req DesignsRequest) ([]string, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
	Refine(ctx context.Context, req RefineRequest) (*RefineResult, error)
	PreviewOnBody(ctx context.Context, req PreviewRequest) (string, error)
}

// Lazy builds the configured Designer on first use and shares it afterwards.
// Construction errors are sticky.
type Lazy struct {
	build func() (Designer, error)

	once     sync.Once
	designer Designer
	err      error
}

// NewLazy wraps a constructor.
func NewLazy(build func() (Designer, error)) *Lazy {
	return &Lazy{build: build}
}

// Get returns the shared Designer, constructing it at most once.
func (l *Lazy) Get() (Designer, error) {
	l.once.Do(func() {
		l.designer, l.err = l.build()
	})
	return l.designer, l.err
}

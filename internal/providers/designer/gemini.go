package designer

import (
	"context"
	"fmt"

	"tattoovision/internal/domain"
	"tattoovision/internal/domain/datauri"
	"tattoovision/internal/infra"
	"tattoovision/internal/middleware"
	"tattoovision/internal/providers/genai"
)

// GeminiDesigner drives all flows through the Gemini generateContent API.
type GeminiDesigner struct {
	client *genai.Client
	logger *infra.Logger
}

// NewGeminiDesigner wraps a configured genai client.
func NewGeminiDesigner(client *genai.Client, logger *infra.Logger) (*GeminiDesigner, error) {
	if client == nil {
		return nil, fmt.Errorf("designer: gemini client is required")
	}
	return &GeminiDesigner{client: client, logger: logger}, nil
}

func (g *GeminiDesigner) Name() string { return geminiProviderName }

func (g *GeminiDesigner) GenerateDesigns(ctx context.Context, req DesignsRequest) ([]string, error) {
	parts := []genai.Part{genai.TextPart(buildDesignsPrompt(req))}
	if req.ReferenceImage != "" {
		media, err := mediaPart(req.ReferenceImage)
		if err != nil {
			return nil, err
		}
		parts = append(parts, media)
	}

	raw, err := g.client.GenerateText(ctx, genai.TextRequest{
		Parts:       parts,
		Temperature: 0.9,
		JSON:        true,
		RequestID:   req.RequestID,
	})
	if err != nil {
		return nil, err
	}
	proposals, err := parseDesignProposals(raw)
	if err != nil {
		logDiscarded(g.logger, "designs", req.RequestID, raw, err)
		return nil, err
	}
	return proposals, nil
}

func (g *GeminiDesigner) GenerateImage(ctx context.Context, prompt string) (string, error) {
	asset, err := g.client.GenerateImage(ctx, genai.ImageRequest{
		Parts:     []genai.Part{genai.TextPart(buildImagePrompt(prompt))},
		RequestID: middleware.RequestIDFromContext(ctx),
	})
	if err != nil {
		return "", err
	}
	return datauri.Encode(asset.Format, asset.Data), nil
}

func (g *GeminiDesigner) Refine(ctx context.Context, req RefineRequest) (*RefineResult, error) {
	if req.ReferenceImage == "" {
		return nil, domain.ErrReferenceImageRequired
	}
	media, err := mediaPart(req.ReferenceImage)
	if err != nil {
		return nil, err
	}
	raw, err := g.client.GenerateText(ctx, genai.TextRequest{
		Parts:       []genai.Part{genai.TextPart(buildRefinePrompt(req)), media},
		Temperature: 0.7,
		JSON:        true,
		RequestID:   req.RequestID,
	})
	if err != nil {
		return nil, err
	}
	result, err := parseRefinement(raw)
	if err != nil {
		logDiscarded(g.logger, "refine", req.RequestID, raw, err)
		return nil, err
	}
	return result, nil
}

func (g *GeminiDesigner) PreviewOnBody(ctx context.Context, req PreviewRequest) (string, error) {
	tattoo, err := mediaPart(req.TattooImage)
	if err != nil {
		return "", err
	}
	body, err := mediaPart(req.BodyImage)
	if err != nil {
		return "", err
	}
	asset, err := g.client.GenerateImage(ctx, genai.ImageRequest{
		Parts:     []genai.Part{genai.TextPart(previewPrompt), tattoo, body},
		RequestID: req.RequestID,
	})
	if err != nil {
		return "", err
	}
	return datauri.Encode(asset.Format, asset.Data), nil
}

func logDiscarded(logger *infra.Logger, flow, requestID, raw string, err error) {
	if logger == nil {
		return
	}
	if len(raw) > 512 {
		raw = raw[:512]
	}
	logger.Warn().
		Err(err).
		Str("flow", flow).
		Str("request_id", requestID).
		Str("raw", raw).
		Msg("designer: discarding unparseable model output")
}

func mediaPart(uri string) (genai.Part, error) {
	parsed, err := datauri.Parse(uri)
	if err != nil {
		return genai.Part{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return genai.MediaPart(parsed.MIME, parsed.Data), nil
}

var _ Designer = (*GeminiDesigner)(nil)

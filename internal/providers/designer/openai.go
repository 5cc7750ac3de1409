package designer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/sashabaranov/go-openai"

	"tattoovision/internal/domain"
	"tattoovision/internal/domain/datauri"
	"tattoovision/internal/infra"
)

const contentPolicyCode = "content_policy_violation"

// OpenAIOptions configures the OpenAI-compatible designer.
type OpenAIOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	ImageModel string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// OpenAIDesigner uses chat completions with vision input for text flows and
// the images endpoint for rendering.
type OpenAIDesigner struct {
	client     *openai.Client
	model      string
	imageModel string
	logger     *infra.Logger
}

// NewOpenAIDesigner validates options and builds the client.
func NewOpenAIDesigner(opts OpenAIOptions) (*OpenAIDesigner, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("designer: openai api key is required")
	}
	config := openai.DefaultConfig(apiKey)
	if base := strings.TrimRight(opts.BaseURL, "/"); base != "" {
		config.BaseURL = base
	}
	if opts.HTTPClient != nil {
		config.HTTPClient = opts.HTTPClient
	} else {
		config.HTTPClient = &http.Client{Timeout: 90 * time.Second}
	}

	model := coalesce(opts.Model, openai.GPT4oMini)
	imageModel := coalesce(opts.ImageModel, openai.CreateImageModelDallE3)

	return &OpenAIDesigner{
		client:     openai.NewClientWithConfig(config),
		model:      model,
		imageModel: imageModel,
		logger:     opts.Logger,
	}, nil
}

func (o *OpenAIDesigner) Name() string { return openAIProviderName }

func (o *OpenAIDesigner) GenerateDesigns(ctx context.Context, req DesignsRequest) ([]string, error) {
	parts := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: buildDesignsPrompt(req)}}
	if req.ReferenceImage != "" {
		parts = append(parts, imagePart(req.ReferenceImage))
	}
	raw, err := o.complete(ctx, parts, 0.9)
	if err != nil {
		return nil, err
	}
	proposals, err := parseDesignProposals(raw)
	if err != nil {
		logDiscarded(o.logger, "designs", req.RequestID, raw, err)
		return nil, err
	}
	return proposals, nil
}

func (o *OpenAIDesigner) GenerateImage(ctx context.Context, prompt string) (string, error) {
	return o.renderImage(ctx, buildImagePrompt(prompt))
}

func (o *OpenAIDesigner) Refine(ctx context.Context, req RefineRequest) (*RefineResult, error) {
	if req.ReferenceImage == "" {
		return nil, domain.ErrReferenceImageRequired
	}
	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: buildRefinePrompt(req)},
		imagePart(req.ReferenceImage),
	}
	raw, err := o.complete(ctx, parts, 0.7)
	if err != nil {
		return nil, err
	}
	result, err := parseRefinement(raw)
	if err != nil {
		logDiscarded(o.logger, "refine", req.RequestID, raw, err)
		return nil, err
	}
	return result, nil
}

// PreviewOnBody has no direct equivalent on the images endpoint, so the
// vision model first writes a rendering prompt from both photos.
func (o *OpenAIDesigner) PreviewOnBody(ctx context.Context, req PreviewRequest) (string, error) {
	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: previewPrompt +
			` Respond strictly with JSON matching this schema: {"imageGenerationPrompt":string}`},
		imagePart(req.TattooImage),
		imagePart(req.BodyImage),
	}
	raw, err := o.complete(ctx, parts, 0.4)
	if err != nil {
		return "", err
	}
	payload, err := parseModelPayload[refinePayload](raw)
	if err != nil || strings.TrimSpace(payload.ImageGenerationPrompt) == "" {
		return "", fmt.Errorf("%w: preview prompt missing", domain.ErrMalformedResponse)
	}
	return o.renderImage(ctx, payload.ImageGenerationPrompt)
}

func (o *OpenAIDesigner) complete(ctx context.Context, parts []openai.ChatMessagePart, temperature float32) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: parts,
		}},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", domain.ErrProviderFailure)
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return "", fmt.Errorf("%w: openai content filter", domain.ErrContentBlocked)
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return "", fmt.Errorf("%w: openai returned empty content", domain.ErrMalformedResponse)
	}
	return choice.Message.Content, nil
}

func (o *OpenAIDesigner) renderImage(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          o.imageModel,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", fmt.Errorf("%w: openai returned no image", domain.ErrProviderFailure)
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil || len(data) == 0 {
		return "", fmt.Errorf("%w: openai image payload undecodable", domain.ErrProviderFailure)
	}
	mime := "image/png"
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		mime = kind.MIME.Value
	}
	return datauri.Encode(mime, data), nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if code, ok := apiErr.Code.(string); ok && code == contentPolicyCode {
			return fmt.Errorf("%w: %s", domain.ErrContentBlocked, apiErr.Message)
		}
		return fmt.Errorf("%w: openai status %d: %s", domain.ErrProviderFailure, apiErr.HTTPStatusCode, apiErr.Message)
	}
	return fmt.Errorf("%w: openai request failed: %v", domain.ErrProviderFailure, err)
}

func imagePart(uri string) openai.ChatMessagePart {
	return openai.ChatMessagePart{
		Type:     openai.ChatMessagePartTypeImageURL,
		ImageURL: &openai.ChatMessageImageURL{URL: uri, Detail: openai.ImageURLDetailAuto},
	}
}

var _ Designer = (*OpenAIDesigner)(nil)

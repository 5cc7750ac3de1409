package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tattoovision/internal/domain"
	"tattoovision/internal/infra"
)

const (
	defaultBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	defaultTextModel  = "gemini-2.0-flash"
	defaultImageModel = "gemini-2.0-flash-exp"
)

// SafetyThreshold is applied uniformly to every harm category on every call.
const SafetyThreshold = "BLOCK_MEDIUM_AND_ABOVE"

// SafetyCategories are the harm categories filtered on every call.
var SafetyCategories = []string{
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_HARASSMENT",
}

var blockedFinishReasons = map[string]struct{}{
	"SAFETY":             {},
	"IMAGE_SAFETY":       {},
	"PROHIBITED_CONTENT": {},
	"BLOCKLIST":          {},
	"SPII":               {},
	"RECITATION":         {},
}

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client is a thin facade over the Gemini generateContent endpoint. It only
// knows about parts, safety settings and response envelopes; prompt wording
// and schema parsing belong to the callers.
type Client struct {
	apiKey     string
	baseURL    string
	textModel  string
	imageModel string
	httpClient *http.Client
	logger     *infra.Logger
}

// Part is one piece of a multimodal prompt: either text or inline media.
type Part struct {
	Text string
	MIME string
	Data []byte
}

// TextPart wraps plain text.
func TextPart(text string) Part { return Part{Text: text} }

// MediaPart wraps inline binary media.
func MediaPart(mime string, data []byte) Part { return Part{MIME: mime, Data: data} }

// TextRequest asks the text model for a completion.
type TextRequest struct {
	Parts       []Part
	Temperature float64
	JSON        bool
	RequestID   string
}

// ImageRequest asks the image-capable model for a single image.
type ImageRequest struct {
	Parts     []Part
	RequestID string
}

// ImageAsset is the decoded image returned by the model.
type ImageAsset struct {
	Format string
	Data   []byte
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiGenerationConfig struct {
	Temperature        float64  `json:"temperature,omitempty"`
	CandidateCount     int      `json:"candidateCount,omitempty"`
	ResponseMimeType   string   `json:"responseMimeType,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	SafetySettings   []geminiSafetySetting   `json:"safetySettings,omitempty"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiPromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates     []geminiCandidate     `json:"candidates"`
	PromptFeedback *geminiPromptFeedback `json:"promptFeedback,omitempty"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Status  string `json:"status,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client. An API key is required; callers may
// provide a nil HTTP client and a reusable one will be created.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("genai: api key is required")
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	textModel := strings.TrimSpace(opts.TextModel)
	if textModel == "" {
		textModel = defaultTextModel
	}
	imageModel := strings.TrimSpace(opts.ImageModel)
	if imageModel == "" {
		imageModel = defaultImageModel
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
		apiKey:     apiKey,
		baseURL:    baseURL,
		textModel:  textModel,
		imageModel: imageModel,
		httpClient: client,
		logger:     logger,
	}, nil
}

// GenerateText returns the first non-empty text part of the model response.
func (c *Client) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	cfg := &geminiGenerationConfig{CandidateCount: 1, Temperature: req.Temperature}
	if req.JSON {
		cfg.ResponseMimeType = "application/json"
	}
	payload := geminiGenerateContentRequest{
		Contents:         []geminiContent{{Role: "user", Parts: toGeminiParts(req.Parts)}},
		SafetySettings:   safetySettings(),
		GenerationConfig: cfg,
	}

	var response geminiGenerateContentResponse
	if err := c.invokeGemini(ctx, c.textModel, payload, &response); err != nil {
		return "", err
	}
	if err := blockError(response); err != nil {
		return "", err
	}
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				c.logger.Debug().
					Str("request_id", req.RequestID).
					Str("model", c.textModel).
					Msg("genai: text generated")
				return part.Text, nil
			}
		}
	}
	return "", fmt.Errorf("%w: gemini returned no text", domain.ErrProviderFailure)
}

// GenerateImage returns the first inline image of the model response. Image
// generation requires both TEXT and IMAGE response modalities.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (*ImageAsset, error) {
	payload := geminiGenerateContentRequest{
		Contents:       []geminiContent{{Role: "user", Parts: toGeminiParts(req.Parts)}},
		SafetySettings: safetySettings(),
		GenerationConfig: &geminiGenerationConfig{
			CandidateCount:     1,
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}

	var response geminiGenerateContentResponse
	if err := c.invokeGemini(ctx, c.imageModel, payload, &response); err != nil {
		return nil, err
	}
	if err := blockError(response); err != nil {
		return nil, err
	}

	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil || len(data) == 0 {
				continue
			}
			format := part.InlineData.MimeType
			if format == "" {
				format = "image/png"
			}
			c.logger.Debug().
				Str("request_id", req.RequestID).
				Str("model", c.imageModel).
				Int("bytes", len(data)).
				Msg("genai: image generated")
			return &ImageAsset{Format: format, Data: data}, nil
		}
	}
	return nil, fmt.Errorf("%w: gemini returned no image", domain.ErrProviderFailure)
}

func (c *Client) invokeGemini(ctx context.Context, model string, payload any, out any) error {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(model))
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: invoke gemini: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		var apiErr geminiErrorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%w: gemini status %d: %s", domain.ErrProviderFailure, resp.StatusCode, apiErr.Error.Message)
		}
		if len(data) > 0 {
			return fmt.Errorf("%w: gemini status %d: %s", domain.ErrProviderFailure, resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("%w: gemini status %d", domain.ErrProviderFailure, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode gemini response: %v", domain.ErrProviderFailure, err)
	}
	return nil
}

func blockError(resp geminiGenerateContentResponse) error {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return fmt.Errorf("%w: prompt blocked (%s)", domain.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	for _, candidate := range resp.Candidates {
		if _, blocked := blockedFinishReasons[candidate.FinishReason]; blocked && !hasContent(candidate) {
			return fmt.Errorf("%w: finish reason %s", domain.ErrContentBlocked, candidate.FinishReason)
		}
	}
	return nil
}

func hasContent(candidate geminiCandidate) bool {
	for _, part := range candidate.Content.Parts {
		if strings.TrimSpace(part.Text) != "" || (part.InlineData != nil && part.InlineData.Data != "") {
			return true
		}
	}
	return false
}

func toGeminiParts(parts []Part) []geminiPart {
	out := make([]geminiPart, 0, len(parts))
	for _, p := range parts {
		if len(p.Data) > 0 {
			out = append(out, geminiPart{InlineData: &geminiInlineData{
				MimeType: p.MIME,
				Data:     base64.StdEncoding.EncodeToString(p.Data),
			}})
			continue
		}
		if strings.TrimSpace(p.Text) != "" {
			out = append(out, geminiPart{Text: p.Text})
		}
	}
	return out
}

func safetySettings() []geminiSafetySetting {
	settings := make([]geminiSafetySetting, len(SafetyCategories))
	for i, category := range SafetyCategories {
		settings[i] = geminiSafetySetting{Category: category, Threshold: SafetyThreshold}
	}
	return settings
}

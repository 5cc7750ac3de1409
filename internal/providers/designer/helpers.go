package designer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tattoovision/internal/domain"
)

type designsPayload struct {
	DesignProposals []string `json:"designProposals"`
}

type refinePayload struct {
	RefinedDescription       string `json:"refinedDescription"`
	RefinedDesignDescription string `json:"refinedDesignDescription"`
	ImageGenerationPrompt    string `json:"imageGenerationPrompt"`
}

func languageName(locale string) string {
	if locale == "de" {
		return "German"
	}
	return "English"
}

func buildDesignsPrompt(req DesignsRequest) string {
	sb := &strings.Builder{}
	sb.WriteString("You are an expert tattoo artist creating unique tattoo designs from customer descriptions. ")
	sb.WriteString("Weigh which elements suit the description, style and keywords, keep each design visually coherent and consider body placement.\n")
	fmt.Fprintf(sb, "Description: %s\n", req.Description)
	fmt.Fprintf(sb, "Style preferences: %s\n", req.StylePreferences)
	if strings.TrimSpace(req.Keywords) != "" {
		fmt.Fprintf(sb, "Keywords: %s\n", req.Keywords)
	}
	if req.ReferenceImage != "" {
		sb.WriteString("A reference image is attached; draw on its motifs.\n")
	}
	fmt.Fprintf(sb, "Generate exactly %d distinct tattoo design proposals written in %s. ", domain.ProposalsPerBatch, languageName(req.Locale))
	sb.WriteString(`Respond strictly with JSON matching this schema: {"designProposals":[string,string,string]}`)
	return sb.String()
}

func buildRefinePrompt(req RefineRequest) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "You are a tattoo design expert. A customer wants a tattoo with the following description: %q.\n", req.BaseDescriptionAndNotes)
	sb.WriteString("They attached a reference image to guide the design.\n")
	sb.WriteString("Write a refined description of the new design that incorporates elements of the reference image, ")
	sb.WriteString("and an image generation prompt that combines the description with the reference image and leads to a clear image of the tattoo design. ")
	fmt.Fprintf(sb, "Write the refined description in %s. ", languageName(req.Locale))
	sb.WriteString(`Respond strictly with JSON matching this schema: {"refinedDescription":string,"imageGenerationPrompt":string}`)
	return sb.String()
}

func buildImagePrompt(prompt string) string {
	return fmt.Sprintf("Tattoo design artwork on a plain white background, clean linework, no skin, no mockup. %s", strings.TrimSpace(prompt))
}

const previewPrompt = "Given the tattoo design and the photo of the body, create a realistic visualization of the tattoo applied to the body. " +
	"Follow the contours and lighting of the body. The first image is the tattoo design, the second image is the body."

func parseDesignProposals(raw string) ([]string, error) {
	payload, err := parseModelPayload[designsPayload](raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if len(payload.DesignProposals) != domain.ProposalsPerBatch {
		return nil, fmt.Errorf("%w: expected %d proposals, got %d", domain.ErrMalformedResponse, domain.ProposalsPerBatch, len(payload.DesignProposals))
	}
	out := make([]string, 0, len(payload.DesignProposals))
	for i, proposal := range payload.DesignProposals {
		proposal = strings.TrimSpace(proposal)
		if proposal == "" {
			return nil, fmt.Errorf("%w: proposal %d is empty", domain.ErrMalformedResponse, i)
		}
		out = append(out, proposal)
	}
	return out, nil
}

func parseRefinement(raw string) (*RefineResult, error) {
	payload, err := parseModelPayload[refinePayload](raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	description := coalesce(payload.RefinedDescription, payload.RefinedDesignDescription)
	if description == "" {
		return nil, fmt.Errorf("%w: refined description missing", domain.ErrMalformedResponse)
	}
	return &RefineResult{
		RefinedDescription:    description,
		ImageGenerationPrompt: strings.TrimSpace(payload.ImageGenerationPrompt),
	}, nil
}

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}

func parseModelPayload[T any](raw string) (T, error) {
	var zero T
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return zero, errors.New("empty payload")
	}
	var decoded T
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

package designer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"tattoovision/internal/domain"
	"tattoovision/internal/domain/datauri"
)

// StaticDesigner answers every flow offline with deterministic content. It
// backs local development and demos without provider credentials.
type StaticDesigner struct{}

func NewStaticDesigner() *StaticDesigner {
	return &StaticDesigner{}
}

func (s *StaticDesigner) Name() string { return staticProviderName }

func (s *StaticDesigner) GenerateDesigns(ctx context.Context, req DesignsRequest) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	c := cases.Title(language.Und)
	style := c.String(coalesce(req.StylePreferences, "minimalist"))
	subject := strings.TrimSpace(req.Description)

	variants := staticVariants[req.Locale == "de"]
	proposals := make([]string, 0, domain.ProposalsPerBatch)
	for _, variant := range variants {
		proposals = append(proposals, fmt.Sprintf(variant, style, subject))
	}
	return proposals, nil
}

var staticVariants = map[bool][]string{
	false: {
		"%s piece: %s, framed by a single bold outline for the forearm.",
		"%s interpretation of %s with negative space and fine dotwork shading, sized for the shoulder blade.",
		"Compact %s motif: %s reduced to its essential shapes, placed behind the ear.",
	},
	true: {
		"%s-Motiv: %s, eingefasst von einer kräftigen Kontur für den Unterarm.",
		"%s-Interpretation von %s mit Negativraum und feiner Dotwork-Schattierung für das Schulterblatt.",
		"Kompaktes %s-Motiv: %s auf die wesentlichen Formen reduziert, hinter dem Ohr platziert.",
	},
}

func (s *StaticDesigner) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	data := renderSyntheticImage(1024, 1024, deterministicSeed(prompt))
	if data == nil {
		return "", fmt.Errorf("%w: synthetic render failed", domain.ErrProviderFailure)
	}
	return datauri.Encode("image/png", data), nil
}

func (s *StaticDesigner) Refine(ctx context.Context, req RefineRequest) (*RefineResult, error) {
	if req.ReferenceImage == "" {
		return nil, domain.ErrReferenceImageRequired
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	base := strings.TrimSpace(req.BaseDescriptionAndNotes)
	refined := base + " (refined with reference motifs)"
	if req.Locale == "de" {
		refined = base + " (mit Motiven aus dem Referenzbild verfeinert)"
	}
	return &RefineResult{
		RefinedDescription:    refined,
		ImageGenerationPrompt: "Tattoo flash artwork: " + base,
	}, nil
}

func (s *StaticDesigner) PreviewOnBody(ctx context.Context, req PreviewRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	data := renderSyntheticImage(1024, 1024, deterministicSeed(req.TattooImage, req.BodyImage))
	if data == nil {
		return "", fmt.Errorf("%w: synthetic render failed", domain.ErrProviderFailure)
	}
	return datauri.Encode("image/png", data), nil
}

func renderSyntheticImage(width, height int, seed string) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	base := colorFromSeed(seed, 0)
	accent := colorFromSeed(seed, 1)
	draw.Draw(img, img.Bounds(), &image.Uniform{base}, image.Point{}, draw.Src)

	stripeHeight := maxInt(32, height/12)
	for y := 0; y < height; y += stripeHeight * 2 {
		stripe := image.Rect(0, y, width, minInt(height, y+stripeHeight))
		draw.Draw(img, stripe, &image.Uniform{accent}, image.Point{}, draw.Over)
	}

	diagonal := colorFromSeed(seed, 2)
	for i := 0; i < maxInt(width, height); i += maxInt(16, width/32) {
		for y := 0; y < height; y++ {
			x := i + y
			if x >= width {
				break
			}
			img.Set(x, y, diagonal)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func colorFromSeed(seed string, shift int) color.RGBA {
	if seed == "" {
		seed = "000000"
	}
	doubled := seed + seed
	start := (shift * 6) % len(seed)
	segment := doubled[start : start+6]
	return color.RGBA{
		R: parseHexByte(segment[0:2]),
		G: parseHexByte(segment[2:4]),
		B: parseHexByte(segment[4:6]),
		A: 255,
	}
}

func parseHexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

func deterministicSeed(parts ...string) string {
	hasher := sha256.New()
	for _, part := range parts {
		hasher.Write([]byte(part))
		hasher.Write([]byte{'|'})
	}
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

var _ Designer = (*StaticDesigner)(nil)

package domain

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"tattoovision/internal/domain/datauri"
)

const (
	DescriptionMinRunes = 10
	DescriptionMaxRunes = 1000
	KeywordsMaxRunes    = 200
	NotesMaxRunes       = 500
)

// Field error message keys. They double as catalog keys in internal/i18n.
const (
	MsgRequired          = "field.required"
	MsgDescriptionShort  = "field.description_too_short"
	MsgTooLong           = "field.too_long"
	MsgUnknownStyle      = "field.unknown_style"
	MsgInvalidImage      = "field.invalid_image"
	MsgUnsupportedImage  = "field.unsupported_image"
	MsgImageTooLarge     = "field.image_too_large"
	MsgReferenceRequired = "field.reference_image_required"
)

// FieldErrors maps a request field to the message key describing why it was
// rejected. It satisfies errors.Is(err, ErrValidation).
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (f FieldErrors) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	if target == ErrReferenceImageRequired {
		return f["referenceImage"] == MsgReferenceRequired
	}
	return false
}

// GenerationRequest is the validated input of a design generation call.
type GenerationRequest struct {
	Description      string `json:"description"`
	StylePreferences string `json:"stylePreferences"`
	Keywords         string `json:"keywords,omitempty"`
	ReferenceImage   string `json:"referenceImage,omitempty"`
}

// Normalize trims free text and canonicalizes the style when it is known.
func (r *GenerationRequest) Normalize() {
	if r == nil {
		return
	}
	r.Description = strings.TrimSpace(r.Description)
	r.Keywords = strings.TrimSpace(r.Keywords)
	r.ReferenceImage = strings.TrimSpace(r.ReferenceImage)
	if style, ok := NormalizeStyle(r.StylePreferences); ok {
		r.StylePreferences = style
	} else {
		r.StylePreferences = strings.TrimSpace(r.StylePreferences)
	}
}

// Validate checks the request against the form rules. maxImageBytes bounds
// the decoded reference image; zero disables the bound.
func (r GenerationRequest) Validate(maxImageBytes int) error {
	errs := FieldErrors{}
	n := utf8.RuneCountInString(strings.TrimSpace(r.Description))
	switch {
	case n == 0:
		errs["description"] = MsgRequired
	case n < DescriptionMinRunes:
		errs["description"] = MsgDescriptionShort
	case n > DescriptionMaxRunes:
		errs["description"] = MsgTooLong
	}
	if strings.TrimSpace(r.StylePreferences) == "" {
		errs["stylePreferences"] = MsgRequired
	} else if _, ok := NormalizeStyle(r.StylePreferences); !ok {
		errs["stylePreferences"] = MsgUnknownStyle
	}
	if utf8.RuneCountInString(r.Keywords) > KeywordsMaxRunes {
		errs["keywords"] = MsgTooLong
	}
	if r.ReferenceImage != "" {
		if msg := imageMessage(r.ReferenceImage, maxImageBytes); msg != "" {
			errs["referenceImage"] = msg
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RefinementRequest is the user input of a refinement. The reference image is
// mandatory.
type RefinementRequest struct {
	Notes          string `json:"notes,omitempty"`
	ReferenceImage string `json:"referenceImage"`
}

// Validate rejects the request when no reference image is attached,
// regardless of the notes.
func (r RefinementRequest) Validate(maxImageBytes int) error {
	errs := FieldErrors{}
	if strings.TrimSpace(r.ReferenceImage) == "" {
		errs["referenceImage"] = MsgReferenceRequired
	} else if msg := imageMessage(strings.TrimSpace(r.ReferenceImage), maxImageBytes); msg != "" {
		errs["referenceImage"] = msg
	}
	if utf8.RuneCountInString(strings.TrimSpace(r.Notes)) > NotesMaxRunes {
		errs["notes"] = MsgTooLong
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateImage checks a single image data URI field and returns FieldErrors
// keyed by field when it is missing or invalid.
func ValidateImage(field, uri string, maxImageBytes int) error {
	if strings.TrimSpace(uri) == "" {
		return FieldErrors{field: MsgRequired}
	}
	if msg := imageMessage(strings.TrimSpace(uri), maxImageBytes); msg != "" {
		return FieldErrors{field: msg}
	}
	return nil
}

func imageMessage(uri string, maxImageBytes int) string {
	_, err := datauri.ParseImage(uri, maxImageBytes)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, datauri.ErrUnsupportedType):
		return MsgUnsupportedImage
	case errors.Is(err, datauri.ErrTooLarge):
		return MsgImageTooLarge
	default:
		return MsgInvalidImage
	}
}

package domain

import "time"

// TattooDesign is a proposal the user chose to keep, stored together with the
// form context that was active when it was saved.
type TattooDesign struct {
	ID                string    `json:"id"`
	Description       string    `json:"description"`
	StylePreferences  string    `json:"stylePreferences,omitempty"`
	Keywords          string    `json:"keywords,omitempty"`
	ReferenceImage    string    `json:"referenceImage,omitempty"`
	GeneratedImageURI string    `json:"generatedImageUri,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// DesignDraft carries everything needed to persist a design except the
// identity fields, which the library assigns.
type DesignDraft struct {
	Description       string
	StylePreferences  string
	Keywords          string
	ReferenceImage    string
	GeneratedImageURI string
}

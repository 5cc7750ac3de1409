package handlers

import (
	"net/http"

	"tattoovision/internal/domain"
	"tattoovision/internal/i18n"
	"tattoovision/internal/middleware"
)

type languageOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type inputLimits struct {
	DescriptionMin int `json:"descriptionMin"`
	DescriptionMax int `json:"descriptionMax"`
	KeywordsMax    int `json:"keywordsMax"`
	NotesMax       int `json:"notesMax"`
	MaxImageBytes  int `json:"maxImageBytes"`
}

type settingsResponse struct {
	Language           string           `json:"language"`
	Country            string           `json:"country,omitempty"`
	SupportedLanguages []languageOption `json:"supportedLanguages"`
	Themes             []string         `json:"themes"`
	Styles             []string         `json:"styles"`
	ProposalsPerBatch  int              `json:"proposalsPerBatch"`
	Limits             inputLimits      `json:"limits"`
}

var themes = []string{"light", "dark"}

func (a *App) Settings(w http.ResponseWriter, r *http.Request) {
	languages := make([]languageOption, 0, len(i18n.Supported))
	for _, code := range i18n.Supported {
		languages = append(languages, languageOption{Code: code, Name: i18n.LanguageName(code)})
	}
	maxImage := 0
	if a.Config != nil {
		maxImage = a.Config.MaxImageBytes
	}
	a.json(w, http.StatusOK, settingsResponse{
		Language:           middleware.LocaleFromContext(r.Context()),
		Country:            middleware.CountryFromContext(r.Context()),
		SupportedLanguages: languages,
		Themes:             themes,
		Styles:             domain.TattooStyles,
		ProposalsPerBatch:  domain.ProposalsPerBatch,
		Limits: inputLimits{
			DescriptionMin: domain.DescriptionMinRunes,
			DescriptionMax: domain.DescriptionMaxRunes,
			KeywordsMax:    domain.KeywordsMaxRunes,
			NotesMax:       domain.NotesMaxRunes,
			MaxImageBytes:  maxImage,
		},
	})
}

func (a *App) Styles(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"items": domain.TattooStyles})
}

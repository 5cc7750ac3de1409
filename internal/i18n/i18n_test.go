package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tattoovision/internal/domain"
)

func TestMatch(t *testing.T) {
	tests := map[string]string{
		"de":    German,
		"de-AT": German,
		"DE_ch": German,
		"en-GB": English,
		"en":    English,
		"":      "",
		"!!":    "",
	}
	for input, want := range tests {
		assert.Equal(t, want, Match(input), "Match(%q)", input)
	}
}

func TestMatchAcceptLanguage(t *testing.T) {
	assert.Equal(t, German, MatchAcceptLanguage("de-DE,de;q=0.9,en;q=0.8"))
	assert.Equal(t, English, MatchAcceptLanguage("en-US,en;q=0.9"))
	assert.Equal(t, German, MatchAcceptLanguage("en;q=0.3,de;q=0.9"))
	assert.Equal(t, "", MatchAcceptLanguage(""))
}

func TestLanguageForCountry(t *testing.T) {
	assert.Equal(t, German, LanguageForCountry("at"))
	assert.Equal(t, German, LanguageForCountry("CH"))
	assert.Equal(t, English, LanguageForCountry("US"))
	assert.Equal(t, "", LanguageForCountry(""))
}

func TestTranslate(t *testing.T) {
	assert.Equal(t, "Zusätzliche Anmerkungen: mehr Schatten", T(German, MsgAdditionalNotes, "mehr Schatten"))
	assert.Equal(t, "Additional notes: more shading", T(English, MsgAdditionalNotes, "more shading"))
	assert.Equal(t, "Design gelöscht.", T("de-DE", MsgDesignDeleted))
	assert.Equal(t, "unknown.key", T(English, "unknown.key"))
}

func TestFieldKeysAreTranslated(t *testing.T) {
	keys := []string{
		domain.MsgRequired,
		domain.MsgDescriptionShort,
		domain.MsgTooLong,
		domain.MsgUnknownStyle,
		domain.MsgInvalidImage,
		domain.MsgUnsupportedImage,
		domain.MsgImageTooLarge,
		domain.MsgReferenceRequired,
	}
	for _, key := range keys {
		assert.Contains(t, english, key)
		assert.Contains(t, german, key)
		assert.NotEqual(t, key, T(German, key))
	}
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	for key := range english {
		_, ok := german[key]
		assert.True(t, ok, "missing german message for %q", key)
	}
	for key := range german {
		_, ok := english[key]
		assert.True(t, ok, "missing english message for %q", key)
	}
}

func TestKindMessageCoversDomainErrors(t *testing.T) {
	errs := []error{
		domain.ErrValidation,
		domain.ErrContentBlocked,
		domain.ErrMalformedResponse,
		domain.ErrNotFound,
		domain.ErrOperationInProgress,
		domain.ErrStaleOperation,
		domain.ErrProviderFailure,
	}
	for _, err := range errs {
		key := KindMessage(domain.ErrorKind(err))
		assert.NotEqual(t, MsgInternal, key, "no message for %v", err)
		assert.Contains(t, english, key)
	}
	assert.Equal(t, MsgInternal, KindMessage("something_else"))
}

package i18n

// Message keys shared by the API layer. Field-level validation keys live in
// the domain package and are registered here as well.
const (
	MsgValidationFailed   = "error.validation_failed"
	MsgContentBlocked     = "error.content_blocked"
	MsgMalformedResponse  = "error.malformed_ai_response"
	MsgProviderFailure    = "error.provider_failure"
	MsgNotFound           = "error.not_found"
	MsgOperationBusy      = "error.operation_in_progress"
	MsgStaleOperation     = "error.stale_operation"
	MsgRateLimited        = "error.rate_limited"
	MsgInvalidJSON        = "error.invalid_json"
	MsgInternal           = "error.internal"
	MsgGenerationFailed   = "toast.generation_failed"
	MsgImageFailed        = "toast.image_generation_failed"
	MsgRefinementFailed   = "toast.refinement_failed"
	MsgDesignSaved        = "toast.design_saved"
	MsgDesignDeleted      = "toast.design_deleted"
	MsgPlacementFailed    = "toast.placement_failed"
	MsgARPreviewFailed    = "toast.ar_preview_failed"
	MsgAdditionalNotes    = "prompt.additional_notes"
	MsgSessionNotFound    = "error.session_not_found"
	MsgProposalOutOfRange = "error.proposal_out_of_range"
)

var english = map[string]string{
	MsgValidationFailed:   "Please check the highlighted fields.",
	MsgContentBlocked:     "The request was blocked by the content safety filter. Please rephrase your description.",
	MsgMalformedResponse:  "The AI service returned an unexpected response. Please try again.",
	MsgProviderFailure:    "The AI service is currently unavailable. Please try again.",
	MsgNotFound:           "The requested resource was not found.",
	MsgOperationBusy:      "This proposal is already being processed.",
	MsgStaleOperation:     "This proposal changed while the request was running.",
	MsgRateLimited:        "Too many requests. Please wait a moment.",
	MsgInvalidJSON:        "The request body is not valid JSON.",
	MsgInternal:           "Something went wrong.",
	MsgGenerationFailed:   "Design generation failed.",
	MsgImageFailed:        "Image generation failed.",
	MsgRefinementFailed:   "Design refinement failed.",
	MsgDesignSaved:        "Design saved to your library.",
	MsgDesignDeleted:      "Design deleted.",
	MsgPlacementFailed:    "The placement preview could not be created.",
	MsgARPreviewFailed:    "The body preview could not be created.",
	MsgAdditionalNotes:    "Additional notes: %s",
	MsgSessionNotFound:    "The design session was not found or has expired.",
	MsgProposalOutOfRange: "The selected proposal does not exist.",

	"field.required":                 "This field is required.",
	"field.description_too_short":    "Please describe your idea in at least 10 characters.",
	"field.too_long":                 "This field is too long.",
	"field.unknown_style":            "Please choose one of the listed styles.",
	"field.invalid_image":            "The image could not be read.",
	"field.unsupported_image":        "Only PNG, JPEG and WebP images are supported.",
	"field.image_too_large":          "The image is too large.",
	"field.reference_image_required": "A reference image is required to refine a design.",
}

var german = map[string]string{
	MsgValidationFailed:   "Bitte überprüfe die markierten Felder.",
	MsgContentBlocked:     "Die Anfrage wurde vom Inhaltsfilter blockiert. Bitte formuliere deine Beschreibung um.",
	MsgMalformedResponse:  "Der KI-Dienst hat eine unerwartete Antwort geliefert. Bitte versuche es erneut.",
	MsgProviderFailure:    "Der KI-Dienst ist derzeit nicht erreichbar. Bitte versuche es erneut.",
	MsgNotFound:           "Die angeforderte Ressource wurde nicht gefunden.",
	MsgOperationBusy:      "Dieser Vorschlag wird bereits bearbeitet.",
	MsgStaleOperation:     "Dieser Vorschlag wurde während der Anfrage geändert.",
	MsgRateLimited:        "Zu viele Anfragen. Bitte warte einen Moment.",
	MsgInvalidJSON:        "Der Anfrageinhalt ist kein gültiges JSON.",
	MsgInternal:           "Etwas ist schiefgelaufen.",
	MsgGenerationFailed:   "Die Designerstellung ist fehlgeschlagen.",
	MsgImageFailed:        "Die Bildgenerierung ist fehlgeschlagen.",
	MsgRefinementFailed:   "Die Verfeinerung ist fehlgeschlagen.",
	MsgDesignSaved:        "Design in deiner Bibliothek gespeichert.",
	MsgDesignDeleted:      "Design gelöscht.",
	MsgPlacementFailed:    "Die Platzierungsvorschau konnte nicht erstellt werden.",
	MsgARPreviewFailed:    "Die Körpervorschau konnte nicht erstellt werden.",
	MsgAdditionalNotes:    "Zusätzliche Anmerkungen: %s",
	MsgSessionNotFound:    "Die Design-Sitzung wurde nicht gefunden oder ist abgelaufen.",
	MsgProposalOutOfRange: "Der ausgewählte Vorschlag existiert nicht.",

	"field.required":                 "Dieses Feld ist erforderlich.",
	"field.description_too_short":    "Bitte beschreibe deine Idee mit mindestens 10 Zeichen.",
	"field.too_long":                 "Dieses Feld ist zu lang.",
	"field.unknown_style":            "Bitte wähle einen der aufgeführten Stile.",
	"field.invalid_image":            "Das Bild konnte nicht gelesen werden.",
	"field.unsupported_image":        "Nur PNG-, JPEG- und WebP-Bilder werden unterstützt.",
	"field.image_too_large":          "Das Bild ist zu groß.",
	"field.reference_image_required": "Zum Verfeinern wird ein Referenzbild benötigt.",
}

// KindMessage returns the message key for an error kind produced by
// domain.ErrorKind.
func KindMessage(kind string) string {
	switch kind {
	case "validation_failed":
		return MsgValidationFailed
	case "content_blocked":
		return MsgContentBlocked
	case "malformed_ai_response":
		return MsgMalformedResponse
	case "not_found":
		return MsgNotFound
	case "operation_in_progress":
		return MsgOperationBusy
	case "stale_operation":
		return MsgStaleOperation
	case "provider_failure":
		return MsgProviderFailure
	default:
		return MsgInternal
	}
}

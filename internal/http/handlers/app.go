package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tattoovision/internal/domain"
	"tattoovision/internal/i18n"
	"tattoovision/internal/infra"
	"tattoovision/internal/middleware"
	"tattoovision/internal/proposal"
	"tattoovision/internal/studio"
)

// bodySlack covers JSON framing and text fields around the image payloads.
const bodySlack = 64 << 10

type App struct {
	Config *infra.Config
	Logger infra.Logger
	Studio *studio.Service
}

func NewApp(cfg *infra.Config, logger infra.Logger, svc *studio.Service) *App {
	return &App{Config: cfg, Logger: logger, Studio: svc}
}

type errorBody struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
}

type errorResponse struct {
	Error   errorBody         `json:"error"`
	Session *proposal.Session `json:"session,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// error writes a localized error envelope for message key.
func (a *App) error(w http.ResponseWriter, r *http.Request, status int, code, key string) {
	locale := middleware.LocaleFromContext(r.Context())
	a.json(w, status, errorResponse{Error: errorBody{Code: code, Message: i18n.T(locale, key)}})
}

// fail maps err onto the HTTP error taxonomy. notFoundKey localizes
// domain.ErrNotFound for the resource the route addresses; a missing proposal
// always gets its own message. A non-nil session
// is attached so clients can render per-proposal failure state.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error, notFoundKey string, session *proposal.Session) {
	locale := middleware.LocaleFromContext(r.Context())
	body := errorBody{Code: domain.ErrorKind(err)}
	status := http.StatusInternalServerError

	var fields domain.FieldErrors
	switch {
	case errors.As(err, &fields):
		status = http.StatusBadRequest
		body.Code = "validation_failed"
		body.Message = i18n.T(locale, i18n.MsgValidationFailed)
		body.Fields = make(map[string]string, len(fields))
		for field, key := range fields {
			body.Fields[field] = i18n.T(locale, key)
		}
	case errors.Is(err, domain.ErrReferenceImageRequired):
		status = http.StatusBadRequest
		body.Message = i18n.T(locale, i18n.MsgValidationFailed)
		body.Fields = map[string]string{"referenceImage": i18n.T(locale, domain.MsgReferenceRequired)}
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
		body.Message = i18n.T(locale, i18n.MsgValidationFailed)
	case errors.Is(err, domain.ErrContentBlocked):
		status = http.StatusUnprocessableEntity
		body.Message = i18n.T(locale, i18n.MsgContentBlocked)
	case errors.Is(err, domain.ErrMalformedResponse):
		status = http.StatusBadGateway
		body.Message = i18n.T(locale, i18n.MsgMalformedResponse)
		body.Retryable = true
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		if errors.Is(err, proposal.ErrProposalOutOfRange) {
			notFoundKey = i18n.MsgProposalOutOfRange
		}
		if notFoundKey == "" {
			notFoundKey = i18n.MsgNotFound
		}
		body.Message = i18n.T(locale, notFoundKey)
	case errors.Is(err, domain.ErrOperationInProgress):
		status = http.StatusConflict
		body.Message = i18n.T(locale, i18n.MsgOperationBusy)
	case errors.Is(err, domain.ErrStaleOperation):
		status = http.StatusConflict
		body.Message = i18n.T(locale, i18n.MsgStaleOperation)
	case errors.Is(err, domain.ErrProviderFailure):
		status = http.StatusBadGateway
		body.Message = i18n.T(locale, i18n.MsgProviderFailure)
		body.Retryable = true
	default:
		body.Code = "internal"
		body.Message = i18n.T(locale, i18n.MsgInternal)
	}

	event := a.Logger.Warn()
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		event = a.Logger.Error()
	}
	event.Err(err).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Int("status", status).
		Str("code", body.Code).
		Msg("request failed")

	a.json(w, status, errorResponse{Error: body, Session: session})
}

// decode reads a JSON body bounded by the image size limit.
func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	limit := int64(bodySlack)
	if a.Config != nil && a.Config.MaxImageBytes > 0 {
		limit += int64(a.Config.MaxImageBytes) * 3
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, r, http.StatusRequestEntityTooLarge, "request_too_large", domain.MsgImageTooLarge)
			return false
		}
		a.error(w, r, http.StatusBadRequest, "invalid_json", i18n.MsgInvalidJSON)
		return false
	}
	return true
}

func proposalIndex(r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		return 0, false
	}
	return index, true
}

// RateLimited answers requests rejected by the rate limiter.
func (a *App) RateLimited(w http.ResponseWriter, r *http.Request) {
	a.error(w, r, http.StatusTooManyRequests, "rate_limited", i18n.MsgRateLimited)
}

// NotFound answers unknown routes.
func (a *App) NotFound(w http.ResponseWriter, r *http.Request) {
	a.error(w, r, http.StatusNotFound, "not_found", i18n.MsgNotFound)
}

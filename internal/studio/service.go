// Package studio runs the user actions of the design page: generating a
// batch of proposals, rendering and refining single proposals, saving them to
// the library and visualizing designs on a body photo. Each call handles one
// action synchronously.
package studio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tattoovision/internal/domain"
	"tattoovision/internal/i18n"
	"tattoovision/internal/infra"
	"tattoovision/internal/library"
	"tattoovision/internal/metrics"
	"tattoovision/internal/middleware"
	"tattoovision/internal/proposal"
	"tattoovision/internal/providers/designer"
	"tattoovision/internal/visualizer"
)

// Options wires the service dependencies.
type Options struct {
	Designers     *designer.Lazy
	Sessions      proposal.Store
	Library       *library.Library
	Metrics       *metrics.Metrics
	Logger        infra.Logger
	MaxImageBytes int
	AITimeout     time.Duration
}

type Service struct {
	designers     *designer.Lazy
	sessions      proposal.Store
	library       *library.Library
	metrics       *metrics.Metrics
	logger        infra.Logger
	maxImageBytes int
	aiTimeout     time.Duration

	now   func() time.Time
	newID func() string
}

func New(opts Options) *Service {
	return &Service{
		designers:     opts.Designers,
		sessions:      opts.Sessions,
		library:       opts.Library,
		metrics:       opts.Metrics,
		logger:        opts.Logger.With().Str("component", "studio").Logger(),
		maxImageBytes: opts.MaxImageBytes,
		aiTimeout:     opts.AITimeout,
		now:           time.Now,
		newID:         func() string { return uuid.NewString() },
	}
}

// CreateSession opens an empty proposal page.
func (s *Service) CreateSession(ctx context.Context, locale string) (*proposal.Session, error) {
	session := proposal.NewSession(s.newID(), s.now())
	session.Locale = i18n.Normalize(locale)
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("studio: create session: %w", err)
	}
	return session, nil
}

func (s *Service) GetSession(ctx context.Context, id string) (*proposal.Session, error) {
	return s.sessions.Get(ctx, id)
}

// DeleteSession discards a session and all its proposals. Unknown ids are a
// no-op.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}

// Generate validates req and replaces the session's proposals with a fresh
// batch of exactly three. On failure the previous proposals stay in place.
func (s *Service) Generate(ctx context.Context, sessionID, locale string, req domain.GenerationRequest) (*proposal.Session, error) {
	req.Normalize()
	if err := req.Validate(s.maxImageBytes); err != nil {
		return nil, err
	}
	d, err := s.designer()
	if err != nil {
		return nil, err
	}
	locale = i18n.Normalize(locale)

	var token uint64
	if _, err := s.sessions.Update(ctx, sessionID, func(session *proposal.Session) error {
		session.Locale = locale
		token = session.BeginBatch()
		return nil
	}); err != nil {
		return nil, err
	}

	started := time.Now()
	callCtx, cancel := s.callContext(ctx)
	descriptions, err := d.GenerateDesigns(callCtx, designer.DesignsRequest{
		Description:      req.Description,
		StylePreferences: req.StylePreferences,
		Keywords:         req.Keywords,
		ReferenceImage:   req.ReferenceImage,
		Locale:           locale,
		RequestID:        requestID(ctx),
	})
	cancel()
	s.metrics.ObserveAI(metrics.FlowDesigns, d.Name(), outcome(err), started)

	settleCtx := context.WithoutCancel(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("design generation failed")
		if _, ferr := s.sessions.Update(settleCtx, sessionID, func(session *proposal.Session) error {
			return session.FailBatch(token)
		}); ferr != nil && !errors.Is(ferr, domain.ErrStaleOperation) {
			s.logger.Error().Err(ferr).Str("session_id", sessionID).Msg("release batch")
		}
		return nil, err
	}

	session, err := s.sessions.Update(settleCtx, sessionID, func(session *proposal.Session) error {
		return session.CompleteBatch(token, req, descriptions)
	})
	if err != nil {
		if errors.Is(err, domain.ErrStaleOperation) {
			s.metrics.StaleCompletion(metrics.FlowDesigns)
		}
		return nil, err
	}
	s.logger.Info().Str("session_id", sessionID).Int("proposals", len(descriptions)).Msg("design batch generated")
	return session, nil
}

// GenerateImage renders the image of one proposal. A provider failure is
// recorded on the proposal and returned; other proposals are not touched.
func (s *Service) GenerateImage(ctx context.Context, sessionID string, index int) (*proposal.Session, error) {
	d, err := s.designer()
	if err != nil {
		return nil, err
	}
	var (
		token  uint64
		prompt string
	)
	if _, err := s.sessions.Update(ctx, sessionID, func(session *proposal.Session) error {
		var berr error
		token, prompt, berr = session.BeginImage(index)
		return berr
	}); err != nil {
		return nil, err
	}
	return s.renderImage(ctx, d, sessionID, index, token, prompt)
}

// Refine rewrites one proposal guided by a reference image and, when the
// model returns an image prompt, renders the new image right away. A failed
// follow-up render keeps the refined text; the failure is recorded on the
// proposal only.
func (s *Service) Refine(ctx context.Context, sessionID string, index int, locale string, req domain.RefinementRequest) (*proposal.Session, error) {
	req.Notes = strings.TrimSpace(req.Notes)
	req.ReferenceImage = strings.TrimSpace(req.ReferenceImage)
	if err := req.Validate(s.maxImageBytes); err != nil {
		return nil, err
	}
	d, err := s.designer()
	if err != nil {
		return nil, err
	}
	locale = i18n.Normalize(locale)

	var (
		token uint64
		base  string
	)
	if _, err := s.sessions.Update(ctx, sessionID, func(session *proposal.Session) error {
		var berr error
		token, base, berr = session.BeginRefine(index)
		session.Locale = locale
		return berr
	}); err != nil {
		return nil, err
	}

	started := time.Now()
	callCtx, cancel := s.callContext(ctx)
	result, err := d.Refine(callCtx, designer.RefineRequest{
		BaseDescriptionAndNotes: CombineNotes(locale, base, req.Notes),
		ReferenceImage:          req.ReferenceImage,
		Locale:                  locale,
		RequestID:               requestID(ctx),
	})
	cancel()
	s.metrics.ObserveAI(metrics.FlowRefine, d.Name(), outcome(err), started)

	settleCtx := context.WithoutCancel(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Int("index", index).Msg("refinement failed")
		cause := s.proposalError(locale, err)
		if _, ferr := s.sessions.Update(settleCtx, sessionID, func(session *proposal.Session) error {
			return session.FailRefine(index, token, cause)
		}); ferr != nil {
			s.staleOrLog(ferr, metrics.FlowRefine, sessionID)
		}
		return nil, err
	}

	var imageToken uint64
	session, err := s.sessions.Update(settleCtx, sessionID, func(session *proposal.Session) error {
		var cerr error
		imageToken, cerr = session.CompleteRefine(index, token, result.RefinedDescription, result.ImageGenerationPrompt)
		return cerr
	})
	if err != nil {
		if errors.Is(err, domain.ErrStaleOperation) {
			s.metrics.StaleCompletion(metrics.FlowRefine)
		}
		return nil, err
	}
	if imageToken == 0 {
		return session, nil
	}

	session, err = s.renderImage(ctx, d, sessionID, index, imageToken, result.ImageGenerationPrompt)
	if err != nil && session != nil {
		return session, nil
	}
	return session, err
}

// CombineNotes appends the localized additional-notes sentence to base when
// notes are present.
func CombineNotes(locale, base, notes string) string {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return base
	}
	return base + "\n\n" + i18n.T(locale, i18n.MsgAdditionalNotes, notes)
}

// renderImage performs the image call for a dispatched proposal and settles
// it. On provider failure the updated session is returned together with the
// error.
func (s *Service) renderImage(ctx context.Context, d designer.Designer, sessionID string, index int, token uint64, prompt string) (*proposal.Session, error) {
	started := time.Now()
	callCtx, cancel := s.callContext(ctx)
	uri, err := d.GenerateImage(callCtx, prompt)
	cancel()
	s.metrics.ObserveAI(metrics.FlowImage, d.Name(), outcome(err), started)

	settleCtx := context.WithoutCancel(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Int("index", index).Msg("image generation failed")
		session, ferr := s.sessions.Update(settleCtx, sessionID, func(session *proposal.Session) error {
			return session.FailImage(index, token, s.proposalError(session.Locale, err))
		})
		if ferr != nil {
			s.staleOrLog(ferr, metrics.FlowImage, sessionID)
			return nil, err
		}
		return session, err
	}

	session, err := s.sessions.Update(settleCtx, sessionID, func(session *proposal.Session) error {
		return session.CompleteImage(index, token, uri)
	})
	if err != nil {
		if errors.Is(err, domain.ErrStaleOperation) {
			s.metrics.StaleCompletion(metrics.FlowImage)
		}
		return nil, err
	}
	return session, nil
}

// Save snapshots one proposal together with the session's form context into
// the library.
func (s *Service) Save(ctx context.Context, sessionID string, index int) (domain.TattooDesign, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.TattooDesign{}, err
	}
	if index < 0 || index >= len(session.Proposals) {
		return domain.TattooDesign{}, fmt.Errorf("%w: %d", proposal.ErrProposalOutOfRange, index)
	}
	p := session.Proposals[index]
	return s.library.Append(ctx, domain.DesignDraft{
		Description:       p.Description,
		StylePreferences:  session.Form.StylePreferences,
		Keywords:          session.Form.Keywords,
		ReferenceImage:    session.Form.ReferenceImage,
		GeneratedImageURI: p.GeneratedImageURI,
	})
}

// Designs lists the library newest first.
func (s *Service) Designs(ctx context.Context) []domain.TattooDesign {
	return library.SortNewestFirst(s.library.List(ctx))
}

func (s *Service) Design(ctx context.Context, id string) (domain.TattooDesign, error) {
	return s.library.Get(ctx, id)
}

func (s *Service) RemoveDesign(ctx context.Context, id string) error {
	return s.library.Remove(ctx, id)
}

// Placement composes tattoo over body with the fixed placement box.
func (s *Service) Placement(tattooURI, bodyURI string) (*visualizer.Result, error) {
	return visualizer.Render(strings.TrimSpace(tattooURI), strings.TrimSpace(bodyURI), s.maxImageBytes)
}

// PreviewOnBody asks the model for a realistic rendering of the tattoo on the
// body photo.
func (s *Service) PreviewOnBody(ctx context.Context, tattooURI, bodyURI string) (string, error) {
	tattooURI = strings.TrimSpace(tattooURI)
	bodyURI = strings.TrimSpace(bodyURI)
	errs := domain.FieldErrors{}
	mergeFieldErrors(errs, domain.ValidateImage("tattooImage", tattooURI, s.maxImageBytes))
	mergeFieldErrors(errs, domain.ValidateImage("bodyImage", bodyURI, s.maxImageBytes))
	if len(errs) > 0 {
		return "", errs
	}
	d, err := s.designer()
	if err != nil {
		return "", err
	}

	started := time.Now()
	callCtx, cancel := s.callContext(ctx)
	defer cancel()
	uri, err := d.PreviewOnBody(callCtx, designer.PreviewRequest{
		TattooImage: tattooURI,
		BodyImage:   bodyURI,
		RequestID:   requestID(ctx),
	})
	s.metrics.ObserveAI(metrics.FlowPreview, d.Name(), outcome(err), started)
	if err != nil {
		s.logger.Warn().Err(err).Msg("body preview failed")
		return "", err
	}
	return uri, nil
}

func (s *Service) designer() (designer.Designer, error) {
	d, err := s.designers.Get()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	return d, nil
}

func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.aiTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.aiTimeout)
}

func (s *Service) proposalError(locale string, err error) domain.ProposalError {
	kind := domain.ErrorKind(err)
	return domain.ProposalError{Kind: kind, Message: i18n.T(locale, i18n.KindMessage(kind))}
}

func (s *Service) staleOrLog(err error, flow, sessionID string) {
	if errors.Is(err, domain.ErrStaleOperation) {
		s.metrics.StaleCompletion(flow)
		return
	}
	s.logger.Error().Err(err).Str("session_id", sessionID).Str("flow", flow).Msg("settle proposal")
}

func mergeFieldErrors(dst domain.FieldErrors, err error) {
	var fe domain.FieldErrors
	if errors.As(err, &fe) {
		for k, v := range fe {
			dst[k] = v
		}
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return domain.ErrorKind(err)
}

func requestID(ctx context.Context) string {
	return middleware.RequestIDFromContext(ctx)
}

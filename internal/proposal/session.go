// Package proposal holds the per-user list of generated proposals and the
// state machine that guards concurrent operations on them.
//
// Every dispatched operation receives a token from the session's counter.
// A completion is applied only while the target still carries that token, so
// results that arrive after the target was replaced or re-dispatched are
// discarded with domain.ErrStaleOperation instead of overwriting newer state.
package proposal

import (
	"fmt"
	"time"

	"tattoovision/internal/domain"
)

// ErrProposalOutOfRange reports an index that addresses no proposal. It
// matches domain.ErrNotFound.
var ErrProposalOutOfRange = fmt.Errorf("%w: proposal index out of range", domain.ErrNotFound)

// Session is the server-side page of proposals for one user.
type Session struct {
	ID           string                     `json:"id"`
	Locale       string                     `json:"locale,omitempty"`
	Form         domain.GenerationRequest   `json:"form"`
	Proposals    []domain.GeneratedProposal `json:"proposals"`
	BatchToken   uint64                     `json:"batchToken,omitempty"`
	BatchPending bool                       `json:"batchPending"`
	NextToken    uint64                     `json:"nextToken"`
	CreatedAt    time.Time                  `json:"createdAt"`
	UpdatedAt    time.Time                  `json:"updatedAt"`
}

// NewSession returns an empty session.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Proposals: []domain.GeneratedProposal{},
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Proposals = make([]domain.GeneratedProposal, len(s.Proposals))
	for i, p := range s.Proposals {
		if p.LastError != nil {
			e := *p.LastError
			p.LastError = &e
		}
		out.Proposals[i] = p
	}
	return &out
}

func (s *Session) allocate() uint64 {
	s.NextToken++
	return s.NextToken
}

func (s *Session) proposal(index int) (*domain.GeneratedProposal, error) {
	if index < 0 || index >= len(s.Proposals) {
		return nil, fmt.Errorf("%w: %d", ErrProposalOutOfRange, index)
	}
	return &s.Proposals[index], nil
}

// BeginBatch dispatches a new generation. A newer batch supersedes any batch
// still in flight.
func (s *Session) BeginBatch() uint64 {
	s.BatchToken = s.allocate()
	s.BatchPending = true
	return s.BatchToken
}

// CompleteBatch replaces the whole list with fresh idle proposals and records
// the form context the batch was generated from.
func (s *Session) CompleteBatch(token uint64, form domain.GenerationRequest, descriptions []string) error {
	if !s.BatchPending || token != s.BatchToken {
		return fmt.Errorf("%w: batch %d superseded", domain.ErrStaleOperation, token)
	}
	proposals := make([]domain.GeneratedProposal, len(descriptions))
	for i, d := range descriptions {
		proposals[i] = domain.GeneratedProposal{Description: d, State: domain.ProposalIdle}
	}
	s.Proposals = proposals
	s.Form = form
	s.BatchPending = false
	return nil
}

// FailBatch ends the in-flight batch and leaves the previous list untouched.
func (s *Session) FailBatch(token uint64) error {
	if !s.BatchPending || token != s.BatchToken {
		return fmt.Errorf("%w: batch %d superseded", domain.ErrStaleOperation, token)
	}
	s.BatchPending = false
	return nil
}

// BeginImage moves a proposal to image-pending and returns the token and the
// prompt to render. A refined prompt takes precedence over the description.
func (s *Session) BeginImage(index int) (uint64, string, error) {
	p, err := s.proposal(index)
	if err != nil {
		return 0, "", err
	}
	if p.Busy() {
		return 0, "", fmt.Errorf("%w: proposal %d is %s", domain.ErrOperationInProgress, index, p.State)
	}
	token := s.allocate()
	p.ResumeState = p.State
	p.State = domain.ProposalImagePending
	p.IsGeneratingImage = true
	p.PendingToken = token
	p.LastError = nil

	prompt := p.RefinedImageGenerationPrompt
	if prompt == "" {
		prompt = p.Description
	}
	return token, prompt, nil
}

// CompleteImage stores the rendered image.
func (s *Session) CompleteImage(index int, token uint64, imageURI string) error {
	p, err := s.pending(index, token, domain.ProposalImagePending)
	if err != nil {
		return err
	}
	p.GeneratedImageURI = imageURI
	p.State = domain.ProposalImageReady
	p.ImageStale = false
	settle(p)
	return nil
}

// FailImage records the failure. A previous image is kept but stays marked
// stale when the text moved on since it was rendered.
func (s *Session) FailImage(index int, token uint64, cause domain.ProposalError) error {
	p, err := s.pending(index, token, domain.ProposalImagePending)
	if err != nil {
		return err
	}
	p.State = domain.ProposalImageFailed
	p.LastError = &cause
	settle(p)
	return nil
}

// BeginRefine moves a proposal to refining and returns the token and the
// current description.
func (s *Session) BeginRefine(index int) (uint64, string, error) {
	p, err := s.proposal(index)
	if err != nil {
		return 0, "", err
	}
	if p.Busy() {
		return 0, "", fmt.Errorf("%w: proposal %d is %s", domain.ErrOperationInProgress, index, p.State)
	}
	token := s.allocate()
	p.ResumeState = p.State
	p.State = domain.ProposalRefining
	p.PendingToken = token
	p.LastError = nil
	return token, p.Description, nil
}

// CompleteRefine replaces the description. With a non-empty image prompt the
// proposal chains straight into image-pending and the returned token is the
// one the image completion must present; otherwise it settles in idle and the
// returned token is zero.
func (s *Session) CompleteRefine(index int, token uint64, description, imagePrompt string) (uint64, error) {
	p, err := s.pending(index, token, domain.ProposalRefining)
	if err != nil {
		return 0, err
	}
	p.Description = description
	p.RefinedImageGenerationPrompt = imagePrompt
	p.ImageStale = p.GeneratedImageURI != ""

	if imagePrompt == "" {
		p.State = domain.ProposalIdle
		settle(p)
		return 0, nil
	}
	next := s.allocate()
	p.State = domain.ProposalImagePending
	p.IsGeneratingImage = true
	p.PendingToken = next
	p.ResumeState = domain.ProposalIdle
	return next, nil
}

// FailRefine restores the state the refinement was entered from.
func (s *Session) FailRefine(index int, token uint64, cause domain.ProposalError) error {
	p, err := s.pending(index, token, domain.ProposalRefining)
	if err != nil {
		return err
	}
	p.State = p.ResumeState
	if p.State == "" {
		p.State = domain.ProposalIdle
	}
	p.LastError = &cause
	settle(p)
	return nil
}

func (s *Session) pending(index int, token uint64, state domain.ProposalState) (*domain.GeneratedProposal, error) {
	p, err := s.proposal(index)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStaleOperation, err)
	}
	if p.State != state || p.PendingToken != token {
		return nil, fmt.Errorf("%w: proposal %d token %d", domain.ErrStaleOperation, index, token)
	}
	return p, nil
}

func settle(p *domain.GeneratedProposal) {
	p.IsGeneratingImage = false
	p.PendingToken = 0
	p.ResumeState = ""
}

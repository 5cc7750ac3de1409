package proposal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tattoovision/internal/domain"
)

func sessionWithBatch(t *testing.T) *Session {
	t.Helper()
	s := NewSession("s-1", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	token := s.BeginBatch()
	form := domain.GenerationRequest{Description: "Minimalist wolf outline", StylePreferences: "Minimalist"}
	require.NoError(t, s.CompleteBatch(token, form, []string{"one", "two", "three"}))
	return s
}

func TestBatchReplacesProposals(t *testing.T) {
	s := sessionWithBatch(t)
	require.Len(t, s.Proposals, 3)
	for _, p := range s.Proposals {
		assert.Equal(t, domain.ProposalIdle, p.State)
		assert.False(t, p.IsGeneratingImage)
		assert.Empty(t, p.GeneratedImageURI)
	}
	assert.Equal(t, "Minimalist wolf outline", s.Form.Description)
	assert.False(t, s.BatchPending)
}

func TestSupersededBatchIsStale(t *testing.T) {
	s := NewSession("s-1", time.Now())
	first := s.BeginBatch()
	second := s.BeginBatch()

	err := s.CompleteBatch(first, domain.GenerationRequest{}, []string{"a", "b", "c"})
	assert.True(t, errors.Is(err, domain.ErrStaleOperation))
	assert.Empty(t, s.Proposals)

	require.NoError(t, s.CompleteBatch(second, domain.GenerationRequest{}, []string{"d", "e", "f"}))
	assert.Equal(t, "d", s.Proposals[0].Description)
}

func TestFailedBatchKeepsPreviousList(t *testing.T) {
	s := sessionWithBatch(t)
	token := s.BeginBatch()
	require.NoError(t, s.FailBatch(token))
	assert.Equal(t, "one", s.Proposals[0].Description)
	assert.False(t, s.BatchPending)
}

func TestImageLifecycle(t *testing.T) {
	s := sessionWithBatch(t)

	token, prompt, err := s.BeginImage(1)
	require.NoError(t, err)
	assert.Equal(t, "two", prompt)
	assert.Equal(t, domain.ProposalImagePending, s.Proposals[1].State)
	assert.True(t, s.Proposals[1].IsGeneratingImage)

	_, _, err = s.BeginImage(1)
	assert.True(t, errors.Is(err, domain.ErrOperationInProgress))
	_, _, err = s.BeginRefine(1)
	assert.True(t, errors.Is(err, domain.ErrOperationInProgress))

	require.NoError(t, s.CompleteImage(1, token, "data:image/png;base64,AAAA"))
	p := s.Proposals[1]
	assert.Equal(t, domain.ProposalImageReady, p.State)
	assert.False(t, p.IsGeneratingImage)
	assert.Equal(t, "data:image/png;base64,AAAA", p.GeneratedImageURI)
	assert.Zero(t, p.PendingToken)

	err = s.CompleteImage(1, token, "data:image/png;base64,BBBB")
	assert.True(t, errors.Is(err, domain.ErrStaleOperation))
	assert.Equal(t, "data:image/png;base64,AAAA", s.Proposals[1].GeneratedImageURI)
}

func TestImageFailureIsolatedToProposal(t *testing.T) {
	s := sessionWithBatch(t)
	t0, _, err := s.BeginImage(0)
	require.NoError(t, err)
	t1, _, err := s.BeginImage(1)
	require.NoError(t, err)
	t2, _, err := s.BeginImage(2)
	require.NoError(t, err)

	require.NoError(t, s.CompleteImage(0, t0, "data:image/png;base64,AAAA"))
	require.NoError(t, s.FailImage(2, t2, domain.ProposalError{Kind: "content_blocked", Message: "blocked"}))
	require.NoError(t, s.CompleteImage(1, t1, "data:image/png;base64,BBBB"))

	assert.Equal(t, domain.ProposalImageReady, s.Proposals[0].State)
	assert.Equal(t, domain.ProposalImageReady, s.Proposals[1].State)
	assert.Equal(t, domain.ProposalImageFailed, s.Proposals[2].State)
	require.NotNil(t, s.Proposals[2].LastError)
	assert.Equal(t, "content_blocked", s.Proposals[2].LastError.Kind)
	assert.Nil(t, s.Proposals[0].LastError)
}

func TestStaleImageAfterNewBatch(t *testing.T) {
	s := sessionWithBatch(t)
	token, _, err := s.BeginImage(0)
	require.NoError(t, err)

	batch := s.BeginBatch()
	require.NoError(t, s.CompleteBatch(batch, domain.GenerationRequest{}, []string{"x", "y", "z"}))

	err = s.CompleteImage(0, token, "data:image/png;base64,AAAA")
	assert.True(t, errors.Is(err, domain.ErrStaleOperation))
	assert.Empty(t, s.Proposals[0].GeneratedImageURI)
	assert.Equal(t, "x", s.Proposals[0].Description)
}

func TestRefineChainsIntoImage(t *testing.T) {
	s := sessionWithBatch(t)
	token, base, err := s.BeginRefine(0)
	require.NoError(t, err)
	assert.Equal(t, "one", base)
	assert.Equal(t, domain.ProposalRefining, s.Proposals[0].State)
	assert.False(t, s.Proposals[0].IsGeneratingImage)

	imageToken, err := s.CompleteRefine(0, token, "refined one", "draw refined one")
	require.NoError(t, err)
	require.NotZero(t, imageToken)
	p := s.Proposals[0]
	assert.Equal(t, "refined one", p.Description)
	assert.Equal(t, "draw refined one", p.RefinedImageGenerationPrompt)
	assert.Equal(t, domain.ProposalImagePending, p.State)
	assert.True(t, p.IsGeneratingImage)

	require.NoError(t, s.FailImage(0, imageToken, domain.ProposalError{Kind: "provider_failure"}))
	p = s.Proposals[0]
	assert.Equal(t, "refined one", p.Description)
	assert.Equal(t, domain.ProposalImageFailed, p.State)

	retry, prompt, err := s.BeginImage(0)
	require.NoError(t, err)
	assert.Equal(t, "draw refined one", prompt)
	require.NoError(t, s.CompleteImage(0, retry, "data:image/png;base64,CCCC"))
}

func TestRefineWithoutPromptReturnsToIdleAndMarksImageStale(t *testing.T) {
	s := sessionWithBatch(t)
	img, _, err := s.BeginImage(2)
	require.NoError(t, err)
	require.NoError(t, s.CompleteImage(2, img, "data:image/png;base64,AAAA"))

	token, _, err := s.BeginRefine(2)
	require.NoError(t, err)
	next, err := s.CompleteRefine(2, token, "refined three", "")
	require.NoError(t, err)
	assert.Zero(t, next)

	p := s.Proposals[2]
	assert.Equal(t, domain.ProposalIdle, p.State)
	assert.True(t, p.ImageStale)
	assert.Equal(t, "data:image/png;base64,AAAA", p.GeneratedImageURI)
}

func TestRefineFailureRestoresEntryState(t *testing.T) {
	s := sessionWithBatch(t)
	img, _, err := s.BeginImage(1)
	require.NoError(t, err)
	require.NoError(t, s.CompleteImage(1, img, "data:image/png;base64,AAAA"))

	token, _, err := s.BeginRefine(1)
	require.NoError(t, err)
	require.NoError(t, s.FailRefine(1, token, domain.ProposalError{Kind: "malformed_ai_response"}))

	p := s.Proposals[1]
	assert.Equal(t, domain.ProposalImageReady, p.State)
	assert.Equal(t, "two", p.Description)
	require.NotNil(t, p.LastError)
	assert.Equal(t, "malformed_ai_response", p.LastError.Kind)
}

func TestOutOfRangeIndex(t *testing.T) {
	s := sessionWithBatch(t)
	_, _, err := s.BeginImage(3)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, errors.Is(err, ErrProposalOutOfRange))
	_, _, err = s.BeginRefine(-1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCloneIsDeep(t *testing.T) {
	s := sessionWithBatch(t)
	s.Proposals[0].LastError = &domain.ProposalError{Kind: "x"}
	c := s.Clone()
	c.Proposals[0].Description = "changed"
	c.Proposals[0].LastError.Kind = "y"
	assert.Equal(t, "one", s.Proposals[0].Description)
	assert.Equal(t, "x", s.Proposals[0].LastError.Kind)
}

package domain

// ProposalState enumerates the lifecycle of a generated proposal.
type ProposalState string

const (
	ProposalIdle         ProposalState = "idle"
	ProposalImagePending ProposalState = "image-pending"
	ProposalImageReady   ProposalState = "image-ready"
	ProposalImageFailed  ProposalState = "image-failed"
	ProposalRefining     ProposalState = "refining"
)

// ProposalsPerBatch is the exact number of proposals a generation call yields.
const ProposalsPerBatch = 3

// ProposalError records why the last operation on a proposal failed.
type ProposalError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// GeneratedProposal is one candidate design returned by the generation call.
// It only lives inside a session and is never persisted unless saved.
type GeneratedProposal struct {
	Description                  string         `json:"description"`
	GeneratedImageURI            string         `json:"generatedImageUri,omitempty"`
	IsGeneratingImage            bool           `json:"isGeneratingImage"`
	RefinedImageGenerationPrompt string         `json:"refinedImageGenerationPrompt,omitempty"`
	State                        ProposalState  `json:"state"`
	ImageStale                   bool           `json:"imageStale,omitempty"`
	LastError                    *ProposalError `json:"lastError,omitempty"`
	PendingToken                 uint64         `json:"pendingToken,omitempty"`
	ResumeState                  ProposalState  `json:"resumeState,omitempty"`
}

// Busy reports whether an operation is in flight for the proposal.
func (p GeneratedProposal) Busy() bool {
	return p.State == ProposalImagePending || p.State == ProposalRefining
}

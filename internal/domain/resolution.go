package domain

import (
	"errors"
	"time"

	"github.com/iconidentify/xresolve/pkg/twitter"
)

// ResolutionID is a unique identifier for one resolution attempt.
type ResolutionID string

// String returns the string representation of the ResolutionID.
func (id ResolutionID) String() string {
	return string(id)
}

// Outcome classifies how a resolution attempt ended.
type Outcome string

const (
	OutcomeResolved          Outcome = "resolved"
	OutcomeInvalidURL        Outcome = "invalid_url"
	OutcomeCredentialError   Outcome = "credential_error"
	OutcomeBackendError      Outcome = "backend_error"
	OutcomeNoVideo           Outcome = "no_video"
	OutcomeMalformedResponse Outcome = "malformed_response"
)

// Resolution sources.
const (
	SourceAPI    = "api"
	SourceCompat = "compat"
	SourceCLI    = "cli"
)

// Resolution is one journaled resolution attempt. Outcome metadata only:
// tokens and resolved variant URLs are never written into a Resolution.
type Resolution struct {
	ID        ResolutionID
	TweetID   string
	Source    string
	Outcome   Outcome
	Bitrate   int
	Duration  time.Duration
	CreatedAt time.Time
}

// Succeeded reports whether the attempt produced a video URL.
func (r *Resolution) Succeeded() bool {
	return r.Outcome == OutcomeResolved
}

// OutcomeForError maps a resolve error to its journal outcome. Unrecognized
// errors are classified as backend errors, the transport-shaped catch-all.
func OutcomeForError(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeResolved
	case errors.Is(err, twitter.ErrInvalidTweetURL):
		return OutcomeInvalidURL
	case errors.Is(err, twitter.ErrCredentialExtraction):
		return OutcomeCredentialError
	case errors.Is(err, twitter.ErrNoVideoFound):
		return OutcomeNoVideo
	case errors.Is(err, twitter.ErrMalformedResponse):
		return OutcomeMalformedResponse
	default:
		return OutcomeBackendError
	}
}

package twitter

import "errors"

// Resolution errors.
var (
	// ErrInvalidTweetURL is returned when the input does not match the
	// canonical tweet URL shape.
	ErrInvalidTweetURL = errors.New("invalid tweet URL")

	// ErrCredentialExtraction is returned when the bearer token cannot be
	// recovered from the web client bundle or guest activation fails. This
	// usually means the pinned bundle URL or token pattern went stale.
	ErrCredentialExtraction = errors.New("credential extraction failed")

	// ErrBackendRequest is returned on transport or HTTP status failures
	// against the GraphQL backend.
	ErrBackendRequest = errors.New("backend request failed")

	// ErrNoVideoFound is returned when the tweet exists but carries no MP4
	// video. A legitimate empty result, not a system fault.
	ErrNoVideoFound = errors.New("no video found in tweet")

	// ErrMalformedResponse is returned when the response envelope does not
	// have the expected shape. Catch-all for provider contract drift.
	ErrMalformedResponse = errors.New("malformed backend response")
)

// ResolveError wraps an error with tweet context.
type ResolveError struct {
	TweetID string
	Op      string
	Err     error
}

func (e *ResolveError) Error() string {
	if e.TweetID != "" {
		return e.Op + " [" + e.TweetID + "]: " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

package domain

import "errors"

// Domain errors.
var (
	// ErrMissingURL is returned when a request carries no URL at all.
	ErrMissingURL = errors.New("No URL provided")

	// ErrInvalidURL is returned when a URL is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("Invalid URL")

	// ErrInvalidVideoURL is returned when no video ID can be extracted from a URL.
	ErrInvalidVideoURL = errors.New("Invalid YouTube URL")

	// ErrInvalidRequestBody is returned when a request body cannot be decoded.
	ErrInvalidRequestBody = errors.New("Invalid request body")

	// ErrVideoNotFound is returned when the metadata API has no matching video.
	ErrVideoNotFound = errors.New("Video not found")

	// ErrNoVideoInfo is returned when the extraction library produced no result.
	ErrNoVideoInfo = errors.New("No video information returned")

	// ErrInvalidVideoInfo is returned when an extraction result cannot be turned into a VideoInfo.
	ErrInvalidVideoInfo = errors.New("invalid video information")
)

// ErrorKind classifies a failure for the HTTP layer.
type ErrorKind int

const (
	// KindInternal covers anything unexpected.
	KindInternal ErrorKind = iota
	// KindValidation is a client input error detected before any outbound call.
	KindValidation
	// KindNotFound means the upstream answered but had nothing for the request.
	KindNotFound
	// KindUpstream is a transport or HTTP failure of an external collaborator.
	KindUpstream
)

// String returns the lowercase name of the kind, used as a metrics label.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Error wraps an error with its kind and the operation that failed.
// Message, when set, is the summary shown to clients in place of the default one.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Detail returns the wrapped error text without the operation prefix.
func (e *Error) Detail() string {
	return e.Err.Error()
}

// NewError creates a new Error.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{
		Kind: kind,
		Op:   op,
		Err:  err,
	}
}

// KindOf reports the kind of err. Errors that are not a *Error are internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// DetailOf returns the client-facing detail of err.
func DetailOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail()
	}
	return err.Error()
}

// MessageOf returns the summary message attached to err, or fallback.
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

package media

import "errors"

// ErrSourceNotSupported is returned by SetSource when the URL does not
// resolve to a registered source. No element-level error is recorded.
var ErrSourceNotSupported = errors.New("media: unknown source URL")

// ErrorCode is a standard media element error code.
type ErrorCode int

const (
	ErrCodeAborted ErrorCode = iota + 1
	ErrCodeNetwork
	ErrCodeDecode
	ErrCodeSrcNotSupported
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeAborted:
		return "MEDIA_ERR_ABORTED"
	case ErrCodeNetwork:
		return "MEDIA_ERR_NETWORK"
	case ErrCodeDecode:
		return "MEDIA_ERR_DECODE"
	case ErrCodeSrcNotSupported:
		return "MEDIA_ERR_SRC_NOT_SUPPORTED"
	default:
		return "MEDIA_ERR_UNKNOWN"
	}
}

// MediaError is the element's recorded error. It is set at most once per
// error episode and cleared only by Load.
type MediaError struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *MediaError) Error() string {
	return e.Code.String() + ": " + e.Message
}

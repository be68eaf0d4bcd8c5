package share

import "errors"

var (
	ErrMalformedJSON      = errors.New("malformed json")
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrMissingField       = errors.New("missing field")
	ErrInvalidCard        = errors.New("invalid card")
	ErrNameTooLong        = errors.New("name too long")
)

// ProtocolError is reported to the sender; the connection stays open.
type ProtocolError struct {
	Kind    error
	Message string
}

func (e *ProtocolError) Error() string { return e.Message }

func (e *ProtocolError) Unwrap() error { return e.Kind }

func protocolError(kind error, message string) *ProtocolError {
	return &ProtocolError{Kind: kind, Message: message}
}

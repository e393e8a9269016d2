package auth

import (
	"net/http"

	"github.com/mattjoyce/sensorgate/internal/payload"
)

// Kind classifies the result of handling one request body.
type Kind int

const (
	Accepted Kind = iota
	MissingSignature
	InvalidSignature
	MalformedPayload
	InternalError
)

func (k Kind) String() string {
	switch k {
	case Accepted:
		return "accepted"
	case MissingSignature:
		return "missing_signature"
	case InvalidSignature:
		return "invalid_signature"
	case MalformedPayload:
		return "malformed_payload"
	case InternalError:
		return "internal_error"
	default:
		return "unknown"
	}
}

// Outcome is the terminal state reached for a single request.
// Payload is set only for Accepted; Err is set for every other kind.
type Outcome struct {
	Kind    Kind
	Payload payload.Value
	Err     error
}

// OK reports whether the payload was accepted.
func (o Outcome) OK() bool {
	return o.Kind == Accepted
}

// Status maps the outcome to the HTTP status code returned to the caller.
func (o Outcome) Status() int {
	switch o.Kind {
	case Accepted:
		return http.StatusOK
	case MissingSignature:
		return http.StatusUnauthorized
	case InvalidSignature:
		return http.StatusForbidden
	case MalformedPayload:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func accepted(v payload.Value) Outcome {
	return Outcome{Kind: Accepted, Payload: v}
}

func rejected(kind Kind, err error) Outcome {
	return Outcome{Kind: kind, Err: err}
}

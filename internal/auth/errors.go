package auth

import "errors"

var (
	ErrMissingSignature = errors.New("missing HMAC signature")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrMalformedPayload = errors.New("payload is not valid JSON")
	ErrInternal         = errors.New("internal error")
	ErrEmptyKey         = errors.New("secret key is empty")
)

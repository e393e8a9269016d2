// Package payload decodes and encodes the JSON bodies devices post to the
// ingest endpoints.
//
// A decoded Value is one of nil, bool, json.Number, string, []any or
// map[string]any. Numbers stay as json.Number so an echoed payload carries
// the sender's literal unchanged.
package payload

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"
)

// Value is a decoded JSON document.
type Value = any

var (
	// ErrInvalidUTF8 is returned when the body is not valid UTF-8 text.
	ErrInvalidUTF8 = errors.New("payload is not valid UTF-8")
	// ErrInvalidJSON is returned when the body is not a single JSON value.
	ErrInvalidJSON = errors.New("payload is not valid JSON")
)

var codec = jsoniter.Config{
	EscapeHTML:             true,
	UseNumber:              true,
	ValidateJsonRawMessage: true,
}.Froze()

// Parse decodes body as UTF-8 text holding exactly one JSON value.
func Parse(body []byte) (Value, error) {
	if !utf8.Valid(body) {
		return nil, ErrInvalidUTF8
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidJSON)
	}
	// UseNumber keeps number literals verbatim without checking their
	// grammar, so the whole document is validated first.
	if !codec.Valid(body) {
		return nil, fmt.Errorf("%w: syntax error", ErrInvalidJSON)
	}

	var v Value
	if err := codec.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return v, nil
}

// Marshal encodes v with the same settings Parse decodes with.
func Marshal(v any) ([]byte, error) {
	return codec.Marshal(v)
}

// IsMalformed reports whether err came from a client sending a bad body.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrInvalidUTF8) || errors.Is(err, ErrInvalidJSON)
}

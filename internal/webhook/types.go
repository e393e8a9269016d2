package webhook

import (
	"github.com/mattjoyce/sensorgate/internal/auth"
	"github.com/mattjoyce/sensorgate/internal/payload"
)

//go:generate mockgen -destination=mocks/mock_verifier.go -package=mocks github.com/mattjoyce/sensorgate/internal/webhook Verifier

// Verifier decides the outcome for a request body.
type Verifier interface {
	Authenticate(body []byte, signature string) auth.Outcome
	ParseUnauthenticated(body []byte) auth.Outcome
}

// Config holds ingest server configuration.
type Config struct {
	Listen string

	// MaxBodySize is the maximum allowed request body size in bytes (default: 1MB)
	MaxBodySize int64

	// ExposeErrors returns internal error details in 500 responses.
	ExposeErrors bool
}

// DataResponse is the JSON response for an accepted payload.
type DataResponse struct {
	Status string        `json:"status"`
	Data   payload.Value `json:"data"`
}

// MessageResponse is the JSON response for rejected payloads.
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StatusResponse is returned by GET on the ingest endpoints.
type StatusResponse struct {
	Status string `json:"status"`
	Msg    string `json:"msg"`
}

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

const (
	InsecurePath = "/insecure_data"
	SecurePath   = "/secure_data"

	SignatureHeader = "X-Signature"
	ReceiptHeader   = "X-Receipt-ID"

	DefaultMaxBodySize = 1048576 // 1 MB

	homeText = "IoT server running. Endpoints: /insecure_data and /secure_data"
)

// Response status strings.
const (
	statusOK       = "OK"
	statusReceived = "received"
	statusVerified = "verified"
	statusError    = "error"
)

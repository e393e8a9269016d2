// Package webhook serves the device ingest endpoints.
//
// # Endpoints
//
//	GET  /                 plain-text banner
//	GET  /healthz          {"status":"ok","uptime_seconds":N}
//	*    /insecure_data    JSON accepted without authentication
//	*    /secure_data      JSON accepted only with a valid X-Signature
//
// Both ingest endpoints answer GET with a static status object, OPTIONS with
// 204 and permissive CORS headers, and POST with the parsed payload echoed
// back as {"status":...,"data":...}.
//
// # Signing
//
// X-Signature carries the lowercase hex HMAC-SHA256 of the exact raw body
// keyed by the shared secret:
//
//	printf '{"t":1}' | openssl dgst -sha256 -hmac "$SECRET_KEY" | cut -d' ' -f2
//
// # Error Responses
//
//   - 400 Bad Request: body is not valid UTF-8 JSON
//   - 401 Unauthorized: X-Signature missing (secure endpoint)
//   - 403 Forbidden: X-Signature does not match (secure endpoint)
//   - 413 Payload Too Large: body exceeds max_body_size
//   - 500 Internal Server Error: unexpected failure
//
// Signature checks always run before the body is parsed, and neither the
// expected nor the provided signature is ever logged.
package webhook

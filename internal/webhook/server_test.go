package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/sensorgate/internal/auth"
	"github.com/mattjoyce/sensorgate/internal/webhook/mocks"
)

const testSecret = "s3cr3t"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestServer(t *testing.T, cfg Config, opts ...Option) (*Server, *auth.Authenticator) {
	t.Helper()
	a, err := auth.New([]byte(testSecret))
	require.NoError(t, err)
	return New(cfg, a, testLogger(), opts...), a
}

func do(t *testing.T, s *Server, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) MessageResponse {
	t.Helper()
	var resp MessageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func flip(sig string) string {
	b := []byte(sig)
	if b[5] == 'a' {
		b[5] = 'b'
	} else {
		b[5] = 'a'
	}
	return string(b)
}

func TestSecureMissingSignature(t *testing.T) {
	s, _ := newTestServer(t, Config{})

	rec := do(t, s, http.MethodPost, SecurePath, []byte(`{"t":1}`), nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeMessage(t, rec)
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Message, "missing")
}

func TestSecureValidSignature(t *testing.T) {
	s, a := newTestServer(t, Config{})
	body := []byte(`{"t":1}`)

	rec := do(t, s, http.MethodPost, SecurePath, body, map[string]string{SignatureHeader: a.Sign(body)})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(ReceiptHeader))

	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "verified", resp.Status)
	assert.JSONEq(t, `{"t":1}`, string(resp.Data))
}

func TestSecureFlippedSignature(t *testing.T) {
	s, a := newTestServer(t, Config{})
	body := []byte(`{"t":1}`)

	rec := do(t, s, http.MethodPost, SecurePath, body, map[string]string{SignatureHeader: flip(a.Sign(body))})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	resp := decodeMessage(t, rec)
	assert.Equal(t, "invalid signature", resp.Message)
	assert.NotContains(t, rec.Body.String(), a.Sign(body))
	assert.Empty(t, rec.Header().Get(ReceiptHeader))
}

func TestSecureSignedButMalformed(t *testing.T) {
	s, a := newTestServer(t, Config{})
	body := []byte("not-json")

	rec := do(t, s, http.MethodPost, SecurePath, body, map[string]string{SignatureHeader: a.Sign(body)})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "payload is not valid JSON", decodeMessage(t, rec).Message)
}

func TestSecureBadSignatureOnMalformedBodyIsForbidden(t *testing.T) {
	s, _ := newTestServer(t, Config{})

	rec := do(t, s, http.MethodPost, SecurePath, []byte("{oops"), map[string]string{SignatureHeader: strings.Repeat("0", 64)})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestInsecureEchoesPayload(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	body := []byte(`{"x":[1,2,3]}`)

	rec := do(t, s, http.MethodPost, InsecurePath, body, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "received", resp.Status)
	assert.Equal(t, `{"x":[1,2,3]}`, string(resp.Data))
}

func TestInsecureMalformed(t *testing.T) {
	s, _ := newTestServer(t, Config{})

	rec := do(t, s, http.MethodPost, InsecurePath, []byte("{"), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", decodeMessage(t, rec).Status)
}

func TestGetStatus(t *testing.T) {
	s, _ := newTestServer(t, Config{})

	for _, path := range []string{InsecurePath, SecurePath} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, path, nil, nil)
			require.Equal(t, http.StatusOK, rec.Code)

			var resp StatusResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, StatusResponse{Status: "OK", Msg: "GET on " + path}, resp)
		})
	}
}

func TestOptionsWithoutOrigin(t *testing.T) {
	s, _ := newTestServer(t, Config{})

	for _, path := range []string{InsecurePath, SecurePath} {
		rec := do(t, s, http.MethodOptions, path, nil, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), SignatureHeader)
	}
}

func TestBrowserPreflight(t *testing.T) {
	s, _ := newTestServer(t, Config{})

	rec := do(t, s, http.MethodOptions, SecurePath, nil, map[string]string{
		"Origin":                         "http://device.local",
		"Access-Control-Request-Method":  http.MethodPost,
		"Access-Control-Request-Headers": "Content-Type, X-Signature",
	})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestCrossOriginPostGetsAllowOrigin(t *testing.T) {
	s, _ := newTestServer(t, Config{})

	rec := do(t, s, http.MethodPost, InsecurePath, []byte(`{}`), map[string]string{"Origin": "http://device.local"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, Config{})

	rec := do(t, s, http.MethodDelete, SecurePath, nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHome(t *testing.T) {
	s, _ := newTestServer(t, Config{})

	rec := do(t, s, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/secure_data")
}

func TestHealthzUptime(t *testing.T) {
	mock := clock.NewMock()
	s, _ := newTestServer(t, Config{}, WithClock(mock))
	mock.Add(90 * time.Second)

	rec := do(t, s, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthzResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, HealthzResponse{Status: "ok", UptimeSeconds: 90}, resp)
}

func TestBodyTooLargeSkipsVerification(t *testing.T) {
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockVerifier(ctrl)
	// No EXPECT: any call to the verifier fails the test.

	s := New(Config{MaxBodySize: 16}, verifier, testLogger())
	body := bytes.Repeat([]byte("a"), 17)

	for _, path := range []string{InsecurePath, SecurePath} {
		rec := do(t, s, http.MethodPost, path, body, map[string]string{SignatureHeader: "00"})
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	}
}

func TestBodyLimit(t *testing.T) {
	body := []byte(`{"t":1}`)

	tests := []struct {
		name  string
		limit int64
		want  int
	}{
		{name: "max int64 limit", limit: math.MaxInt64, want: http.StatusOK},
		{name: "body exactly at limit", limit: int64(len(body)), want: http.StatusOK},
		{name: "one byte over limit", limit: int64(len(body)) - 1, want: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, a := newTestServer(t, Config{MaxBodySize: tt.limit})

			rec := do(t, s, http.MethodPost, InsecurePath, body, nil)
			assert.Equal(t, tt.want, rec.Code)

			rec = do(t, s, http.MethodPost, SecurePath, body, map[string]string{SignatureHeader: a.Sign(body)})
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestBodyReadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockVerifier(ctrl)

	s := New(Config{}, verifier, testLogger())
	req := httptest.NewRequest(http.MethodPost, SecurePath, failingReader{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error", decodeMessage(t, rec).Status)
}

func TestMalformedNumberLiterals(t *testing.T) {
	bodies := []string{`{"t":1-2}`, `01`, `[1.]`, `{"a":-}`, `1ee5`}

	for _, b := range bodies {
		t.Run(b, func(t *testing.T) {
			s, a := newTestServer(t, Config{})
			body := []byte(b)

			rec := do(t, s, http.MethodPost, InsecurePath, body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, auth.ErrMalformedPayload.Error(), decodeMessage(t, rec).Message)

			rec = do(t, s, http.MethodPost, SecurePath, body, map[string]string{SignatureHeader: a.Sign(body)})
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, auth.ErrMalformedPayload.Error(), decodeMessage(t, rec).Message)
		})
	}
}

func TestRequestLogsGoToServerLogger(t *testing.T) {
	var buf bytes.Buffer
	a, err := auth.New([]byte(testSecret))
	require.NoError(t, err)
	s := New(Config{}, a, slog.New(slog.NewJSONHandler(&buf, nil)))

	rec := do(t, s, http.MethodPost, SecurePath, []byte(`{"t":1}`), nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	out := buf.String()
	assert.Contains(t, out, "request rejected: signature header missing")
	assert.Contains(t, out, `"request_id":`)
}

func TestNewAppliesDefaults(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	assert.Equal(t, int64(DefaultMaxBodySize), s.config.MaxBodySize)
}

func TestSecurePassesRawBodyAndHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockVerifier(ctrl)
	body := []byte(`{"a":"b"}`)

	verifier.EXPECT().
		Authenticate(body, "abc123").
		Return(auth.Outcome{Kind: auth.Accepted, Payload: map[string]any{"a": "b"}})

	s := New(Config{}, verifier, testLogger())
	rec := do(t, s, http.MethodPost, SecurePath, body, map[string]string{SignatureHeader: "abc123"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"verified","data":{"a":"b"}}`, rec.Body.String())
}

func TestInternalErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		expose  bool
		wantMsg string
	}{
		{name: "hidden by default", expose: false, wantMsg: "Internal Server Error"},
		{name: "exposed when configured", expose: true, wantMsg: "decoder exploded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			verifier := mocks.NewMockVerifier(ctrl)
			verifier.EXPECT().
				ParseUnauthenticated(gomock.Any()).
				Return(auth.Outcome{Kind: auth.InternalError, Err: errors.New("decoder exploded")})

			s := New(Config{ExposeErrors: tt.expose}, verifier, testLogger())
			rec := do(t, s, http.MethodPost, InsecurePath, []byte(`{}`), nil)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, tt.wantMsg, decodeMessage(t, rec).Message)
		})
	}
}

func TestConcurrentRequests(t *testing.T) {
	s, a := newTestServer(t, Config{})
	body := []byte(`{"t":1}`)
	sig := a.Sign(body)

	const n = 32
	codes := make(chan int, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			header := sig
			if i%2 == 1 {
				header = flip(sig)
			}
			req := httptest.NewRequest(http.MethodPost, SecurePath, bytes.NewReader(body))
			req.Header.Set(SignatureHeader, header)
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)
			codes <- rec.Code
		}(i)
	}

	counts := map[int]int{}
	for i := 0; i < n; i++ {
		counts[<-codes]++
	}
	assert.Equal(t, n/2, counts[http.StatusOK])
	assert.Equal(t, n/2, counts[http.StatusForbidden])
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

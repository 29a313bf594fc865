package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/rescript/internal/models"
)

type stubRunner struct {
	lastURLs []string
	outcome  models.Outcome
	err      error
	panics   bool
}

func (s *stubRunner) Run(ctx context.Context, rawURLs []string) (models.Outcome, error) {
	s.lastURLs = rawURLs
	if s.panics {
		panic("something went sideways")
	}
	return s.outcome, s.err
}

var errInput = errors.New("no urls provided")

func isInput(err error) bool {
	return errors.Is(err, errInput)
}

func newTestServer(runner *stubRunner) *Server {
	return New(Config{}, runner, isInput)
}

func TestHandleRewriteJSONBody(t *testing.T) {
	runner := &stubRunner{
		outcome: models.Outcome{
			ResolvedCount: 2,
			RawLength:     1234,
			Result:        models.RewriteResult{Script: "the final script"},
		},
	}
	srv := newTestServer(runner)

	body := `{"urls": ["https://youtu.be/AAAAAAAAAAA", "https://youtu.be/BBBBBBBBBBB"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/rewrite", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(2), resp["inputVideos"])
	assert.Equal(t, "the final script", resp["finalScript"])
	assert.Equal(t, float64(1234), resp["rawTranscriptsLength"])
	assert.Len(t, runner.lastURLs, 2)
}

func TestHandleRewritePlainTextFallback(t *testing.T) {
	runner := &stubRunner{outcome: models.Outcome{ResolvedCount: 2, Result: models.RewriteResult{Script: "ok"}}}
	srv := newTestServer(runner)

	body := "https://youtu.be/AAAAAAAAAAA\nhttps://youtu.be/BBBBBBBBBBB\n"
	req := httptest.NewRequest(http.MethodPost, "/api/rewrite", strings.NewReader(body))
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"https://youtu.be/AAAAAAAAAAA", "https://youtu.be/BBBBBBBBBBB"}, runner.lastURLs)
}

func TestHandleRewriteQueryParamFallback(t *testing.T) {
	runner := &stubRunner{outcome: models.Outcome{ResolvedCount: 1, Result: models.RewriteResult{Script: "ok"}}}
	srv := newTestServer(runner)

	req := httptest.NewRequest(http.MethodPost, "/api/rewrite?urls=https://youtu.be/AAAAAAAAAAA,https://youtu.be/BBBBBBBBBBB", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, runner.lastURLs, 2)
}

func TestHandleRewriteInputError(t *testing.T) {
	runner := &stubRunner{err: errInput}
	srv := newTestServer(runner)

	req := httptest.NewRequest(http.MethodPost, "/api/rewrite", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "no urls provided", resp["error"])
}

func TestHandleRewriteUnexpectedError(t *testing.T) {
	runner := &stubRunner{err: errors.New("database on fire")}
	srv := newTestServer(runner)

	req := httptest.NewRequest(http.MethodPost, "/api/rewrite", strings.NewReader(`{"urls":["https://youtu.be/AAAAAAAAAAA"]}`))
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleRewritePanicRecovery(t *testing.T) {
	runner := &stubRunner{panics: true}
	srv := newTestServer(runner)

	req := httptest.NewRequest(http.MethodPost, "/api/rewrite", strings.NewReader(`{"urls":["https://youtu.be/AAAAAAAAAAA"]}`))
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["error"], "something went sideways")
}

func TestHandleRewriteOptionsPreflight(t *testing.T) {
	srv := newTestServer(&stubRunner{})

	req := httptest.NewRequest(http.MethodOptions, "/api/rewrite", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Body.String())
}

func TestHandleRewriteMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&stubRunner{})

	req := httptest.NewRequest(http.MethodGet, "/api/rewrite", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleRewriteDegradedFlag(t *testing.T) {
	runner := &stubRunner{
		outcome: models.Outcome{
			ResolvedCount: 1,
			Result:        models.RewriteResult{Preview: "preview text", Degraded: true, Reason: "no credential"},
		},
	}
	srv := newTestServer(runner)

	req := httptest.NewRequest(http.MethodPost, "/api/rewrite", strings.NewReader(`{"urls":["https://youtu.be/AAAAAAAAAAA"]}`))
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["degraded"])
	assert.Equal(t, "preview text", resp["finalScript"])
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(&stubRunner{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

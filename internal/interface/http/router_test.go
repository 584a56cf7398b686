package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rayzhou/text-toolkit/internal/domain/analyzer"
	"github.com/rayzhou/text-toolkit/internal/infra/config"
	apperrors "github.com/rayzhou/text-toolkit/pkg/errors"
)

func TestRouter_AnalyzeSuccess(t *testing.T) {
	resp := analyzer.Response{
		Summary:   "short summary",
		Keywords:  []string{"go", "backend"},
		Sentiment: analyzer.SentimentPositive,
	}
	svc := &stubAnalyzer{
		analyzeFn: func(ctx context.Context, req analyzer.Request) (analyzer.Response, error) {
			require.Equal(t, "hello world", req.Text)
			require.Equal(t, 40, req.MaxSummaryWords)
			return resp, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/analyze", `{"text":"hello world","max_summary_words":40}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)

	var got analyzer.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, resp, got)
}

func TestRouter_AnalyzeEmptyKeywordsSerializeAsArray(t *testing.T) {
	svc := &stubAnalyzer{
		analyzeFn: func(ctx context.Context, req analyzer.Request) (analyzer.Response, error) {
			return analyzer.Response{Summary: "s", Keywords: []string{}, Sentiment: analyzer.SentimentNeutral}, nil
		},
	}

	recorder := performRequest(http.MethodPost, "/analyze", `{"text":"hi"}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), `"keywords":[]`)
}

func TestRouter_AnalyzeInvalidJSON(t *testing.T) {
	svc := &stubAnalyzer{}

	recorder := performRequest(http.MethodPost, "/analyze", `{"text":123}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
}

func TestRouter_AnalyzeEmptyTextRejected(t *testing.T) {
	svc := &stubAnalyzer{
		analyzeFn: func(ctx context.Context, req analyzer.Request) (analyzer.Response, error) {
			return analyzer.Response{}, apperrors.Wrap("invalid_input", "text cannot be empty", nil)
		},
	}

	recorder := performRequest(http.MethodPost, "/analyze", `{"text":"   "}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "analyze_failed", errBody["error"]["code"])
	require.Contains(t, errBody["error"]["message"], "text cannot be empty")
}

func TestRouter_AnalyzeInferenceFailure(t *testing.T) {
	svc := &stubAnalyzer{
		analyzeFn: func(ctx context.Context, req analyzer.Request) (analyzer.Response, error) {
			return analyzer.Response{}, apperrors.Wrap("llm_error", "summary generation failed", nil)
		},
	}

	recorder := performRequest(http.MethodPost, "/analyze", `{"text":"hello"}`, newRouterUnderTest(t, svc))
	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "analyze_failed", errBody["error"]["code"])
}

func TestRouter_Health(t *testing.T) {
	recorder := performRequest(http.MethodGet, "/health", "", newRouterUnderTest(t, &stubAnalyzer{}))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), `"status":"ok"`)
}

func TestRouter_RequestIDEchoed(t *testing.T) {
	server := newRouterUnderTest(t, &stubAnalyzer{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-test-1")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, "req-test-1", rec.Header().Get("X-Request-Id"))
}

func performRequest(method, path, body string, server *http.Server) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T, svc analyzer.Service) *http.Server {
	t.Helper()
	handler := NewAnalyzeHandler(svc, newTestLogger())
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubAnalyzer struct {
	analyzeFn func(ctx context.Context, req analyzer.Request) (analyzer.Response, error)
}

func (s *stubAnalyzer) Analyze(ctx context.Context, req analyzer.Request) (analyzer.Response, error) {
	if s.analyzeFn != nil {
		return s.analyzeFn(ctx, req)
	}
	return analyzer.Response{}, nil
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

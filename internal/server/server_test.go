package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"feed_ingestor/internal/ingest"
	"feed_ingestor/internal/logger"
	"feed_ingestor/internal/metrics"
	"feed_ingestor/internal/middleware"
	"feed_ingestor/internal/models"
	"feed_ingestor/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	got models.Request
	res models.Result
	err error
}

func (s *stubRunner) Run(_ context.Context, req models.Request) (models.Result, error) {
	s.got = req
	if req.UserID == "" {
		return models.Result{}, ingest.ErrMissingUser
	}
	return s.res, s.err
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newHandler(runner server.Runner, db server.Pinger) http.Handler {
	reg := prometheus.NewRegistry()
	return server.NewServer(runner, db, metrics.New(reg), reg).Routes()
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/fetch-articles", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestFetchArticles(t *testing.T) {
	logger.Silence()

	t.Run("articles added", func(t *testing.T) {
		runner := &stubRunner{res: models.Result{
			Success:       true,
			ArticlesAdded: 1,
			Articles:      []models.Article{{Title: "T", URL: "https://example.com/1", Topic: models.TopicAI}},
		}}
		w := post(newHandler(runner, stubPinger{}), `{"timeFilter": "2h", "userId": "u1"}`)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "application/json", w.Header().Get("Content-Type"))
		require.Equal(t, models.Request{TimeFilter: "2h", UserID: "u1"}, runner.got)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Equal(t, true, body["success"])
		require.Equal(t, float64(1), body["articlesAdded"])
		require.Len(t, body["articles"], 1)
	})

	t.Run("nothing new", func(t *testing.T) {
		runner := &stubRunner{res: models.Result{Success: true, Message: "No new articles found"}}
		w := post(newHandler(runner, stubPinger{}), `{"userId": "u1"}`)

		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{"success": true, "articlesAdded": 0, "message": "No new articles found"}`, w.Body.String())
	})

	t.Run("hard failure", func(t *testing.T) {
		runner := &stubRunner{err: errors.New("load subscriptions: permission denied")}
		w := post(newHandler(runner, stubPinger{}), `{"userId": "u1"}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.JSONEq(t, `{"error": "load subscriptions: permission denied"}`, w.Body.String())
	})

	t.Run("missing user", func(t *testing.T) {
		w := post(newHandler(&stubRunner{}, stubPinger{}), `{}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "userId is required")
	})

	t.Run("malformed body", func(t *testing.T) {
		w := post(newHandler(&stubRunner{}, stubPinger{}), `{"userId":`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "invalid request body")
	})

	t.Run("wrong method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/fetch-articles", nil)
		w := httptest.NewRecorder()
		newHandler(&stubRunner{}, stubPinger{}).ServeHTTP(w, req)
		require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestHealthCheck(t *testing.T) {
	logger.Silence()
	testCases := []struct {
		name string
		err  error
		code int
	}{
		{"db up", nil, http.StatusOK},
		{"db down", errors.New("refused"), http.StatusServiceUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()
			newHandler(&stubRunner{}, stubPinger{err: tc.err}).ServeHTTP(w, req)
			require.Equal(t, tc.code, w.Code)
		})
	}
}

func TestRequestIDAndMetrics(t *testing.T) {
	logger.Silence()
	h := newHandler(&stubRunner{res: models.Result{Success: true}}, stubPinger{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, "abc123", w.Header().Get(middleware.RequestIDHeader))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `http_requests_total{path="/health",status="200"} 2`)
}

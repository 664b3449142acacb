package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ricirt/breed-query-worker/internal/api"
	"github.com/ricirt/breed-query-worker/internal/domain"
	"github.com/ricirt/breed-query-worker/internal/queue"
	"github.com/ricirt/breed-query-worker/internal/service"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type failingQueue struct{ queue.Transport }

func (failingQueue) Send(context.Context, string) (string, error) {
	return "", errors.New("sqs: service unavailable")
}

type testServer struct {
	handler  http.Handler
	q        *queue.MemoryQueue
	enqueued []domain.RequestType
}

func newTestServer(t *testing.T, transport queue.Transport, db fakePinger) *testServer {
	t.Helper()
	q := queue.NewMemoryQueue(30 * time.Second)
	if transport == nil {
		transport = q
	}
	ts := &testServer{q: q}
	svc := service.NewIntakeService(transport, zap.NewNop())
	ts.handler = api.NewRouter(svc, q, db, prometheus.NewRegistry(),
		func(rt domain.RequestType) { ts.enqueued = append(ts.enqueued, rt) },
		zap.NewNop())
	return ts
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) received(t *testing.T) domain.RequestMessage {
	t.Helper()
	msgs, err := ts.q.Receive(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	m, err := domain.DecodeRequestMessage([]byte(msgs[0].Body))
	require.NoError(t, err)
	return m
}

func TestIntake_Accepted(t *testing.T) {
	breedID := "6f1c1f5e-1f4b-4a33-8f0e-2a7c3a7d0a01"
	tests := []struct {
		name     string
		path     string
		body     string
		wantType domain.RequestType
		wantQ    domain.Query
	}{
		{
			name:     "all",
			path:     "/api/v1/async/breeds/all",
			body:     `{"email":"a@x.com","includeImages":true,"sortBy":"origin","sortDirection":"desc"}`,
			wantType: domain.RequestListAll,
			wantQ:    domain.ListAllQuery{IncludeImages: true, SortBy: domain.SortByOrigin, SortDirection: domain.SortDesc},
		},
		{
			name:     "by id",
			path:     "/api/v1/async/breeds/by-id",
			body:     `{"email":"a@x.com","breedId":"` + breedID + `"}`,
			wantType: domain.RequestGetByID,
			wantQ:    domain.GetByIDQuery{ID: uuidMust(t, breedID)},
		},
		{
			name:     "by temperament",
			path:     "/api/v1/async/breeds/by-temperament",
			body:     `{"email":"a@x.com","temperament":" Playful & Curious "}`,
			wantType: domain.RequestSearchByTrait,
			wantQ:    domain.SearchByTraitQuery{Trait: "Playful & Curious"},
		},
		{
			name:     "by origin",
			path:     "/api/v1/async/breeds/by-origin",
			body:     `{"email":"a@x.com","origin":"United Kingdom","includeImages":true}`,
			wantType: domain.RequestSearchByOrigin,
			wantQ:    domain.SearchByOriginQuery{Origin: "United Kingdom", IncludeImages: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil, fakePinger{})

			rec := ts.do(http.MethodPost, tt.path, tt.body)
			require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

			var sub service.Submission
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
			assert.NotEmpty(t, sub.RequestID)
			assert.NotEmpty(t, sub.MessageID)
			assert.Equal(t, "a@x.com", sub.Recipient)

			m := ts.received(t)
			assert.Equal(t, sub.RequestID, m.RequestID)
			assert.Equal(t, tt.wantType, m.RequestType)

			q, err := domain.ParseQuery(m.RequestType, m.Parameters)
			require.NoError(t, err)
			assert.Equal(t, tt.wantQ, q)
			assert.Equal(t, []domain.RequestType{tt.wantType}, ts.enqueued)
		})
	}
}

func TestIntake_Rejected(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		body      string
		want      int
		wantField string
	}{
		{"invalid json", "/api/v1/async/breeds/all", `{"email":`, http.StatusBadRequest, ""},
		{"missing email", "/api/v1/async/breeds/all", `{}`, http.StatusUnprocessableEntity, "email"},
		{"bad email", "/api/v1/async/breeds/by-origin", `{"email":"nope","origin":"Egypt"}`, http.StatusUnprocessableEntity, "email"},
		{"bad sort", "/api/v1/async/breeds/all", `{"email":"a@x.com","sortBy":"weight"}`, http.StatusUnprocessableEntity, "sortBy"},
		{"bad id", "/api/v1/async/breeds/by-id", `{"email":"a@x.com","breedId":"42"}`, http.StatusUnprocessableEntity, "breedId"},
		{"missing temperament", "/api/v1/async/breeds/by-temperament", `{"email":"a@x.com"}`, http.StatusUnprocessableEntity, "temperament"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, nil, fakePinger{})

			rec := ts.do(http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())

			if tt.wantField != "" {
				var body struct {
					Fields map[string]string `json:"fields"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Contains(t, body.Fields, tt.wantField)
			}

			d, err := ts.q.Depth(context.Background())
			require.NoError(t, err)
			assert.Zero(t, d.Visible, "nothing should be enqueued")
			assert.Empty(t, ts.enqueued)
		})
	}
}

func TestIntake_QueueUnavailable(t *testing.T) {
	ts := newTestServer(t, failingQueue{}, fakePinger{})

	rec := ts.do(http.MethodPost, "/api/v1/async/breeds/all", `{"email":"a@x.com"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "sqs:", "transport details stay in the logs")
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil, fakePinger{})
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/health/ready", "").Code)

	down := newTestServer(t, nil, fakePinger{err: errors.New("connection refused")})
	assert.Equal(t, http.StatusOK, down.do(http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, down.do(http.MethodGet, "/health/ready", "").Code)
}

func TestMetricsSnapshot(t *testing.T) {
	ts := newTestServer(t, nil, fakePinger{})
	_, err := ts.q.Send(context.Background(), `{}`)
	require.NoError(t, err)
	_, err = ts.q.Send(context.Background(), `{}`)
	require.NoError(t, err)
	_, err = ts.q.Receive(context.Background(), 1, 0)
	require.NoError(t, err)

	rec := ts.do(http.MethodGet, "/api/v1/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		QueueDepth map[string]int `json:"queue_depth"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]int{"visible": 1, "in_flight": 1, "total": 2}, body.QueueDepth)
}

func TestPrometheusEndpoint(t *testing.T) {
	ts := newTestServer(t, nil, fakePinger{})
	rec := ts.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func uuidMust(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}

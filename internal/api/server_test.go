package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bp-trend-server/internal/domain"
	"github.com/bp-trend-server/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memStore is an in-memory ReadingStore for handler tests.
type memStore struct {
	mu       sync.Mutex
	readings map[string]*domain.Reading
	profile  *domain.UserProfile
}

func newMemStore() *memStore {
	return &memStore{readings: make(map[string]*domain.Reading)}
}

func (m *memStore) ListReadings(ctx context.Context) ([]*domain.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Reading, 0, len(m.readings))
	for _, r := range m.readings {
		out = append(out, r)
	}
	domain.SortReadingsByRecency(out)
	return out, nil
}

func (m *memStore) GetReading(ctx context.Context, id string) (*domain.Reading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.readings[id]
	if !ok {
		return nil, fmt.Errorf("reading %s: %w", id, domain.ErrNotFound)
	}
	return r, nil
}

func (m *memStore) SaveReading(ctx context.Context, reading *domain.Reading) error {
	if err := reading.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readings[reading.ID] = reading
	return nil
}

func (m *memStore) DeleteReading(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.readings[id]; !ok {
		return fmt.Errorf("reading %s: %w", id, domain.ErrNotFound)
	}
	delete(m.readings, id)
	return nil
}

func (m *memStore) GetProfile(ctx context.Context) (*domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile, nil
}

func (m *memStore) SaveProfile(ctx context.Context, profile *domain.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profile = profile
	return nil
}

func (m *memStore) Close() error { return nil }

// stubGenerator returns a fixed trend response.
type stubGenerator struct {
	response *domain.TrendResponse
	err      error
}

func (g *stubGenerator) GenerateTrendSummary(ctx context.Context, request *domain.TrendRequest) (*domain.TrendResponse, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.response, nil
}

// stubExtractor returns a fixed extraction result.
type stubExtractor struct {
	result *domain.ExtractionResult
}

func (e *stubExtractor) ExtractReading(ctx context.Context, request *domain.ExtractionRequest) (*domain.ExtractionResult, error) {
	return e.result, nil
}

func newTestServer(t *testing.T, store domain.ReadingStore, generator domain.TrendGenerator, extractor domain.ReadingExtractor) *Server {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	if generator == nil {
		generator = &stubGenerator{response: &domain.TrendResponse{Summary: "Stable readings."}}
	}

	summarizer, err := service.NewTrendSummarizer(logger, generator)
	require.NoError(t, err)

	return NewServer(logger, domain.ServerConfig{Host: "127.0.0.1", Port: 0}, store, summarizer, extractor)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func intPointer(v int) *int { return &v }

func validReadingPayload() map[string]any {
	return map[string]any{
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
		"systolic":         122,
		"diastolic":        79,
		"pulse":            72,
		"body_position":    "Sitting",
		"exercise_context": "Resting",
		"symptoms":         []string{"Headache"},
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, newMemStore(), nil, nil)

	w := doJSON(t, s, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestCreateAndGetReading(t *testing.T) {
	s := newTestServer(t, newMemStore(), nil, nil)

	w := doJSON(t, s, http.MethodPost, "/api/v1/readings", validReadingPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	var created domain.Reading
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 122, created.Systolic)

	w = doJSON(t, s, http.MethodGet, "/api/v1/readings/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var fetched domain.Reading
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, []domain.Symptom{domain.SymptomHeadache}, fetched.Symptoms)
}

func TestCreateReading_ValidationFailure(t *testing.T) {
	s := newTestServer(t, newMemStore(), nil, nil)

	payload := validReadingPayload()
	payload["systolic"] = 0

	w := doJSON(t, s, http.MethodPost, "/api/v1/readings", payload)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, domain.ErrCodeValidation, apiErr.Code)
	assert.NotEmpty(t, apiErr.RequestID)
}

func TestCreateReading_SymptomNoneConflictRejected(t *testing.T) {
	s := newTestServer(t, newMemStore(), nil, nil)

	payload := validReadingPayload()
	payload["symptoms"] = []string{"None", "Headache"}

	w := doJSON(t, s, http.MethodPost, "/api/v1/readings", payload)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateReading_ReplacesRecord(t *testing.T) {
	s := newTestServer(t, newMemStore(), nil, nil)

	w := doJSON(t, s, http.MethodPost, "/api/v1/readings", validReadingPayload())
	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.Reading
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	update := validReadingPayload()
	update["systolic"] = 135
	delete(update, "symptoms")

	w = doJSON(t, s, http.MethodPut, "/api/v1/readings/"+created.ID, update)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/v1/readings/"+created.ID, nil)
	var fetched domain.Reading
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, 135, fetched.Systolic)
	assert.Empty(t, fetched.Symptoms)
}

func TestUpdateReading_NotFound(t *testing.T) {
	s := newTestServer(t, newMemStore(), nil, nil)

	w := doJSON(t, s, http.MethodPut, "/api/v1/readings/no-such-id", validReadingPayload())

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteReading(t *testing.T) {
	s := newTestServer(t, newMemStore(), nil, nil)

	w := doJSON(t, s, http.MethodPost, "/api/v1/readings", validReadingPayload())
	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.Reading
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, s, http.MethodDelete, "/api/v1/readings/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, s, http.MethodDelete, "/api/v1/readings/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileLifecycle(t *testing.T) {
	s := newTestServer(t, newMemStore(), nil, nil)

	w := doJSON(t, s, http.MethodGet, "/api/v1/profile", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s, http.MethodPut, "/api/v1/profile", map[string]any{
		"age":                45,
		"medical_conditions": []string{"Diabetes"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/v1/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var profile domain.UserProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	require.NotNil(t, profile.Age)
	assert.Equal(t, 45, *profile.Age)
}

func TestProfile_ValidationFailure(t *testing.T) {
	s := newTestServer(t, newMemStore(), nil, nil)

	w := doJSON(t, s, http.MethodPut, "/api/v1/profile", map[string]any{"age": 200})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrendEndpoint_CarriesDisclaimer(t *testing.T) {
	store := newMemStore()
	s := newTestServer(t, store, &stubGenerator{
		response: &domain.TrendResponse{Summary: "Readings look stable"},
	}, nil)

	w := doJSON(t, s, http.MethodPost, "/api/v1/readings", validReadingPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/v1/trend", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result domain.TrendAnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, strings.HasSuffix(result.Summary, domain.Disclaimer))
	assert.NotEmpty(t, result.Suggestions)
}

func TestTrendEndpoint_EmptyJournalFailsSoft(t *testing.T) {
	s := newTestServer(t, newMemStore(), &stubGenerator{err: fmt.Errorf("must not be called")}, nil)

	w := doJSON(t, s, http.MethodGet, "/api/v1/trend", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No recent readings")
}

func TestTrendEndpoint_GeneratorFailure(t *testing.T) {
	store := newMemStore()
	s := newTestServer(t, store, &stubGenerator{err: fmt.Errorf("upstream unavailable")}, nil)

	w := doJSON(t, s, http.MethodPost, "/api/v1/readings", validReadingPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/v1/trend", nil)

	require.Equal(t, http.StatusBadGateway, w.Code)

	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, domain.ErrCodeAnalysis, apiErr.Code)
	assert.Contains(t, apiErr.Details, domain.Disclaimer)
}

func TestExtractEndpoint(t *testing.T) {
	extractor := &stubExtractor{
		result: &domain.ExtractionResult{
			Systolic:  intPointer(128),
			Diastolic: intPointer(84),
			Consensus: true,
		},
	}
	s := newTestServer(t, newMemStore(), nil, extractor)

	w := doJSON(t, s, http.MethodPost, "/api/v1/extract", map[string]any{
		"image_base64": "aGVsbG8=",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var result domain.ExtractionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.NotNil(t, result.Systolic)
	assert.Equal(t, 128, *result.Systolic)
	assert.True(t, result.Suspect())
}

func TestExtractEndpoint_MissingImage(t *testing.T) {
	s := newTestServer(t, newMemStore(), nil, &stubExtractor{result: &domain.ExtractionResult{}})

	w := doJSON(t, s, http.MethodPost, "/api/v1/extract", map[string]any{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractEndpoint_NotConfigured(t *testing.T) {
	s := newTestServer(t, newMemStore(), nil, nil)

	w := doJSON(t, s, http.MethodPost, "/api/v1/extract", map[string]any{"image_base64": "aGVsbG8="})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestExportImportRoundtrip(t *testing.T) {
	source := newMemStore()
	s := newTestServer(t, source, nil, nil)

	w := doJSON(t, s, http.MethodPost, "/api/v1/readings", validReadingPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/v1/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	exported := w.Body.Bytes()

	target := newMemStore()
	s2 := newTestServer(t, target, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", bytes.NewReader(exported))
	rec := httptest.NewRecorder()
	s2.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"imported":1`)

	// Importing the same document again skips everything.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/import", bytes.NewReader(exported))
	rec = httptest.NewRecorder()
	s2.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"skipped":1`)
}

func TestTrendWatch_InitialSnapshot(t *testing.T) {
	store := newMemStore()
	s := newTestServer(t, store, &stubGenerator{
		response: &domain.TrendResponse{Summary: "All good"},
	}, nil)

	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/trend/watch"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var event watchEvent
	require.NoError(t, conn.ReadJSON(&event))

	// Empty journal still yields a fail-soft analysis, never an error.
	require.NotNil(t, event.Result)
	assert.Empty(t, event.Error)
	assert.True(t, strings.HasSuffix(event.Result.Summary, domain.Disclaimer))
}

func TestTrendWatch_PushesAfterMutation(t *testing.T) {
	store := newMemStore()
	s := newTestServer(t, store, &stubGenerator{
		response: &domain.TrendResponse{Summary: "Trending normal"},
	}, nil)

	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/trend/watch"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	// Drain the initial snapshot.
	var event watchEvent
	require.NoError(t, conn.ReadJSON(&event))

	w := doJSON(t, s, http.MethodPost, "/api/v1/readings", validReadingPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, conn.ReadJSON(&event))
	require.NotNil(t, event.Result)
	assert.Contains(t, event.Result.Summary, "Trending normal")
	assert.GreaterOrEqual(t, event.Generation, uint64(1))
}

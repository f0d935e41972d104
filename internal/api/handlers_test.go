// RigMatch - PC Build Matching and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rigmatch

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/goccy/go-json"

	"github.com/tomtom215/rigmatch/internal/cache"
	"github.com/tomtom215/rigmatch/internal/catalog"
	"github.com/tomtom215/rigmatch/internal/config"
	"github.com/tomtom215/rigmatch/internal/engine"
	"github.com/tomtom215/rigmatch/internal/events"
	"github.com/tomtom215/rigmatch/internal/models"
)

// fakeStore is a scriptable catalog.Store for handler tests.
type fakeStore struct {
	configs    []models.CandidateConfiguration
	components []models.ComponentRecord
	pingErr    error
	queryErr   error
}

func (f *fakeStore) QueryCandidates(ctx context.Context, filter catalog.CandidateFilter) ([]models.CandidateConfiguration, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var out []models.CandidateConfiguration
	for _, c := range f.configs {
		if filter.PriceMin > 0 && c.TotalPrice < filter.PriceMin {
			continue
		}
		if filter.PriceMax > 0 && c.TotalPrice > filter.PriceMax {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) GetConfiguration(ctx context.Context, id string) (*models.CandidateConfiguration, error) {
	for i := range f.configs {
		if f.configs[i].ID == id {
			return &f.configs[i], nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeStore) ListConfigurations(ctx context.Context, page, pageSize int) ([]models.CandidateConfiguration, int, error) {
	start := (page - 1) * pageSize
	if start >= len(f.configs) {
		return nil, len(f.configs), nil
	}
	end := start + pageSize
	if end > len(f.configs) {
		end = len(f.configs)
	}
	return f.configs[start:end], len(f.configs), nil
}

func (f *fakeStore) ComponentsByIDs(ctx context.Context, ids []string) (map[string]models.ComponentRecord, error) {
	out := make(map[string]models.ComponentRecord)
	for _, c := range f.components {
		for _, id := range ids {
			if c.ID == id {
				out[id] = c
			}
		}
	}
	return out, nil
}

func (f *fakeStore) ListComponents(ctx context.Context, componentType string, page, pageSize int) ([]models.ComponentRecord, int, error) {
	var filtered []models.ComponentRecord
	for _, c := range f.components {
		if componentType == "" || c.Type == componentType {
			filtered = append(filtered, c)
		}
	}
	return filtered, len(filtered), nil
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }
func (f *fakeStore) Close() error                   { return nil }

func seededStore() *fakeStore {
	return &fakeStore{
		configs: []models.CandidateConfiguration{
			{
				ID:                "cfg-one",
				Name:              "Mid Gamer",
				TotalPrice:        1000,
				SuitabilityScores: map[string]float64{"gaming": 80},
				Performance:       models.PerformanceProfile{Overall: 75, CPU: 75, GPU: 80, RAM: 70, Storage: 70},
				ComponentIDs:      []string{"cpu-1"},
			},
			{
				ID:                "cfg-two",
				Name:              "Office Box",
				TotalPrice:        600,
				SuitabilityScores: map[string]float64{"office": 85, "gaming": 30},
				Performance:       models.PerformanceProfile{Overall: 50, CPU: 55, GPU: 30, RAM: 50, Storage: 55},
			},
		},
		components: []models.ComponentRecord{
			{ID: "cpu-1", Type: "cpu", Name: "Ryzen 5 9600X", Brand: "AMD", Price: 279},
			{ID: "gpu-1", Type: "gpu", Name: "RTX 5070", Brand: "NVIDIA", Price: 549},
		},
	}
}

// newTestServer assembles the full router over fakes. Rate limiting is
// disabled so tests never trip limits.
func newTestServer(t *testing.T, store *fakeStore) (*httptest.Server, *events.Bus) {
	t.Helper()

	engineCfg := config.EngineConfig{
		DefaultLimit:    5,
		MaxLimit:        20,
		ParallelScoring: false,
		ScoringTimeout:  5 * time.Second,
		BudgetExpansion: 0.15,
	}
	cacheCfg := config.CacheConfig{Store: "memory", ResultTTL: time.Minute, ComponentTTL: time.Minute}
	apiCfg := config.APIConfig{DefaultPageSize: 20, MaxPageSize: 100, RateLimitDisabled: true}

	eng := engine.New(store, cache.NewMemoryStore(), engineCfg, cacheCfg)
	bus := events.NewBus(config.EventsConfig{FeedbackTopic: "feedback.submitted", BufferSize: 8}, watermill.NopLogger{})
	t.Cleanup(func() { _ = bus.Close() })

	handler := NewHandler(eng, store, nil, bus, apiCfg)
	router := NewRouter(handler, apiCfg)
	t.Cleanup(router.Close)

	srv := httptest.NewServer(router.Setup())
	t.Cleanup(srv.Close)
	return srv, bus
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) APIResponse {
	t.Helper()
	defer resp.Body.Close()
	var envelope APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return envelope
}

func validProfile() map[string]interface{} {
	return map[string]interface{}{
		"purpose":           "gaming",
		"budget":            map[string]float64{"min": 500, "max": 1500},
		"performance_level": "high",
	}
}

func TestRecommendEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, seededStore())

	resp := postJSON(t, srv.URL+"/api/v1/recommendations", validProfile())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	envelope := decodeEnvelope(t, resp)
	if !envelope.Success {
		t.Fatalf("expected success envelope: %+v", envelope.Error)
	}

	data, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("re-marshal data: %v", err)
	}
	var result engine.Result
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(result.Recommendations) == 0 {
		t.Fatal("expected at least one recommendation")
	}
	if result.Recommendations[0].ConfidenceScore <= 0 {
		t.Error("confidence score should be positive")
	}
	if envelope.Meta == nil || envelope.Meta.RequestID == "" {
		t.Error("meta should carry the request ID")
	}
}

func TestRecommendCacheHitHeader(t *testing.T) {
	srv, _ := newTestServer(t, seededStore())

	resp := postJSON(t, srv.URL+"/api/v1/recommendations", validProfile())
	resp.Body.Close()
	if resp.Header.Get("X-Cache") != "" {
		t.Error("first response should not be a cache hit")
	}

	resp = postJSON(t, srv.URL+"/api/v1/recommendations", validProfile())
	resp.Body.Close()
	if resp.Header.Get("X-Cache") != "HIT" {
		t.Error("second identical request should be served from cache")
	}
}

func TestRecommendInvalidProfile(t *testing.T) {
	srv, _ := newTestServer(t, seededStore())

	resp := postJSON(t, srv.URL+"/api/v1/recommendations", map[string]interface{}{
		"purpose":           "mining",
		"budget":            map[string]float64{"min": 500, "max": 1500},
		"performance_level": "high",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	envelope := decodeEnvelope(t, resp)
	if envelope.Error == nil || envelope.Error.Code != ErrCodeValidationFailed {
		t.Errorf("unexpected error payload: %+v", envelope.Error)
	}
}

func TestRecommendRejectsUnknownFields(t *testing.T) {
	srv, _ := newTestServer(t, seededStore())

	body := validProfile()
	body["bogus_field"] = true
	resp := postJSON(t, srv.URL+"/api/v1/recommendations", body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown fields", resp.StatusCode)
	}
}

func TestRecommendNoCandidates(t *testing.T) {
	srv, _ := newTestServer(t, &fakeStore{})

	resp := postJSON(t, srv.URL+"/api/v1/recommendations", validProfile())
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	envelope := decodeEnvelope(t, resp)
	if envelope.Error == nil || envelope.Error.Code != ErrCodeNoCandidates {
		t.Errorf("unexpected error payload: %+v", envelope.Error)
	}
}

func TestRecommendCatalogUnavailable(t *testing.T) {
	store := seededStore()
	store.queryErr = catalog.ErrUnavailable
	srv, _ := newTestServer(t, store)

	resp := postJSON(t, srv.URL+"/api/v1/recommendations", validProfile())
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestListConfigurations(t *testing.T) {
	srv, _ := newTestServer(t, seededStore())

	resp, err := http.Get(srv.URL + "/api/v1/configurations")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	envelope := decodeEnvelope(t, resp)
	if envelope.Meta == nil || envelope.Meta.Pagination == nil {
		t.Fatal("list response should carry pagination meta")
	}
	if envelope.Meta.Pagination.Total != 2 || envelope.Meta.Pagination.Count != 2 {
		t.Errorf("pagination = %+v, want total 2 count 2", envelope.Meta.Pagination)
	}
}

func TestGetConfiguration(t *testing.T) {
	srv, _ := newTestServer(t, seededStore())

	resp, err := http.Get(srv.URL + "/api/v1/configurations/cfg-one")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	envelope := decodeEnvelope(t, resp)
	if !envelope.Success {
		t.Fatalf("expected success: %+v", envelope.Error)
	}

	resp, err = http.Get(srv.URL + "/api/v1/configurations/missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing config status = %d, want 404", resp.StatusCode)
	}
}

func TestListComponentsTypeFilter(t *testing.T) {
	srv, _ := newTestServer(t, seededStore())

	resp, err := http.Get(srv.URL + "/api/v1/components?type=cpu")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	envelope := decodeEnvelope(t, resp)
	if envelope.Meta.Pagination.Total != 1 {
		t.Errorf("cpu filter total = %d, want 1", envelope.Meta.Pagination.Total)
	}
}

func TestFeedbackAccepted(t *testing.T) {
	srv, bus := newTestServer(t, seededStore())

	received := make(chan events.FeedbackEvent, 1)
	messages, err := bus.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	go func() {
		for msg := range messages {
			var ev events.FeedbackEvent
			if json.Unmarshal(msg.Payload, &ev) == nil {
				received <- ev
			}
			msg.Ack()
		}
	}()

	resp := postJSON(t, srv.URL+"/api/v1/feedback", map[string]interface{}{
		"configuration_id": "cfg-one",
		"rating":           4,
		"helpful":          true,
	})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	envelope := decodeEnvelope(t, resp)
	data, ok := envelope.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected data payload: %+v", envelope.Data)
	}
	if id, _ := data["feedback_id"].(string); id == "" {
		t.Errorf("expected a feedback_id in the response: %+v", data)
	}

	select {
	case ev := <-received:
		if ev.ConfigurationID != "cfg-one" || ev.Rating != 4 {
			t.Errorf("unexpected event: %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("feedback event never reached the bus")
	}
}

func TestFeedbackValidation(t *testing.T) {
	srv, _ := newTestServer(t, seededStore())

	resp := postJSON(t, srv.URL+"/api/v1/feedback", map[string]interface{}{
		"configuration_id": "cfg-one",
		"rating":           9,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("rating 9 status = %d, want 400", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/api/v1/feedback", map[string]interface{}{
		"configuration_id": "cfg-unknown",
		"rating":           3,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown config status = %d, want 404", resp.StatusCode)
	}
}

func TestHealthEndpoints(t *testing.T) {
	store := seededStore()
	srv, _ := newTestServer(t, store)

	for _, path := range []string{"/api/v1/health", "/api/v1/health/live", "/api/v1/health/ready"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestHealthDegradedWhenCatalogDown(t *testing.T) {
	store := seededStore()
	store.pingErr = catalog.ErrUnavailable
	srv, _ := newTestServer(t, store)

	for _, path := range []string{"/api/v1/health", "/api/v1/health/ready"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("%s status = %d, want 503", path, resp.StatusCode)
		}
	}

	// Liveness stays green while the catalog is down.
	resp, err := http.Get(srv.URL + "/api/v1/health/live")
	if err != nil {
		t.Fatalf("get live: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("live status = %d, want 200", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, seededStore())

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d, want 200", resp.StatusCode)
	}
}

func TestRequestIDHeaderOnResponses(t *testing.T) {
	srv, _ := newTestServer(t, seededStore())

	resp, err := http.Get(srv.URL + "/api/v1/health/live")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("responses should carry X-Request-ID")
	}
}

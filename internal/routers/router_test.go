package routers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"cpu-burn-lab/internal/burn"
	"cpu-burn-lab/internal/handlers"
	"cpu-burn-lab/internal/models"
	"cpu-burn-lab/internal/observability"
)

func newTestRouter(t *testing.T, opts ...burn.Option) (*gin.Engine, *observability.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m, err := observability.NewMetrics()
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	opts = append(opts, burn.WithRecorder(m), burn.WithBatchSize(1000))
	h := handlers.New(burn.New(opts...), 4, 30)
	return NewRouter(m, h), m
}

func TestStressRoute(t *testing.T) {
	r, m := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stress?threads=3&duration=0", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}

	var got models.StressResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ThreadsUsed != 3 || got.TotalIterations != 0 || got.RunID == "" {
		t.Errorf("response = %+v", got)
	}
	if n := m.WorkersActive(); n != 0 {
		t.Errorf("WorkersActive() = %d after the run, want 0", n)
	}
}

func TestStressRouteNegativeParameters(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, target := range []string{"/stress?threads=-2&duration=1", "/stress?threads=2&duration=-5"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, body %s", target, w.Code, w.Body)
		}
		var got models.StressResponse
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.TotalIterations != 0 {
			t.Errorf("%s: TotalIterations = %d, want 0", target, got.TotalIterations)
		}
	}
}

func TestStressRouteExhausted(t *testing.T) {
	r, _ := newTestRouter(t, burn.WithMaxWorkers(2))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stress?threads=3&duration=0", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, path := range []string{"/", "/health", "/info"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, w.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/async", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("GET /async = %d, want 404", w.Code)
	}
}

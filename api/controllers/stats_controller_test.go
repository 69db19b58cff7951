package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/hazuki-dev/picshift/stats"
	"github.com/hazuki-dev/picshift/types"
)

// setupRouter creates a test router with the stats endpoints
func setupRouter(t *testing.T) (*gin.Engine, *stats.Aggregator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	agg := stats.New(filepath.Join(t.TempDir(), "stats.json"))
	ctrl := NewStatsController(agg)

	router := gin.New()
	router.GET("/healthz", HandleHealth)
	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/stats", ctrl.HandleStats)
	}
	return router, agg
}

func TestHandleStatsAll(t *testing.T) {
	router, agg := setupRouter(t)
	agg.Record(1000, 400, types.FormatWEBP)

	req, _ := http.NewRequest("GET", "/api/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var rec types.StatisticsRecord
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if rec.TotalImages != 1 || rec.ConversionsByFormat["WEBP"] != 1 {
		t.Errorf("response record = %+v", rec)
	}
}

func TestHandleStatsToday(t *testing.T) {
	router, agg := setupRouter(t)
	agg.Record(500, 250, types.FormatPNG)

	req, _ := http.NewRequest("GET", "/api/stats?period=today", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var day types.PeriodStats
	if err := json.Unmarshal(w.Body.Bytes(), &day); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if day.Images != 1 || day.SizeOriginal != 500 {
		t.Errorf("today stats = %+v", day)
	}
}

func TestHandleStatsBadPeriod(t *testing.T) {
	router, _ := setupRouter(t)

	req, _ := http.NewRequest("GET", "/api/stats?period=yesterday", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	router, _ := setupRouter(t)

	req, _ := http.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/concave-dev/lumen/internal/resources"
	"github.com/gin-gonic/gin"
)

// TestHandleHealth tests the health handler response
func TestHandleHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	version := "1.0.0"
	startTime := time.Now().Add(-30 * time.Minute) // 30 minutes ago

	handler := HandleHealth(version, "quiet-vermeer", startTime, nil)

	// Create test request
	router := gin.New()
	router.GET("/health", handler)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// Check status code
	if w.Code != http.StatusOK {
		t.Errorf("HandleHealth() status = %d, want %d", w.Code, http.StatusOK)
	}

	// Parse response
	var response HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	// Check response fields
	if response.Status != "healthy" {
		t.Errorf("HandleHealth() status = %q, want \"healthy\"", response.Status)
	}

	if response.Version != version {
		t.Errorf("HandleHealth() version = %q, want %q", response.Version, version)
	}

	if response.Instance != "quiet-vermeer" {
		t.Errorf("HandleHealth() instance = %q, want \"quiet-vermeer\"", response.Instance)
	}

	// Check that timestamp is recent (within last 5 seconds)
	if time.Since(response.Timestamp) > 5*time.Second {
		t.Error("HandleHealth() timestamp is not recent")
	}

	// Check that uptime is reasonable (should be around 30 minutes)
	if response.Uptime != "30.0m" {
		t.Errorf("HandleHealth() uptime = %q, want \"30.0m\"", response.Uptime)
	}

	if response.Resources != nil {
		t.Error("HandleHealth() without sampler should omit resources")
	}
}

// TestHandleHealth_WithSampler tests that a sampler adds the host snapshot
func TestHandleHealth_WithSampler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	startTime := time.Now()
	sampler := resources.NewSampler(startTime, time.Minute)

	router := gin.New()
	router.GET("/health", HandleHealth("1.0.0", "", startTime, sampler))

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response.Resources == nil {
		t.Fatal("HandleHealth() with sampler returned no resources")
	}
	if response.Resources.CPUCores <= 0 {
		t.Errorf("HandleHealth() CPUCores = %d, want > 0", response.Resources.CPUCores)
	}
}

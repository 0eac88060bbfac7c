package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

// HealthChecker reports liveness of the calculator service. It answers 503
// once Drain is called.
type HealthChecker struct {
	mu              sync.RWMutex
	lastCalculation time.Time
	calculations    uint64
	rejections      uint64
	draining        bool
}

type HealthStatus struct {
	Status          string    `json:"status"`
	Timestamp       time.Time `json:"timestamp"`
	LastCalculation time.Time `json:"last_calculation,omitempty"`
	Calculations    uint64    `json:"calculations"`
	Rejections      uint64    `json:"rejections"`
	Uptime          string    `json:"uptime"`
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{}
}

// Observe notes one calculation attempt
func (h *HealthChecker) Observe(ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastCalculation = time.Now()
	if ok {
		h.calculations++
	} else {
		h.rejections++
	}
}

// Drain marks the service as shutting down
func (h *HealthChecker) Drain() {
	h.mu.Lock()
	h.draining = true
	h.mu.Unlock()
}

// Status returns a snapshot of the current health
func (h *HealthChecker) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if h.draining {
		status = "draining"
	}

	return HealthStatus{
		Status:          status,
		Timestamp:       time.Now(),
		LastCalculation: h.lastCalculation,
		Calculations:    h.calculations,
		Rejections:      h.rejections,
		Uptime:          time.Since(startTime).Round(time.Second).String(),
	}
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	health := h.Status()

	w.Header().Set("Content-Type", "application/json")
	if health.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}

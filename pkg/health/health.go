// Package health implements liveness and readiness probes. Registered
// checks run periodically in the background; thresholds keep a single
// failed run from flapping the probe state.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes one component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

// Thresholds used for every registered check: a check flips to unhealthy
// after failThreshold consecutive failures, and back after okThreshold
// consecutive successes.
const (
	failThreshold = 3
	okThreshold   = 1
)

// probe is one registered check plus its run state. The counters are
// touched only by the single loop goroutine; state and lastErr are shared
// with the HTTP handlers under mu.
type probe struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	fails int
	oks   int

	mu      sync.Mutex
	healthy bool
	lastErr error
}

func newProbe(name string, timeout time.Duration, fn CheckFunc) *probe {
	// Healthy until the first run says otherwise.
	return &probe{name: name, timeout: timeout, fn: fn, healthy: true}
}

func (p *probe) runOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	err := p.fn(ctx)
	cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastErr = err
	if err != nil {
		p.oks = 0
		p.fails++
		if p.fails >= failThreshold {
			p.healthy = false
		}
		return
	}
	p.fails = 0
	p.oks++
	if p.oks >= okThreshold {
		p.healthy = true
	}
}

func (p *probe) status() (healthy bool, lastErr error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.healthy, p.lastErr
}

func (p *probe) loop(ctx context.Context, interval time.Duration) {
	p.runOnce(ctx)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.runOnce(ctx)
		}
	}
}

// Health aggregates liveness and readiness probes for the server.
type Health struct {
	ready atomic.Bool

	mu     sync.Mutex
	live   []*probe
	readyP []*probe
	cancel context.CancelFunc
}

// New returns a Health that reports not ready until SetReady(true).
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a check for the /livez probe.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.live = append(h.live, newProbe(name, timeout, fn))
}

// AddReadinessCheck registers a check for the /readyz probe.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readyP = append(h.readyP, newProbe(name, timeout, fn))
}

// Start launches one goroutine per registered check, each re-running at the
// given interval until Stop or ctx cancellation.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	probes := append(append([]*probe(nil), h.live...), h.readyP...)
	h.mu.Unlock()

	for _, p := range probes {
		go p.loop(ctx, interval)
	}
}

// Stop cancels the background check goroutines.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady flips the manual readiness gate. Shutdown calls SetReady(false)
// to drain traffic before the listener closes.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the gate is open and every readiness check passes.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}
	h.mu.Lock()
	probes := h.readyP
	h.mu.Unlock()
	for _, p := range probes {
		if ok, _ := p.status(); !ok {
			return false
		}
	}
	return true
}

type probeReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves the liveness probe: 200 when every liveness check is
// healthy, 503 with per-check failures otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	probes := append([]*probe(nil), h.live...)
	h.mu.Unlock()
	writeReport(w, failures(probes))
}

// ReadyEndpoint serves the readiness probe. It fails while the manual gate
// is closed or any readiness check is unhealthy.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	probes := append([]*probe(nil), h.readyP...)
	h.mu.Unlock()

	fails := failures(probes)
	if !h.ready.Load() {
		fails["_readiness"] = "service is not ready"
	}
	writeReport(w, fails)
}

func failures(probes []*probe) map[string]string {
	out := make(map[string]string)
	for _, p := range probes {
		ok, err := p.status()
		if ok {
			continue
		}
		if err != nil {
			out[p.name] = err.Error()
		} else {
			out[p.name] = "check is unhealthy"
		}
	}
	return out
}

func writeReport(w http.ResponseWriter, fails map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	report := probeReport{Status: "ok"}
	code := http.StatusOK
	if len(fails) > 0 {
		report.Status = "unhealthy"
		report.Checks = fails
		code = http.StatusServiceUnavailable
	}
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(report)
}
